package spec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullDocument(t *testing.T) {
	content := `---
name: code-reviewer
description: Reviews pull requests for style and correctness. Use when a change needs a second pair of eyes.
tools: Read, Grep, Bash
model: sonnet
---

You are a meticulous code reviewer.

## Approach

Read the diff before commenting. Prefer small, actionable suggestions.

## Examples

` + "```bash" + `
git diff main...HEAD
` + "```" + `
`

	doc, err := Parse(context.Background(), "agents/code-reviewer.md", []byte(content))
	require.NoError(t, err)

	assert.Equal(t, "agents/code-reviewer.md", doc.Path)
	assert.Equal(t, "code-reviewer", doc.Name)
	assert.Equal(t, "Reviews pull requests for style and correctness. Use when a change needs a second pair of eyes.", doc.Description)
	assert.Equal(t, []string{"Read", "Grep", "Bash"}, doc.Tools)
	assert.True(t, doc.HasToolDeclaration())

	// Declaration order of the frontmatter is preserved
	keys := make([]string, 0, len(doc.Fields))
	for _, f := range doc.Fields {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"name", "description", "tools", "model"}, keys)

	model, ok := doc.FieldValue("model")
	require.True(t, ok)
	assert.Equal(t, "sonnet", model)

	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "Approach", doc.Sections[0].Heading)
	assert.Equal(t, 2, doc.Sections[0].Level)
	assert.Contains(t, doc.Sections[0].Content, "Read the diff before commenting.")
	assert.Equal(t, "Examples", doc.Sections[1].Heading)
	assert.Contains(t, doc.Sections[1].Content, "git diff main...HEAD")

	section, ok := doc.SectionByHeading("examples")
	require.True(t, ok)
	assert.Equal(t, "Examples", section.Heading)
}

func TestParse_ToolsAsYAMLList(t *testing.T) {
	content := `---
name: api-designer
description: Designs REST and gRPC APIs with consistent naming and versioning rules.
tools:
  - Read
  - WebFetch
---

Design APIs contract-first.
`

	doc, err := Parse(context.Background(), "api-designer.md", []byte(content))
	require.NoError(t, err)
	assert.Equal(t, []string{"Read", "WebFetch"}, doc.Tools)

	value, ok := doc.FieldValue("tools")
	require.True(t, ok)
	assert.Equal(t, "Read, WebFetch", value)
}

func TestParse_NoToolDeclaration(t *testing.T) {
	content := `---
name: generalist
description: Handles whatever task arrives without a scoped tool list.
---

Body text.
`

	doc, err := Parse(context.Background(), "generalist.md", []byte(content))
	require.NoError(t, err)
	assert.Empty(t, doc.Tools)
	assert.False(t, doc.HasToolDeclaration())
}

func TestParse_MultilineDescription(t *testing.T) {
	content := `---
name: db-tuner
description: >
  Tunes slow database queries.
  Use when query latency regresses.
---

Body.
`

	doc, err := Parse(context.Background(), "db-tuner.md", []byte(content))
	require.NoError(t, err)
	assert.Equal(t, "Tunes slow database queries. Use when query latency regresses.", doc.Description)
}

func TestParse_MalformedDocument(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "no frontmatter",
			content: "# Just a heading\n\nPlain markdown with no header.\n",
		},
		{
			name:    "unterminated frontmatter",
			content: "---\nname: broken\ndescription: never closes\n",
		},
		{
			name:    "invalid yaml",
			content: "---\nname: [unclosed\n---\n\nBody.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), "broken.md", []byte(tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedDocument))
			assert.Contains(t, err.Error(), "broken.md")
		})
	}
}

func TestParse_MissingRequiredField(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing name",
			content: "---\ndescription: Has a description but no name.\n---\n\nBody.\n",
		},
		{
			name:    "missing description",
			content: "---\nname: nameless\n---\n\nBody.\n",
		},
		{
			name:    "whitespace only description",
			content: "---\nname: blank\ndescription: \"   \"\n---\n\nBody.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), "incomplete.md", []byte(tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingRequiredField))
			assert.False(t, errors.Is(err, ErrMalformedDocument))
		})
	}
}

func TestParse_WhitespaceNormalization(t *testing.T) {
	clean := `---
name: tidy
description: Keeps things tidy regardless of formatting noise.
---

## Workflow

Step one.

Step two.
`
	messy := "---\nname: tidy\ndescription:   Keeps things tidy regardless of formatting noise.   \n---\n\n\n\n## Workflow   \n\n\nStep one.\t\n\n\n\nStep two.\n\n\n"

	cleanDoc, err := Parse(context.Background(), "tidy.md", []byte(clean))
	require.NoError(t, err)
	messyDoc, err := Parse(context.Background(), "tidy.md", []byte(messy))
	require.NoError(t, err)

	assert.Equal(t, cleanDoc.Description, messyDoc.Description)
	assert.Equal(t, cleanDoc.Body, messyDoc.Body)
	assert.Equal(t, cleanDoc.Sections, messyDoc.Sections)
}

func TestParse_HeadingsInsideFencesAreNotSections(t *testing.T) {
	content := `---
name: shell-helper
description: Explains shell one-liners and their flags in plain language.
---

## Usage

` + "```" + `
# this is a comment, not a heading
echo hello
` + "```" + `

## Notes

Plain prose.
`

	doc, err := Parse(context.Background(), "shell-helper.md", []byte(content))
	require.NoError(t, err)

	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "Usage", doc.Sections[0].Heading)
	assert.Equal(t, "Notes", doc.Sections[1].Heading)
	assert.Contains(t, doc.Sections[0].Content, "# this is a comment, not a heading")
}

func TestParse_PreambleBeforeFirstHeading(t *testing.T) {
	content := `---
name: preamble
description: Has prose before the first heading of the body.
---

You are a helpful assistant. This preamble belongs to no section.

## Only Section

Content.
`

	doc, err := Parse(context.Background(), "preamble.md", []byte(content))
	require.NoError(t, err)

	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "Only Section", doc.Sections[0].Heading)
	assert.Contains(t, doc.Body, "This preamble belongs to no section.")
}

func TestHeadingLevel(t *testing.T) {
	tests := []struct {
		line     string
		expected int
	}{
		{"# Title", 1},
		{"## Sub", 2},
		{"###### Deep", 6},
		{"####### TooDeep", 0},
		{"#NoSpace", 0},
		{"plain text", 0},
		{"#", 1},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.expected, headingLevel(tt.line))
		})
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "release-captain.md")
	content := `---
name: release-captain
description: Coordinates release branches, tags, and changelog entries. Use when cutting a release.
tools: Bash, Read
---

## Checklist

Tag, changelog, announce.
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	doc, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path)
	assert.Equal(t, "release-captain", doc.Name)
	require.Len(t, doc.Sections, 1)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.md"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMalformedDocument))
}
