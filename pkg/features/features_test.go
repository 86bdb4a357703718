package features

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/agentscore/pkg/rubric"
	"github.com/jingkaihe/agentscore/pkg/spec"
)

func testConfig(t *testing.T) *rubric.Config {
	t.Helper()
	cfg := rubric.DefaultConfig()
	require.NoError(t, cfg.Validate())
	return &cfg
}

func docWithBody(body string, sections ...spec.Section) *spec.Document {
	return &spec.Document{
		Path:        "fixture.md",
		Name:        "fixture",
		Description: "Fixture agent for extractor tests.",
		Body:        body,
		Sections:    sections,
	}
}

func TestExtractStructural(t *testing.T) {
	t.Run("bare document", func(t *testing.T) {
		doc := &spec.Document{Name: "bare", Description: "Something."}
		s := ExtractStructural(doc)

		assert.True(t, s.HasDescription)
		assert.False(t, s.HasToolDeclaration)
		assert.Equal(t, 0, s.SectionCount)
		assert.False(t, s.HasExamplesOrUsageSection)
	})

	t.Run("full skeleton", func(t *testing.T) {
		doc := &spec.Document{
			Name:        "full",
			Description: "Does things.",
			Tools:       []string{"Read"},
			Fields:      []spec.Field{{Key: "tools", Value: "Read"}},
			Sections: []spec.Section{
				{Heading: "Approach", Level: 2},
				{Heading: "Usage Examples", Level: 2},
			},
		}
		s := ExtractStructural(doc)

		assert.True(t, s.HasToolDeclaration)
		assert.Equal(t, 2, s.SectionCount)
		assert.True(t, s.HasExamplesOrUsageSection)
	})

	t.Run("usage heading counts", func(t *testing.T) {
		doc := docWithBody("", spec.Section{Heading: "Usage", Level: 2})
		assert.True(t, ExtractStructural(doc).HasExamplesOrUsageSection)
	})
}

func TestExtractTools(t *testing.T) {
	cfg := testConfig(t)

	t.Run("no declaration", func(t *testing.T) {
		doc := docWithBody("Body.")
		tools := ExtractTools(doc, cfg)

		assert.False(t, tools.HasDeclaration)
		assert.Equal(t, 0, tools.DeclaredCount)
		assert.False(t, tools.Excessive)
	})

	t.Run("within ceiling", func(t *testing.T) {
		doc := docWithBody("Body.")
		doc.Fields = []spec.Field{{Key: "tools", Value: "Read, Grep"}}
		doc.Tools = []string{"Read", "Grep"}

		tools := ExtractTools(doc, cfg)
		assert.True(t, tools.HasDeclaration)
		assert.Equal(t, 2, tools.DeclaredCount)
		assert.Equal(t, 0, tools.OverCeiling)
		assert.False(t, tools.Excessive)
	})

	t.Run("over ceiling without justification", func(t *testing.T) {
		declared := []string{"Read", "Grep", "Glob", "Edit", "MultiEdit", "WebFetch", "Task", "NotebookEdit", "TodoWrite"}
		doc := docWithBody("The body never names its toolkit.")
		doc.Fields = []spec.Field{{Key: "tools", Value: strings.Join(declared, ", ")}}
		doc.Tools = declared

		tools := ExtractTools(doc, cfg)
		assert.Equal(t, 9, tools.DeclaredCount)
		assert.Equal(t, 1, tools.OverCeiling)
		assert.True(t, tools.Excessive)
	})

	t.Run("over ceiling justified by body", func(t *testing.T) {
		declared := []string{"Read", "Grep", "Glob", "Edit", "MultiEdit", "WebFetch", "Task", "NotebookEdit", "TodoWrite"}
		body := "Use Read and Grep to find code, Glob for files, Edit and MultiEdit to change it, " +
			"WebFetch for docs, Task for subagents, NotebookEdit for notebooks, TodoWrite for planning."
		doc := docWithBody(body)
		doc.Fields = []spec.Field{{Key: "tools", Value: strings.Join(declared, ", ")}}
		doc.Tools = declared

		tools := ExtractTools(doc, cfg)
		assert.Equal(t, 1, tools.OverCeiling)
		assert.False(t, tools.Excessive)
	})

	t.Run("broad tool unjustified", func(t *testing.T) {
		doc := docWithBody("Reviews code carefully.")
		doc.Fields = []spec.Field{{Key: "tools", Value: "Read, Bash"}}
		doc.Tools = []string{"Read", "Bash"}

		tools := ExtractTools(doc, cfg)
		require.Len(t, tools.BroadUnjustified, 1)
		assert.Equal(t, "Bash", tools.BroadUnjustified[0].Tool)
		assert.Equal(t, "Read, Grep, Glob", tools.BroadUnjustified[0].Narrow)
	})

	t.Run("broad tool mentioned in body", func(t *testing.T) {
		doc := docWithBody("Run the test suite with Bash before approving.")
		doc.Fields = []spec.Field{{Key: "tools", Value: "Read, Bash"}}
		doc.Tools = []string{"Read", "Bash"}

		tools := ExtractTools(doc, cfg)
		assert.Empty(t, tools.BroadUnjustified)
	})

	t.Run("broad pattern matches mcp tools", func(t *testing.T) {
		doc := docWithBody("Files issues upstream.")
		doc.Fields = []spec.Field{{Key: "tools", Value: "mcp__github__create_issue"}}
		doc.Tools = []string{"mcp__github__create_issue"}

		tools := ExtractTools(doc, cfg)
		require.Len(t, tools.BroadUnjustified, 1)
		assert.Equal(t, "specific MCP tools", tools.BroadUnjustified[0].Narrow)
	})

	t.Run("substring of a body word is not a mention", func(t *testing.T) {
		doc := docWithBody("The work is already done elsewhere.")
		doc.Fields = []spec.Field{{Key: "tools", Value: "Bash, Read"}}
		doc.Tools = []string{"Bash", "Read"}

		// "already" contains "read" but is not a mention of the Read tool
		tools := ExtractTools(doc, cfg)
		require.Len(t, tools.BroadUnjustified, 1)
		assert.Equal(t, "Bash", tools.BroadUnjustified[0].Tool)
	})
}

func TestExtractDescription(t *testing.T) {
	cfg := testConfig(t)

	words := func(n int) string {
		return strings.TrimSpace(strings.Repeat("word ", n))
	}

	t.Run("buckets", func(t *testing.T) {
		tests := []struct {
			wordCount int
			bucket    DescriptionBucket
		}{
			{0, BucketThin},
			{7, BucketThin},
			{8, BucketAdequate},
			{25, BucketAdequate},
			{26, BucketRich},
		}

		for _, tt := range tests {
			doc := &spec.Document{Name: "d", Description: words(tt.wordCount)}
			d := ExtractDescription(doc, cfg)
			assert.Equal(t, tt.wordCount, d.WordCount)
			assert.Equal(t, tt.bucket, d.Bucket, "word count %d", tt.wordCount)
		}
	})

	t.Run("trigger phrase", func(t *testing.T) {
		doc := &spec.Document{Name: "d", Description: "Reviews schema changes. Use when migrations touch production tables."}
		d := ExtractDescription(doc, cfg)
		assert.True(t, d.HasTriggerPhrase)
	})

	t.Run("stop phrases", func(t *testing.T) {
		doc := &spec.Document{Name: "d", Description: "A world-class, state-of-the-art bug fixer."}
		d := ExtractDescription(doc, cfg)
		assert.Equal(t, []string{"world-class", "state-of-the-art"}, d.StopPhraseHits)
	})
}

func TestExtractExamples(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		e := ExtractExamples(docWithBody(""))
		assert.Equal(t, 0, e.FencedBlockCount)
		assert.Equal(t, 0, e.LabeledExampleCount)
	})

	t.Run("fenced blocks", func(t *testing.T) {
		body := "```go\nfmt.Println()\n```\n\nprose\n\n```bash\nls\n```"
		e := ExtractExamples(docWithBody(body))
		assert.Equal(t, 2, e.FencedBlockCount)
	})

	t.Run("labeled entries", func(t *testing.T) {
		body := "## Examples\n\nExample 1: rename a symbol\n\nExample 2: extract a function"
		e := ExtractExamples(docWithBody(body))
		assert.Equal(t, 3, e.LabeledExampleCount)
	})

	t.Run("labels inside fences are ignored", func(t *testing.T) {
		body := "```\nExample 1: this is code\n```"
		e := ExtractExamples(docWithBody(body))
		assert.Equal(t, 1, e.FencedBlockCount)
		assert.Equal(t, 0, e.LabeledExampleCount)
	})

	t.Run("monotone in block count", func(t *testing.T) {
		previous := -1
		for blocks := 0; blocks <= 4; blocks++ {
			body := strings.Repeat("```\ncode\n```\n", blocks)
			e := ExtractExamples(docWithBody(body))
			assert.Greater(t, e.FencedBlockCount, previous)
			previous = e.FencedBlockCount
		}
	})
}

func TestExtractDepth(t *testing.T) {
	cfg := testConfig(t)

	t.Run("empty body", func(t *testing.T) {
		d := ExtractDepth(docWithBody(""), cfg)
		assert.Equal(t, 0, d.SectionCount)
		assert.Equal(t, 0, d.DistinctTermCount)
		assert.False(t, d.HasQuantifiedClaims)
	})

	t.Run("distinct terms are case-insensitive and deduplicated", func(t *testing.T) {
		body := "Tune the DATABASE. The database schema and the Schema index matter."
		d := ExtractDepth(docWithBody(body), cfg)
		assert.Equal(t, []string{"database", "index", "schema"}, d.DistinctTerms)
		assert.Equal(t, 3, d.DistinctTermCount)
	})

	t.Run("terms match whole tokens only", func(t *testing.T) {
		custom := rubric.DefaultConfig()
		custom.DomainTerms = []string{"read"}
		require.NoError(t, custom.Validate())

		d := ExtractDepth(docWithBody("The work is already finished."), &custom)
		assert.Equal(t, 0, d.DistinctTermCount)
	})

	t.Run("quantified claims", func(t *testing.T) {
		d := ExtractDepth(docWithBody("Cuts p99 latency by 30% under load."), cfg)
		assert.True(t, d.HasQuantifiedClaims)

		d = ExtractDepth(docWithBody("Makes things faster somehow."), cfg)
		assert.False(t, d.HasQuantifiedClaims)
	})

	t.Run("named standards count as quantified", func(t *testing.T) {
		d := ExtractDepth(docWithBody("Follows RFC 7231 semantics."), cfg)
		assert.True(t, d.HasQuantifiedClaims)
	})

	t.Run("sections counted", func(t *testing.T) {
		d := ExtractDepth(docWithBody("text",
			spec.Section{Heading: "A", Level: 2},
			spec.Section{Heading: "B", Level: 2},
		), cfg)
		assert.Equal(t, 2, d.SectionCount)
	})
}

func TestExtract_CombinesAllFragments(t *testing.T) {
	cfg := testConfig(t)

	doc := &spec.Document{
		Name:        "sql-tuner",
		Description: "Tunes slow SQL queries and indexes. Use when query latency regresses in production.",
		Tools:       []string{"Read", "Grep"},
		Fields:      []spec.Field{{Key: "tools", Value: "Read, Grep"}},
		Body:        "## Approach\nCheck the query plan first. Target a 50% latency cut.\n\n## Examples\n```sql\nEXPLAIN ANALYZE SELECT 1;\n```",
		Sections: []spec.Section{
			{Heading: "Approach", Level: 2},
			{Heading: "Examples", Level: 2},
		},
	}

	set := Extract(doc, cfg)

	assert.True(t, set.Structural.HasToolDeclaration)
	assert.True(t, set.Structural.HasExamplesOrUsageSection)
	assert.Equal(t, 2, set.Tools.DeclaredCount)
	assert.Equal(t, BucketAdequate, set.Description.Bucket)
	assert.True(t, set.Description.HasTriggerPhrase)
	assert.Equal(t, 1, set.Examples.FencedBlockCount)
	assert.True(t, set.Depth.HasQuantifiedClaims)
	assert.Contains(t, set.Depth.DistinctTerms, "query")
}
