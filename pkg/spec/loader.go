package spec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v2"

	"github.com/jingkaihe/agentscore/pkg/logger"
)

var (
	// ErrMalformedDocument indicates the artifact has no parseable frontmatter header.
	ErrMalformedDocument = errors.New("malformed document")
	// ErrMissingRequiredField indicates a required frontmatter field is absent or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)

// Load reads and parses a specification document from disk.
func Load(ctx context.Context, path string) (*Document, error) {
	logger.G(ctx).WithField("path", path).Debug("Loading specification document")

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read document '%s'", path)
	}

	return Parse(ctx, path, content)
}

// Parse builds a Document from raw artifact content. The path is recorded as
// the document identity and used in error messages.
func Parse(ctx context.Context, path string, content []byte) (*Document, error) {
	text := string(content)

	if err := checkFrontmatterFences(text); err != nil {
		return nil, errors.Wrapf(err, "document '%s'", path)
	}

	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrapf(err, "failed to parse markdown in '%s'", path)
	}

	items, err := meta.TryGetItems(pctx)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedDocument, "invalid frontmatter YAML in '%s': %v", path, err)
	}
	if items == nil {
		return nil, errors.Wrapf(ErrMalformedDocument, "no frontmatter header in '%s'", path)
	}

	metaData := meta.Get(pctx)

	doc := &Document{
		Path:   path,
		Fields: fieldsFromItems(items),
	}

	if name, ok := metaData["name"].(string); ok {
		doc.Name = strings.TrimSpace(name)
	}
	if description, ok := metaData["description"].(string); ok {
		doc.Description = normalizeInline(description)
	}
	if doc.Name == "" {
		return nil, errors.Wrapf(ErrMissingRequiredField, "document '%s' has no name", path)
	}
	if doc.Description == "" {
		return nil, errors.Wrapf(ErrMissingRequiredField, "document '%s' has no description", path)
	}

	if tools := metaData["tools"]; tools != nil {
		doc.Tools = parseStringArrayField(tools)
	}

	doc.Body = normalizeBody(extractBody(text))
	doc.Sections = splitSections(doc.Body)

	logger.G(ctx).WithFields(map[string]interface{}{
		"name":     doc.Name,
		"sections": len(doc.Sections),
		"fields":   len(doc.Fields),
	}).Debug("Parsed specification document")

	return doc, nil
}

// checkFrontmatterFences verifies the artifact opens with a frontmatter fence
// and closes it before EOF.
func checkFrontmatterFences(content string) error {
	if !strings.HasPrefix(content, "---") {
		return errors.Wrap(ErrMalformedDocument, "no frontmatter header")
	}

	lines := strings.Split(content, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return nil
		}
	}

	return errors.Wrap(ErrMalformedDocument, "unterminated frontmatter header")
}

// extractBody returns the markdown body after the YAML frontmatter block.
func extractBody(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	frontmatterEnd := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == -1 {
		return content
	}

	return strings.Join(lines[frontmatterEnd+1:], "\n")
}

// normalizeBody trims trailing whitespace per line, collapses runs of blank
// lines, and drops leading and trailing blank lines. Whitespace-only edits to
// an artifact therefore never change what the analyzers see.
func normalizeBody(body string) string {
	lines := strings.Split(body, "\n")
	normalized := make([]string, 0, len(lines))
	blank := false

	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			blank = true
			continue
		}
		if blank && len(normalized) > 0 {
			normalized = append(normalized, "")
		}
		blank = false
		normalized = append(normalized, line)
	}

	return strings.Join(normalized, "\n")
}

// normalizeInline collapses whitespace runs in a metadata value to single spaces.
func normalizeInline(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// splitSections splits a normalized body into headed sections. Headings inside
// fenced code blocks are body text, not section boundaries. Prose before the
// first heading belongs to no section.
func splitSections(body string) []Section {
	if body == "" {
		return nil
	}

	var sections []Section
	var current *Section
	inFence := false

	flush := func() {
		if current != nil {
			current.Content = strings.TrimRight(current.Content, "\n")
			sections = append(sections, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}

		if !inFence {
			if level := headingLevel(line); level > 0 {
				flush()
				current = &Section{
					Heading: strings.TrimSpace(line[level:]),
					Level:   level,
				}
				continue
			}
		}

		if current != nil {
			current.Content += line + "\n"
		}
	}
	flush()

	return sections
}

// headingLevel returns the ATX heading level of a line, or 0 if the line is
// not a heading.
func headingLevel(line string) int {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0
	}
	if level == len(line) {
		return level
	}
	if line[level] != ' ' && line[level] != '\t' {
		return 0
	}
	return level
}

// parseStringArrayField handles both []interface{} (YAML list) and string
// (comma-separated) formats for the tools declaration.
func parseStringArrayField(field interface{}) []string {
	switch v := field.(type) {
	case []interface{}:
		result := []string{}
		for _, item := range v {
			if str, ok := item.(string); ok {
				if trimmed := strings.TrimSpace(str); trimmed != "" {
					result = append(result, trimmed)
				}
			}
		}
		return result
	case string:
		result := []string{}
		for _, item := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	default:
		return []string{}
	}
}

// fieldsFromItems converts ordered frontmatter items into Fields, rendering
// non-scalar values into a stable string form.
func fieldsFromItems(items yaml.MapSlice) []Field {
	fields := make([]Field, 0, len(items))
	for _, item := range items {
		fields = append(fields, Field{
			Key:   fmt.Sprintf("%v", item.Key),
			Value: valueToString(item.Value),
		})
	}
	return fields
}

func valueToString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, valueToString(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}
