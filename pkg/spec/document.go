// Package spec loads agent specification documents: markdown artifacts with a
// YAML frontmatter header followed by a body of headed sections. Loading
// normalizes whitespace and splits the body so that downstream analyzers see
// identical input for semantically identical documents.
package spec

import "strings"

// Field is a single frontmatter entry. Fields preserve the declaration order
// of the header, including keys the engine does not interpret.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Section is a headed slice of the document body. Content holds the raw text
// between this heading and the next one, fences included.
type Section struct {
	Heading string `json:"heading"`
	Level   int    `json:"level"`
	Content string `json:"content"`
}

// Document is the normalized in-memory representation of one specification
// artifact. It is constructed once by the loader and never mutated.
type Document struct {
	Path        string    `json:"path"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Tools       []string  `json:"tools,omitempty"`
	Fields      []Field   `json:"fields"`
	Sections    []Section `json:"sections"`
	Body        string    `json:"body"`
}

// FieldValue returns the value of the named frontmatter field and whether the
// field was declared.
func (d *Document) FieldValue(key string) (string, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// HasToolDeclaration reports whether the document declares a tools field,
// even an empty one. Documents without a declaration inherit every tool from
// the host, which the scorers treat differently from a scoped list.
func (d *Document) HasToolDeclaration() bool {
	_, ok := d.FieldValue("tools")
	return ok
}

// SectionByHeading returns the first section whose heading matches,
// case-insensitively.
func (d *Document) SectionByHeading(heading string) (Section, bool) {
	for _, s := range d.Sections {
		if strings.EqualFold(s.Heading, heading) {
			return s, true
		}
	}
	return Section{}, false
}
