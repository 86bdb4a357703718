// Package features computes the raw signals the dimension scorers consume.
// Each extractor is a pure total function over a loaded document and the
// rubric configuration: missing metadata or an empty body degrades to
// zero-valued signals, never to an error.
package features

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/jingkaihe/agentscore/pkg/rubric"
	"github.com/jingkaihe/agentscore/pkg/spec"
)

// DescriptionBucket classifies description length.
type DescriptionBucket string

const (
	BucketThin     DescriptionBucket = "thin"
	BucketAdequate DescriptionBucket = "adequate"
	BucketRich     DescriptionBucket = "rich"
)

// Structural captures presence/absence of the document's skeleton.
type Structural struct {
	HasDescription            bool `json:"has_description"`
	HasToolDeclaration        bool `json:"has_tool_declaration"`
	SectionCount              int  `json:"section_count"`
	HasExamplesOrUsageSection bool `json:"has_examples_or_usage_section"`
}

// BroadToolFlag records a declared tool that matched a broad pattern without
// the body mentioning it.
type BroadToolFlag struct {
	Tool   string `json:"tool"`
	Narrow string `json:"narrow"`
}

// Tools captures tool-declaration hygiene.
type Tools struct {
	HasDeclaration   bool            `json:"has_declaration"`
	DeclaredCount    int             `json:"declared_count"`
	OverCeiling      int             `json:"over_ceiling"`
	Excessive        bool            `json:"excessive"`
	BroadUnjustified []BroadToolFlag `json:"broad_unjustified,omitempty"`
}

// Description captures description quality signals.
type Description struct {
	WordCount        int               `json:"word_count"`
	Bucket           DescriptionBucket `json:"bucket"`
	HasTriggerPhrase bool              `json:"has_trigger_phrase"`
	StopPhraseHits   []string          `json:"stop_phrase_hits,omitempty"`
}

// Examples captures example density in the body.
type Examples struct {
	FencedBlockCount    int `json:"fenced_block_count"`
	LabeledExampleCount int `json:"labeled_example_count"`
}

// Depth captures specificity signals.
type Depth struct {
	SectionCount        int      `json:"section_count"`
	DistinctTerms       []string `json:"distinct_terms,omitempty"`
	DistinctTermCount   int      `json:"distinct_term_count"`
	HasQuantifiedClaims bool     `json:"has_quantified_claims"`
}

// Set is the combined output of all five extractors for one document.
type Set struct {
	Structural  Structural  `json:"structural"`
	Tools       Tools       `json:"tools"`
	Description Description `json:"description"`
	Examples    Examples    `json:"examples"`
	Depth       Depth       `json:"depth"`
}

// Extract runs every extractor over the document.
func Extract(doc *spec.Document, cfg *rubric.Config) Set {
	return Set{
		Structural:  ExtractStructural(doc),
		Tools:       ExtractTools(doc, cfg),
		Description: ExtractDescription(doc, cfg),
		Examples:    ExtractExamples(doc),
		Depth:       ExtractDepth(doc, cfg),
	}
}

// ExtractStructural reports which skeleton pieces the document has.
func ExtractStructural(doc *spec.Document) Structural {
	s := Structural{
		HasDescription:     strings.TrimSpace(doc.Description) != "",
		HasToolDeclaration: doc.HasToolDeclaration(),
		SectionCount:       len(doc.Sections),
	}

	for _, section := range doc.Sections {
		heading := strings.ToLower(section.Heading)
		if strings.Contains(heading, "example") || strings.Contains(heading, "usage") {
			s.HasExamplesOrUsageSection = true
			break
		}
	}

	return s
}

// ExtractTools inspects the declared tool list. A declaration over the
// ceiling is excessive unless the body mentions every declared tool; a tool
// matching a broad pattern is flagged unless the body mentions it.
func ExtractTools(doc *spec.Document, cfg *rubric.Config) Tools {
	t := Tools{
		HasDeclaration: doc.HasToolDeclaration(),
		DeclaredCount:  len(doc.Tools),
	}
	if !t.HasDeclaration {
		return t
	}

	tokens := tokenSet(doc.Body)

	if t.DeclaredCount > cfg.ToolCeiling {
		t.OverCeiling = t.DeclaredCount - cfg.ToolCeiling
		for _, tool := range doc.Tools {
			if !mentioned(tokens, tool) {
				t.Excessive = true
				break
			}
		}
	}

	for _, tool := range doc.Tools {
		narrow, broad := cfg.BroadToolMatch(tool)
		if broad && !mentioned(tokens, tool) {
			t.BroadUnjustified = append(t.BroadUnjustified, BroadToolFlag{
				Tool:   tool,
				Narrow: narrow,
			})
		}
	}

	return t
}

// ExtractDescription buckets the description length and matches the
// configured trigger and stop phrases.
func ExtractDescription(doc *spec.Document, cfg *rubric.Config) Description {
	wordCount := len(strings.Fields(doc.Description))

	bucket := BucketThin
	switch {
	case wordCount > 25:
		bucket = BucketRich
	case wordCount >= 8:
		bucket = BucketAdequate
	}

	return Description{
		WordCount:        wordCount,
		Bucket:           bucket,
		HasTriggerPhrase: cfg.HasTriggerPhrase(doc.Description),
		StopPhraseHits:   cfg.StopPhraseHits(doc.Description),
	}
}

var exampleLabelRe = regexp.MustCompile(`(?i)^(#{1,6}\s.*\bexamples?\b.*|\*{0,2}examples?\s*\d*\*{0,2}\s*[:.].*)$`)

// ExtractExamples counts fenced blocks and labeled example entries in the
// body. Labels inside fences are code, not examples.
func ExtractExamples(doc *spec.Document) Examples {
	var e Examples
	inFence := false

	for _, line := range strings.Split(doc.Body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if !inFence {
				e.FencedBlockCount++
			}
			inFence = !inFence
			continue
		}
		if !inFence && exampleLabelRe.MatchString(line) {
			e.LabeledExampleCount++
		}
	}

	return e
}

var quantifiedRe = regexp.MustCompile(`(?i)\b\d+(\.\d+)?%?|\b(rfc|iso|ieee)[ -]?\d+\b`)

// ExtractDepth counts body sections, distinct domain terms, and quantified
// claims.
func ExtractDepth(doc *spec.Document, cfg *rubric.Config) Depth {
	d := Depth{
		SectionCount:        len(doc.Sections),
		HasQuantifiedClaims: quantifiedRe.MatchString(doc.Body),
	}

	tokens := tokenSet(doc.Body)
	loweredBody := strings.ToLower(doc.Body)
	seen := map[string]bool{}

	for _, term := range cfg.DomainTerms {
		lowered := strings.ToLower(strings.TrimSpace(term))
		if lowered == "" || seen[lowered] {
			continue
		}

		hit := false
		if strings.ContainsAny(lowered, " \t") {
			hit = strings.Contains(loweredBody, lowered)
		} else {
			hit = tokens[lowered]
		}
		if hit {
			seen[lowered] = true
			d.DistinctTerms = append(d.DistinctTerms, lowered)
		}
	}

	sort.Strings(d.DistinctTerms)
	d.DistinctTermCount = len(d.DistinctTerms)

	return d
}

// tokenSet lowercases the text and splits it into word tokens. Underscores
// and hyphens stay inside tokens so tool names like mcp__github__create_issue
// survive intact.
func tokenSet(text string) map[string]bool {
	tokens := map[string]bool{}
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-'
	})
	for _, field := range fields {
		tokens[field] = true
	}
	return tokens
}

func mentioned(tokens map[string]bool, tool string) bool {
	return tokens[strings.ToLower(tool)]
}
