package scoring

import (
	"fmt"
	"strings"

	"github.com/jingkaihe/agentscore/pkg/features"
	"github.com/jingkaihe/agentscore/pkg/rubric"
)

// ScoreAll runs the five dimension scorers in report order.
func ScoreAll(set features.Set, cfg *rubric.Config) []DimensionScore {
	return []DimensionScore{
		ScoreCapabilityClarity(set.Description, cfg),
		ScoreToolAppropriateness(set.Tools, cfg),
		ScoreDocumentationQuality(set.Structural, cfg),
		ScoreExampleRichness(set.Examples, cfg),
		ScoreSpecificityDepth(set.Depth, cfg),
	}
}

// ScoreCapabilityClarity scores how clearly the description states what the
// agent does and when to invoke it.
func ScoreCapabilityClarity(desc features.Description, cfg *rubric.Config) DimensionScore {
	p := cfg.Points
	score := DimensionScore{Dimension: rubric.DimensionCapabilityClarity}

	var value float64
	switch desc.Bucket {
	case features.BucketRich:
		value = p.DescriptionRich
		score.addRationale("rich description (%s): %g points", plural(desc.WordCount, "word"), p.DescriptionRich)
	case features.BucketAdequate:
		value = p.DescriptionAdequate
		score.addRationale("adequate description (%s): %g points", plural(desc.WordCount, "word"), p.DescriptionAdequate)
	default:
		value = p.DescriptionThin
		score.addRationale("thin description (%s): %g points", plural(desc.WordCount, "word"), p.DescriptionThin)
	}

	if desc.HasTriggerPhrase {
		value += p.TriggerBonus
		score.addRationale("explicit trigger clause: +%g", p.TriggerBonus)
	}
	if len(desc.StopPhraseHits) > 0 {
		penalty := float64(len(desc.StopPhraseHits)) * p.StopPhrasePenalty
		value -= penalty
		score.addRationale("filler phrases (%s): -%g", strings.Join(desc.StopPhraseHits, ", "), penalty)
	}

	score.Value = clamp(value)
	return score
}

// ScoreToolAppropriateness scores whether the declared tool surface is scoped
// to the agent's job.
func ScoreToolAppropriateness(tools features.Tools, cfg *rubric.Config) DimensionScore {
	p := cfg.Points
	score := DimensionScore{Dimension: rubric.DimensionToolAppropriateness}

	if !tools.HasDeclaration {
		score.Value = clamp(p.ToolsUndeclared)
		score.addRationale("no tool declaration, agent inherits every tool: %g points", p.ToolsUndeclared)
		return score
	}

	value := p.ToolsScoped
	score.addRationale("scoped declaration (%s): %g points", plural(tools.DeclaredCount, "tool"), p.ToolsScoped)

	if tools.Excessive {
		penalty := float64(tools.OverCeiling) * p.ToolOverPenalty
		value -= penalty
		if value < p.ToolOverFloor {
			value = p.ToolOverFloor
		}
		score.addRationale("%s over the ceiling of %d without body justification: -%g (floor %g)",
			plural(tools.OverCeiling, "tool"), cfg.ToolCeiling, penalty, p.ToolOverFloor)
	}
	for _, flag := range tools.BroadUnjustified {
		value -= p.BroadToolPenalty
		score.addRationale("broad tool '%s' not justified in the body (prefer %s): -%g", flag.Tool, flag.Narrow, p.BroadToolPenalty)
	}

	score.Value = clamp(value)
	return score
}

// ScoreDocumentationQuality scores the structural completeness of the
// document: metadata present and a body organized into sections.
func ScoreDocumentationQuality(structural features.Structural, cfg *rubric.Config) DimensionScore {
	p := cfg.Points
	score := DimensionScore{Dimension: rubric.DimensionDocumentationQuality}

	var value float64
	if structural.HasDescription {
		value += p.StructureDescription
		score.addRationale("description present: +%g", p.StructureDescription)
	}
	if structural.HasToolDeclaration {
		value += p.StructureTools
		score.addRationale("tool declaration present: +%g", p.StructureTools)
	}
	if structural.SectionCount >= 1 {
		value += p.StructureSections
		score.addRationale("%s: +%g", plural(structural.SectionCount, "body section"), p.StructureSections)
	}
	if structural.HasExamplesOrUsageSection {
		value += p.StructureExamples
		score.addRationale("examples or usage section present: +%g", p.StructureExamples)
	}
	if len(score.Rationale) == 0 {
		score.addRationale("no description, tool declaration, or body structure")
	}

	score.Value = clamp(value)
	return score
}

// ScoreExampleRichness scores the worked examples in the body. A document
// with neither fenced blocks nor labeled examples is floored at zero.
func ScoreExampleRichness(examples features.Examples, cfg *rubric.Config) DimensionScore {
	p := cfg.Points
	score := DimensionScore{Dimension: rubric.DimensionExampleRichness}

	if examples.FencedBlockCount == 0 && examples.LabeledExampleCount == 0 {
		score.addRationale("no example blocks or labeled examples: 0 points")
		return score
	}

	var value float64
	switch {
	case examples.FencedBlockCount >= 3:
		value = p.ExamplesManyBlocks
		score.addRationale("%s: %g points", plural(examples.FencedBlockCount, "fenced code block"), p.ExamplesManyBlocks)
	case examples.FencedBlockCount == 2:
		value = p.ExamplesTwoBlocks
		score.addRationale("2 fenced code blocks: %g points", p.ExamplesTwoBlocks)
	case examples.FencedBlockCount == 1:
		value = p.ExamplesOneBlock
		score.addRationale("1 fenced code block: %g points", p.ExamplesOneBlock)
	default:
		score.addRationale("no fenced code blocks: 0 points")
	}

	switch {
	case examples.LabeledExampleCount >= 3:
		value += p.LabeledManyBonus
		score.addRationale("%s: +%g", plural(examples.LabeledExampleCount, "labeled example"), p.LabeledManyBonus)
	case examples.LabeledExampleCount >= 1:
		value += p.LabeledFewBonus
		score.addRationale("%s: +%g", plural(examples.LabeledExampleCount, "labeled example"), p.LabeledFewBonus)
	}

	score.Value = clamp(value)
	return score
}

// ScoreSpecificityDepth scores how concrete the body is: section structure,
// domain vocabulary, and quantified claims.
func ScoreSpecificityDepth(depth features.Depth, cfg *rubric.Config) DimensionScore {
	p := cfg.Points
	score := DimensionScore{Dimension: rubric.DimensionSpecificityDepth}

	var value float64
	switch {
	case depth.SectionCount >= 6:
		value += p.DepthManySections
		score.addRationale("%s: +%g", plural(depth.SectionCount, "body section"), p.DepthManySections)
	case depth.SectionCount >= 3:
		value += p.DepthMidSections
		score.addRationale("%s: +%g", plural(depth.SectionCount, "body section"), p.DepthMidSections)
	case depth.SectionCount >= 1:
		value += p.DepthFewSections
		score.addRationale("%s: +%g", plural(depth.SectionCount, "body section"), p.DepthFewSections)
	}

	if depth.DistinctTermCount > 0 {
		var pts float64
		switch {
		case depth.DistinctTermCount >= 10:
			pts = p.DepthManyTerms
		case depth.DistinctTermCount >= 5:
			pts = p.DepthMoreTerms
		case depth.DistinctTermCount >= 3:
			pts = p.DepthMidTerms
		default:
			pts = p.DepthFewTerms
		}
		value += pts
		score.addRationale("%s (%s): +%g", plural(depth.DistinctTermCount, "distinct domain term"), termList(depth.DistinctTerms), pts)
	}

	if depth.HasQuantifiedClaims {
		value += p.QuantifiedBonus
		score.addRationale("quantified claims present: +%g", p.QuantifiedBonus)
	}

	if len(score.Rationale) == 0 {
		score.addRationale("no sections, domain terms, or quantified claims")
	}

	score.Value = clamp(value)
	return score
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func termList(terms []string) string {
	const shown = 6
	if len(terms) <= shown {
		return strings.Join(terms, ", ")
	}
	return strings.Join(terms[:shown], ", ") + ", ..."
}
