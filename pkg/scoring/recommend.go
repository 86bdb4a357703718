package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jingkaihe/agentscore/pkg/features"
	"github.com/jingkaihe/agentscore/pkg/rubric"
)

// BuildRecommendations derives improvement hints from the rubric clauses a
// document left unfired. One hint per dimension below a perfect score,
// ordered by composite headroom (weight x gap) and capped at the configured
// maximum.
func BuildRecommendations(set features.Set, scores []DimensionScore, cfg *rubric.Config) []Recommendation {
	recommendations := make([]Recommendation, 0, len(scores))
	for _, score := range scores {
		gap := 10 - score.Value
		if gap <= rubric.ClassifyTolerance {
			continue
		}
		hints := hintsFor(score.Dimension, set, cfg)
		if len(hints) == 0 {
			continue
		}
		recommendations = append(recommendations, Recommendation{
			Dimension: score.Dimension,
			Hint:      strings.Join(hints, "; "),
			Gain:      cfg.Weights[score.Dimension] * gap,
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Gain > recommendations[j].Gain
	})
	if cfg.MaxRecommendations > 0 && len(recommendations) > cfg.MaxRecommendations {
		recommendations = recommendations[:cfg.MaxRecommendations]
	}
	return recommendations
}

func hintsFor(dimension string, set features.Set, cfg *rubric.Config) []string {
	var hints []string
	switch dimension {
	case rubric.DimensionCapabilityClarity:
		switch set.Description.Bucket {
		case features.BucketThin:
			hints = append(hints, "expand the description to at least 8 words")
		case features.BucketAdequate:
			hints = append(hints, "grow the description past 25 words for full credit")
		}
		if !set.Description.HasTriggerPhrase {
			hints = append(hints, "state when to invoke the agent (e.g. 'Use when ...')")
		}
		if len(set.Description.StopPhraseHits) > 0 {
			hints = append(hints, fmt.Sprintf("drop filler phrases (%s)", strings.Join(set.Description.StopPhraseHits, ", ")))
		}
	case rubric.DimensionToolAppropriateness:
		if !set.Tools.HasDeclaration {
			hints = append(hints, "declare an explicit tools list instead of inheriting every tool")
		}
		if set.Tools.Excessive {
			hints = append(hints, fmt.Sprintf("trim the tool list to the ceiling of %d or justify each tool in the body", cfg.ToolCeiling))
		}
		for _, flag := range set.Tools.BroadUnjustified {
			hints = append(hints, fmt.Sprintf("swap '%s' for %s or justify it in the body", flag.Tool, flag.Narrow))
		}
	case rubric.DimensionDocumentationQuality:
		if !set.Structural.HasDescription {
			hints = append(hints, "add a description to the frontmatter")
		}
		if !set.Structural.HasToolDeclaration {
			hints = append(hints, "declare the tools the agent needs")
		}
		if set.Structural.SectionCount == 0 {
			hints = append(hints, "organize the body into headed sections")
		}
		if !set.Structural.HasExamplesOrUsageSection {
			hints = append(hints, "add an Examples or Usage section")
		}
	case rubric.DimensionExampleRichness:
		if set.Examples.FencedBlockCount < 3 {
			hints = append(hints, fmt.Sprintf("add fenced code examples (%d present, 3 or more score full points)", set.Examples.FencedBlockCount))
		}
		if set.Examples.LabeledExampleCount < 3 {
			hints = append(hints, "label worked examples ('Example 1:', 'Example 2:')")
		}
	case rubric.DimensionSpecificityDepth:
		if set.Depth.SectionCount < 6 {
			hints = append(hints, "split the body into more focused sections")
		}
		if set.Depth.DistinctTermCount < 10 {
			hints = append(hints, "use more concrete domain vocabulary")
		}
		if !set.Depth.HasQuantifiedClaims {
			hints = append(hints, "quantify claims with numbers, percentages, or named standards")
		}
	}
	return hints
}
