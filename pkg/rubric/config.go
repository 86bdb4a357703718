// Package rubric holds the validated scoring configuration: dimension
// weights, tier thresholds, the tool ceiling, and the phrase and term lists
// the extractors match against. Configuration is loaded once per run and is
// read-only afterwards, so concurrent batch evaluation needs no locking.
package rubric

import (
	"math"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ErrInvalidConfiguration indicates the rubric configuration cannot be used
// for scoring. It is fatal for the whole run and surfaced before any document
// is evaluated.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Canonical dimension identifiers, in report order.
const (
	DimensionCapabilityClarity    = "capability_clarity"
	DimensionToolAppropriateness  = "tool_appropriateness"
	DimensionDocumentationQuality = "documentation_quality"
	DimensionExampleRichness      = "example_richness"
	DimensionSpecificityDepth     = "specificity_depth"
)

// DimensionNames lists the five quality dimensions in report order.
var DimensionNames = []string{
	DimensionCapabilityClarity,
	DimensionToolAppropriateness,
	DimensionDocumentationQuality,
	DimensionExampleRichness,
	DimensionSpecificityDepth,
}

var displayNames = map[string]string{
	DimensionCapabilityClarity:    "Capability Clarity",
	DimensionToolAppropriateness:  "Tool Appropriateness",
	DimensionDocumentationQuality: "Documentation Quality",
	DimensionExampleRichness:      "Example Richness",
	DimensionSpecificityDepth:     "Specificity/Depth",
}

// DisplayName returns the human-readable name of a dimension identifier.
func DisplayName(dimension string) string {
	if name, ok := displayNames[dimension]; ok {
		return name
	}
	return dimension
}

const weightSumTolerance = 1e-6

// Config is the full rubric configuration. Magnitudes are defaults, not
// constants: every bucket boundary and bonus here can be overridden from the
// config file or a profile.
type Config struct {
	// Weights maps dimension identifiers to composite weights. Must cover
	// exactly the five dimensions and sum to 1.0.
	Weights map[string]float64 `mapstructure:"weights" yaml:"weights" json:"weights"`
	// Tiers maps tier names to composite pass thresholds.
	Tiers map[string]float64 `mapstructure:"tiers" yaml:"tiers" json:"tiers"`
	// WarnMargin is how far below the threshold a composite may fall and
	// still classify as warn rather than fail.
	WarnMargin float64 `mapstructure:"warn_margin" yaml:"warn_margin" json:"warn_margin"`
	// ToolCeiling is the declared-tool count above which a declaration is
	// flagged excessive unless the body justifies it.
	ToolCeiling int `mapstructure:"tool_ceiling" yaml:"tool_ceiling" json:"tool_ceiling"`
	// StopPhrases are filler phrases that penalize the description.
	StopPhrases []string `mapstructure:"stop_phrases" yaml:"stop_phrases" json:"stop_phrases"`
	// TriggerPhrases mark an explicit when-to-invoke clause in the description.
	TriggerPhrases []string `mapstructure:"trigger_phrases" yaml:"trigger_phrases" json:"trigger_phrases"`
	// DomainTerms is the concrete-term list used by the depth extractor.
	DomainTerms []string `mapstructure:"domain_terms" yaml:"domain_terms" json:"domain_terms"`
	// BroadTools maps glob patterns of broad/unscoped tools to the narrower
	// alternative the recommendation should suggest.
	BroadTools map[string]string `mapstructure:"broad_tools" yaml:"broad_tools" json:"broad_tools"`
	// MaxRecommendations caps the improvement hints per report.
	MaxRecommendations int `mapstructure:"max_recommendations" yaml:"max_recommendations" json:"max_recommendations"`
	// Points holds the per-clause rubric magnitudes.
	Points Points `mapstructure:"points" yaml:"points" json:"points"`
	// Profiles are named overlays selected with the profile setting.
	Profiles map[string]ProfileConfig `mapstructure:"profiles" yaml:"profiles,omitempty" json:"-"`

	broadGlobs []broadTool
}

// ProfileConfig is a named overlay applied on top of the base configuration.
// The omitempty tags keep unset profile fields from zeroing the base when the
// overlay is decoded.
type ProfileConfig struct {
	Weights            map[string]float64 `mapstructure:"weights,omitempty" yaml:"weights,omitempty"`
	Tiers              map[string]float64 `mapstructure:"tiers,omitempty" yaml:"tiers,omitempty"`
	WarnMargin         float64            `mapstructure:"warn_margin,omitempty" yaml:"warn_margin,omitempty"`
	ToolCeiling        int                `mapstructure:"tool_ceiling,omitempty" yaml:"tool_ceiling,omitempty"`
	StopPhrases        []string           `mapstructure:"stop_phrases,omitempty" yaml:"stop_phrases,omitempty"`
	TriggerPhrases     []string           `mapstructure:"trigger_phrases,omitempty" yaml:"trigger_phrases,omitempty"`
	DomainTerms        []string           `mapstructure:"domain_terms,omitempty" yaml:"domain_terms,omitempty"`
	BroadTools         map[string]string  `mapstructure:"broad_tools,omitempty" yaml:"broad_tools,omitempty"`
	MaxRecommendations int                `mapstructure:"max_recommendations,omitempty" yaml:"max_recommendations,omitempty"`
	Points             map[string]float64 `mapstructure:"points,omitempty" yaml:"points,omitempty"`
}

type broadTool struct {
	pattern string
	narrow  string
	matcher glob.Glob
}

// DefaultConfig returns the documented default rubric.
func DefaultConfig() Config {
	return Config{
		Weights: map[string]float64{
			DimensionCapabilityClarity:    0.2,
			DimensionToolAppropriateness:  0.2,
			DimensionDocumentationQuality: 0.2,
			DimensionExampleRichness:      0.2,
			DimensionSpecificityDepth:     0.2,
		},
		Tiers: map[string]float64{
			"expert":     8.5,
			"foundation": 8.0,
			"specialist": 7.5,
		},
		WarnMargin:  0.5,
		ToolCeiling: 8,
		StopPhrases: []string{
			"world-class",
			"state-of-the-art",
			"cutting-edge",
			"best-in-class",
			"revolutionary",
			"synergy",
		},
		TriggerPhrases: []string{
			"use when",
			"use this when",
			"use this agent",
			"when to use",
			"use proactively",
			"invoke when",
		},
		DomainTerms: []string{
			"api", "authentication", "benchmark", "cache", "concurrency",
			"database", "deployment", "docker", "encryption", "index",
			"kubernetes", "latency", "migration", "observability", "pipeline",
			"profiling", "protocol", "query", "regression", "schema",
			"terraform", "throughput",
		},
		BroadTools: map[string]string{
			"Bash":      "Read, Grep, Glob",
			"Write":     "Edit",
			"WebSearch": "WebFetch",
			"mcp__*":    "specific MCP tools",
		},
		MaxRecommendations: 5,
		Points:             DefaultPoints(),
	}
}

// LoadConfig builds the rubric from viper on top of the defaults, applies the
// selected profile, and validates the result.
func LoadConfig() (Config, error) {
	config := DefaultConfig()

	if err := viper.Unmarshal(&config); err != nil {
		return config, errors.Wrap(err, "failed to unmarshal configuration")
	}

	if config.Profiles != nil {
		delete(config.Profiles, "default")
	}

	profileName := getActiveProfile()
	if profileName != "" {
		profile, exists := config.Profiles[profileName]
		if !exists {
			return config, errors.Wrapf(ErrInvalidConfiguration, "profile '%s' not found", profileName)
		}
		if err := applyProfile(&config, profile); err != nil {
			return config, err
		}
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

func getActiveProfile() string {
	profile := viper.GetString("profile")
	if profile == "default" {
		return ""
	}
	return profile
}

func applyProfile(config *Config, profile ProfileConfig) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           config,
		WeaklyTypedInput: true,
		ZeroFields:       false, // Don't overwrite with zero values
	})
	if err != nil {
		return errors.Wrap(err, "failed to create profile decoder")
	}

	if err := decoder.Decode(profile); err != nil {
		return errors.Wrap(err, "failed to apply profile configuration")
	}

	return nil
}

// Validate checks the configuration and compiles the broad-tool patterns.
// Any failure wraps ErrInvalidConfiguration.
func (c *Config) Validate() error {
	sum := 0.0
	for name, weight := range c.Weights {
		if _, known := displayNames[name]; !known {
			return errors.Wrapf(ErrInvalidConfiguration, "unknown dimension '%s' in weights", name)
		}
		if weight < 0 {
			return errors.Wrapf(ErrInvalidConfiguration, "negative weight %.3f for dimension '%s'", weight, name)
		}
		sum += weight
	}
	for _, name := range DimensionNames {
		if _, ok := c.Weights[name]; !ok {
			return errors.Wrapf(ErrInvalidConfiguration, "missing weight for dimension '%s'", name)
		}
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return errors.Wrapf(ErrInvalidConfiguration, "weights sum to %.3f, want 1.0", sum)
	}

	if c.ToolCeiling < 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "negative tool ceiling %d", c.ToolCeiling)
	}
	if c.WarnMargin < 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "negative warn margin %.3f", c.WarnMargin)
	}
	if c.MaxRecommendations < 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "negative max recommendations %d", c.MaxRecommendations)
	}

	for name, threshold := range c.Tiers {
		if threshold < 0 || threshold > 10 {
			return errors.Wrapf(ErrInvalidConfiguration, "tier '%s' threshold %.2f outside [0,10]", name, threshold)
		}
	}

	c.broadGlobs = make([]broadTool, 0, len(c.BroadTools))
	patterns := make([]string, 0, len(c.BroadTools))
	for pattern := range c.BroadTools {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)
	for _, pattern := range patterns {
		matcher, err := glob.Compile(pattern)
		if err != nil {
			return errors.Wrapf(ErrInvalidConfiguration, "broad tool pattern '%s' does not compile: %v", pattern, err)
		}
		c.broadGlobs = append(c.broadGlobs, broadTool{
			pattern: pattern,
			narrow:  c.BroadTools[pattern],
			matcher: matcher,
		})
	}

	return nil
}

// ThresholdForTier resolves a tier name to its composite threshold.
func (c *Config) ThresholdForTier(tier string) (float64, error) {
	threshold, ok := c.Tiers[strings.ToLower(strings.TrimSpace(tier))]
	if !ok {
		names := make([]string, 0, len(c.Tiers))
		for name := range c.Tiers {
			names = append(names, name)
		}
		sort.Strings(names)
		return 0, errors.Wrapf(ErrInvalidConfiguration, "unknown tier '%s', known tiers: %s", tier, strings.Join(names, ", "))
	}
	return threshold, nil
}

// TierFor labels a composite with the highest tier it clears, or an empty
// string if it clears none.
func (c *Config) TierFor(composite float64) string {
	best := ""
	bestThreshold := math.Inf(-1)
	for name, threshold := range c.Tiers {
		if composite+ClassifyTolerance < threshold {
			continue
		}
		if threshold > bestThreshold || (threshold == bestThreshold && (best == "" || name < best)) {
			best = name
			bestThreshold = threshold
		}
	}
	return best
}

// ClassifyTolerance guards float comparison at tier and threshold boundaries
// so a composite exactly on a boundary clears it.
const ClassifyTolerance = 1e-9

// BroadToolMatch returns the narrower alternative for a declared tool that
// matches a broad pattern, and whether it matched.
func (c *Config) BroadToolMatch(tool string) (string, bool) {
	for _, b := range c.broadGlobs {
		if b.matcher.Match(tool) {
			return b.narrow, true
		}
	}
	return "", false
}

// StopPhraseHits reports which configured stop phrases appear in the text,
// case-insensitively, in configuration order.
func (c *Config) StopPhraseHits(text string) []string {
	lowered := strings.ToLower(text)
	var hits []string
	for _, phrase := range c.StopPhrases {
		if strings.Contains(lowered, strings.ToLower(phrase)) {
			hits = append(hits, phrase)
		}
	}
	return hits
}

// HasTriggerPhrase reports whether the text contains any configured trigger
// phrase, case-insensitively.
func (c *Config) HasTriggerPhrase(text string) bool {
	lowered := strings.ToLower(text)
	for _, phrase := range c.TriggerPhrases {
		if strings.Contains(lowered, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}
