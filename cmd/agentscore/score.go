package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jingkaihe/agentscore/pkg/history"
	"github.com/jingkaihe/agentscore/pkg/logger"
	"github.com/jingkaihe/agentscore/pkg/presenter"
	"github.com/jingkaihe/agentscore/pkg/report"
	"github.com/jingkaihe/agentscore/pkg/rubric"
	"github.com/jingkaihe/agentscore/pkg/scoring"
	"github.com/jingkaihe/agentscore/pkg/spec"
	"github.com/jingkaihe/agentscore/pkg/telemetry"
)

// maxExitCode keeps the failing-document count within the POSIX exit range.
const maxExitCode = 255

// ScoreConfig holds configuration for the score command
type ScoreConfig struct {
	Tier               string
	Threshold          float64
	Format             string
	MaxRecommendations int
	Jobs               int
	Include            []string
	Exclude            []string
	Record             bool
	Quiet              bool
}

// NewScoreConfig creates a new ScoreConfig with default values. Threshold and
// MaxRecommendations default to -1, meaning the rubric configuration decides.
func NewScoreConfig() *ScoreConfig {
	return &ScoreConfig{
		Tier:               scoring.DefaultTier,
		Threshold:          -1,
		Format:             report.FormatNarrative,
		MaxRecommendations: -1,
		Jobs:               0,
		Include:            []string{},
		Exclude:            []string{},
		Record:             false,
		Quiet:              false,
	}
}

var scoreCmd = &cobra.Command{
	Use:   "score [path ...]",
	Short: "Score agent documents against the quality rubric",
	Long: `Score one or more agent documents and report per-dimension scores, the
weighted composite, and a pass/warn/fail classification against the selected
tier threshold.

Paths may be files or directories; directories are scanned for agent
documents with the discovery patterns. The exit code is the number of
failing or unreadable documents, so the command drops straight into CI
pipelines.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getScoreConfigFromFlags(cmd)
		presenter.SetQuiet(config.Quiet)
		exitCode = runScore(ctx, args, config)
	},
}

func init() {
	defaults := NewScoreConfig()
	scoreCmd.Flags().String("tier", defaults.Tier, "Tier to score against (expert, foundation, specialist)")
	scoreCmd.Flags().Float64("threshold", defaults.Threshold, "Raw composite threshold overriding the tier ladder")
	scoreCmd.Flags().StringP("format", "f", defaults.Format, "Output format (narrative, json, yaml)")
	scoreCmd.Flags().Int("max-recommendations", defaults.MaxRecommendations, "Cap on recommendations per document (-1 uses the rubric default)")
	scoreCmd.Flags().IntP("jobs", "j", defaults.Jobs, "Concurrent evaluations (0 sizes the pool from the batch)")
	scoreCmd.Flags().StringSlice("include", defaults.Include, "Glob patterns for documents to include when scanning directories")
	scoreCmd.Flags().StringSlice("exclude", defaults.Exclude, "Glob patterns for documents to exclude when scanning directories")
	scoreCmd.Flags().Bool("record", defaults.Record, "Persist reports to the evaluation history")
	scoreCmd.Flags().BoolP("quiet", "q", defaults.Quiet, "Suppress informational output")

	rootCmd.AddCommand(withTracing(scoreCmd))
}

// getScoreConfigFromFlags extracts score configuration from command flags
func getScoreConfigFromFlags(cmd *cobra.Command) *ScoreConfig {
	config := NewScoreConfig()

	if tier, err := cmd.Flags().GetString("tier"); err == nil {
		config.Tier = tier
	}
	if threshold, err := cmd.Flags().GetFloat64("threshold"); err == nil {
		config.Threshold = threshold
	}
	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}
	if maxRecommendations, err := cmd.Flags().GetInt("max-recommendations"); err == nil {
		config.MaxRecommendations = maxRecommendations
	}
	if jobs, err := cmd.Flags().GetInt("jobs"); err == nil {
		config.Jobs = jobs
	}
	if include, err := cmd.Flags().GetStringSlice("include"); err == nil {
		config.Include = include
	}
	if exclude, err := cmd.Flags().GetStringSlice("exclude"); err == nil {
		config.Exclude = exclude
	}
	if record, err := cmd.Flags().GetBool("record"); err == nil {
		config.Record = record
	}
	if quiet, err := cmd.Flags().GetBool("quiet"); err == nil {
		config.Quiet = quiet
	}

	return config
}

// runScore evaluates the requested documents and returns the process exit
// code: 1 for configuration problems, otherwise the failing-document count.
func runScore(ctx context.Context, args []string, config *ScoreConfig) int {
	if err := report.ValidateFormat(config.Format); err != nil {
		presenter.Error(err, "Invalid output format")
		return 1
	}

	cfg, err := rubric.LoadConfig()
	if err != nil {
		presenter.Error(err, "Invalid rubric configuration")
		return 1
	}
	if config.MaxRecommendations >= 0 {
		cfg.MaxRecommendations = config.MaxRecommendations
	}

	opts := []scoring.Option{scoring.WithTier(config.Tier)}
	if config.Threshold >= 0 {
		opts = append(opts, scoring.WithThreshold(config.Threshold))
	}
	evaluator, err := scoring.NewEvaluator(cfg, opts...)
	if err != nil {
		presenter.Error(err, "Invalid rubric configuration")
		return 1
	}

	paths, err := resolvePaths(ctx, args, config)
	if err != nil {
		presenter.Error(err, "Failed to resolve document paths")
		return 1
	}
	if len(paths) == 0 {
		presenter.Warning("No agent documents found")
		return 0
	}

	var results []scoring.BatchResult
	telemetry.WithSpan(ctx, "scoring.batch", func(ctx context.Context) error {
		results = evaluator.EvaluateAll(ctx, paths, config.Jobs)
		return nil
	}, attribute.Int("batch.documents", len(paths)))

	if batchErr := scoring.BatchErrors(results); batchErr != nil {
		logger.G(ctx).WithError(batchErr).Debug("batch completed with document errors")
	}

	if err := report.NewOutput(results, config.Format).Render(os.Stdout); err != nil {
		presenter.Error(err, "Failed to render report")
		return 1
	}

	if config.Record {
		if err := recordResults(ctx, results); err != nil {
			presenter.Error(err, "Failed to record evaluations")
			return 1
		}
	}

	failing := scoring.FailCount(results)
	if failing > maxExitCode {
		failing = maxExitCode
	}
	return failing
}

// resolvePaths expands the command arguments into the list of documents to
// score. Files are taken as-is; directories are scanned with the discovery
// patterns. Order is preserved and duplicates dropped.
func resolvePaths(ctx context.Context, args []string, config *ScoreConfig) ([]string, error) {
	opts := []spec.Option{}
	if len(config.Include) > 0 {
		opts = append(opts, spec.WithIncludePatterns(config.Include...))
	}
	if len(config.Exclude) > 0 {
		opts = append(opts, spec.WithExcludePatterns(config.Exclude...))
	}
	discovery, err := spec.NewDiscovery(opts...)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	paths := []string{}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot stat '%s'", arg)
		}

		if !info.IsDir() {
			if !seen[arg] {
				seen[arg] = true
				paths = append(paths, arg)
			}
			continue
		}

		found, err := discovery.Discover(ctx, arg)
		if err != nil {
			return nil, err
		}
		for _, path := range found {
			if !seen[path] {
				seen[path] = true
				paths = append(paths, path)
			}
		}
	}

	return paths, nil
}

// recordResults persists every successfully scored report to the history store.
func recordResults(ctx context.Context, results []scoring.BatchResult) error {
	store, err := history.Open(ctx, "")
	if err != nil {
		return err
	}
	defer store.Close()

	recorded := 0
	for _, result := range results {
		if result.Report == nil {
			continue
		}
		if _, err := store.Save(ctx, result.Report); err != nil {
			return err
		}
		recorded++
	}

	logger.G(ctx).WithField("recorded", recorded).Debug("evaluations recorded")
	return nil
}
