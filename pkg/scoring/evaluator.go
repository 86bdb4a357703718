package scoring

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jingkaihe/agentscore/pkg/features"
	"github.com/jingkaihe/agentscore/pkg/logger"
	"github.com/jingkaihe/agentscore/pkg/rubric"
	"github.com/jingkaihe/agentscore/pkg/spec"
	"github.com/jingkaihe/agentscore/pkg/telemetry"
)

const (
	// DefaultTier is the tier a run scores against when none is requested.
	DefaultTier = "foundation"
	// MaxDefaultJobs caps the default batch width.
	MaxDefaultJobs = 8
)

// Evaluator runs the scoring pipeline against a validated rubric. The rubric
// is read-only after construction, so one Evaluator serves concurrent batch
// evaluation without locking.
type Evaluator struct {
	cfg         *rubric.Config
	tier        string
	threshold   float64
	hasOverride bool
}

// Option configures an Evaluator.
type Option func(*Evaluator) error

// WithTier scores against a named tier from the rubric's ladder.
func WithTier(tier string) Option {
	return func(e *Evaluator) error {
		e.tier = tier
		e.hasOverride = false
		return nil
	}
}

// WithThreshold scores against a raw composite threshold instead of a tier.
func WithThreshold(threshold float64) Option {
	return func(e *Evaluator) error {
		if threshold < 0 || threshold > 10 {
			return errors.Wrapf(rubric.ErrInvalidConfiguration, "threshold %.2f outside [0,10]", threshold)
		}
		e.threshold = threshold
		e.hasOverride = true
		e.tier = ""
		return nil
	}
}

// NewEvaluator validates the rubric and resolves the scoring threshold.
// Configuration problems surface here, before any document is touched.
func NewEvaluator(cfg rubric.Config, opts ...Option) (*Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	evaluator := &Evaluator{cfg: &cfg, tier: DefaultTier}
	for _, opt := range opts {
		if err := opt(evaluator); err != nil {
			return nil, err
		}
	}

	if !evaluator.hasOverride {
		threshold, err := cfg.ThresholdForTier(evaluator.tier)
		if err != nil {
			return nil, err
		}
		evaluator.threshold = threshold
	}

	return evaluator, nil
}

// Threshold returns the composite threshold the evaluator classifies against.
func (e *Evaluator) Threshold() float64 {
	return e.threshold
}

// Evaluate scores one loaded document.
func (e *Evaluator) Evaluate(ctx context.Context, doc *spec.Document) *QualityReport {
	set := features.Extract(doc, e.cfg)
	scores := ScoreAll(set, e.cfg)
	composite := Aggregate(scores, e.cfg)

	report := &QualityReport{
		Name:            doc.Name,
		Path:            doc.Path,
		Tier:            e.tier,
		EarnedTier:      e.cfg.TierFor(composite),
		Threshold:       e.threshold,
		Composite:       composite,
		Classification:  Classify(composite, e.threshold, e.cfg.WarnMargin),
		Dimensions:      scores,
		Recommendations: BuildRecommendations(set, scores, e.cfg),
		EvaluatedAt:     time.Now().UTC(),
	}

	logger.G(ctx).
		WithField("document", doc.Path).
		WithField("composite", report.Composite).
		WithField("classification", report.Classification).
		Debug("document scored")

	return report
}

// EvaluateFile loads and scores a single document from disk.
func (e *Evaluator) EvaluateFile(ctx context.Context, path string) (*QualityReport, error) {
	var report *QualityReport
	err := telemetry.WithSpan(ctx, "scoring.evaluate", func(ctx context.Context) error {
		doc, err := spec.Load(ctx, path)
		if err != nil {
			return err
		}
		report = e.Evaluate(ctx, doc)
		telemetry.SetAttributes(ctx,
			attribute.Float64("scoring.composite", report.Composite),
			attribute.String("scoring.classification", string(report.Classification)),
		)
		return nil
	}, attribute.String("document.path", path))
	if err != nil {
		return nil, err
	}
	return report, nil
}

// BatchResult pairs one input path with its report or its error.
type BatchResult struct {
	Path   string         `json:"path"`
	Report *QualityReport `json:"report,omitempty"`
	Err    error          `json:"-"`
}

// EvaluateAll scores documents concurrently with a fixed worker pool and
// returns results in input order. A document that fails to load lands as an
// error in its own slot; the batch keeps going. Cancelling the context stops
// new submissions, and in-flight documents finish.
func (e *Evaluator) EvaluateAll(ctx context.Context, paths []string, jobs int) []BatchResult {
	results := make([]BatchResult, len(paths))
	if len(paths) == 0 {
		return results
	}
	if jobs <= 0 {
		jobs = DefaultJobs(len(paths))
	}
	if jobs > len(paths) {
		jobs = len(paths)
	}

	indexes := make(chan int)
	wg := sync.WaitGroup{}
	wg.Add(jobs)
	for worker := 0; worker < jobs; worker++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				report, err := e.EvaluateFile(ctx, paths[i])
				results[i] = BatchResult{Path: paths[i], Report: report, Err: err}
			}
		}()
	}

submit:
	for i := range paths {
		select {
		case <-ctx.Done():
			for j := i; j < len(paths); j++ {
				results[j] = BatchResult{Path: paths[j], Err: ctx.Err()}
			}
			break submit
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	logger.G(ctx).
		WithField("documents", len(paths)).
		WithField("jobs", jobs).
		Debug("batch evaluation complete")

	return results
}

// DefaultJobs returns the batch width for n documents: n, capped at
// MaxDefaultJobs, minimum 1.
func DefaultJobs(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxDefaultJobs {
		return MaxDefaultJobs
	}
	return n
}

// BatchErrors folds the per-document failures of a batch into one error, or
// nil when every document scored.
func BatchErrors(results []BatchResult) error {
	var merr *multierror.Error
	for _, result := range results {
		if result.Err != nil {
			merr = multierror.Append(merr, errors.Wrapf(result.Err, "document %s", result.Path))
		}
	}
	return merr.ErrorOrNil()
}

// FailCount counts documents that failed classification or errored. Warnings
// do not count.
func FailCount(results []BatchResult) int {
	count := 0
	for _, result := range results {
		if result.Err != nil {
			count++
			continue
		}
		if result.Report != nil && result.Report.Classification == ClassificationFail {
			count++
		}
	}
	return count
}
