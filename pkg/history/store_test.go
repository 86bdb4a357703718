package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/agentscore/pkg/rubric"
	"github.com/jingkaihe/agentscore/pkg/scoring"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testReport(name string, composite float64, classification scoring.Classification, evaluatedAt time.Time) *scoring.QualityReport {
	return &scoring.QualityReport{
		Name:           name,
		Path:           "agents/" + name + ".md",
		Tier:           "foundation",
		EarnedTier:     "specialist",
		Threshold:      8.0,
		Composite:      composite,
		Classification: classification,
		Dimensions: []scoring.DimensionScore{
			{
				Dimension: rubric.DimensionCapabilityClarity,
				Value:     composite,
				Rationale: []string{"adequate description (12 words): 6 points"},
			},
		},
		EvaluatedAt: evaluatedAt,
	}
}

func TestSaveAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	evaluatedAt := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	saved, err := store.Save(ctx, testReport("sql-tuner", 7.2, scoring.ClassificationWarn, evaluatedAt))
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.Contains(t, saved.Narrative, "Composite 7.2/10")

	loaded, err := store.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "sql-tuner", loaded.Name)
	assert.Equal(t, "agents/sql-tuner.md", loaded.Path)
	assert.Equal(t, 7.2, loaded.Composite)
	assert.Equal(t, "warn", loaded.Classification)
	assert.Equal(t, "foundation", loaded.Tier)
	assert.Equal(t, "specialist", loaded.EarnedTier)
	assert.Equal(t, saved.Narrative, loaded.Narrative)
	assert.True(t, loaded.EvaluatedAt.Equal(evaluatedAt))

	require.NotNil(t, loaded.Report)
	assert.Equal(t, 7.2, loaded.Report.Composite)
	require.Len(t, loaded.Report.Dimensions, 1)
	assert.Equal(t, rubric.DimensionCapabilityClarity, loaded.Report.Dimensions[0].Dimension)
	assert.Equal(t, []string{"adequate description (12 words): 6 points"}, loaded.Report.Dimensions[0].Rationale)
}

func TestGet_NotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRecordNotFound))
}

func TestList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	first, err := store.Save(ctx, testReport("sql-tuner", 6.4, scoring.ClassificationFail, base))
	require.NoError(t, err)
	second, err := store.Save(ctx, testReport("bug-fixer", 8.8, scoring.ClassificationPass, base.Add(time.Hour)))
	require.NoError(t, err)
	third, err := store.Save(ctx, testReport("sql-tuner", 7.2, scoring.ClassificationWarn, base.Add(2*time.Hour)))
	require.NoError(t, err)

	t.Run("all documents newest first", func(t *testing.T) {
		records, err := store.List(ctx, "", 0)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, third.ID, records[0].ID)
		assert.Equal(t, second.ID, records[1].ID)
		assert.Equal(t, first.ID, records[2].ID)
	})

	t.Run("filtered by name", func(t *testing.T) {
		records, err := store.List(ctx, "sql-tuner", 0)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, third.ID, records[0].ID)
		assert.Equal(t, first.ID, records[1].ID)
	})

	t.Run("limit applies", func(t *testing.T) {
		records, err := store.List(ctx, "", 1)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, third.ID, records[0].ID)
	})

	t.Run("unknown name is empty", func(t *testing.T) {
		records, err := store.List(ctx, "nope", 0)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestDiff(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	_, err := store.Save(ctx, testReport("sql-tuner", 6.4, scoring.ClassificationFail, base))
	require.NoError(t, err)
	_, err = store.Save(ctx, testReport("sql-tuner", 7.2, scoring.ClassificationWarn, base.Add(time.Hour)))
	require.NoError(t, err)

	diff, err := store.Diff(ctx, "sql-tuner")
	require.NoError(t, err)
	assert.Contains(t, diff, "--- sql-tuner @ 2026-08-15T10:00:00Z")
	assert.Contains(t, diff, "+++ sql-tuner @ 2026-08-15T11:00:00Z")
	assert.Contains(t, diff, "-Composite 6.4/10")
	assert.Contains(t, diff, "+Composite 7.2/10")
}

func TestDiff_NoChanges(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	_, err := store.Save(ctx, testReport("sql-tuner", 7.2, scoring.ClassificationWarn, base))
	require.NoError(t, err)
	_, err = store.Save(ctx, testReport("sql-tuner", 7.2, scoring.ClassificationWarn, base.Add(time.Hour)))
	require.NoError(t, err)

	diff, err := store.Diff(ctx, "sql-tuner")
	require.NoError(t, err)
	assert.Empty(t, diff)
}

func TestDiff_NeedsTwoEvaluations(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, testReport("sql-tuner", 7.2, scoring.ClassificationWarn, time.Now().UTC()))
	require.NoError(t, err)

	_, err = store.Diff(ctx, "sql-tuner")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "need at least two evaluations")
}
