// Package history persists evaluation reports in a local SQLite database so
// document scores can be compared across runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aymanbagabas/go-udiff"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/jingkaihe/agentscore/pkg/db"
	"github.com/jingkaihe/agentscore/pkg/db/migrations"
	"github.com/jingkaihe/agentscore/pkg/report"
	"github.com/jingkaihe/agentscore/pkg/scoring"
)

// ErrRecordNotFound indicates that no evaluation record exists for the given ID.
var ErrRecordNotFound = errors.New("evaluation record not found")

const defaultListLimit = 50

// Store provides access to the evaluation history database.
type Store struct {
	db *sqlx.DB
}

// Open opens the history store at dbPath, creating the database and applying
// pending migrations as needed. An empty dbPath uses the default location.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if dbPath == "" {
		var err error
		dbPath, err = db.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	conn, err := db.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	runner := db.NewMigrationRunner(conn)
	if err := runner.Run(ctx, migrations.All()); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to run history migrations")
	}

	return &Store{db: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists an evaluation report and returns the stored record.
func (s *Store) Save(ctx context.Context, qualityReport *scoring.QualityReport) (*Record, error) {
	narrative, err := report.PlainNarrative(qualityReport)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render narrative for storage")
	}

	record := &Record{
		ID:             uuid.New().String(),
		Name:           qualityReport.Name,
		Path:           qualityReport.Path,
		Composite:      qualityReport.Composite,
		Classification: string(qualityReport.Classification),
		Tier:           qualityReport.Tier,
		EarnedTier:     qualityReport.EarnedTier,
		Report:         qualityReport,
		Narrative:      narrative,
		EvaluatedAt:    qualityReport.EvaluatedAt,
	}

	query := `
		INSERT INTO evaluations (id, name, path, composite, classification,
			tier, earned_tier, report, narrative, evaluated_at)
		VALUES (:id, :name, :path, :composite, :classification,
			:tier, :earned_tier, :report, :narrative, :evaluated_at)
	`
	if _, err := s.db.NamedExecContext(ctx, query, fromRecord(record)); err != nil {
		return nil, errors.Wrap(err, "failed to save evaluation record")
	}

	return record, nil
}

// List returns stored evaluations, most recent first. An empty name matches
// every document; limit <= 0 applies the default of 50.
func (s *Store) List(ctx context.Context, name string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT id, name, path, composite, classification, tier,
		earned_tier, report, narrative, evaluated_at FROM evaluations`
	args := []interface{}{}
	if name != "" {
		query += " WHERE name = ?"
		args = append(args, name)
	}
	query += " ORDER BY evaluated_at DESC, id LIMIT ?"
	args = append(args, limit)

	var rows []dbEvaluationRecord
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list evaluation records")
	}

	records := make([]Record, len(rows))
	for i := range rows {
		records[i] = rows[i].toRecord()
	}
	return records, nil
}

// Get retrieves a single evaluation record by ID.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	query := `SELECT id, name, path, composite, classification, tier,
		earned_tier, report, narrative, evaluated_at FROM evaluations WHERE id = ?`

	var row dbEvaluationRecord
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrRecordNotFound, "id %s", id)
		}
		return nil, errors.Wrap(err, "failed to load evaluation record")
	}

	record := row.toRecord()
	return &record, nil
}

// Diff returns a unified diff of the narrative reports from the two most
// recent evaluations of the named document. The diff is empty when nothing
// about the scoring changed between them.
func (s *Store) Diff(ctx context.Context, name string) (string, error) {
	records, err := s.List(ctx, name, 2)
	if err != nil {
		return "", err
	}
	if len(records) < 2 {
		return "", errors.Errorf("need at least two evaluations of %q to diff, found %d", name, len(records))
	}

	latest, previous := records[0], records[1]
	from := fmt.Sprintf("%s @ %s", previous.Name, previous.EvaluatedAt.UTC().Format(time.RFC3339))
	to := fmt.Sprintf("%s @ %s", latest.Name, latest.EvaluatedAt.UTC().Format(time.RFC3339))
	return udiff.Unified(from, to, previous.Narrative, latest.Narrative), nil
}
