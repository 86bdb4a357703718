package migrations

import (
	"database/sql"

	"github.com/jingkaihe/agentscore/pkg/db"
	"github.com/pkg/errors"
)

// Migration20260815120000CreateEvaluations creates the evaluations table.
func Migration20260815120000CreateEvaluations() db.Migration {
	return db.Migration{
		Version:     20260815120000,
		Description: "Create evaluations table",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS evaluations (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					path TEXT NOT NULL,
					composite REAL NOT NULL,
					classification TEXT NOT NULL,
					tier TEXT,
					earned_tier TEXT,
					report TEXT NOT NULL,
					narrative TEXT NOT NULL,
					evaluated_at DATETIME NOT NULL
				)
			`); err != nil {
				return errors.Wrap(err, "failed to create evaluations table")
			}

			if _, err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_evaluations_name_time
				ON evaluations(name, evaluated_at)
			`); err != nil {
				return errors.Wrap(err, "failed to create evaluations index")
			}

			return nil
		},
		Down: func(tx *sql.Tx) error {
			if _, err := tx.Exec("DROP INDEX IF EXISTS idx_evaluations_name_time"); err != nil {
				return errors.Wrap(err, "failed to drop evaluations index")
			}
			if _, err := tx.Exec("DROP TABLE IF EXISTS evaluations"); err != nil {
				return errors.Wrap(err, "failed to drop evaluations table")
			}
			return nil
		},
	}
}
