package history

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/jingkaihe/agentscore/pkg/scoring"
)

// JSONField is a generic type for handling JSON marshaling/unmarshaling in database
type JSONField[T any] struct {
	Data T
}

// Scan implements the sql.Scanner interface for reading from database
func (j *JSONField[T]) Scan(value any) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.Errorf("cannot scan %T into JSONField", value)
		}
		bytes = []byte(str)
	}

	return json.Unmarshal(bytes, &j.Data)
}

// Value implements the driver.Valuer interface for writing to database
func (j JSONField[T]) Value() (driver.Value, error) {
	return json.Marshal(j.Data)
}

// Record is one persisted evaluation of an agent document. Narrative holds
// the uncolored rendering of Report at the time of evaluation.
type Record struct {
	ID             string
	Name           string
	Path           string
	Composite      float64
	Classification string
	Tier           string
	EarnedTier     string
	Report         *scoring.QualityReport
	Narrative      string
	EvaluatedAt    time.Time
}

// dbEvaluationRecord represents the evaluations table structure
type dbEvaluationRecord struct {
	ID             string                            `db:"id"`
	Name           string                            `db:"name"`
	Path           string                            `db:"path"`
	Composite      float64                           `db:"composite"`
	Classification string                            `db:"classification"`
	Tier           string                            `db:"tier"`
	EarnedTier     string                            `db:"earned_tier"`
	Report         JSONField[*scoring.QualityReport] `db:"report"`
	Narrative      string                            `db:"narrative"`
	EvaluatedAt    time.Time                         `db:"evaluated_at"`
}

// toRecord converts database record to domain model
func (dbr *dbEvaluationRecord) toRecord() Record {
	return Record{
		ID:             dbr.ID,
		Name:           dbr.Name,
		Path:           dbr.Path,
		Composite:      dbr.Composite,
		Classification: dbr.Classification,
		Tier:           dbr.Tier,
		EarnedTier:     dbr.EarnedTier,
		Report:         dbr.Report.Data,
		Narrative:      dbr.Narrative,
		EvaluatedAt:    dbr.EvaluatedAt,
	}
}

// fromRecord converts domain model to database record
func fromRecord(record *Record) *dbEvaluationRecord {
	return &dbEvaluationRecord{
		ID:             record.ID,
		Name:           record.Name,
		Path:           record.Path,
		Composite:      record.Composite,
		Classification: record.Classification,
		Tier:           record.Tier,
		EarnedTier:     record.EarnedTier,
		Report:         JSONField[*scoring.QualityReport]{Data: record.Report},
		Narrative:      record.Narrative,
		EvaluatedAt:    record.EvaluatedAt,
	}
}
