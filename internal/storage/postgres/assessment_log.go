package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const assessmentLogSchema = `
CREATE TABLE IF NOT EXISTS assessment_log (
	id            UUID PRIMARY KEY,
	request_hash  CHAR(64) NOT NULL,
	borrower_type TEXT NOT NULL,
	loan_amount   DOUBLE PRECISION NOT NULL,
	risk_level    TEXT NOT NULL,
	risk_score    DOUBLE PRECISION NOT NULL,
	model_version TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS assessment_log_request_hash_idx ON assessment_log (request_hash);
`

// AssessmentRecord is one row of the assessment log.
type AssessmentRecord struct {
	ID           string
	RequestHash  string
	BorrowerType string
	LoanAmount   float64
	RiskLevel    string
	RiskScore    float64
	ModelVersion string
	CreatedAt    time.Time
}

// AssessmentLog persists completed assessments for auditing.
type AssessmentLog struct {
	db *sql.DB
}

func NewAssessmentLog(db *sql.DB) *AssessmentLog {
	return &AssessmentLog{db: db}
}

// EnsureSchema creates the table if it does not exist yet.
func (l *AssessmentLog) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, assessmentLogSchema); err != nil {
		return fmt.Errorf("create assessment_log: %w", err)
	}
	return nil
}

// Record inserts rec, assigning an ID when it has none.
func (l *AssessmentLog) Record(ctx context.Context, rec *AssessmentRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	query := `
		INSERT INTO assessment_log (
			id, request_hash, borrower_type, loan_amount,
			risk_level, risk_score, model_version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := l.db.QueryRowContext(ctx, query,
		rec.ID, rec.RequestHash, rec.BorrowerType, rec.LoanAmount,
		rec.RiskLevel, rec.RiskScore, rec.ModelVersion,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert assessment record: %w", err)
	}
	return nil
}

// CountByLevelSince summarises assessments per risk level since t.
func (l *AssessmentLog) CountByLevelSince(ctx context.Context, t time.Time) (map[string]int, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT risk_level, COUNT(*)
		FROM assessment_log
		WHERE created_at >= $1
		GROUP BY risk_level
	`, t)
	if err != nil {
		return nil, fmt.Errorf("count assessments: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var level string
		var n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, fmt.Errorf("scan assessment count: %w", err)
		}
		counts[level] = n
	}
	return counts, rows.Err()
}

// Ping reports whether the database is reachable.
func (l *AssessmentLog) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}
