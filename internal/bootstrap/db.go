package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/loan-guidance/loan-guidance-backend/config"
	"github.com/loan-guidance/loan-guidance-backend/internal/storage/postgres"
)

// OpenAssessmentLog connects to Postgres and makes sure the assessment_log
// table exists. The caller owns the returned *sql.DB.
func OpenAssessmentLog(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, *postgres.AssessmentLog, error) {
	db, err := postgres.NewConnection(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("db connect: %w", err)
	}

	log := postgres.NewAssessmentLog(db)
	if err := log.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, log, nil
}
