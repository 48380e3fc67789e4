package store

import (
	"context"
	"fmt"

	"hedgepnl/pkg/models"
)

// ValidationRepo writes validation outcomes to Postgres. The table is
// created on first use so a fresh database needs no migration step.
type ValidationRepo struct{}

// NewValidationRepo creates a new repository instance.
func NewValidationRepo() *ValidationRepo {
	return &ValidationRepo{}
}

const validationSchema = `
	CREATE TABLE IF NOT EXISTS hedge_validation (
		id BIGSERIAL PRIMARY KEY,
		file_name TEXT NOT NULL,
		verdict TEXT NOT NULL,
		hash_llm TEXT,
		hash_reference TEXT,
		concat_llm TEXT,
		concat_reference TEXT,
		elapsed_seconds DOUBLE PRECISION,
		error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// Save inserts one validation outcome.
func (r *ValidationRepo) Save(ctx context.Context, fileName string, result models.ValidationResult) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	if _, err := pool.Exec(ctx, validationSchema); err != nil {
		return fmt.Errorf("failed to ensure validation table: %w", err)
	}

	query := `
		INSERT INTO hedge_validation
			(file_name, verdict, hash_llm, hash_reference, concat_llm, concat_reference, elapsed_seconds, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := pool.Exec(ctx, query,
		fileName,
		result.Verdict(),
		result.HashLLM,
		result.HashReference,
		result.ConcatLLM,
		result.ConcatReference,
		result.Elapsed,
		result.Err,
	)
	if err != nil {
		return fmt.Errorf("failed to insert validation result: %w", err)
	}
	return nil
}
