// Package store persists profiles, the scholarship catalog and computed
// matches in Postgres, caches profiles in Redis and projects the catalog into
// Elasticsearch.
//
// Tables:
//
//	student_profiles(student_id PK, profile JSONB, completion_percentage, strength_score, updated_at)
//	scholarships(id PK, name, provider, data JSONB, deadline, created_at, updated_at)
//	scholarship_matches(student_id, scholarship_id, ..., UNIQUE (student_id, scholarship_id))
//
// The full DDL lives in schema.sql and is applied by EnsureSchema.
package store

import (
	"context"
	"errors"

	apperrors "scholarship-workers/internal/common/errors"
)

const (
	profilesTable     = "student_profiles"
	scholarshipsTable = "scholarships"
	matchesTable      = "scholarship_matches"
)

// storageError maps a failed query onto a timeout when the context expired
// and onto fallback otherwise.
func storageError(ctx context.Context, op string, fallback *apperrors.StandardError) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewQueryTimeoutError(op)
	}
	return fallback
}
