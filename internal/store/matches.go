package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/huandu/go-sqlbuilder"

	"scholarship-workers/internal/common/database"
	apperrors "scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/models"
)

// upsertBatchSize bounds the rows per INSERT statement.
const upsertBatchSize = 500

type MatchRepository struct {
	db *sql.DB
}

func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Upsert writes matches in one transaction. Re-scoring the same pair
// replaces the previous row, so repeated runs leave one row per pair.
func (r *MatchRepository) Upsert(ctx context.Context, studentID string, matches []models.Match) (int, error) {
	if len(matches) == 0 {
		return 0, nil
	}

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for start := 0; start < len(matches); start += upsertBatchSize {
			end := start + upsertBatchSize
			if end > len(matches) {
				end = len(matches)
			}
			query, args, err := buildMatchUpsert(matches[start:end])
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, storageError(ctx, "upsert matches", apperrors.NewMatchUpsertFailedError(studentID, err))
	}
	return len(matches), nil
}

func buildMatchUpsert(matches []models.Match) (string, []interface{}, error) {
	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(matchesTable)
	sb.Cols("student_id", "scholarship_id", "overall_score", "dimensions", "success_probability",
		"priority_tier", "strategic_value", "effort", "estimated_hours", "computed_at")

	for _, m := range matches {
		dims, err := json.Marshal(m.Dimensions)
		if err != nil {
			return "", nil, err
		}
		sb.Values(m.StudentID, m.ScholarshipID, m.OverallScore, dims, m.SuccessProbability.Probability,
			string(m.PriorityTier), m.StrategicValue, string(m.Effort), m.EstimatedHours, m.ComputedAt)
	}

	query, args := sb.Build()
	query += " ON CONFLICT (student_id, scholarship_id) DO UPDATE SET" +
		" overall_score = EXCLUDED.overall_score, dimensions = EXCLUDED.dimensions," +
		" success_probability = EXCLUDED.success_probability, priority_tier = EXCLUDED.priority_tier," +
		" strategic_value = EXCLUDED.strategic_value, effort = EXCLUDED.effort," +
		" estimated_hours = EXCLUDED.estimated_hours, computed_at = EXCLUDED.computed_at"
	return query, args, nil
}
