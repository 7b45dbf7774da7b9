package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/huandu/go-sqlbuilder"

	apperrors "scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/models"
)

// ProfileReader loads one student profile.
type ProfileReader interface {
	Get(ctx context.Context, studentID string) (*models.Profile, error)
}

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get returns the stored profile snapshot. A missing row is reported as
// PROFILE_NOT_FOUND.
func (r *ProfileRepository) Get(ctx context.Context, studentID string) (*models.Profile, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("profile").From(profilesTable)
	sb.Where(sb.Equal("student_id", studentID))
	query, args := sb.Build()

	var raw []byte
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewProfileNotFoundError(studentID)
		}
		return nil, storageError(ctx, "load profile", apperrors.NewDatabaseConnectionFailedError(err))
	}

	var p models.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, apperrors.NewProfileInvalidError(fmt.Sprintf("stored profile for %s: %v", studentID, err))
	}
	p.StudentID = studentID
	return &p, nil
}

// SaveScores writes the derived completion percentage and strength score
// back onto the profile row.
func (r *ProfileRepository) SaveScores(ctx context.Context, studentID string, completion int, strength float64) error {
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(profilesTable)
	ub.Set(
		ub.Assign("completion_percentage", completion),
		ub.Assign("strength_score", strength),
		ub.Assign("updated_at", time.Now().UTC()),
	)
	ub.Where(ub.Equal("student_id", studentID))
	query, args := ub.Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storageError(ctx, "save profile scores", apperrors.NewDatabaseConnectionFailedError(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewProfileNotFoundError(studentID)
	}
	return nil
}
