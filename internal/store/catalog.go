package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huandu/go-sqlbuilder"

	apperrors "scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/models"
)

// CatalogReader loads scholarship snapshots.
type CatalogReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Scholarship, error)
	ListUpdatedSince(ctx context.Context, since time.Time, limit int) ([]models.Scholarship, error)
	Snapshot(ctx context.Context, limit int) ([]models.Scholarship, error)
}

type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) selectBuilder() *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "data", "created_at", "updated_at").From(scholarshipsTable)
	return sb
}

// ListByIDs returns the requested scholarships ordered by id. Unknown ids are
// skipped.
func (r *CatalogRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Scholarship, error) {
	if len(ids) == 0 {
		return []models.Scholarship{}, nil
	}
	sb := r.selectBuilder()
	sb.Where(sb.In("id", sqlbuilder.Flatten(ids)...))
	sb.OrderBy("id")
	return r.query(ctx, "list scholarships by id", sb)
}

// ListUpdatedSince returns scholarships changed at or after since, newest
// change first, so a limit keeps the most recent changes.
func (r *CatalogRepository) ListUpdatedSince(ctx context.Context, since time.Time, limit int) ([]models.Scholarship, error) {
	sb := r.selectBuilder()
	sb.Where(sb.GreaterEqualThan("updated_at", since.UTC()))
	sb.OrderBy("updated_at DESC", "id ASC")
	if limit > 0 {
		sb.Limit(limit)
	}
	return r.query(ctx, "list updated scholarships", sb)
}

// Snapshot returns the catalog in a stable order. Duplicate detection relies
// on that order to break similarity ties.
func (r *CatalogRepository) Snapshot(ctx context.Context, limit int) ([]models.Scholarship, error) {
	sb := r.selectBuilder()
	sb.OrderBy("created_at ASC", "id ASC")
	if limit > 0 {
		sb.Limit(limit)
	}
	return r.query(ctx, "catalog snapshot", sb)
}

func (r *CatalogRepository) query(ctx context.Context, op string, sb *sqlbuilder.SelectBuilder) ([]models.Scholarship, error) {
	query, args := sb.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError(ctx, op, apperrors.NewCatalogReadFailedError(err))
	}
	defer rows.Close()

	out := []models.Scholarship{}
	for rows.Next() {
		var (
			id                   string
			raw                  []byte
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&id, &raw, &createdAt, &updatedAt); err != nil {
			return nil, apperrors.NewCatalogReadFailedError(err)
		}
		var s models.Scholarship
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, apperrors.NewCatalogReadFailedError(fmt.Errorf("decode scholarship %s: %w", id, err))
		}
		s.ID = id
		s.CreatedAt = createdAt
		s.UpdatedAt = updatedAt
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(ctx, op, apperrors.NewCatalogReadFailedError(err))
	}
	return out, nil
}
