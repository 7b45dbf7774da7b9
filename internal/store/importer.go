package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"scholarship-workers/internal/common/database"
	"scholarship-workers/internal/models"
)

const DefaultChunkSize = 100

// ChunkResult reports one applied chunk. When Committed is false the whole
// chunk was rolled back and FailedRecord points at the offending record's
// position in the full import.
type ChunkResult struct {
	Index        int      `json:"index"`
	Start        int      `json:"start"`
	Size         int      `json:"size"`
	Committed    bool     `json:"committed"`
	FailedRecord *int     `json:"failedRecord,omitempty"`
	Reason       string   `json:"reason,omitempty"`
	IDs          []string `json:"ids,omitempty"`
}

type recordError struct {
	index int
	err   error
}

func (e *recordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.index, e.err)
}

func (e *recordError) Unwrap() error { return e.err }

// ChunkApplier writes scholarship records in fixed-size transactional chunks.
type ChunkApplier struct {
	db  *sql.DB
	now func() time.Time
}

func NewChunkApplier(db *sql.DB) *ChunkApplier {
	return &ChunkApplier{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Apply upserts records chunk by chunk. A failing chunk rolls back only
// itself; later chunks still run unless ctx is cancelled. Records without an
// id get a new one. The returned records carry the ids that were written.
func (a *ChunkApplier) Apply(ctx context.Context, records []models.Scholarship, chunkSize int) ([]models.Scholarship, []ChunkResult) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	out := make([]models.Scholarship, len(records))
	copy(out, records)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
	}

	results := make([]ChunkResult, 0, (len(out)+chunkSize-1)/chunkSize)
	for start, idx := 0, 0; start < len(out); start, idx = start+chunkSize, idx+1 {
		end := start + chunkSize
		if end > len(out) {
			end = len(out)
		}
		res := ChunkResult{Index: idx, Start: start, Size: end - start}

		if err := ctx.Err(); err != nil {
			res.Reason = err.Error()
			results = append(results, res)
			continue
		}

		err := database.WithTx(ctx, a.db, func(tx *sql.Tx) error {
			for i := start; i < end; i++ {
				if err := a.upsert(ctx, tx, &out[i]); err != nil {
					return &recordError{index: i, err: err}
				}
			}
			return nil
		})
		if err != nil {
			res.Reason = err.Error()
			var re *recordError
			if errors.As(err, &re) {
				failed := re.index
				res.FailedRecord = &failed
				res.Reason = re.err.Error()
			}
		} else {
			res.Committed = true
			for i := start; i < end; i++ {
				res.IDs = append(res.IDs, out[i].ID)
			}
		}
		results = append(results, res)
	}
	return out, results
}

func (a *ChunkApplier) upsert(ctx context.Context, tx *sql.Tx, s *models.Scholarship) error {
	now := a.now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(scholarshipsTable)
	sb.Cols("id", "name", "provider", "data", "deadline", "created_at", "updated_at")
	sb.Values(s.ID, s.Name, s.Provider, data, s.Deadline, s.CreatedAt, s.UpdatedAt)
	query, args := sb.Build()
	query += " ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, provider = EXCLUDED.provider," +
		" data = EXCLUDED.data, deadline = EXCLUDED.deadline, updated_at = EXCLUDED.updated_at"

	_, err = tx.ExecContext(ctx, query, args...)
	return err
}
