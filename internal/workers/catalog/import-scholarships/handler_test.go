package importscholarships

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apperrors "scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/validation"
	"scholarship-workers/internal/engine/dedup"
	"scholarship-workers/internal/ingest"
	"scholarship-workers/internal/models"
	"scholarship-workers/internal/models/modeltest"
	"scholarship-workers/internal/store"
)

const (
	snapshotQuery = "SELECT id, data, created_at, updated_at FROM scholarships ORDER BY"
	upsertQuery   = "INSERT INTO scholarships .* ON CONFLICT \\(id\\) DO UPDATE"
)

var now = time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)

type fakeIndex struct {
	got []models.Scholarship
	err error
}

func (f *fakeIndex) IndexScholarships(_ context.Context, s []models.Scholarship) (int, error) {
	f.got = append(f.got, s...)
	if f.err != nil {
		return 0, f.err
	}
	return len(s), nil
}

func newHandler(t *testing.T, index SearchIndexer) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	validator, err := validation.NewScholarshipValidator("")
	require.NoError(t, err)

	clock := func() time.Time { return now }
	cfg := &Config{Timeout: 5 * time.Second, ChunkSize: 2, DedupThreshold: dedup.DefaultThreshold, SkipExpired: true}
	h := NewHandler(cfg, validator,
		ingest.NewDeduplicator(store.NewCatalogRepository(db), 0),
		dedup.NewMerger(clock),
		store.NewChunkApplier(db),
		index,
		logger.NewZapAdapter(zaptest.NewLogger(t)))
	h.now = clock
	return h, mock
}

func snapshotRows(records ...models.Scholarship) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "data", "created_at", "updated_at"})
	for _, s := range records {
		data, _ := json.Marshal(s)
		rows.AddRow(s.ID, data, s.CreatedAt, s.UpdatedAt)
	}
	return rows
}

func raw(docs ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		out[i] = json.RawMessage(d)
	}
	return out
}

func mixedBatch() []json.RawMessage {
	return raw(
		`{"name":"Dell Scholars Program","provider":"Dell Foundation","awardAmount":20000}`,
		`{"provider":"Nameless Trust"}`,
		`{"name":"Old Grant","provider":"Archive Fund","deadline":"2020-01-01T00:00:00Z"}`,
		`{"name":"Rural Nursing Grant","provider":"County Health"}`,
		`{"name":"rural nursing grant","provider":"county health","description":"For rural nursing students"}`,
		`{"name":"Coding Futures","provider":"Tech Guild","deadline":"2027-03-01T00:00:00Z"}`,
	)
}

func TestHandler_Execute_MixedBatch(t *testing.T) {
	index := &fakeIndex{}
	h, mock := newHandler(t, index)

	mock.ExpectQuery(snapshotQuery).
		WillReturnRows(snapshotRows(modeltest.Scholarship("cat-dell", "Dell Scholars Program", "Dell Foundation")))
	mock.ExpectBegin()
	mock.ExpectExec(upsertQuery).WithArgs("cat-dell", "Dell Scholars Program", "Dell Foundation",
		sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(upsertQuery).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(upsertQuery).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := h.Execute(context.Background(), &Input{Candidates: mixedBatch()})
	require.NoError(t, err)

	assert.Equal(t, 6, out.Received)
	assert.Equal(t, 4, out.Accepted)

	require.Len(t, out.Invalid, 1)
	assert.Equal(t, 1, out.Invalid[0].Index)
	assert.NotEmpty(t, out.Invalid[0].Errors)

	require.Len(t, out.Skipped, 1)
	assert.Equal(t, 2, out.Skipped[0].Index)
	assert.Contains(t, out.Skipped[0].Reason, "2020-01-01")

	assert.Equal(t, dedup.Summary{Candidates: 4, Exact: 1, Batch: 1}, out.Duplicates)
	assert.Equal(t, 2, out.Created)
	assert.Equal(t, 1, out.MergedExisting)
	assert.Equal(t, 1, out.Folded)

	require.Len(t, out.Chunks, 2)
	assert.True(t, out.Chunks[0].Committed)
	assert.True(t, out.Chunks[1].Committed)
	assert.Zero(t, out.FailedChunks)
	require.Len(t, out.ImportedIDs, 3)
	assert.Equal(t, "cat-dell", out.ImportedIDs[0])

	assert.Equal(t, 3, out.Indexed)
	require.Len(t, index.got, 3)
	assert.Equal(t, "For rural nursing students", *index.got[1].Description)
	assert.Equal(t, 20000, *index.got[0].AwardAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_FailingChunkIsReported(t *testing.T) {
	index := &fakeIndex{}
	h, mock := newHandler(t, index)

	mock.ExpectQuery(snapshotQuery).WillReturnRows(snapshotRows())
	mock.ExpectBegin()
	mock.ExpectExec(upsertQuery).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(upsertQuery).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(upsertQuery).WillReturnError(errors.New("duplicate key value violates unique constraint"))
	mock.ExpectRollback()

	out, err := h.Execute(context.Background(), &Input{Candidates: mixedBatch()})
	require.NoError(t, err)

	require.Len(t, out.Chunks, 2)
	assert.Equal(t, 1, out.FailedChunks)
	failed := out.Chunks[1]
	assert.False(t, failed.Committed)
	require.NotNil(t, failed.FailedRecord)
	assert.Equal(t, 2, *failed.FailedRecord)
	require.NotNil(t, failed.FailedCandidate)
	assert.Equal(t, 5, *failed.FailedCandidate)
	assert.Contains(t, failed.Reason, "duplicate key")

	assert.Len(t, out.ImportedIDs, 2)
	assert.Len(t, index.got, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_AllChunksFail(t *testing.T) {
	h, mock := newHandler(t, nil)

	mock.ExpectQuery(snapshotQuery).WillReturnRows(snapshotRows())
	mock.ExpectBegin()
	mock.ExpectExec(upsertQuery).WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	_, err := h.Execute(context.Background(), &Input{Candidates: raw(`{"name":"Solo Award","provider":"Solo Fund"}`)})
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeChunkCommitFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_IndexFailureIsBestEffort(t *testing.T) {
	index := &fakeIndex{err: apperrors.NewSearchIndexFailedError("scholarships", errors.New("cluster red"))}
	h, mock := newHandler(t, index)

	mock.ExpectBegin()
	mock.ExpectExec(upsertQuery).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := h.Execute(context.Background(), &Input{
		Candidates:    raw(`{"name":"Solo Award","provider":"Solo Fund"}`),
		CheckExisting: models.Ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Created)
	assert.Zero(t, out.Indexed)
	assert.Contains(t, out.IndexError, "SEARCH_INDEX_FAILED")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_WithinArrayCheckDisabled(t *testing.T) {
	index := &fakeIndex{}
	h, mock := newHandler(t, index)

	mock.ExpectBegin()
	mock.ExpectExec(upsertQuery).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(upsertQuery).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := h.Execute(context.Background(), &Input{
		Candidates:       raw(`{"name":"Twin Award","provider":"Twin Fund"}`, `{"name":"twin award","provider":"TWIN FUND"}`),
		CheckExisting:    models.Ptr(false),
		CheckWithinArray: models.Ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Created)
	assert.Zero(t, out.Folded)
	assert.Equal(t, 2, out.Indexed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NothingToImport(t *testing.T) {
	h, mock := newHandler(t, nil)

	out, err := h.Execute(context.Background(), &Input{
		Candidates:  raw(`{"name":"   ","provider":"Blank"}`, `not json`, `{"name":"Old","provider":"P","deadline":"2026-10-17T00:00:00Z"}`),
		SkipExpired: models.Ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Received)
	assert.Zero(t, out.Accepted)
	assert.Len(t, out.Invalid, 2)
	assert.Len(t, out.Skipped, 1)
	assert.Empty(t, out.Chunks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InvalidOptions(t *testing.T) {
	h, _ := newHandler(t, nil)
	candidates := raw(`{"name":"A","provider":"B"}`)

	_, err := h.Execute(context.Background(), &Input{Candidates: candidates, ChunkSize: models.Ptr(0)})
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeImportValidationFailed, stdErr.Code)

	_, err = h.Execute(context.Background(), &Input{Candidates: candidates, Threshold: models.Ptr(3.0)})
	stdErr, ok = apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidDedupOptions, stdErr.Code)
}
