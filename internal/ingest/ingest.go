// Package ingest runs duplicate detection against a catalog snapshot and
// resolves an import batch into the records to write.
package ingest

import (
	"context"
	"errors"

	apperrors "scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/engine/dedup"
	"scholarship-workers/internal/models"
)

// Snapshotter reads the catalog in a stable order.
type Snapshotter interface {
	Snapshot(ctx context.Context, limit int) ([]models.Scholarship, error)
}

type Deduplicator struct {
	catalog Snapshotter
	limit   int
	opts    []dedup.Option
}

// NewDeduplicator reads at most limit catalog records per run (0 reads all).
func NewDeduplicator(catalog Snapshotter, limit int, opts ...dedup.Option) *Deduplicator {
	return &Deduplicator{catalog: catalog, limit: limit, opts: opts}
}

// Detection is the outcome of one run together with the catalog records it
// matched against.
type Detection struct {
	Matches []models.DuplicateMatch
	Summary dedup.Summary

	existing map[string]models.Scholarship
}

// Existing returns the catalog record with the given id from the snapshot.
func (d *Detection) Existing(id string) (models.Scholarship, bool) {
	s, ok := d.existing[id]
	return s, ok
}

// Detect reads one catalog snapshot, when the options need it, and classifies
// the candidates against it.
func (d *Deduplicator) Detect(ctx context.Context, candidates []models.Scholarship, opts dedup.Options) (*Detection, error) {
	if err := opts.Validate(); err != nil {
		return nil, apperrors.NewInvalidDedupOptionsError(err.Error())
	}

	var snapshot []models.Scholarship
	if opts.CheckExisting {
		s, err := d.catalog.Snapshot(ctx, d.limit)
		if err != nil {
			return nil, err
		}
		snapshot = s
	}

	matches, summary, err := dedup.NewDetector(snapshot, d.opts...).Detect(ctx, candidates, opts)
	if err != nil {
		if errors.Is(err, dedup.ErrInvalidOptions) {
			return nil, apperrors.NewInvalidDedupOptionsError(err.Error())
		}
		return nil, apperrors.NewQueryTimeoutError("detect duplicates")
	}
	if matches == nil {
		matches = []models.DuplicateMatch{}
	}

	existing := make(map[string]models.Scholarship, len(snapshot))
	for _, s := range snapshot {
		existing[s.ID] = s
	}
	return &Detection{Matches: matches, Summary: summary, existing: existing}, nil
}

// MergedRecord is a candidate folded into the catalog record it duplicates.
type MergedRecord struct {
	Index      int                `json:"index"`
	ExistingID string             `json:"existingId"`
	Record     models.Scholarship `json:"record"`
}

// MergeExisting merges every catalog duplicate into its existing record.
// Batch duplicates are not included.
func (d *Detection) MergeExisting(candidates []models.Scholarship, merger *dedup.Merger) []MergedRecord {
	out := []MergedRecord{}
	for _, m := range d.Matches {
		if m.Source != models.DuplicateSourceCatalog {
			continue
		}
		existing, ok := d.existing[m.ExistingID]
		if !ok {
			continue
		}
		out = append(out, MergedRecord{
			Index:      m.Index,
			ExistingID: m.ExistingID,
			Record:     merger.Merge(existing, candidates[m.Index]),
		})
	}
	return out
}
