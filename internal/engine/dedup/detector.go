// Package dedup links incoming scholarship records to catalog records and to
// earlier records of the same import batch, and merges confirmed duplicates.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"scholarship-workers/internal/common/textutil"
	"scholarship-workers/internal/models"
)

const DefaultThreshold = 0.9

var ErrInvalidOptions = errors.New("invalid dedup options")

// Options controls one detection run.
type Options struct {
	Threshold        float64 `json:"threshold"`
	CheckExisting    bool    `json:"checkExisting"`
	CheckWithinArray bool    `json:"checkWithinArray"`
}

func DefaultOptions() Options {
	return Options{
		Threshold:        DefaultThreshold,
		CheckExisting:    true,
		CheckWithinArray: true,
	}
}

func (o Options) Validate() error {
	if math.IsNaN(o.Threshold) || o.Threshold < 0 || o.Threshold > 1 {
		return fmt.Errorf("%w: threshold %v outside [0,1]", ErrInvalidOptions, o.Threshold)
	}
	return nil
}

// Summary counts the classifications of one run.
type Summary struct {
	Candidates int `json:"candidates"`
	Exact      int `json:"exact"`
	Fuzzy      int `json:"fuzzy"`
	Batch      int `json:"batch"`
}

func (s Summary) Total() int {
	return s.Exact + s.Fuzzy + s.Batch
}

// Hook observes detection runs. Implementations must be safe for concurrent
// use.
type Hook interface {
	DuplicatesDetected(ctx context.Context, s Summary)
}

type catalogEntry struct {
	id       string
	name     string
	provider string
}

// Detector matches candidates against one read-only catalog snapshot.
type Detector struct {
	catalog     []catalogEntry
	concurrency int
	hook        Hook
}

type Option func(*Detector)

// WithConcurrency bounds the parallel catalog pass. Values below 1 run it
// sequentially.
func WithConcurrency(n int) Option {
	return func(d *Detector) { d.concurrency = n }
}

// Concurrency reports the bound applied to the catalog pass.
func (d *Detector) Concurrency() int { return d.concurrency }

func WithHook(h Hook) Option {
	return func(d *Detector) { d.hook = h }
}

// NewDetector snapshots the catalog. Later changes to the slice are not
// observed.
func NewDetector(catalog []models.Scholarship, opts ...Option) *Detector {
	d := &Detector{
		catalog:     make([]catalogEntry, len(catalog)),
		concurrency: 1,
	}
	for i, s := range catalog {
		d.catalog[i] = catalogEntry{id: s.ID, name: textutil.Key(s.Name), provider: textutil.Key(s.Provider)}
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect classifies every candidate at most once and returns the duplicates
// in candidate order. Catalog matches take priority over batch matches.
func (d *Detector) Detect(ctx context.Context, candidates []models.Scholarship, opts Options) ([]models.DuplicateMatch, Summary, error) {
	summary := Summary{Candidates: len(candidates)}
	if err := opts.Validate(); err != nil {
		return nil, summary, err
	}

	slots := make([]*models.DuplicateMatch, len(candidates))

	if opts.CheckExisting && len(d.catalog) > 0 {
		if err := d.catalogPass(ctx, candidates, opts.Threshold, slots); err != nil {
			return nil, summary, err
		}
	}
	if opts.CheckWithinArray {
		batchPass(candidates, slots)
	}

	var matches []models.DuplicateMatch
	for _, m := range slots {
		if m == nil {
			continue
		}
		switch {
		case m.Source == models.DuplicateSourceBatch:
			summary.Batch++
		case m.IsExact:
			summary.Exact++
		default:
			summary.Fuzzy++
		}
		matches = append(matches, *m)
	}

	if d.hook != nil {
		d.hook.DuplicatesDetected(ctx, summary)
	}
	return matches, summary, nil
}

func (d *Detector) catalogPass(ctx context.Context, candidates []models.Scholarship, threshold float64, slots []*models.DuplicateMatch) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, d.concurrency))

	for i := range candidates {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = d.bestCatalogMatch(i, candidates[i], threshold)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// bestCatalogMatch returns the exact match if any, otherwise the highest
// similarity at or above threshold. Ties keep the first catalog entry.
func (d *Detector) bestCatalogMatch(index int, c models.Scholarship, threshold float64) *models.DuplicateMatch {
	name, provider := textutil.Key(c.Name), textutil.Key(c.Provider)

	var best *models.DuplicateMatch
	for _, e := range d.catalog {
		if e.name == name && e.provider == provider {
			return &models.DuplicateMatch{
				Index:      index,
				ExistingID: e.id,
				Source:     models.DuplicateSourceCatalog,
				Similarity: 1.0,
				IsExact:    true,
			}
		}
		sim := NameWeight*Ratio(name, e.name) + ProviderWeight*Ratio(provider, e.provider)
		if sim < threshold || (best != nil && sim <= best.Similarity) {
			continue
		}
		best = &models.DuplicateMatch{
			Index:      index,
			ExistingID: e.id,
			Source:     models.DuplicateSourceCatalog,
			Similarity: sim,
		}
	}
	return best
}

// batchPass runs in input order so the first occurrence of a pair always
// wins.
func batchPass(candidates []models.Scholarship, slots []*models.DuplicateMatch) {
	type pair struct{ name, provider string }
	first := make(map[pair]int, len(candidates))

	for i, c := range candidates {
		key := pair{textutil.Key(c.Name), textutil.Key(c.Provider)}
		earlier, seen := first[key]
		if !seen {
			first[key] = i
			continue
		}
		if slots[i] != nil {
			continue
		}
		slots[i] = &models.DuplicateMatch{
			Index:      i,
			BatchIndex: &earlier,
			Source:     models.DuplicateSourceBatch,
			Similarity: 1.0,
			IsExact:    true,
		}
	}
}
