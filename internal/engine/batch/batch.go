// Package batch runs the per-student scoring pipeline: eligibility filter,
// dimensional scoring, success probability and tiering.
package batch

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"scholarship-workers/internal/engine/eligibility"
	"scholarship-workers/internal/engine/matching"
	"scholarship-workers/internal/engine/probability"
	"scholarship-workers/internal/engine/strength"
	"scholarship-workers/internal/engine/tiering"
	"scholarship-workers/internal/models"
)

const DefaultConcurrency = 8

// Input is one student's scoring run.
type Input struct {
	Profile      *models.Profile
	Scholarships []models.Scholarship
	// EssayQuality is optional; batch runs usually have no essay signal.
	EssayQuality *float64
	AsOf         time.Time
}

type Result struct {
	Matches  []models.Match
	Excluded []eligibility.Exclusion
	Strength strength.Breakdown
}

// TierCounts tallies the matches of a result per tier.
func (r Result) TierCounts() map[models.PriorityTier]int {
	counts := make(map[models.PriorityTier]int, 5)
	for _, m := range r.Matches {
		counts[m.PriorityTier]++
	}
	if len(r.Excluded) > 0 {
		counts[models.TierIneligible] = len(r.Excluded)
	}
	return counts
}

// Notifiable returns the scholarship ids of matches in a notifiable tier, in
// match order.
func (r Result) Notifiable() []string {
	var ids []string
	for _, m := range r.Matches {
		if m.PriorityTier.Notifiable() {
			ids = append(ids, m.ScholarshipID)
		}
	}
	return ids
}

// Stats describes one completed run.
type Stats struct {
	StudentID  string
	Candidates int
	Scored     int
	Excluded   int
	Duration   time.Duration
	Tiers      map[models.PriorityTier]int
}

// Hook observes completed runs. Implementations must be safe for concurrent
// use.
type Hook interface {
	BatchScored(ctx context.Context, s Stats)
}

type Scorer struct {
	concurrency int
	hook        Hook
	tracer      trace.Tracer
}

type Option func(*Scorer)

func WithConcurrency(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithHook(h Hook) Option {
	return func(s *Scorer) { s.hook = h }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Scorer) {
		if t != nil {
			s.tracer = t
		}
	}
}

func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		concurrency: DefaultConcurrency,
		tracer:      noop.NewTracerProvider().Tracer("batch"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run scores every eligible scholarship for the profile. Matches keep the
// input order of the scholarships; excluded scholarships carry their first
// failing dimension and never produce a Match. A cancelled context stops new
// pairs from being scheduled and returns the context error.
func (s *Scorer) Run(ctx context.Context, in Input) (Result, error) {
	start := time.Now()
	p := in.Profile
	if p == nil {
		p = &models.Profile{}
	}

	ctx, span := s.tracer.Start(ctx, "batch.Run", trace.WithAttributes(
		attribute.String("student.id", p.StudentID),
		attribute.Int("scholarships", len(in.Scholarships)),
	))
	defer span.End()

	profileStrength := strength.Score(p).Breakdown
	eligible, excluded := eligibility.Partition(p, in.Scholarships, in.AsOf)

	matches := make([]models.Match, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range eligible {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			matches[i] = ScorePair(p, profileStrength.Overall, &eligible[i], in.EssayQuality, in.AsOf)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		return Result{}, err
	}

	res := Result{Matches: matches, Excluded: excluded, Strength: profileStrength}
	span.SetAttributes(
		attribute.Int("matches", len(matches)),
		attribute.Int("excluded", len(excluded)),
	)

	if s.hook != nil {
		s.hook.BatchScored(ctx, Stats{
			StudentID:  p.StudentID,
			Candidates: len(in.Scholarships),
			Scored:     len(matches),
			Excluded:   len(excluded),
			Duration:   time.Since(start),
			Tiers:      res.TierCounts(),
		})
	}
	return res, nil
}

// ScorePair scores one eligible (profile, scholarship) pair. It is pure:
// ComputedAt is asOf, so identical inputs yield identical matches.
func ScorePair(p *models.Profile, profileStrength float64, s *models.Scholarship, essayQuality *float64, asOf time.Time) models.Match {
	dims, overall := matching.Score(p, s, asOf)

	prob := probability.Estimate(probability.Input{
		EssayQuality:     essayQuality,
		ProfileStrength:  &profileStrength,
		MatchScore:       &overall,
		CompetitionLevel: s.CompetitionLevel,
	})

	effort, hours := tiering.Effort(s.Requirements)
	value := tiering.StrategicValue(s, effort)

	return models.Match{
		StudentID:          p.StudentID,
		ScholarshipID:      s.ID,
		Dimensions:         dims,
		OverallScore:       overall,
		SuccessProbability: prob,
		PriorityTier:       tiering.Assign(overall, prob.Probability, value),
		StrategicValue:     value,
		Effort:             effort,
		EstimatedHours:     hours,
		ComputedAt:         asOf,
	}
}
