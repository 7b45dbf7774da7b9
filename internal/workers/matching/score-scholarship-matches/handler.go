// internal/workers/matching/score-scholarship-matches/handler.go
package scorescholarshipmatches

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/metrics"
	"scholarship-workers/internal/engine/batch"
	"scholarship-workers/internal/engine/eligibility"
	"scholarship-workers/internal/models"
)

const (
	TaskType = "score-scholarship-matches"
)

type ProfileStore interface {
	Get(ctx context.Context, studentID string) (*models.Profile, error)
}

type CatalogReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Scholarship, error)
	ListUpdatedSince(ctx context.Context, since time.Time, limit int) ([]models.Scholarship, error)
}

type MatchWriter interface {
	Upsert(ctx context.Context, studentID string, matches []models.Match) (int, error)
}

type Handler struct {
	config   *Config
	profiles ProfileStore
	catalog  CatalogReader
	matches  MatchWriter
	scorer   *batch.Scorer
	now      func() time.Time
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, profiles ProfileStore, catalog CatalogReader, matches MatchWriter, scorer *batch.Scorer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	if scorer == nil {
		scorer = batch.NewScorer()
	}
	return &Handler{
		config:   config,
		profiles: profiles,
		catalog:  catalog,
		matches:  matches,
		scorer:   scorer,
		now:      func() time.Time { return time.Now().UTC() },
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, apperrors.NewParseError(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.StudentID == "" && (input.Profile == nil || input.Profile.StudentID == "") {
		return nil, apperrors.NewInvalidScoringInputError("studentId is required")
	}
	if input.EssayQuality != nil && (*input.EssayQuality < 0 || *input.EssayQuality > 100) {
		return nil, apperrors.NewInvalidScoringInputError("essayQuality must be within [0, 100]")
	}

	profile := input.Profile
	if profile == nil {
		p, err := h.profiles.Get(ctx, input.StudentID)
		if err != nil {
			return nil, err
		}
		profile = p
	}
	if profile.StudentID == "" {
		profile.StudentID = input.StudentID
	}

	asOf := h.now()
	if input.AsOf != nil {
		asOf = input.AsOf.UTC()
	}

	scholarships, err := h.loadCandidates(ctx, input, asOf)
	if err != nil {
		return nil, err
	}

	res, err := h.scorer.Run(ctx, batch.Input{
		Profile:      profile,
		Scholarships: scholarships,
		EssayQuality: input.EssayQuality,
		AsOf:         asOf,
	})
	if err != nil {
		return nil, apperrors.NewQueryTimeoutError("score scholarship matches")
	}

	upserted, err := h.matches.Upsert(ctx, profile.StudentID, res.Matches)
	if err != nil {
		return nil, err
	}

	for _, ex := range res.Excluded {
		metrics.ScholarshipsExcluded.WithLabelValues(string(ex.FailedDimension)).Inc()
	}

	output := &Output{
		StudentID:       profile.StudentID,
		ProfileStrength: res.Strength.Overall,
		Candidates:      len(scholarships),
		Scored:          len(res.Matches),
		Upserted:        upserted,
		TierCounts:      make(map[string]int),
		Excluded:        res.Excluded,
		NotifiableIDs:   res.Notifiable(),
		PriorityMatches: []models.MatchSummary{},
	}
	if output.Excluded == nil {
		output.Excluded = []eligibility.Exclusion{}
	}
	if output.NotifiableIDs == nil {
		output.NotifiableIDs = []string{}
	}
	for tier, n := range res.TierCounts() {
		output.TierCounts[string(tier)] = n
	}

	byID := make(map[string]models.Scholarship, len(scholarships))
	for _, s := range scholarships {
		byID[s.ID] = s
	}
	for _, m := range res.Matches {
		if m.PriorityTier.Notifiable() {
			output.PriorityMatches = append(output.PriorityMatches, models.Summarize(m, byID[m.ScholarshipID]))
		}
	}
	output.HasPriority = len(output.PriorityMatches) > 0

	h.logger.Info("scored scholarship matches", map[string]interface{}{
		"studentId":  output.StudentID,
		"candidates": output.Candidates,
		"scored":     output.Scored,
		"excluded":   len(output.Excluded),
		"priority":   len(output.PriorityMatches),
	})
	return output, nil
}

// loadCandidates reads the named scholarships, or the ones updated within the
// lookback window when none are named.
func (h *Handler) loadCandidates(ctx context.Context, input *Input, asOf time.Time) ([]models.Scholarship, error) {
	if len(input.ScholarshipIDs) > 0 {
		return h.catalog.ListByIDs(ctx, input.ScholarshipIDs)
	}

	days := h.config.LookbackDays
	if input.LookbackDays != nil {
		days = *input.LookbackDays
	}
	if days < 0 {
		return nil, apperrors.NewInvalidScoringInputError("lookbackDays must not be negative")
	}
	since := asOf.AddDate(0, 0, -days)
	return h.catalog.ListUpdatedSince(ctx, since, h.config.CatalogLimit)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	bpmnErr := h.errors.HandleJobError(context.Background(), client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
