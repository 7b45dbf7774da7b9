// internal/workers/profile/calculate-profile-strength/handler.go
package calculateprofilestrength

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/metrics"
	"scholarship-workers/internal/engine/completeness"
	"scholarship-workers/internal/engine/strength"
	"scholarship-workers/internal/models"
)

const (
	TaskType = "calculate-profile-strength"
)

type ProfileStore interface {
	Get(ctx context.Context, studentID string) (*models.Profile, error)
}

type ScoreWriter interface {
	SaveScores(ctx context.Context, studentID string, completion int, strength float64) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, studentID string) error
}

type Handler struct {
	config   *Config
	profiles ProfileStore
	scores   ScoreWriter
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

// NewHandler builds the handler. scores may be nil, in which case nothing is
// written back.
func NewHandler(config *Config, profiles ProfileStore, scores ScoreWriter, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		profiles: profiles,
		scores:   scores,
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
	profile := input.Profile
	studentID := input.StudentID

	if profile == nil {
		if studentID == "" {
			return nil, apperrors.NewProfileInvalidError("studentId or profile is required")
		}
		p, err := h.profiles.Get(ctx, studentID)
		if err != nil {
			return nil, err
		}
		profile = p
	}
	if studentID == "" {
		studentID = profile.StudentID
	}

	if err := models.ValidateProfile(profile); err != nil {
		return nil, apperrors.NewProfileInvalidError(err.Error())
	}

	comp := completeness.Calculate(profile)
	b := strength.Compute(profile, comp.Percentage)

	output := &Output{
		StudentID:            studentID,
		CompletionPercentage: comp.Percentage,
		MissingRequired:      comp.MissingRequired,
		MissingRecommended:   comp.MissingRecommended,
		StrengthBreakdown:    b,
		Recommendations:      strength.Recommend(profile, b),
	}

	if h.config.PersistScores && h.scores != nil && studentID != "" {
		if err := h.scores.SaveScores(ctx, studentID, comp.Percentage, b.Overall); err != nil {
			return nil, fmt.Errorf("save scores for %s: %w", studentID, err)
		}
		output.ScoresSaved = true

		if inv, ok := h.profiles.(cacheInvalidator); ok {
			if err := inv.Invalidate(ctx, studentID); err != nil {
				h.logger.Warn("failed to invalidate cached profile", map[string]interface{}{
					"studentId": studentID,
					"error":     err.Error(),
				})
			}
		}
	}

	return output, nil
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
