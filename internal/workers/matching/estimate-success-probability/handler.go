// internal/workers/matching/estimate-success-probability/handler.go
package estimatesuccessprobability

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/metrics"
	"scholarship-workers/internal/engine/probability"
	"scholarship-workers/internal/models"
)

const (
	TaskType = "estimate-success-probability"
)

type Handler struct {
	config *Config
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		errors: apperrors.NewErrorHandler(log),
		logger: log,
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.EssayQuality == nil {
		return nil, apperrors.NewInvalidScoringInputError("essayQuality is required")
	}
	for name, v := range map[string]*float64{
		"essayQuality":    input.EssayQuality,
		"profileStrength": input.ProfileStrength,
		"matchScore":      input.MatchScore,
	} {
		if v != nil && (math.IsNaN(*v) || *v < 0 || *v > 100) {
			return nil, apperrors.NewInvalidScoringInputError(name + " must be within [0, 100]")
		}
	}

	level := resolveLevel(input.CompetitionLevel)
	res := probability.Estimate(probability.Input{
		EssayQuality:     input.EssayQuality,
		ProfileStrength:  input.ProfileStrength,
		MatchScore:       input.MatchScore,
		CompetitionLevel: &level,
	})

	return &Output{
		Probability:           res.Probability,
		CompetitionLevel:      string(level),
		CompetitionMultiplier: probability.Multiplier(&level),
		UsingDefaultProfile:   res.UsingDefaultProfile,
		UsingDefaultMatch:     res.UsingDefaultMatch,
	}, nil
}

// resolveLevel accepts any letter case and falls back to the default level
// for missing or unknown values.
func resolveLevel(raw *string) models.CompetitionLevel {
	if raw == nil {
		return probability.DefaultCompetition
	}
	switch level := models.CompetitionLevel(strings.ToLower(strings.TrimSpace(*raw))); level {
	case models.CompetitionLow, models.CompetitionMedium, models.CompetitionHigh:
		return level
	default:
		return probability.DefaultCompetition
	}
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
