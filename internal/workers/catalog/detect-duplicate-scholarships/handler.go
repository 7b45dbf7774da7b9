// internal/workers/catalog/detect-duplicate-scholarships/handler.go
package detectduplicatescholarships

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/metrics"
	"scholarship-workers/internal/engine/dedup"
	"scholarship-workers/internal/ingest"
)

const (
	TaskType = "detect-duplicate-scholarships"
)

type Handler struct {
	config *Config
	dedup  *ingest.Deduplicator
	merger *dedup.Merger
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, deduplicator *ingest.Deduplicator, merger *dedup.Merger, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	if merger == nil {
		merger = dedup.NewMerger(nil)
	}
	return &Handler{
		config: config,
		dedup:  deduplicator,
		merger: merger,
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

func (h *Handler) options(input *Input) dedup.Options {
	opts := dedup.DefaultOptions()
	if h.config.DefaultThreshold > 0 {
		opts.Threshold = h.config.DefaultThreshold
	}
	if input.Threshold != nil {
		opts.Threshold = *input.Threshold
	}
	if input.CheckExisting != nil {
		opts.CheckExisting = *input.CheckExisting
	}
	if input.CheckWithinArray != nil {
		opts.CheckWithinArray = *input.CheckWithinArray
	}
	return opts
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	det, err := h.dedup.Detect(ctx, input.Candidates, h.options(input))
	if err != nil {
		return nil, err
	}

	flagged := make(map[int]struct{}, len(det.Matches))
	for _, m := range det.Matches {
		flagged[m.Index] = struct{}{}
	}
	unique := make([]int, 0, len(input.Candidates)-len(flagged))
	for i := range input.Candidates {
		if _, ok := flagged[i]; !ok {
			unique = append(unique, i)
		}
	}

	output := &Output{
		Duplicates:    det.Matches,
		Summary:       det.Summary,
		HasDuplicates: len(det.Matches) > 0,
		UniqueIndexes: unique,
	}
	if input.IncludeMerged {
		output.Merged = det.MergeExisting(input.Candidates, h.merger)
	}

	h.logger.Info("duplicate detection finished", map[string]interface{}{
		"candidates": det.Summary.Candidates,
		"exact":      det.Summary.Exact,
		"fuzzy":      det.Summary.Fuzzy,
		"batch":      det.Summary.Batch,
	})
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
