// internal/workers/catalog/import-scholarships/handler.go
package importscholarships

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/metrics"
	"scholarship-workers/internal/common/validation"
	"scholarship-workers/internal/engine/dedup"
	"scholarship-workers/internal/ingest"
	"scholarship-workers/internal/models"
	"scholarship-workers/internal/store"
)

const (
	TaskType = "import-scholarships"
)

type ChunkApplier interface {
	Apply(ctx context.Context, records []models.Scholarship, chunkSize int) ([]models.Scholarship, []store.ChunkResult)
}

type SearchIndexer interface {
	IndexScholarships(ctx context.Context, scholarships []models.Scholarship) (int, error)
}

type Handler struct {
	config    *Config
	validator *validation.SchemaValidator
	dedup     *ingest.Deduplicator
	merger    *dedup.Merger
	applier   ChunkApplier
	index     SearchIndexer
	now       func() time.Time
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

// NewHandler builds the import handler. index may be nil to skip the search
// projection.
func NewHandler(config *Config, validator *validation.SchemaValidator, deduplicator *ingest.Deduplicator,
	merger *dedup.Merger, applier ChunkApplier, index SearchIndexer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	if merger == nil {
		merger = dedup.NewMerger(nil)
	}
	return &Handler{
		config:    config,
		validator: validator,
		dedup:     deduplicator,
		merger:    merger,
		applier:   applier,
		index:     index,
		now:       func() time.Time { return time.Now().UTC() },
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
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
	chunkSize := h.config.ChunkSize
	if input.ChunkSize != nil {
		if *input.ChunkSize <= 0 {
			return nil, apperrors.NewImportValidationFailedError("chunkSize must be positive")
		}
		chunkSize = *input.ChunkSize
	}
	skipExpired := h.config.SkipExpired
	if input.SkipExpired != nil {
		skipExpired = *input.SkipExpired
	}

	output := &Output{
		Received:    len(input.Candidates),
		Invalid:     []InvalidRecord{},
		Skipped:     []SkippedRecord{},
		Chunks:      []ChunkReport{},
		ImportedIDs: []string{},
	}

	accepted, origin := h.screen(input.Candidates, skipExpired, output)
	output.Accepted = len(accepted)
	if len(accepted) == 0 {
		return output, nil
	}

	opts := dedup.DefaultOptions()
	if h.config.DedupThreshold > 0 {
		opts.Threshold = h.config.DedupThreshold
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

	det, err := h.dedup.Detect(ctx, accepted, opts)
	if err != nil {
		return nil, err
	}
	output.Duplicates = det.Summary

	res := ingest.Resolve(accepted, det, h.merger)
	output.Created = res.Count(ingest.ActionCreate)
	output.MergedExisting = res.Count(ingest.ActionMergeExisting)
	output.Folded = res.Count(ingest.ActionFold)

	// recordOrigin maps a resolved record back to the candidate it came from.
	recordOrigin := make([]int, len(res.Records))
	for _, o := range res.Outcomes {
		if o.Action != ingest.ActionFold {
			recordOrigin[o.RecordIndex] = origin[o.Index]
		}
	}

	written, chunks := h.applier.Apply(ctx, res.Records, chunkSize)

	var committed []models.Scholarship
	for _, c := range chunks {
		report := ChunkReport{ChunkResult: c}
		if c.Committed {
			metrics.ImportChunks.WithLabelValues("committed").Inc()
			committed = append(committed, written[c.Start:c.Start+c.Size]...)
			output.ImportedIDs = append(output.ImportedIDs, c.IDs...)
		} else {
			metrics.ImportChunks.WithLabelValues("failed").Inc()
			output.FailedChunks++
			if c.FailedRecord != nil {
				idx := recordOrigin[*c.FailedRecord]
				report.FailedCandidate = &idx
			}
			h.logger.Warn("import chunk rolled back", map[string]interface{}{
				"chunk":  c.Index,
				"reason": c.Reason,
			})
		}
		output.Chunks = append(output.Chunks, report)
	}

	if output.FailedChunks == len(chunks) {
		first := chunks[0]
		return nil, apperrors.NewChunkCommitFailedError(first.Index, errors.New(first.Reason)).
			WithMetadata("failedChunks", output.FailedChunks)
	}

	if h.index != nil && len(committed) > 0 {
		n, err := h.index.IndexScholarships(ctx, committed)
		output.Indexed = n
		if err != nil {
			output.IndexError = err.Error()
			h.logger.Warn("search index update incomplete", map[string]interface{}{
				"indexed": n,
				"error":   err.Error(),
			})
		}
	}

	h.logger.Info("scholarship import finished", map[string]interface{}{
		"received":     output.Received,
		"accepted":     output.Accepted,
		"created":      output.Created,
		"merged":       output.MergedExisting,
		"folded":       output.Folded,
		"failedChunks": output.FailedChunks,
	})
	return output, nil
}

// screen validates and decodes every candidate and drops expired ones. It
// returns the accepted records and, for each, its position in the input.
func (h *Handler) screen(candidates []json.RawMessage, skipExpired bool, output *Output) ([]models.Scholarship, []int) {
	asOf := h.now()
	accepted := make([]models.Scholarship, 0, len(candidates))
	origin := make([]int, 0, len(candidates))

	for i, raw := range candidates {
		result := h.validator.ValidateBytes(raw)
		if !result.Valid {
			output.Invalid = append(output.Invalid, InvalidRecord{Index: i, Errors: result.GetErrorMessages()})
			continue
		}

		var s models.Scholarship
		if err := json.Unmarshal(raw, &s); err != nil {
			output.Invalid = append(output.Invalid, InvalidRecord{Index: i, Errors: []string{err.Error()}})
			continue
		}

		if skipExpired && s.Deadline != nil && s.Deadline.Before(asOf) {
			output.Skipped = append(output.Skipped, SkippedRecord{
				Index:  i,
				Reason: "deadline " + s.Deadline.UTC().Format("2006-01-02") + " has passed",
			})
			continue
		}

		accepted = append(accepted, s)
		origin = append(origin, i)
	}
	return accepted, origin
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
