// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every task worker. Handlers complete or fail
// the job themselves.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

type WorkerOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
}

// JobWorker is one opened Zeebe job subscription.
type JobWorker struct {
	worker   worker.JobWorker
	log      logger.Logger
	taskType string
}

// NewWorker opens a job worker for taskType and records active jobs and job
// duration around every call.
func NewWorker(client zbc.Client, taskType string, opts WorkerOptions, handler JobHandler, log logger.Logger) *JobWorker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	step := client.NewJobWorker().
		JobType(taskType).
		Handler(func(jc worker.JobClient, job entities.Job) {
			start := time.Now()
			metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
			defer func() {
				metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
				metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
			}()

			handler.Handle(jc, job)
		}).
		MaxJobsActive(opts.MaxJobsActive)

	if opts.Timeout > 0 {
		step = step.Timeout(opts.Timeout)
	}

	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": opts.MaxJobsActive,
		"timeout":       opts.Timeout.String(),
	})
	return &JobWorker{worker: step.Open(), log: log, taskType: taskType}
}

func (w *JobWorker) TaskType() string {
	return w.taskType
}

// Stop closes the subscription and waits for in-flight jobs.
func (w *JobWorker) Stop() {
	w.log.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
