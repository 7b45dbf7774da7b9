// internal/workers/notification/notify-priority-matches/handler.go
package notifyprioritymatches

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"scholarship-workers/internal/common/aws"
	apperrors "scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/metrics"
	"scholarship-workers/internal/common/validation"
	"scholarship-workers/internal/models"
)

const (
	TaskType = "notify-priority-matches"
)

type Mailer interface {
	Send(ctx context.Context, msg aws.Email) (string, error)
}

type Texter interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type Handler struct {
	config *Config
	mailer Mailer
	texter Texter
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, mailer Mailer, texter Texter, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		mailer: mailer,
		texter: texter,
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	output := &Output{StudentID: input.StudentID, Status: StatusSkipped}

	matches := priorityMatches(input.Matches)
	output.Notified = len(matches)
	if len(matches) == 0 {
		output.Skipped = append(output.Skipped, "no priority matches")
		return output, nil
	}

	if err := h.sendEmail(ctx, input, matches, output); err != nil {
		return nil, err
	}
	if err := h.sendSMS(ctx, input, matches, output); err != nil {
		// A retry would resend the digest, so a text failure after a
		// delivered email is only reported.
		if !output.EmailSent {
			return nil, err
		}
		output.SMSError = err.Error()
		h.logger.Warn("sms delivery failed after email", map[string]interface{}{
			"studentId": input.StudentID,
			"error":     err.Error(),
		})
	}

	if output.EmailSent || output.SMSSent {
		output.Status = StatusSent
	}
	h.logger.Info("priority matches notified", map[string]interface{}{
		"studentId": input.StudentID,
		"matches":   output.Notified,
		"email":     output.EmailSent,
		"sms":       output.SMSSent,
	})
	return output, nil
}

func (h *Handler) sendEmail(ctx context.Context, input *Input, matches []models.MatchSummary, output *Output) error {
	switch {
	case !h.config.EmailEnabled || h.mailer == nil:
		output.Skipped = append(output.Skipped, "email disabled")
		return nil
	case input.Email == "":
		output.Skipped = append(output.Skipped, "no email address")
		return nil
	case !validation.ValidateEmail(input.Email):
		output.Skipped = append(output.Skipped, "invalid email address")
		return nil
	}

	text, html, err := renderDigest(buildDigest(input.StudentName, matches, h.config.MaxDigestItems))
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	id, err := h.mailer.Send(ctx, aws.Email{
		From:     h.config.FromEmail,
		To:       input.Email,
		Subject:  digestSubject(len(matches)),
		HTMLBody: html,
		TextBody: text,
	})
	if err != nil {
		return apperrors.NewNotificationSendFailedError(ChannelEmail, err)
	}
	metrics.NotificationsSent.WithLabelValues(ChannelEmail).Inc()
	output.EmailSent = true
	output.EmailMessageID = id
	return nil
}

func (h *Handler) sendSMS(ctx context.Context, input *Input, matches []models.MatchSummary, output *Output) error {
	switch {
	case !h.config.SMSEnabled || h.texter == nil:
		return nil
	case input.Phone == "":
		output.Skipped = append(output.Skipped, "no phone number")
		return nil
	case !validation.ValidatePhone(input.Phone):
		output.Skipped = append(output.Skipped, "invalid phone number")
		return nil
	}

	msg, n := smsText(matches, h.config.SMSMinTier)
	if n == 0 {
		output.Skipped = append(output.Skipped, "no matches at sms tier")
		return nil
	}

	id, err := h.texter.SendSMS(ctx, input.Phone, msg)
	if err != nil {
		return apperrors.NewNotificationSendFailedError(ChannelSMS, err)
	}
	metrics.NotificationsSent.WithLabelValues(ChannelSMS).Inc()
	output.SMSSent = true
	output.SMSMessageID = id
	return nil
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
