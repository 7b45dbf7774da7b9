// internal/workers/notification/notify-priority-matches/models.go
package notifyprioritymatches

import "scholarship-workers/internal/models"

type Input struct {
	StudentID   string                `json:"studentId"`
	StudentName string                `json:"studentName,omitempty"`
	Email       string                `json:"email,omitempty"`
	Phone       string                `json:"phone,omitempty"`
	Matches     []models.MatchSummary `json:"matches"`
}

type Output struct {
	StudentID      string   `json:"studentId"`
	Status         string   `json:"status"`
	Notified       int      `json:"notified"`
	EmailSent      bool     `json:"emailSent"`
	EmailMessageID string   `json:"emailMessageId,omitempty"`
	SMSSent        bool     `json:"smsSent"`
	SMSMessageID   string   `json:"smsMessageId,omitempty"`
	SMSError       string   `json:"smsError,omitempty"`
	Skipped        []string `json:"skipped,omitempty"`
}

// Statuses
const (
	StatusSent    = "sent"
	StatusSkipped = "skipped"
)

// Channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)
