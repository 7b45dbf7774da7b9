// internal/workers/notification/notify-priority-matches/config.go
package notifyprioritymatches

import (
	"time"

	"scholarship-workers/internal/models"
)

type Config struct {
	Timeout      time.Duration
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	// SMSMinTier is the lowest tier that triggers a text message.
	SMSMinTier models.PriorityTier
	// MaxDigestItems caps the matches listed in one email.
	MaxDigestItems int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        15 * time.Second,
		EmailEnabled:   true,
		SMSEnabled:     false,
		SMSMinTier:     models.TierMustApply,
		MaxDigestItems: 10,
	}
}
