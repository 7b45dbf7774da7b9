// internal/workers/catalog/detect-duplicate-scholarships/config.go
package detectduplicatescholarships

import (
	"time"

	"scholarship-workers/internal/engine/dedup"
)

type Config struct {
	Timeout          time.Duration
	DefaultThreshold float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:          time.Minute,
		DefaultThreshold: dedup.DefaultThreshold,
	}
}
