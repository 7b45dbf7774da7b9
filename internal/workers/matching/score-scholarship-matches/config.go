// internal/workers/matching/score-scholarship-matches/config.go
package scorescholarshipmatches

import "time"

type Config struct {
	Timeout time.Duration
	// LookbackDays selects scholarships updated within the window when the
	// job names no scholarship ids.
	LookbackDays int
	CatalogLimit int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      2 * time.Minute,
		LookbackDays: 1,
		CatalogLimit: 5000,
	}
}
