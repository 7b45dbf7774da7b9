// internal/workers/matching/estimate-success-probability/config.go
package estimatesuccessprobability

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
