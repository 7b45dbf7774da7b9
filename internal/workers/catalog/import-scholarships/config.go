// internal/workers/catalog/import-scholarships/config.go
package importscholarships

import (
	"time"

	"scholarship-workers/internal/engine/dedup"
	"scholarship-workers/internal/store"
)

type Config struct {
	Timeout        time.Duration
	ChunkSize      int
	DedupThreshold float64
	// SkipExpired drops records whose deadline has already passed.
	SkipExpired bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        5 * time.Minute,
		ChunkSize:      store.DefaultChunkSize,
		DedupThreshold: dedup.DefaultThreshold,
		SkipExpired:    true,
	}
}
