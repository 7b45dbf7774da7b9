// internal/workers/profile/calculate-profile-strength/config.go
package calculateprofilestrength

import "time"

type Config struct {
	Timeout time.Duration
	// PersistScores writes completion and strength back to the profile row.
	PersistScores bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       10 * time.Second,
		PersistScores: true,
	}
}
