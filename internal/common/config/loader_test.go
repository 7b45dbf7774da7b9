package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: scholarships
    user: ${TEST_DB_USER}
  elasticsearch:
    addresses: ["http://localhost:9200"]
  redis:
    address: localhost:6379
workers:
  score-scholarship-matches:
    enabled: true
    max_jobs_active: 2
  import-scholarships:
    enabled: false
import:
  chunk_size: 50
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("TEST_DB_USER", "matcher")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "matcher", cfg.Database.Postgres.User)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "scholarships", cfg.Database.Elasticsearch.CatalogIndex)
	assert.Equal(t, 900, cfg.Database.Redis.ProfileTTL)

	assert.Equal(t, 50, cfg.Import.ChunkSize)
	assert.Equal(t, 0.9, cfg.Import.DedupThreshold)
	assert.Equal(t, 8, cfg.Matching.Concurrency)
	assert.Equal(t, "MUST_APPLY", cfg.Notifications.SMS.MinTier)
	assert.Equal(t, ":8080", cfg.Metrics.ListenAddress)

	score := cfg.Workers["score-scholarship-matches"]
	assert.True(t, score.Enabled)
	assert.Equal(t, 2, score.MaxJobsActive)
	assert.Equal(t, 30000, score.Timeout)
	assert.Equal(t, 3, score.MaxRetries)
	assert.False(t, cfg.Workers["import-scholarships"].Enabled)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing broker",
			yaml:    "database:\n  postgres:\n    host: h\n",
			wantErr: "camunda.broker_address",
		},
		{
			name: "threshold out of range",
			yaml: `
camunda: {broker_address: b}
database:
  postgres: {host: h, database: d, user: u}
  elasticsearch: {addresses: ["http://es"]}
  redis: {address: r}
import: {dedup_threshold: 1.5}
`,
			wantErr: "dedup_threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetWorkerConfig_FallsBackToDefaults(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"notify-priority-matches": {Enabled: false, MaxJobsActive: 1},
	}}

	assert.False(t, GetWorkerConfig(cfg, "notify-priority-matches").Enabled)

	def := GetWorkerConfig(cfg, "calculate-profile-strength")
	assert.True(t, def.Enabled)
	assert.Equal(t, 5, def.MaxJobsActive)
	assert.Equal(t, 3, def.MaxRetries)
}
