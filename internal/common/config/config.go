package config

import "fmt"

// Config is the worker manager configuration.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Matching      MatchingConfig          `mapstructure:"matching"`
	Import        ImportConfig            `mapstructure:"import"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Metrics       MetricsConfig           `mapstructure:"metrics"`
	Registry      RegistryConfig          `mapstructure:"registry"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	// CatalogIndex is the index holding the searchable scholarship catalog.
	CatalogIndex string `mapstructure:"catalog_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// ProfileTTL is how long cached profiles live, in seconds.
	ProfileTTL int `mapstructure:"profile_ttl"`
}

// WorkerConfig holds the settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// MatchingConfig tunes the batch scorer.
type MatchingConfig struct {
	Concurrency  int `mapstructure:"concurrency"`
	LookbackDays int `mapstructure:"lookback_days"`
	CatalogLimit int `mapstructure:"catalog_limit"`
}

// ImportConfig tunes catalog ingestion and duplicate detection.
type ImportConfig struct {
	ChunkSize      int     `mapstructure:"chunk_size"`
	DedupThreshold float64 `mapstructure:"dedup_threshold"`
	SkipExpired    bool    `mapstructure:"skip_expired"`
	SchemaPath     string  `mapstructure:"schema_path"`
}

type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled bool `mapstructure:"enabled"`
		// MinTier is the lowest tier that triggers a text message.
		MinTier string `mapstructure:"min_tier"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	ListenAddress string `mapstructure:"listen_address"`
}

// RegistryConfig points at the activity registry describing every task type
// the process models may call.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}
