// Package config provides application configuration.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration. Variables carry
// the MANTID_ prefix; nested structs use an underscore delimiter (e.g.
// MANTID_EMBEDDING_BASE_URL).
type EnvConfig struct {
	// DataDir is the data directory path.
	// Env: MANTID_DATA_DIR (default: ~/.mantid)
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: MANTID_DB_URL (default: sqlite:///{data_dir}/mantid.db)
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: MANTID_LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: MANTID_LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// Embedding configures the embedding service client.
	Embedding EmbeddingEnv `envconfig:"EMBEDDING"`

	// Evaluation configures the self-match evaluation harness.
	Evaluation EvaluationEnv `envconfig:"EVALUATION"`
}

// EmbeddingEnv holds environment configuration for the embedding
// service endpoint.
type EmbeddingEnv struct {
	// BaseURL is the full URL of the embed endpoint.
	// Env: MANTID_EMBEDDING_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// APIKey authenticates against the service.
	// Env: MANTID_EMBEDDING_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Dimension is the embedding dimension the service emits. Vectors
	// of any other length are rejected.
	// Env: MANTID_EMBEDDING_DIMENSION (default: 1024)
	Dimension int `envconfig:"DIMENSION" default:"1024"`

	// Timeout is the per-request timeout in seconds.
	// Env: MANTID_EMBEDDING_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`

	// MaxRetries is the retry budget for transient failures.
	// Env: MANTID_EMBEDDING_MAX_RETRIES (default: 3)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"3"`

	// InitialDelay is the initial retry delay in seconds.
	// Env: MANTID_EMBEDDING_INITIAL_DELAY (default: 2.0)
	InitialDelay float64 `envconfig:"INITIAL_DELAY" default:"2.0"`

	// BackoffFactor is the retry backoff multiplier.
	// Env: MANTID_EMBEDDING_BACKOFF_FACTOR (default: 2.0)
	BackoffFactor float64 `envconfig:"BACKOFF_FACTOR" default:"2.0"`
}

// EvaluationEnv holds environment configuration for evaluation runs.
type EvaluationEnv struct {
	// MatchCount is how many neighbors each query retrieves.
	// Env: MANTID_EVALUATION_MATCH_COUNT (default: 10)
	MatchCount int `envconfig:"MATCH_COUNT" default:"10"`

	// MinScore is the similarity floor; -1 accepts everything.
	// Env: MANTID_EVALUATION_MIN_SCORE (default: -1.0)
	MinScore float64 `envconfig:"MIN_SCORE" default:"-1.0"`

	// PageSize is how many entities one catalog page holds.
	// Env: MANTID_EVALUATION_PAGE_SIZE (default: 50)
	PageSize int `envconfig:"PAGE_SIZE" default:"50"`

	// FlushChunkSize caps the rows of a single flush statement.
	// Env: MANTID_EVALUATION_FLUSH_CHUNK_SIZE (default: 500)
	FlushChunkSize int `envconfig:"FLUSH_CHUNK_SIZE" default:"500"`

	// ThrottleMillis is the fixed delay between entities in
	// milliseconds.
	// Env: MANTID_EVALUATION_THROTTLE_MILLIS (default: 150)
	ThrottleMillis int `envconfig:"THROTTLE_MILLIS" default:"150"`
}

// envPrefix is the prefix shared by every environment variable.
const envPrefix = "MANTID"

// ReadEnv parses the environment into an EnvConfig.
func ReadEnv() (EnvConfig, error) {
	var env EnvConfig
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return EnvConfig{}, fmt.Errorf("parse environment: %w", err)
	}
	return env, nil
}

// TimeoutDuration returns the timeout as a time.Duration.
func (e EmbeddingEnv) TimeoutDuration() time.Duration {
	return time.Duration(e.Timeout * float64(time.Second))
}

// InitialDelayDuration returns the initial retry delay as a
// time.Duration.
func (e EmbeddingEnv) InitialDelayDuration() time.Duration {
	return time.Duration(e.InitialDelay * float64(time.Second))
}

// ThrottleInterval returns the inter-entity delay as a time.Duration.
func (e EvaluationEnv) ThrottleInterval() time.Duration {
	return time.Duration(e.ThrottleMillis) * time.Millisecond
}
