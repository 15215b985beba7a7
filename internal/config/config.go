package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// DefaultDataDir returns the default data directory (~/.mantid, falling
// back to .mantid when the home directory is unknown).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mantid"
	}
	return filepath.Join(home, ".mantid")
}

// AppConfig is the resolved, immutable application configuration.
type AppConfig struct {
	dataDir    string
	dbURL      string
	logLevel   string
	logFormat  LogFormat
	embedding  EmbeddingEnv
	evaluation EvaluationEnv
}

// LoadConfig resolves configuration from the optional .env file plus
// environment variables, filling derived defaults (data dir, DB URL).
func LoadConfig(envFile string) (AppConfig, error) {
	if err := LoadDotEnv(envFile); err != nil {
		return AppConfig{}, fmt.Errorf("load env file: %w", err)
	}

	env, err := ReadEnv()
	if err != nil {
		return AppConfig{}, err
	}

	dataDir := env.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	dbURL := env.DBURL
	if dbURL == "" {
		dbURL = fmt.Sprintf("sqlite:///%s", filepath.Join(dataDir, "mantid.db"))
	}

	format := LogFormat(env.LogFormat)
	if format != LogFormatJSON {
		format = LogFormatPretty
	}

	return AppConfig{
		dataDir:    dataDir,
		dbURL:      dbURL,
		logLevel:   env.LogLevel,
		logFormat:  format,
		embedding:  env.Embedding,
		evaluation: env.Evaluation,
	}, nil
}

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log verbosity level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// EmbeddingBaseURL returns the embed endpoint URL.
func (c AppConfig) EmbeddingBaseURL() string { return c.embedding.BaseURL }

// EmbeddingAPIKey returns the embedding service API key.
func (c AppConfig) EmbeddingAPIKey() string { return c.embedding.APIKey }

// EmbeddingDimension returns the configured embedding dimension.
func (c AppConfig) EmbeddingDimension() int { return c.embedding.Dimension }

// EmbeddingTimeout returns the per-request timeout.
func (c AppConfig) EmbeddingTimeout() time.Duration { return c.embedding.TimeoutDuration() }

// EmbeddingMaxRetries returns the retry budget.
func (c AppConfig) EmbeddingMaxRetries() int { return c.embedding.MaxRetries }

// EmbeddingInitialDelay returns the initial retry delay.
func (c AppConfig) EmbeddingInitialDelay() time.Duration { return c.embedding.InitialDelayDuration() }

// EmbeddingBackoffFactor returns the retry backoff multiplier.
func (c AppConfig) EmbeddingBackoffFactor() float64 { return c.embedding.BackoffFactor }

// MatchCount returns how many neighbors each query retrieves.
func (c AppConfig) MatchCount() int { return c.evaluation.MatchCount }

// MinScore returns the similarity floor.
func (c AppConfig) MinScore() float64 { return c.evaluation.MinScore }

// PageSize returns the catalog page size for evaluation runs.
func (c AppConfig) PageSize() int { return c.evaluation.PageSize }

// FlushChunkSize returns the flush chunk row cap.
func (c AppConfig) FlushChunkSize() int { return c.evaluation.FlushChunkSize }

// ThrottleInterval returns the fixed delay between entities.
func (c AppConfig) ThrottleInterval() time.Duration { return c.evaluation.ThrottleInterval() }

// EnsureDataDir creates the data directory if it does not exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.dataDir, 0o755)
}
