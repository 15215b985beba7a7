package mantid

import (
	"log/slog"
	"time"

	"github.com/reefwatch/mantid/application/service"
	"github.com/reefwatch/mantid/domain/embedding"
	"github.com/reefwatch/mantid/infrastructure/provider"
	"github.com/reefwatch/mantid/internal/config"
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	dbURL          string
	logger         *slog.Logger
	embedder       embedding.Embedder
	dimension      int
	matchCount     int
	minScore       float64
	pageSize       int
	flushChunkSize int
	throttle       time.Duration
	progress       func(done, total int)
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		dimension:      1024,
		matchCount:     service.DefaultMatchCount,
		minScore:       service.DefaultMinScore,
		pageSize:       service.DefaultPageSize,
		flushChunkSize: service.DefaultFlushChunkSize,
		throttle:       service.DefaultThrottle,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithDatabaseURL sets the database connection URL (sqlite:// or
// postgres://).
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) { c.dbURL = url }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = logger }
}

// WithEmbeddingService configures the HTTP embedding client.
func WithEmbeddingService(cfg provider.Config) Option {
	return func(c *clientConfig) { c.embedder = provider.NewHTTPEmbedder(cfg) }
}

// WithEmbedder sets a custom embedder implementation.
func WithEmbedder(e embedding.Embedder) Option {
	return func(c *clientConfig) { c.embedder = e }
}

// WithDimension sets the embedding dimension the integrity guard
// enforces.
func WithDimension(d int) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.dimension = d
		}
	}
}

// WithMatchCount sets how many neighbors each query retrieves.
func WithMatchCount(k int) Option {
	return func(c *clientConfig) {
		if k > 0 {
			c.matchCount = k
		}
	}
}

// WithMinScore sets the similarity floor for search results.
func WithMinScore(s float64) Option {
	return func(c *clientConfig) { c.minScore = s }
}

// WithPageSize sets the catalog page size for batch runs.
func WithPageSize(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithFlushChunkSize caps the rows of a single flush statement.
func WithFlushChunkSize(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.flushChunkSize = n
		}
	}
}

// WithThrottle sets the fixed delay between entities.
func WithThrottle(d time.Duration) Option {
	return func(c *clientConfig) { c.throttle = d }
}

// WithProgress registers a per-entity progress callback for batch runs.
func WithProgress(fn func(done, total int)) Option {
	return func(c *clientConfig) { c.progress = fn }
}

// OptionsFromConfig translates resolved application configuration into
// client options. Later options may override them.
func OptionsFromConfig(cfg config.AppConfig) []Option {
	return []Option{
		WithDatabaseURL(cfg.DBURL()),
		WithDimension(cfg.EmbeddingDimension()),
		WithMatchCount(cfg.MatchCount()),
		WithMinScore(cfg.MinScore()),
		WithPageSize(cfg.PageSize()),
		WithFlushChunkSize(cfg.FlushChunkSize()),
		WithThrottle(cfg.ThrottleInterval()),
		WithEmbeddingService(provider.Config{
			BaseURL:       cfg.EmbeddingBaseURL(),
			APIKey:        cfg.EmbeddingAPIKey(),
			Timeout:       cfg.EmbeddingTimeout(),
			MaxRetries:    cfg.EmbeddingMaxRetries(),
			InitialDelay:  cfg.EmbeddingInitialDelay(),
			BackoffFactor: cfg.EmbeddingBackoffFactor(),
		}),
	}
}
