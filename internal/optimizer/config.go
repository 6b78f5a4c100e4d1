package optimizer

import "time"

// Config holds the configuration for the allocation engine.
// It is loaded from environment variables or a config file.
type Config struct {
	// Placement geometry: uniform gap charged before every placement and at
	// the shelf edge, in centimeters.
	GapSize float64 `mapstructure:"gap_size" env:"GAP_SIZE" default:"2.0"`

	// Strategy applied when a request leaves it unset
	DefaultStrategy string `mapstructure:"default_strategy" env:"DEFAULT_STRATEGY" default:"balanced"`

	// Validation limits
	MaxProducts int `mapstructure:"max_products" env:"MAX_PRODUCTS" default:"500"`

	// Post-placement improvements (load balancing, reflow, grouping)
	PostOptimize bool `mapstructure:"post_optimize" env:"POST_OPTIMIZE" default:"true"`

	// Batch runner
	BatchConcurrency int `mapstructure:"batch_concurrency" env:"BATCH_CONCURRENCY" default:"4"`
	MaxBatchJobs     int `mapstructure:"max_batch_jobs" env:"MAX_BATCH_JOBS" default:"32"`

	// Result cache (entries 0 disables caching)
	CacheTTL     time.Duration `mapstructure:"cache_ttl" env:"CACHE_TTL" default:"15m"`
	CacheEntries int           `mapstructure:"cache_entries" env:"CACHE_ENTRIES" default:"256"`
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		GapSize:          2.0,
		DefaultStrategy:  string(StrategyBalanced),
		MaxProducts:      500,
		PostOptimize:     true,
		BatchConcurrency: 4,
		MaxBatchJobs:     32,
		CacheTTL:         15 * time.Minute,
		CacheEntries:     256,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.GapSize < 0 {
		return ErrInvalidConfig{Field: "gap_size", Reason: "must be non-negative"}
	}
	if _, ok := ParseStrategy(c.DefaultStrategy); !ok {
		return ErrInvalidConfig{Field: "default_strategy", Reason: "unknown strategy"}
	}
	if c.MaxProducts < 1 {
		return ErrInvalidConfig{Field: "max_products", Reason: "must be at least 1"}
	}
	if c.BatchConcurrency < 1 {
		return ErrInvalidConfig{Field: "batch_concurrency", Reason: "must be at least 1"}
	}
	if c.MaxBatchJobs < 1 {
		return ErrInvalidConfig{Field: "max_batch_jobs", Reason: "must be at least 1"}
	}
	if c.CacheTTL <= 0 {
		return ErrInvalidConfig{Field: "cache_ttl", Reason: "must be positive"}
	}
	if c.CacheEntries < 0 {
		return ErrInvalidConfig{Field: "cache_entries", Reason: "must be non-negative"}
	}
	return nil
}

// ErrInvalidConfig is returned when the configuration is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return e.Field + ": " + e.Reason
}
