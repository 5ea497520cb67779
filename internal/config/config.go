// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr configures the Prometheus listen address, e.g. ":9090".
	// Empty disables the metrics listener.
	MetricsAddr string `koanf:"metrics_addr"`

	// QueueSize bounds the in-memory observation queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of absorption workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the observation ID deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxContributors caps the universe size accepted for exact
	// computation. Must not exceed 63.
	MaxContributors int `koanf:"max_contributors"`

	// Normalize rescales published allocations to fractions of the total.
	Normalize bool `koanf:"normalize"`

	// StrictValues makes the engine fail on coalitions with no recorded
	// value instead of treating them as zero.
	StrictValues bool `koanf:"strict_values"`

	// RecomputeIntervalMS sets the period between background Shapley
	// recomputations. Zero disables the ticker.
	RecomputeIntervalMS int `koanf:"recompute_interval_ms"`

	// TopN caps ranked allocation queries.
	TopN int `koanf:"top_n"`

	// SimObservations, SimContributors and SimSeed drive the simulation
	// binary. The library ignores them.
	SimObservations int   `koanf:"sim_observations"`
	SimContributors int   `koanf:"sim_contributors"`
	SimSeed         int64 `koanf:"sim_seed"`
}

// New creates a Config using provided options. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use (e.g.,
// loading from env/files) and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:            "info",
		MetricsAddr:         "",
		QueueSize:           100_000,
		WorkerCount:         runtime.NumCPU() * 2,
		DedupeSize:          50_000,
		MaxContributors:     20,
		Normalize:           true,
		StrictValues:        false,
		RecomputeIntervalMS: 0,
		TopN:                10,
		SimObservations:     10_000,
		SimContributors:     12,
		SimSeed:             1,
	}
	return c
}
