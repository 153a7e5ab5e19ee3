package config

import (
	"os"
	"strconv"
)

// EngineConfig holds configuration for the query engine
type EngineConfig struct {
	// Largest accepted endRow-startRow; 0 disables the check
	MaxBlockSize int `yaml:"max_block_size"`

	// Report the exact total with every block instead of only on the last one
	EagerRowCount bool `yaml:"eager_row_count"`

	// Number of filtered/sorted views memoized per dataset; 0 disables caching
	ViewCacheSize int `yaml:"view_cache_size"`

	// Workers used to serve prefetch batches
	PrefetchWorkers int `yaml:"prefetch_workers"`

	// Largest number of requests accepted in one prefetch batch
	MaxPrefetchBatch int `yaml:"max_prefetch_batch"`
}

// DefaultEngineConfig returns the default engine configuration
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxBlockSize:     10000,
		EagerRowCount:    false,
		ViewCacheSize:    0,
		PrefetchWorkers:  4,
		MaxPrefetchBatch: 16,
	}
}

// ApplyEnv overrides fields from GRIDSOURCE_* environment variables
func (config *EngineConfig) ApplyEnv() {
	if s := os.Getenv("GRIDSOURCE_MAX_BLOCK_SIZE"); s != "" {
		if size, err := strconv.Atoi(s); err == nil && size >= 0 {
			config.MaxBlockSize = size
		}
	}

	if s := os.Getenv("GRIDSOURCE_EAGER_ROW_COUNT"); s != "" {
		if eager, err := strconv.ParseBool(s); err == nil {
			config.EagerRowCount = eager
		}
	}

	if s := os.Getenv("GRIDSOURCE_VIEW_CACHE_SIZE"); s != "" {
		if size, err := strconv.Atoi(s); err == nil && size >= 0 {
			config.ViewCacheSize = size
		}
	}

	if s := os.Getenv("GRIDSOURCE_PREFETCH_WORKERS"); s != "" {
		if workers, err := strconv.Atoi(s); err == nil && workers > 0 {
			config.PrefetchWorkers = workers
		}
	}

	if s := os.Getenv("GRIDSOURCE_MAX_PREFETCH_BATCH"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			config.MaxPrefetchBatch = n
		}
	}
}
