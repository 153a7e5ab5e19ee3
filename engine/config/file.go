package config

import (
	"fmt"
	"os"
	"strconv"

	engineErrors "github.com/guileen/gridsource/engine/errors"
	"github.com/guileen/gridsource/types"
	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Addr string `yaml:"addr"`

	// Requests per second allowed per client address; 0 disables limiting
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// S3Config locates an S3-compatible object store
type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl"`
}

// DatasetConfig describes one dataset and where its records come from.
//
// Source is a JSON file path (optionally file://), pebble://dir, a
// postgres:// connection string or s3://bucket/key.
type DatasetConfig struct {
	Name    string                   `yaml:"name"`
	Source  string                   `yaml:"source"`
	Table   string                   `yaml:"table,omitempty"`
	OrderBy string                   `yaml:"order_by,omitempty"`
	S3      S3Config                 `yaml:"s3,omitempty"`
	Columns []types.ColumnDefinition `yaml:"columns,omitempty"`
}

// Config is the complete service configuration
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Engine   EngineConfig    `yaml:"engine"`
	Datasets []DatasetConfig `yaml:"datasets"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":8080",
			RateLimit: 50,
			RateBurst: 100,
		},
		Engine: DefaultEngineConfig(),
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path yields defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, engineErrors.Wrapf(err, engineErrors.ErrCodeConfig, "load_config", "read %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, engineErrors.Wrapf(err, engineErrors.ErrCodeConfig, "load_config", "parse %s", path)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if addr := os.Getenv("GRIDSOURCE_ADDR"); addr != "" {
		c.Server.Addr = addr
	} else if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}

	if s := os.Getenv("GRIDSOURCE_RATE_LIMIT"); s != "" {
		if limit, err := strconv.ParseFloat(s, 64); err == nil && limit >= 0 {
			c.Server.RateLimit = limit
		}
	}

	if s := os.Getenv("GRIDSOURCE_RATE_BURST"); s != "" {
		if burst, err := strconv.Atoi(s); err == nil && burst > 0 {
			c.Server.RateBurst = burst
		}
	}

	accessKey := os.Getenv("GRIDSOURCE_S3_ACCESS_KEY_ID")
	secretKey := os.Getenv("GRIDSOURCE_S3_SECRET_ACCESS_KEY")
	for i := range c.Datasets {
		s3 := &c.Datasets[i].S3
		if s3.AccessKeyID == "" {
			s3.AccessKeyID = accessKey
		}
		if s3.SecretAccessKey == "" {
			s3.SecretAccessKey = secretKey
		}
	}

	c.Engine.ApplyEnv()
}

// Validate checks the configuration for internal consistency
func (c *Config) Validate() error {
	if c.Engine.MaxBlockSize < 0 {
		return engineErrors.NewConfigErrorf("validate_config", "engine.max_block_size must not be negative")
	}
	if c.Engine.ViewCacheSize < 0 {
		return engineErrors.NewConfigErrorf("validate_config", "engine.view_cache_size must not be negative")
	}
	if c.Engine.PrefetchWorkers <= 0 {
		return engineErrors.NewConfigErrorf("validate_config", "engine.prefetch_workers must be positive")
	}
	if c.Engine.MaxPrefetchBatch <= 0 {
		return engineErrors.NewConfigErrorf("validate_config", "engine.max_prefetch_batch must be positive")
	}

	seen := make(map[string]bool, len(c.Datasets))
	for i, ds := range c.Datasets {
		if ds.Name == "" {
			return engineErrors.NewConfigErrorf("validate_config", "datasets[%d]: name is required", i)
		}
		if seen[ds.Name] {
			return engineErrors.NewConfigErrorf("validate_config", "dataset %q declared twice", ds.Name)
		}
		seen[ds.Name] = true
		if ds.Source == "" {
			return engineErrors.NewConfigErrorf("validate_config", "dataset %q: source is required", ds.Name)
		}
		for _, col := range ds.Columns {
			if !types.IsValidColumnType(col.Type) {
				return engineErrors.NewConfigErrorf("validate_config", "dataset %q: column %q has unknown type %q", ds.Name, col.Name, col.Type)
			}
		}
	}
	return nil
}

// Dataset returns the dataset named name
func (c *Config) Dataset(name string) (DatasetConfig, error) {
	for _, ds := range c.Datasets {
		if ds.Name == name {
			return ds, nil
		}
	}
	return DatasetConfig{}, engineErrors.NewNotFoundf("dataset_config", "dataset %q", name)
}

func (d DatasetConfig) String() string {
	return fmt.Sprintf("%s(%s)", d.Name, d.Source)
}
