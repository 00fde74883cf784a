// Package engine wires the warehouse, query cache, dashboard, API and
// training components together from one configuration file.
package engine

import (
	"errors"
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/ethpandaops/rbi/pkg/api"
	"github.com/ethpandaops/rbi/pkg/frontend"
	"github.com/ethpandaops/rbi/pkg/modelstore"
	"github.com/ethpandaops/rbi/pkg/querycache"
	r "github.com/ethpandaops/rbi/pkg/redis"
	"github.com/ethpandaops/rbi/pkg/scheduler"
	"github.com/ethpandaops/rbi/pkg/warehouse"
	"github.com/ethpandaops/rbi/pkg/worker"
	"gopkg.in/yaml.v3"
)

var (
	// ErrRedisStoreWithoutRedis is returned when the redis cache store has no redis URL
	ErrRedisStoreWithoutRedis = errors.New("cache store redis requires redis.url")
	// ErrInvalidLogLevel is returned for an unknown logging level
	ErrInvalidLogLevel = errors.New("invalid logging level")
)

// Config represents the complete configuration
type Config struct {
	// Core settings
	Logging     string `yaml:"logging" default:"info" validate:"oneof=panic fatal error warn info debug trace"`
	MetricsAddr string `yaml:"metricsAddr" default:":9091"`
	PProfAddr   string `yaml:"pprofAddr"`
	// WarmCache renders every page once at startup
	WarmCache bool `yaml:"warmCache"`

	// Dependencies
	Warehouse warehouse.Config `yaml:"warehouse"`
	Redis     r.Config         `yaml:"redis"`

	Cache    querycache.Config `yaml:"cache"`
	API      api.Config        `yaml:"api"`
	Frontend frontend.Config   `yaml:"frontend"`
	Models   modelstore.Config `yaml:"models"`
	Training scheduler.Config  `yaml:"training"`
	Worker   worker.Config     `yaml:"worker"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Logging {
	case "panic", "fatal", "error", "warn", "info", "debug", "trace":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging)
	}

	if err := c.Warehouse.Validate(); err != nil {
		return fmt.Errorf("warehouse: %w", err)
	}

	if c.Redis.Enabled() {
		if err := c.Redis.Validate(); err != nil {
			return err
		}
	}

	if err := c.Cache.Validate(); err != nil {
		return err
	}

	if c.Cache.Store == querycache.StoreRedis && !c.Redis.Enabled() {
		return ErrRedisStoreWithoutRedis
	}

	if err := c.API.Validate(); err != nil {
		return err
	}

	if err := c.Training.Validate(); err != nil {
		return err
	}

	return c.Worker.Validate()
}

// LoadConfig reads a YAML config file over the defaults. A missing file
// leaves the defaults in place.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = "config.yaml"
	}

	config := &Config{}

	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	yamlFile, err := os.ReadFile(path) //nolint:gosec // User-provided config file path
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	if err == nil {
		if err := yaml.Unmarshal(yamlFile, config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if url := os.Getenv("RBI_WAREHOUSE_URL"); url != "" {
		config.Warehouse.URL = url
	}

	config.Warehouse.SetDefaults()

	return config, nil
}
