// Package warehouse provides the ClickHouse connection used by the dashboard
// and the trainer, and the Table type query results are returned as.
package warehouse

import (
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	// DriverNative connects with clickhouse-go over the native or HTTP protocol
	DriverNative = "native"
	// DriverHTTP talks to the ClickHouse HTTP interface with JSON output
	DriverHTTP = "http"

	// DatabasePrefixEnv prefixes every logical database name when set
	DatabasePrefixEnv = "RBI_DATABASE_PREFIX"
)

// Static errors for configuration validation
var (
	ErrURLRequired   = errors.New("URL is required")
	ErrUnknownDriver = errors.New("unknown warehouse driver")
)

// Config contains warehouse connection settings
type Config struct {
	Driver             string            `yaml:"driver" default:"native"`
	URL                string            `yaml:"url" validate:"required,url"`
	Username           string            `yaml:"username"`
	Password           string            `yaml:"password"`
	Database           string            `yaml:"database"`
	Settings           map[string]string `yaml:"settings"`
	QueryTimeout       time.Duration     `yaml:"queryTimeout"`
	KeepAlive          time.Duration     `yaml:"keepAlive"`
	Debug              bool              `yaml:"debug"`
	MaxOpenConns       int               `yaml:"maxOpenConns"`
	MaxIdleConns       int               `yaml:"maxIdleConns"`
	ConnMaxLifetime    time.Duration     `yaml:"connMaxLifetime"`
	InsecureSkipVerify bool              `yaml:"insecureSkipVerify"`

	// Logical database names holding the silver tables and the ML feature tables
	SilverDatabase    string `yaml:"silverDatabase"`
	AnalyticsDatabase string `yaml:"analyticsDatabase"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrURLRequired
	}

	switch c.Driver {
	case "", DriverNative, DriverHTTP:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownDriver, c.Driver)
	}

	return nil
}

// SetDefaults sets default values for the configuration
func (c *Config) SetDefaults() {
	if c.Driver == "" {
		c.Driver = DriverNative
	}

	if c.QueryTimeout == 0 {
		c.QueryTimeout = 30 * time.Second
	}

	if c.KeepAlive == 0 {
		c.KeepAlive = 30 * time.Second
	}

	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 10
	}

	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 5
	}

	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = time.Hour
	}

	if c.SilverDatabase == "" {
		c.SilverDatabase = "SILVER"
	}

	if c.AnalyticsDatabase == "" {
		c.AnalyticsDatabase = "ANALYTICS"
	}
}

// MapDatabase maps a logical database name to a physical database name.
// If RBI_DATABASE_PREFIX is set it is prepended, otherwise the name is unchanged.
func (c *Config) MapDatabase(logicalName string) string {
	if prefix := os.Getenv(DatabasePrefixEnv); prefix != "" {
		return prefix + logicalName
	}

	return logicalName
}

// Silver returns the physical silver database name
func (c *Config) Silver() string {
	if c.SilverDatabase == "" {
		return c.MapDatabase("SILVER")
	}

	return c.MapDatabase(c.SilverDatabase)
}

// Analytics returns the physical analytics database name
func (c *Config) Analytics() string {
	if c.AnalyticsDatabase == "" {
		return c.MapDatabase("ANALYTICS")
	}

	return c.MapDatabase(c.AnalyticsDatabase)
}
