// Package api serves the dashboard JSON API, the OpenAPI document and the
// server-rendered pages.
package api

import (
	"errors"
	"time"
)

// ErrAPIAddrRequired is returned when no listen address is configured
var (
	ErrAPIAddrRequired = errors.New("api address is required")
)

// Config represents API service configuration
type Config struct {
	Addr         string        `yaml:"addr" default:":8080" validate:"hostname_port"`
	ReadTimeout  time.Duration `yaml:"readTimeout" default:"30s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" default:"120s"`
}

// Validate validates the API configuration
func (c *Config) Validate() error {
	if c.Addr == "" {
		return ErrAPIAddrRequired
	}
	return nil
}
