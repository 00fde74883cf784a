// Package querycache provides a TTL cache in front of the warehouse, keyed by exact SQL text
package querycache

import (
	"errors"
	"time"
)

// Define static errors
var (
	ErrInvalidTTL = errors.New("cache ttl must be positive")
)

// Config holds query cache configuration
type Config struct {
	// TTL bounds how long a result is served without touching the warehouse
	TTL time.Duration `yaml:"ttl" default:"300s"`
	// Store selects the backing store: memory or redis
	Store string `yaml:"store" default:"memory"`
}

// Store kinds
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// ErrUnknownStore is returned for an unsupported store kind
var ErrUnknownStore = errors.New("unknown cache store")

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.TTL <= 0 {
		return ErrInvalidTTL
	}

	switch c.Store {
	case "", StoreMemory, StoreRedis:
		return nil
	default:
		return ErrUnknownStore
	}
}
