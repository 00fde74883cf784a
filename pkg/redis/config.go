// Package redis provides Redis client configuration
package redis

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Define static errors
var (
	ErrURLRequired = errors.New("redis url is required")
)

// Config holds Redis client configuration
type Config struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix" default:"rbi"`
}

// Enabled reports whether a redis URL was configured
func (c *Config) Enabled() bool {
	return c != nil && c.URL != ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrURLRequired
	}

	if c.Prefix == "" {
		c.Prefix = "rbi"
	}

	if _, err := redis.ParseURL(c.URL); err != nil {
		return fmt.Errorf("invalid redis url: %w", err)
	}

	return nil
}

// Options parses the configured URL into go-redis options
func (c *Config) Options() (*redis.Options, error) {
	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return opts, nil
}

// PrefixKey adds the configured prefix to a Redis key
func (c *Config) PrefixKey(key string) string {
	if c.Prefix == "" {
		return key
	}

	return fmt.Sprintf("%s:%s", c.Prefix, key)
}

// PrefixQueue adds the configured prefix to an Asynq queue name
func (c *Config) PrefixQueue(queue string) string {
	if c.Prefix == "" {
		return queue
	}

	return fmt.Sprintf("%s:%s", c.Prefix, queue)
}
