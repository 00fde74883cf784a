// Package scheduler enqueues promotion model training runs on a cron schedule
package scheduler

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
)

// ErrInvalidSchedule is returned when the schedule is not a valid cron spec
var ErrInvalidSchedule = errors.New("invalid training schedule")

// Config holds the training schedule. An empty schedule disables it.
type Config struct {
	Schedule string `yaml:"schedule"`
	Interval string `yaml:"checkInterval" default:"10s"`
}

// Enabled reports whether a schedule is configured
func (c *Config) Enabled() bool {
	return c.Schedule != ""
}

// Validate checks if the scheduler configuration is valid
func (c *Config) Validate() error {
	if !c.Enabled() {
		return nil
	}

	if _, err := parseSchedule(c.Schedule); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, c.Schedule, err)
	}

	return nil
}

func parseSchedule(spec string) (cron.Schedule, error) {
	return cron.ParseStandard(spec)
}
