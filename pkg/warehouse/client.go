package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Client executes read-only SQL against the warehouse. A Client is created
// explicitly, started once and stopped by its owner.
type Client interface {
	// Query executes sql and returns every row
	Query(ctx context.Context, sql string) (*Table, error)
	// Driver returns the driver name for logs and metrics
	Driver() string
	// Start opens the connection and checks connectivity
	Start() error
	// Stop closes the connection
	Stop() error
}

// NewClient creates a client for the configured driver
func NewClient(logger logrus.FieldLogger, cfg *Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.SetDefaults()

	switch cfg.Driver {
	case DriverHTTP:
		return newHTTPClient(logger, cfg), nil
	default:
		return newNativeClient(logger, cfg)
	}
}

// SetupClient creates and starts a client
func SetupClient(cfg *Config, logger logrus.FieldLogger) (Client, error) {
	client, err := NewClient(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create warehouse client: %w", err)
	}

	if startErr := client.Start(); startErr != nil {
		return nil, fmt.Errorf("failed to start warehouse client: %w", startErr)
	}

	return client, nil
}

// trimStatement drops surrounding whitespace and trailing semicolons
func trimStatement(sql string) string {
	return strings.TrimRight(strings.TrimSpace(sql), "; \n\t")
}

// truncateQuery shortens a query for log output
func truncateQuery(query string) string {
	if len(query) <= 500 {
		return query
	}

	return query[:500] + "..."
}
