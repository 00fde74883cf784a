package warehouse

import (
	"errors"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ErrNotStarted is returned when querying a client that was never started
var ErrNotStarted = errors.New("warehouse client not started")

// ClickHouse server error codes for missing objects
const (
	codeUnknownTable    = 60
	codeUnknownDatabase = 81
)

// IsMissingTable reports whether err says a table or database does not exist
func IsMissingTable(err error) bool {
	if err == nil {
		return false
	}

	var exception *clickhouse.Exception
	if errors.As(err, &exception) {
		return exception.Code == codeUnknownTable || exception.Code == codeUnknownDatabase
	}

	msg := err.Error()

	return strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "doesn't exist") ||
		strings.Contains(msg, "UNKNOWN_TABLE") ||
		strings.Contains(msg, "UNKNOWN_DATABASE")
}
