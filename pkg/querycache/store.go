package querycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ethpandaops/rbi/pkg/warehouse"
)

// Entry is a cached result for one SQL statement
type Entry struct {
	SQL      string           `json:"sql"`
	Table    *warehouse.Table `json:"table"`
	StoredAt time.Time        `json:"stored_at"`
	TTL      time.Duration    `json:"ttl"`
}

// Expired reports whether the entry is older than its TTL at now
func (e *Entry) Expired(now time.Time) bool {
	return now.Sub(e.StoredAt) >= e.TTL
}

// Store persists cache entries. Get returns nil, nil on a miss.
type Store interface {
	Get(ctx context.Context, sql string) (*Entry, error)
	Set(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, sql string) error
	// Purge removes every entry and returns how many were removed
	Purge(ctx context.Context) (int, error)
}

// Key returns the content hash used to address a statement
func Key(sql string) string {
	sum := sha256.Sum256([]byte(sql))
	return hex.EncodeToString(sum[:])
}
