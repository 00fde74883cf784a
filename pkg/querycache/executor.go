package querycache

import (
	"context"
	"time"

	"github.com/ethpandaops/rbi/pkg/observability"
	"github.com/ethpandaops/rbi/pkg/warehouse"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Executor runs SQL through the cache. Identical SQL text within the TTL is
// answered from the store; warehouse errors are returned and never stored.
type Executor struct {
	log    logrus.FieldLogger
	client warehouse.Client
	store  Store
	ttl    time.Duration
	group  singleflight.Group
}

// NewExecutor creates an executor over client and store
func NewExecutor(log logrus.FieldLogger, client warehouse.Client, store Store, ttl time.Duration) *Executor {
	if store == nil {
		store = NewMemoryStore()
	}

	return &Executor{
		log:    log.WithField("component", "querycache"),
		client: client,
		store:  store,
		ttl:    ttl,
	}
}

// Run returns the result of sql, from cache when a live entry exists
func (e *Executor) Run(ctx context.Context, sql string) (*warehouse.Table, error) {
	entry, err := e.store.Get(ctx, sql)
	if err != nil {
		// a broken store degrades to uncached execution
		e.log.WithError(err).Warn("Failed to read query cache")
	}

	if entry != nil {
		observability.RecordCacheHit()
		return entry.Table, nil
	}

	observability.RecordCacheMiss()

	// shared by every waiter, so one caller going away must not cancel it;
	// the client's query timeout still bounds it
	queryCtx := context.WithoutCancel(ctx)

	result, err, _ := e.group.Do(sql, func() (interface{}, error) {
		table, queryErr := e.client.Query(queryCtx, sql)
		if queryErr != nil {
			return nil, queryErr
		}

		if setErr := e.store.Set(queryCtx, &Entry{SQL: sql, Table: table, TTL: e.ttl}); setErr != nil {
			e.log.WithError(setErr).Warn("Failed to store query result")
		}

		return table, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*warehouse.Table), nil
}

// Invalidate drops the cached result for sql
func (e *Executor) Invalidate(ctx context.Context, sql string) error {
	if err := e.store.Delete(ctx, sql); err != nil {
		return err
	}

	observability.RecordCacheInvalidations(1)

	return nil
}

// InvalidateAll drops every cached result and returns how many were removed
func (e *Executor) InvalidateAll(ctx context.Context) (int, error) {
	count, err := e.store.Purge(ctx)
	if err != nil {
		return count, err
	}

	observability.RecordCacheInvalidations(count)
	e.log.WithField("entries", count).Info("Invalidated query cache")

	return count, nil
}

// TTL returns the configured entry lifetime
func (e *Executor) TTL() time.Duration {
	return e.ttl
}
