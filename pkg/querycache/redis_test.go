package querycache

import (
	"context"
	"testing"
	"time"

	"github.com/ethpandaops/rbi/internal/testutil"
	"github.com/ethpandaops/rbi/pkg/warehouse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_RoundTrip(t *testing.T) {
	_, client := testutil.NewMiniredisClient(t)
	store := NewRedisStore(client, "rbi:query:")
	ctx := context.Background()

	table := testutil.SingleRow("region", "North", "total_sales", 1500.25)

	require.NoError(t, store.Set(ctx, &Entry{SQL: "SELECT region", Table: table, TTL: time.Minute}))

	entry, err := store.Get(ctx, "SELECT region")
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.Equal(t, "SELECT region", entry.SQL)
	assert.Equal(t, []warehouse.Column{{Name: "REGION"}, {Name: "TOTAL_SALES"}}, entry.Table.Columns)
	assert.Equal(t, "North", entry.Table.Value(0, "region"))
	assert.InDelta(t, 1500.25, entry.Table.Value(0, "TOTAL_SALES"), 1e-9)

	exists, err := client.Exists(ctx, "rbi:query:"+Key("SELECT region")).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
}

func TestRedisStore_Miss(t *testing.T) {
	_, client := testutil.NewMiniredisClient(t)
	store := NewRedisStore(client, "rbi:query:")

	entry, err := store.Get(context.Background(), "SELECT nothing")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestRedisStore_Expiry(t *testing.T) {
	mr, client := testutil.NewMiniredisClient(t)
	store := NewRedisStore(client, "rbi:query:")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, &Entry{SQL: "SELECT 1", Table: testutil.SingleRow("n", 1), TTL: time.Minute}))

	mr.FastForward(2 * time.Minute)

	entry, err := store.Get(ctx, "SELECT 1")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestRedisStore_StoredTimestampIsChecked(t *testing.T) {
	_, client := testutil.NewMiniredisClient(t)
	store := NewRedisStore(client, "rbi:query:")
	ctx := context.Background()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return start }

	require.NoError(t, store.Set(ctx, &Entry{SQL: "SELECT 1", Table: testutil.SingleRow("n", 1), TTL: time.Hour}))

	store.now = func() time.Time { return start.Add(2 * time.Hour) }

	entry, err := store.Get(ctx, "SELECT 1")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestRedisStore_DeleteAndPurge(t *testing.T) {
	_, client := testutil.NewMiniredisClient(t)
	store := NewRedisStore(client, "rbi:query:")
	ctx := context.Background()

	for _, sql := range []string{"SELECT 1", "SELECT 2", "SELECT 3"} {
		require.NoError(t, store.Set(ctx, &Entry{SQL: sql, Table: testutil.SingleRow("n", 1), TTL: time.Minute}))
	}

	require.NoError(t, client.Set(ctx, "rbi:other", "keep", 0).Err())

	require.NoError(t, store.Delete(ctx, "SELECT 1"))

	entry, err := store.Get(ctx, "SELECT 1")
	require.NoError(t, err)
	assert.Nil(t, entry)

	removed, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	val, err := client.Get(ctx, "rbi:other").Result()
	require.NoError(t, err)
	assert.Equal(t, "keep", val)
}
