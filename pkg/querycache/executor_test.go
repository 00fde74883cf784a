package querycache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethpandaops/rbi/internal/testutil"
	"github.com/ethpandaops/rbi/pkg/warehouse"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestExecutor(t *testing.T, handler testutil.QueryFunc) (*Executor, *testutil.StubWarehouse, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	stub := testutil.NewStubWarehouse(handler)
	store := NewMemoryStore().WithClock(clock.Now)

	return NewExecutor(logrus.New(), stub, store, 300*time.Second), stub, clock
}

func TestExecutor_Run(t *testing.T) {
	table := testutil.SingleRow("total_sales", 1234.5)

	tests := []struct {
		name      string
		queries   []string
		advance   time.Duration
		wantCalls int
	}{
		{
			name:      "identical sql within ttl hits the cache",
			queries:   []string{"SELECT 1", "SELECT 1"},
			wantCalls: 1,
		},
		{
			name:      "different sql misses",
			queries:   []string{"SELECT 1", "SELECT 2"},
			wantCalls: 2,
		},
		{
			name:      "whitespace differences are distinct keys",
			queries:   []string{"SELECT 1", "SELECT  1"},
			wantCalls: 2,
		},
		{
			name:      "expired entry is re-executed",
			queries:   []string{"SELECT 1", "SELECT 1"},
			advance:   301 * time.Second,
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor, stub, clock := newTestExecutor(t, func(string) (*warehouse.Table, error) {
				return table, nil
			})

			ctx := context.Background()

			for i, sql := range tt.queries {
				if i > 0 {
					clock.Advance(tt.advance)
				}

				got, err := executor.Run(ctx, sql)
				require.NoError(t, err)
				assert.Same(t, table, got)
			}

			assert.Equal(t, tt.wantCalls, stub.Calls())
		})
	}
}

func TestExecutor_ErrorsAreNotCached(t *testing.T) {
	errBoom := errors.New("connection reset")
	fail := true

	executor, stub, _ := newTestExecutor(t, func(string) (*warehouse.Table, error) {
		if fail {
			return nil, errBoom
		}

		return testutil.SingleRow("n", 1), nil
	})

	ctx := context.Background()

	_, err := executor.Run(ctx, "SELECT n")
	require.ErrorIs(t, err, errBoom)

	fail = false

	got, err := executor.Run(ctx, "SELECT n")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
	assert.Equal(t, 2, stub.Calls())
}

func TestExecutor_Invalidate(t *testing.T) {
	executor, stub, _ := newTestExecutor(t, func(string) (*warehouse.Table, error) {
		return testutil.SingleRow("n", 1), nil
	})

	ctx := context.Background()

	_, err := executor.Run(ctx, "SELECT a")
	require.NoError(t, err)
	_, err = executor.Run(ctx, "SELECT b")
	require.NoError(t, err)

	require.NoError(t, executor.Invalidate(ctx, "SELECT a"))

	_, err = executor.Run(ctx, "SELECT a")
	require.NoError(t, err)
	_, err = executor.Run(ctx, "SELECT b")
	require.NoError(t, err)
	assert.Equal(t, 3, stub.Calls())

	removed, err := executor.InvalidateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = executor.Run(ctx, "SELECT b")
	require.NoError(t, err)
	assert.Equal(t, 4, stub.Calls())
}

func TestExecutor_ConcurrentMissesCollapse(t *testing.T) {
	release := make(chan struct{})

	executor, stub, _ := newTestExecutor(t, func(string) (*warehouse.Table, error) {
		<-release
		return testutil.SingleRow("n", 1), nil
	})

	ctx := context.Background()

	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := executor.Run(ctx, "SELECT slow")
			assert.NoError(t, err)
		}()
	}

	// give the goroutines time to join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, stub.Calls(), 8)
	assert.GreaterOrEqual(t, stub.Calls(), 1)

	_, err := executor.Run(ctx, "SELECT slow")
	require.NoError(t, err)
	assert.LessOrEqual(t, stub.Calls(), 8)
}

// ctxClient fails queries whose context is already done
type ctxClient struct {
	testutil.StubWarehouse
}

func (c *ctxClient) Query(ctx context.Context, _ string) (*warehouse.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return testutil.SingleRow("n", 1), nil
}

func TestExecutor_SharedQueryOutlivesCaller(t *testing.T) {
	executor := NewExecutor(logrus.New(), &ctxClient{}, NewMemoryStore(), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	table, err := executor.Run(ctx, "SELECT n")
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	// the result was stored for the next caller
	table, err = executor.Run(context.Background(), "SELECT n")
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, time.Minute, executor.TTL())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "valid memory", cfg: Config{TTL: time.Minute, Store: StoreMemory}},
		{name: "valid redis", cfg: Config{TTL: time.Minute, Store: StoreRedis}},
		{name: "zero ttl", cfg: Config{Store: StoreMemory}, wantErr: ErrInvalidTTL},
		{name: "unknown store", cfg: Config{TTL: time.Minute, Store: "disk"}, wantErr: ErrUnknownStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}
