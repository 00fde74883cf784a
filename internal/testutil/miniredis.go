package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	r "github.com/ethpandaops/rbi/pkg/redis"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// NewMiniredis starts an in-memory Redis that is closed with the test
func NewMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	return miniredis.RunT(t)
}

// NewMiniredisClient returns a miniredis server and a go-redis client for it
func NewMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("failed to close miniredis client: %v", err)
		}
	})

	return mr, client
}

// RedisConfig returns an rbi redis config pointing at mr
func RedisConfig(mr *miniredis.Miniredis, prefix string) *r.Config {
	return &r.Config{URL: "redis://" + mr.Addr(), Prefix: prefix}
}

// AsynqOptions returns queue connection options pointing at mr
func AsynqOptions(mr *miniredis.Miniredis) *asynq.RedisClientOpt {
	return &asynq.RedisClientOpt{Addr: mr.Addr()}
}
