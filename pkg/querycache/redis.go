package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries in Redis so several dashboard replicas share results
type RedisStore struct {
	redisClient *redis.Client
	keyPrefix   string
	now         func() time.Time
}

// NewRedisStore creates a redis-backed store. keyPrefix is typically "<prefix>:query:".
func NewRedisStore(redisClient *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
		now:         time.Now,
	}
}

func (r *RedisStore) key(sql string) string {
	return r.keyPrefix + Key(sql)
}

// Get retrieves the cached entry for sql
func (r *RedisStore) Get(ctx context.Context, sql string) (*Entry, error) {
	key := r.key(sql)

	data, err := r.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}

	// A hash collision or a stale encoding is a miss
	if entry.SQL != sql {
		return nil, nil
	}

	if entry.Expired(r.now()) {
		_ = r.redisClient.Del(ctx, key)
		return nil, nil
	}

	return &entry, nil
}

// Set stores entry with a matching redis expiry
func (r *RedisStore) Set(ctx context.Context, entry *Entry) error {
	entry.StoredAt = r.now()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	return r.redisClient.Set(ctx, r.key(entry.SQL), data, entry.TTL).Err()
}

// Delete removes the entry for sql
func (r *RedisStore) Delete(ctx context.Context, sql string) error {
	return r.redisClient.Del(ctx, r.key(sql)).Err()
}

// Purge removes every key under the store prefix
func (r *RedisStore) Purge(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		removed int
	)

	for {
		keys, next, err := r.redisClient.Scan(ctx, cursor, r.keyPrefix+"*", 100).Result()
		if err != nil {
			return removed, err
		}

		if len(keys) > 0 {
			n, err := r.redisClient.Del(ctx, keys...).Result()
			if err != nil {
				return removed, err
			}

			removed += int(n)
		}

		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}
