package redis

import (
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// AsynqOptions parses the configured URL into the connection options the
// training queue and worker use
func (c *Config) AsynqOptions() (*asynq.RedisClientOpt, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}

	return NewAsynqRedisOptions(opts), nil
}

// NewAsynqRedisOptions carries connection, auth, timeout and TLS settings
// from go-redis options over to asynq
func NewAsynqRedisOptions(opt *redis.Options) *asynq.RedisClientOpt {
	return &asynq.RedisClientOpt{
		Network:      opt.Network,
		Addr:         opt.Addr,
		Username:     opt.Username,
		Password:     opt.Password,
		DB:           opt.DB,
		DialTimeout:  opt.DialTimeout,
		ReadTimeout:  opt.ReadTimeout,
		WriteTimeout: opt.WriteTimeout,
		PoolSize:     opt.PoolSize,
		TLSConfig:    opt.TLSConfig,
	}
}
