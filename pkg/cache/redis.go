// Package cache owns the shared Redis client. Redis is optional: callers
// get a nil client when it is unreachable and fall back to in-process state.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options selects the Redis server to talk to.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Connect creates a client and verifies it with a ping. On failure the
// client is closed and the error returned so the caller can degrade.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping %s: %w", opts.Addr, err)
	}
	return rdb, nil
}
