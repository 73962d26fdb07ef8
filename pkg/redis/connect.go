package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect opens a client and pings it until the server answers, up to
// cfg.RetryAttempts times. It returns ErrFailedToParseRedisConnString for a
// bad URL and ErrRedisNotReady when the server never answers.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.ConnectionURL == "" {
		return nil, ErrEmptyConnectionURL
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	redisConnOpt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisConnString, err)
	}

	for range max(cfg.RetryAttempts, 1) {
		redisClient := redis.NewClient(redisConnOpt)

		if err := redisClient.Ping(ctx).Err(); err == nil {
			return redisClient, nil
		}

		_ = redisClient.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, ErrRedisNotReady
}
