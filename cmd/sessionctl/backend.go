package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/config"
	"github.com/dmitrymomot/sessionkit/pkg/dynamo"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/mongo"
	"github.com/dmitrymomot/sessionkit/pkg/pg"
	"github.com/dmitrymomot/sessionkit/pkg/redis"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

// backend bundles a store with its operational hooks. Nil hooks mean the
// backend does not need them.
type backend struct {
	name    string
	store   session.Store
	migrate func(context.Context) error
	purge   func(context.Context, time.Time) (int64, error)
	health  func(context.Context) error
	close   func()
}

func openBackend(ctx context.Context, name string, log *slog.Logger) (*backend, error) {
	log = log.With(logger.Backend(name))

	switch name {
	case "memory":
		return &backend{name: name, store: session.NewMemoryStore(), close: func() {}}, nil

	case "dynamodb":
		var cfg dynamo.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		store, err := dynamo.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &backend{
			name:  name,
			store: store,
			migrate: func(ctx context.Context) error {
				return store.CreateTable(ctx, 2*time.Minute)
			},
			health: store.Healthcheck(),
			close:  func() {},
		}, nil

	case "redis":
		var cfg redis.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &backend{
			name:   name,
			store:  redis.NewStoreFromConfig(client, cfg),
			health: redis.Healthcheck(client),
			close: func() {
				if err := client.Close(); err != nil {
					log.Error("failed to close redis client", logger.Error(err))
				}
			},
		}, nil

	case "mongo":
		var cfg mongo.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		client, err := mongo.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store := mongo.NewStoreFromConfig(client, cfg)
		return &backend{
			name:    name,
			store:   store,
			migrate: store.EnsureIndexes,
			health:  mongo.Healthcheck(client),
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := client.Disconnect(ctx); err != nil {
					log.Error("failed to disconnect mongo client", logger.Error(err))
				}
			},
		}, nil

	case "postgres":
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store := pg.NewStore(pool)
		return &backend{
			name:  name,
			store: store,
			migrate: func(ctx context.Context) error {
				return pg.Migrate(ctx, pool, cfg, log)
			},
			purge: func(ctx context.Context, now time.Time) (int64, error) {
				return store.DeleteExpired(ctx, now.Unix())
			},
			health: pg.Healthcheck(pool),
			close:  pool.Close,
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}
