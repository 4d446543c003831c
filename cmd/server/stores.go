package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/civichub/society-api/internal/core/ports"
	"github.com/civichub/society-api/internal/infrastructure/config"
	"github.com/civichub/society-api/internal/infrastructure/db/memory"
	mongodb "github.com/civichub/society-api/internal/infrastructure/db/mongo"
	redisdb "github.com/civichub/society-api/internal/infrastructure/db/redis"
	"github.com/civichub/society-api/internal/infrastructure/http/handlers"
)

// stores groups the repositories selected by STORE together with their
// readiness checks and teardown.
type stores struct {
	users         ports.UserRepository
	complaints    ports.ComplaintRepository
	notifications ports.NotificationRepository
	idempotency   ports.IdempotencyStore
	readiness     []handlers.Dependency
	closers       []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func readinessCheck(name string, check handlers.Check) handlers.Dependency {
	return handlers.Dependency{Name: name, Check: check}
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return &stores{
			users:         memory.NewUserRepository(),
			complaints:    memory.NewComplaintRepository(),
			notifications: memory.NewNotificationRepository(),
			idempotency:   memory.NewIdempotencyStore(cfg.Redis.IdempotencyTTL),
		}, nil
	}

	st := &stores{}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	st.closers = append(st.closers, func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	})
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		st.close()
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		st.close()
		return nil, err
	}
	st.closers = append(st.closers, func() { _ = rdb.Close() })
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	st.users = mongodb.NewUserRepository(db)
	st.complaints = mongodb.NewComplaintRepository(db)
	st.notifications = mongodb.NewNotificationRepository(db)
	st.idempotency = redisdb.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
	st.readiness = []handlers.Dependency{
		readinessCheck("mongodb", func(ctx context.Context) error { return client.Ping(ctx, nil) }),
		readinessCheck("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
	}
	return st, nil
}
