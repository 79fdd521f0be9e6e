package main

import (
	"context"
	"log/slog"

	"github.com/JonMunkholm/mrovalidate/internal/config"
	"github.com/JonMunkholm/mrovalidate/internal/store"
)

// openHistory connects the run-history store when a database is configured.
// The returned close function is always safe to call.
func openHistory(ctx context.Context, cfg *config.Config) (*store.Store, func(), error) {
	if !cfg.Database.Enabled() {
		return nil, func() {}, nil
	}

	pool, err := store.Connect(ctx, cfg.Database.URL, store.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return nil, func() {}, err
	}

	s := store.New(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, func() {}, err
	}
	slog.Info("run history enabled")
	return s, pool.Close, nil
}
