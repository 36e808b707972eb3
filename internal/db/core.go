package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edvin/panelengine/internal/config"
)

// NewCorePool connects to the entity status store. Pool sizing comes from
// config; the URL's own pool parameters, if any, are overridden.
func NewCorePool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.CoreDatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse core db config: %w", err)
	}
	poolCfg.MaxConns = cfg.CoreDBMaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create core db pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping core db: %w", err)
	}

	return pool, nil
}
