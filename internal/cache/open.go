package cache

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/af-corp/shetkari-gateway/internal/config"
)

// Open returns the backend selected by cfg.Cache.Backend. rdb is only used by
// the redis backend and may be nil otherwise.
func Open(ctx context.Context, cfg *config.Config, rdb *redis.Client) (Store, error) {
	switch cfg.Cache.Backend {
	case "", config.CacheBackendMemory:
		return NewMemoryStore(), nil

	case config.CacheBackendSQLite:
		return OpenSQLite(cfg.Cache.SQLitePath)

	case config.CacheBackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("cache backend redis: no redis address configured")
		}
		return NewRedisStore(rdb), nil

	case config.CacheBackendPostgres:
		poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("parse database config: %w", err)
		}
		if cfg.Database.MaxOpenConns > 0 {
			poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
		}
		if cfg.Database.ConnMaxLifetime > 0 {
			poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		return NewPostgresStore(pool), nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
