// Package bootstrap wires the process level dependencies shared by the
// server and the maintenance commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pulse/internal/cache"
	"pulse/internal/config"
	"pulse/internal/database"
	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/seed"
	"pulse/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SkipStorage leaves Runtime.Store nil for commands that never touch media.
	SkipStorage bool
}

// Runtime holds the connected dependencies. Redis is nil when unreachable.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
	Store storage.Store
}

// InitRuntime connects to the database, Redis and object storage, and fills
// an empty development database with demo data when SEED_DEMO_DATA is set.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	rt := &Runtime{DB: db, Redis: cache.InitRedis(cfg.RedisURL)}

	if !opts.SkipStorage {
		store, err := storage.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("object storage setup failed: %w", err)
		}
		rt.Store = store
	}

	if err := seedDemoData(ctx, cfg, db); err != nil {
		return nil, fmt.Errorf("failed to seed demo data: %w", err)
	}

	return rt, nil
}

func seedDemoData(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if !cfg.SeedDemoData || !strings.EqualFold(cfg.Env, "development") {
		return nil
	}

	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		middleware.Logger.InfoContext(ctx, "demo data skipped, database is not empty", slog.Int64("users", users))
		return nil
	}

	_, err := seed.NewSeeder(db, seed.DefaultOptions()).Run(ctx)
	return err
}

// Close releases the database and Redis connections.
func (rt *Runtime) Close() {
	if rt.Redis != nil {
		_ = rt.Redis.Close()
	}
	if sqlDB, err := rt.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
