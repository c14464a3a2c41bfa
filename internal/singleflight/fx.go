package singleflight

import (
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/nexorahq/nexora/internal/config"
)

// ProvideRedis returns nil when no redis address is configured; the
// coordinator then falls back to its in-process guard.
func ProvideRedis(cfg config.Config, log *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Info("redis not configured, recompute lock is process local")
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

var Module = fx.Module("singleflight",
	fx.Provide(
		ProvideRedis,
		NewLocker,
		NewCoordinator,
	),
)
