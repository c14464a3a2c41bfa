package storage

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/nexorahq/nexora/internal/config"
)

func ProvideStore(cfg config.Config, log *zap.Logger) (ObjectStore, error) {
	switch cfg.StorageDriver {
	case "", "local":
		log.Info("object storage: local", zap.String("root", cfg.StorageLocalDir))
		return NewLocalStore(cfg.StorageLocalDir), nil
	case "gcs":
		log.Info("object storage: gcs")
		return NewGCSStore(context.Background())
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

var Module = fx.Module("storage",
	fx.Provide(ProvideStore),
)
