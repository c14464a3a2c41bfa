package ingest

import (
	"go.uber.org/fx"

	"github.com/nexorahq/nexora/internal/ingest/repository"
	"github.com/nexorahq/nexora/internal/ingest/service"
)

var Module = fx.Module("ingest",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
