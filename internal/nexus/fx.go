package nexus

import (
	"go.uber.org/fx"

	"github.com/nexorahq/nexora/internal/nexus/repository"
	"github.com/nexorahq/nexora/internal/nexus/service"
)

var Module = fx.Module("nexus",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
