package transaction

import (
	"github.com/nexorahq/nexora/internal/transaction/repository"
	"github.com/nexorahq/nexora/internal/transaction/service"
	"go.uber.org/fx"
)

var Module = fx.Module("transaction.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
