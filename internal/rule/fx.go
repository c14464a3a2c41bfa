package rule

import (
	"github.com/nexorahq/nexora/internal/rule/repository"
	"github.com/nexorahq/nexora/internal/rule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rule.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewResolver),
	fx.Provide(service.NewService),
)
