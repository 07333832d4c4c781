package organization

import (
	"github.com/seb-lewis/startupcrm/internal/organization/repository"
	"github.com/seb-lewis/startupcrm/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
