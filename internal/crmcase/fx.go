package crmcase

import (
	"github.com/seb-lewis/startupcrm/internal/crmcase/repository"
	"github.com/seb-lewis/startupcrm/internal/crmcase/service"
	"go.uber.org/fx"
)

var Module = fx.Module("case.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
