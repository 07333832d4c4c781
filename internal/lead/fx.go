package lead

import (
	"github.com/seb-lewis/startupcrm/internal/lead/repository"
	"github.com/seb-lewis/startupcrm/internal/lead/service"
	"go.uber.org/fx"
)

var Module = fx.Module("lead.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
