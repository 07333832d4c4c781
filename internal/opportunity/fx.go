package opportunity

import (
	"github.com/seb-lewis/startupcrm/internal/opportunity/repository"
	"github.com/seb-lewis/startupcrm/internal/opportunity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("opportunity.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
