package account

import (
	"github.com/seb-lewis/startupcrm/internal/account/repository"
	"github.com/seb-lewis/startupcrm/internal/account/service"
	"go.uber.org/fx"
)

var Module = fx.Module("account.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
