package admin

import (
	"github.com/seb-lewis/startupcrm/internal/admin/service"
	"go.uber.org/fx"
)

var Module = fx.Module("admin.service",
	fx.Provide(service.NewService),
)
