package task

import (
	"github.com/seb-lewis/startupcrm/internal/task/repository"
	"github.com/seb-lewis/startupcrm/internal/task/service"
	"go.uber.org/fx"
)

var Module = fx.Module("task.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
