package contact

import (
	"github.com/seb-lewis/startupcrm/internal/contact/repository"
	"github.com/seb-lewis/startupcrm/internal/contact/service"
	"go.uber.org/fx"
)

var Module = fx.Module("contact.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
