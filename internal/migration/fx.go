package migration

import (
	accountdomain "github.com/seb-lewis/startupcrm/internal/account/domain"
	authdomain "github.com/seb-lewis/startupcrm/internal/auth/domain"
	"github.com/seb-lewis/startupcrm/internal/config"
	contactdomain "github.com/seb-lewis/startupcrm/internal/contact/domain"
	crmcasedomain "github.com/seb-lewis/startupcrm/internal/crmcase/domain"
	leaddomain "github.com/seb-lewis/startupcrm/internal/lead/domain"
	opportunitydomain "github.com/seb-lewis/startupcrm/internal/opportunity/domain"
	organizationdomain "github.com/seb-lewis/startupcrm/internal/organization/domain"
	"github.com/seb-lewis/startupcrm/internal/seed"
	taskdomain "github.com/seb-lewis/startupcrm/internal/task/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql installs build the schema from the models.
			if err := conn.AutoMigrate(
				&authdomain.User{},
				&authdomain.Session{},
				&organizationdomain.Organization{},
				&organizationdomain.Membership{},
				&organizationdomain.Invite{},
				&accountdomain.Account{},
				&contactdomain.Contact{},
				&leaddomain.Lead{},
				&opportunitydomain.Opportunity{},
				&crmcasedomain.Case{},
				&taskdomain.Board{},
				&taskdomain.Column{},
				&taskdomain.Task{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureBootstrapAdmin(conn, cfg)
	}),
)
