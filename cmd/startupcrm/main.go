package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/seb-lewis/startupcrm/internal/clock"
	"github.com/seb-lewis/startupcrm/internal/config"
	"github.com/seb-lewis/startupcrm/internal/logger"
	"github.com/seb-lewis/startupcrm/internal/migration"
	"github.com/seb-lewis/startupcrm/internal/server"
	"github.com/seb-lewis/startupcrm/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
