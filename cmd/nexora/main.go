package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/nexorahq/nexora/internal/clock"
	"github.com/nexorahq/nexora/internal/config"
	"github.com/nexorahq/nexora/internal/migration"
	"github.com/nexorahq/nexora/internal/observability"
	"github.com/nexorahq/nexora/internal/server"
	"github.com/nexorahq/nexora/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
