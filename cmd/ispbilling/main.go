package main

import (
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/audit"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/clock"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/config"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/events"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/migration"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/observability/logger"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/observability/tracing"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/payment"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/scheduler"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/seed"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/server"
	"github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		tracing.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		events.Module,
		audit.Module,
		payment.Module,
		fx.Invoke(func(conn *gorm.DB) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return migration.RunMigrations(sqlDB)
		}),
		fx.Invoke(func(cfg config.Config, conn *gorm.DB, node *snowflake.Node) error {
			if cfg.IsProduction() || !cfg.SeedDemoData {
				return nil
			}
			return seed.EnsureDemoData(conn, node)
		}),
		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) *snowflake.Node {
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		panic(err)
	}
	return node
}
