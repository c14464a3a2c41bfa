package migration

import (
	"github.com/nexorahq/nexora/internal/config"
	ingestdomain "github.com/nexorahq/nexora/internal/ingest/domain"
	nexusdomain "github.com/nexorahq/nexora/internal/nexus/domain"
	referencedomain "github.com/nexorahq/nexora/internal/reference/domain"
	ruledomain "github.com/nexorahq/nexora/internal/rule/domain"
	"github.com/nexorahq/nexora/internal/seed"
	transactiondomain "github.com/nexorahq/nexora/internal/transaction/domain"
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
			// sqlite/mysql development databases fall back to AutoMigrate;
			// the versioned SQL migrations target postgres.
			if err := conn.AutoMigrate(
				&seed.Organization{},
				&transactiondomain.SalesEvent{},
				&ruledomain.NexusRule{},
				&referencedomain.State{},
				&referencedomain.StateTaxRate{},
				&nexusdomain.NexusStatus{},
				&ingestdomain.IngestionRun{},
			); err != nil {
				return err
			}
		}

		if cfg.DefaultOrgID != 0 {
			if err := seed.EnsureMainOrgWithID(conn, cfg.DefaultOrgID); err != nil {
				return err
			}
		} else {
			if err := seed.EnsureMainOrg(conn); err != nil {
				return err
			}
		}
		return seed.EnsureReferenceData(conn)
	}),
)
