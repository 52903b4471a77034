package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/veritalabs/supplement-verifier/internal/domain"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New opens the configured store: postgres when a DSN is given, else a
// local sqlite file, matching the service's zero-config dev default.
func New(driver, dsn string, log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "postgres":
		serviceLog.Info("Connecting to Postgres...")
		dialector = postgres.Open(dsn)
	case "", "sqlite":
		if dsn == "" {
			dsn = "app.db"
		}
		serviceLog.Info("Opening sqlite database", "path", dsn)
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q (want postgres or sqlite)", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to open database", "error", err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Service{db: gdb, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := s.db.AutoMigrate(
		&domain.Batch{},
		&domain.Document{},
		&domain.Extraction{},
	); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
