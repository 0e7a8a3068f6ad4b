package migrations

import (
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rom1247/ntf-market/internal/shared/config"
	"github.com/rom1247/ntf-market/internal/shared/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// RunMigrations applies all pending SQL migrations. ErrNoChange is not an
// error, a fully migrated schema is the normal steady state.
func RunMigrations(cfg *config.Config) error {
	log.Info("RunMigrations",
		zap.String("database", cfg.DBName),
		zap.String("host", cfg.DBHost))

	m, err := migrate.New(
		"file://internal/shared/db/migrations/sql",
		cfg.PostgresDSN(),
	)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
