package scripts

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/issafronov/redirectmap/internal/middleware/logger"
	"go.uber.org/zap"
)

// DefaultMigrationsSource каталог миграций относительно корня репозитория
const DefaultMigrationsSource = "file://internal/scripts/migrations"

// RunMigrations применяет миграции таблицы runs из source к базе databaseURI.
// Пустой source означает DefaultMigrationsSource.
func RunMigrations(source, databaseURI string) error {
	if source == "" {
		source = DefaultMigrationsSource
	}
	m, err := migrate.New(source, databaseURI)
	if err != nil {
		logger.Log.Error("failed to initialize migrate", zap.String("source", source), zap.Error(err))
		return fmt.Errorf("failed to init migrate: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Log.Warn("failed to close migrate", zap.NamedError("source_error", srcErr), zap.NamedError("db_error", dbErr))
		}
	}()

	if err = m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Log.Info("no migrations to apply")
			return nil
		}
		logger.Log.Error("failed to apply migrations", zap.Error(err))
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, _, _ := m.Version()
	logger.Log.Info("migrations applied successfully", zap.Uint("version", version))
	return nil
}
