package database

import (
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

type migrationLogger struct {
	logger *zap.SugaredLogger
}

func (l migrationLogger) Verbose() bool { return true }

func (l migrationLogger) Printf(format string, v ...any) {
	l.logger.Infof(format, v...)
}

// MigrationService applies the SQL migrations in the configured folder.
type MigrationService struct {
	folderPath string
	logger     *zap.Logger
}

func NewMigrationService(folderPath string, logger *zap.Logger) *MigrationService {
	return &MigrationService{folderPath: folderPath, logger: logger}
}

func (ms *MigrationService) resolveFolder() string {
	if _, err := os.Stat(ms.folderPath); err == nil {
		return ms.folderPath
	}
	wd, _ := os.Getwd()
	return wd + "/" + ms.folderPath
}

// Migrate brings the database up to the latest version.
func (ms *MigrationService) Migrate(db *Instance, databaseName string) error {
	folder := ms.resolveFolder()
	if _, err := os.Stat(folder); err != nil {
		return fmt.Errorf("migration folder %s does not exist: %w", folder, err)
	}

	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{DatabaseName: databaseName})
	if err != nil {
		ms.logger.Error("failed to create migration driver", zap.Error(err))
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+folder, databaseName, driver)
	if err != nil {
		ms.logger.Error("failed to create migrate instance", zap.Error(err))
		return err
	}
	m.Log = migrationLogger{logger: ms.logger.Sugar()}

	err = m.Up()
	if err == nil {
		ms.logger.Info("successfully applied migrations")
		return nil
	}
	if err == migrate.ErrNoChange {
		ms.logger.Info("no new migrations to apply")
		return nil
	}

	version, dirty, versionErr := m.Version()
	if versionErr != nil && versionErr != migrate.ErrNilVersion {
		ms.logger.Error("failed to get current migration version", zap.Error(versionErr))
	}
	ms.logger.Error("failed to apply migrations",
		zap.Error(err), zap.Uint("version", version), zap.Bool("dirty", dirty))
	return err
}
