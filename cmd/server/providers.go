// File: cmd/server/providers.go
package main

import (
	"log"

	"marketplace_onboarding/internal/audit"
	"marketplace_onboarding/internal/config"
	"marketplace_onboarding/internal/documents"
	"marketplace_onboarding/internal/draft"
	"marketplace_onboarding/internal/platform/database"
	"marketplace_onboarding/internal/platform/logger"
	"marketplace_onboarding/internal/registration"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// provideDatabase opens the configured database and, when DB_AUTO_MIGRATE is
// set, creates the tables the service owns.
func provideDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGORM(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { database.CloseGORMDB(db) }

	if cfg.DBAutoMigrate {
		logger.Info("Running schema migrations", zap.String("driver", cfg.DBDriver))
		if err := database.Migrate(db,
			&draft.Record{},
			&documents.StagedDocument{},
			&audit.RegistrationAttempt{},
		); err != nil {
			cleanup()
			return nil, nil, err
		}
	}
	return db, cleanup, nil
}

func provideStaging(cfg *config.Config) *registration.Staging {
	return registration.NewStaging(cfg.StagingTTL)
}

func provideAttemptRecorder(service audit.Service) registration.AttemptRecorder {
	return service
}

// provideLogger builds the application logger. Its cleanup flushes buffered
// entries and, since wire runs cleanups in reverse, runs after every other one.
func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	appLogger, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		appLogger.Info("Executing cleanup tasks...")
		if err := appLogger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
	return appLogger, cleanup, nil
}
