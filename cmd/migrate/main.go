// Package main provides the standalone legacy migration runner
package main

import (
	"context"

	"github.com/rates-ingestor/internal/config"
	"github.com/rates-ingestor/internal/docstore"
	"github.com/rates-ingestor/internal/logging"
	"github.com/rates-ingestor/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.GetGlobalLogger().WithError(err).Fatal("Configuration invalid")
	}

	logging.InitGlobalLogger(
		logging.ParseLogLevel(cfg.Logging.Level),
		logging.ParseLogFormat(cfg.Logging.Format),
	)
	logger := logging.GetGlobalLogger()
	ctx := logging.WithLogger(context.Background(), logger)

	if cfg.Migration.DatabaseID == "" || cfg.Migration.CollectionID == "" {
		logger.Fatal("LEGACY_DATABASE_ID and LEGACY_COLLECTION_ID are required")
	}

	store := docstore.NewClient(cfg.Docstore.Endpoint, cfg.Docstore.ProjectID, cfg.Docstore.APIKey)
	legacyCol := store.Collection(cfg.Migration.DatabaseID, cfg.Migration.CollectionID)
	ratesCol := store.Collection(cfg.Rates.DatabaseID, cfg.Rates.CollectionID)
	metaCol := store.Collection(cfg.Meta.DatabaseID, cfg.Meta.CollectionID)

	migrator := service.NewMigrator(legacyCol, ratesCol, metaCol)
	summary, err := migrator.Run(ctx)
	if err != nil {
		logger.WithError(err).Fatal("Migration aborted")
	}

	logger.WithFields(map[string]interface{}{
		"scanned":  summary.Scanned,
		"migrated": summary.Migrated,
		"failed":   summary.Failed,
	}).Info("Migration finished")
}
