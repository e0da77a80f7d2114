// Package main provides the ingestion job entry point. It runs one
// fetch-transform-upsert cycle and writes the structured result to stdout;
// the scheduler that triggers it reads the exit code.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rates-ingestor/internal/adapter"
	"github.com/rates-ingestor/internal/config"
	"github.com/rates-ingestor/internal/docstore"
	ierrors "github.com/rates-ingestor/internal/errors"
	"github.com/rates-ingestor/internal/logging"
	"github.com/rates-ingestor/internal/service"
	"github.com/rates-ingestor/internal/types"
)

func main() {
	result := run()

	if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
	}
	if !result.OK {
		os.Exit(1)
	}
}

func run() *types.RunResult {
	cfg, err := config.LoadConfig()
	if err != nil {
		pe := ierrors.AsPipelineError(err)
		logging.GetGlobalLogger().WithError(err).Error("Configuration invalid, no work performed")
		return &types.RunResult{OK: false, Error: pe.Message, Kind: string(pe.Kind), Details: pe.Details}
	}

	logging.InitGlobalLogger(
		logging.ParseLogLevel(cfg.Logging.Level),
		logging.ParseLogFormat(cfg.Logging.Format),
	)
	logger := logging.GetGlobalLogger()
	ctx := logging.WithLogger(context.Background(), logger)

	fetcher := adapter.NewFetcher(cfg.Fetch.MaxAttempts, cfg.Fetch.Timeout)
	fiat := adapter.NewFiatClient(cfg.Fiat.URL, cfg.Fiat.APIKey, fetcher)
	crypto := adapter.NewCryptoClient(cfg.Crypto.URL, cfg.Crypto.APIKey, cfg.Crypto.MaxPages, fetcher)

	store := docstore.NewClient(cfg.Docstore.Endpoint, cfg.Docstore.ProjectID, cfg.Docstore.APIKey)
	ratesCol := store.Collection(cfg.Rates.DatabaseID, cfg.Rates.CollectionID)
	metaCol := store.Collection(cfg.Meta.DatabaseID, cfg.Meta.CollectionID)

	ingestor := service.NewIngestor(fiat, crypto, ratesCol, metaCol)
	result := runProtected(ctx, ingestor, logger)

	// One-shot legacy migration, gated by config. Its outcome is logged
	// but never overrides the ingestion result.
	if result.OK && cfg.MigrationReady() {
		legacyCol := store.Collection(cfg.Migration.DatabaseID, cfg.Migration.CollectionID)
		migrator := service.NewMigrator(legacyCol, ratesCol, metaCol)
		if _, err := migrator.Run(ctx); err != nil {
			logger.WithError(err).Error("Legacy migration failed")
		}
	}

	return result
}

// runProtected wraps the single invocation in a result-capturing boundary
// so no failure, including a panic from detached work, escapes unlogged
func runProtected(ctx context.Context, ingestor *service.Ingestor, logger *logging.Logger) (result *types.RunResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", fmt.Sprint(r)).Error("Ingestion run panicked")
			result = &types.RunResult{
				OK:    false,
				Error: fmt.Sprintf("panic: %v", r),
				Kind:  string(ierrors.KindInternal),
			}
		}
	}()

	return ingestor.Run(ctx)
}
