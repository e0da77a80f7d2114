package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rates-ingestor/internal/docstore"
	"github.com/rates-ingestor/internal/errors"
	"github.com/rates-ingestor/internal/logging"
	"github.com/rates-ingestor/internal/types"
)

// FiatSource fetches the fiat rates table
type FiatSource interface {
	FetchRates(ctx context.Context) (types.FiatRateList, error)
}

// CryptoSource fetches the crypto market rows
type CryptoSource interface {
	FetchAssets(ctx context.Context) ([]types.CryptoAsset, error)
}

// Ingestor runs the fetch-transform-validate-upsert pipeline once per
// invocation
type Ingestor struct {
	fiat   FiatSource
	crypto CryptoSource
	rates  *Upserter
	meta   *Upserter
	now    func() time.Time
}

// NewIngestor creates an ingestor writing to the rates and metadata
// collections
func NewIngestor(fiat FiatSource, crypto CryptoSource, rates, meta docstore.Collection) *Ingestor {
	return &Ingestor{
		fiat:   fiat,
		crypto: crypto,
		rates:  NewUpserter(rates),
		meta:   NewUpserter(meta),
		now:    time.Now,
	}
}

// fetchOutcome records one fetch branch's result so a failure in either
// branch never short-circuits the other
type fetchOutcome struct {
	source string
	err    error
}

// Run executes one ingestion. It never returns an error; every failure is
// captured in the structured result.
func (s *Ingestor) Run(ctx context.Context) *types.RunResult {
	logger := logging.FromContext(ctx)

	var (
		wg        sync.WaitGroup
		fiatRates types.FiatRateList
		assets    []types.CryptoAsset
		outcomes  [2]fetchOutcome
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		fiatRates, err = s.fiat.FetchRates(ctx)
		outcomes[0] = fetchOutcome{source: "fiat", err: err}
	}()
	go func() {
		defer wg.Done()
		var err error
		assets, err = s.crypto.FetchAssets(ctx)
		outcomes[1] = fetchOutcome{source: "crypto", err: err}
	}()
	wg.Wait()

	for _, o := range outcomes {
		if o.err != nil {
			logger.WithError(o.err).WithField("source", o.source).Error("Upstream fetch failed")
			return failureResult(o.err)
		}
	}

	fiatPairs := TransformFiat(fiatRates)
	cryptoPairs, cryptoMeta := TransformCrypto(assets)

	if err := ValidateSnapshot(fiatPairs, cryptoPairs); err != nil {
		logger.WithError(err).Error("Sanity check failed, nothing written")
		return failureResult(err)
	}

	dateKey := DateKey(s.now())

	fiatJSON, err := json.Marshal(fiatPairs)
	if err != nil {
		return failureResult(fmt.Errorf("encode fiat pairs: %w", err))
	}
	cryptoJSON, err := json.Marshal(cryptoPairs)
	if err != nil {
		return failureResult(fmt.Errorf("encode crypto pairs: %w", err))
	}

	recordID, err := s.rates.UpsertByDate(ctx, dateKey, map[string]interface{}{
		"fiatRates":   string(fiatJSON),
		"cryptoRates": string(cryptoJSON),
	})
	if err != nil {
		logger.WithError(err).Error("Rates snapshot upsert failed")
		return failureResult(err)
	}

	// Nothing meaningful to store without crypto rows
	if len(assets) > 0 {
		metaJSON, err := json.Marshal(cryptoMeta)
		if err != nil {
			return failureResult(fmt.Errorf("encode crypto meta: %w", err))
		}
		if _, err := s.meta.UpsertByID(ctx, dateKey, map[string]interface{}{
			"cryptoMeta": string(metaJSON),
		}); err != nil {
			logger.WithError(err).Error("Crypto meta upsert failed")
			return failureResult(err)
		}
	} else {
		logger.Info("No crypto rows, skipping metadata snapshot")
	}

	logger.WithFields(map[string]interface{}{
		"date":     dateKey,
		"recordId": recordID,
	}).Info("Ingestion run complete")

	return &types.RunResult{OK: true, RecordID: recordID}
}

// failureResult converts an error into the structured failure result
func failureResult(err error) *types.RunResult {
	pe := errors.AsPipelineError(err)
	return &types.RunResult{
		OK:      false,
		Error:   pe.Message,
		Kind:    string(pe.Kind),
		Details: pe.Details,
	}
}
