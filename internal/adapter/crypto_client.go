package adapter

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/rates-ingestor/internal/errors"
	"github.com/rates-ingestor/internal/logging"
	"github.com/rates-ingestor/internal/types"
)

// cryptoPageSize is the fixed page size of the markets endpoint
const cryptoPageSize = 100

// CryptoClient fetches crypto market data page by page
type CryptoClient struct {
	baseURL  string
	apiKey   string
	maxPages int
	fetcher  *Fetcher
	limiter  *rate.Limiter
}

// NewCryptoClient creates a new crypto markets API client. maxPages bounds
// the total number of paginated requests so the run stays under the
// invocation timeout.
func NewCryptoClient(baseURL, apiKey string, maxPages int, fetcher *Fetcher) *CryptoClient {
	return &CryptoClient{
		baseURL:  baseURL,
		apiKey:   apiKey,
		maxPages: maxPages,
		fetcher:  fetcher,
		// 2 req/s keeps burst pagination inside upstream limits
		limiter: rate.NewLimiter(rate.Limit(2), 1),
	}
}

// cryptoResponse is the upstream envelope: {"data":[{...},...]}
type cryptoResponse struct {
	Data []types.CryptoAsset `json:"data"`
}

// FetchAssets fetches all market rows, paginating from offset 0 in steps of
// the page size. It stops on a short page or at the page cap. Without an
// API key it returns no rows and no error; the sanity gate downstream then
// fails the run.
func (c *CryptoClient) FetchAssets(ctx context.Context) ([]types.CryptoAsset, error) {
	logger := logging.FromContext(ctx)

	if c.apiKey == "" {
		logger.Warn("Crypto API key not configured, skipping crypto fetch")
		return nil, nil
	}

	headers := map[string]string{"X-Api-Key": c.apiKey}

	var all []types.CryptoAsset
	for page := 0; page < c.maxPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.NewFetchError("crypto", c.baseURL, err)
		}

		reqURL := fmt.Sprintf("%s?limit=%d&skip=%d", c.baseURL, cryptoPageSize, page*cryptoPageSize)

		var resp cryptoResponse
		if err := c.fetcher.GetJSON(ctx, reqURL, headers, &resp); err != nil {
			return nil, errors.NewFetchError("crypto", c.baseURL, err)
		}

		all = append(all, resp.Data...)
		logger.WithFields(map[string]interface{}{
			"page": page,
			"rows": len(resp.Data),
		}).Debug("Fetched crypto page")

		if len(resp.Data) < cryptoPageSize {
			break
		}
		if page == c.maxPages-1 {
			logger.WithField("maxPages", c.maxPages).Warn("Crypto pagination stopped at page cap")
		}
	}

	logger.WithField("assets", len(all)).Info("Fetched crypto assets")
	return all, nil
}
