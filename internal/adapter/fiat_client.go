package adapter

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rates-ingestor/internal/errors"
	"github.com/rates-ingestor/internal/logging"
	"github.com/rates-ingestor/internal/types"
)

// FiatClient fetches fiat currency exchange rates
type FiatClient struct {
	baseURL string
	apiKey  string
	fetcher *Fetcher
}

// NewFiatClient creates a new fiat rates API client
func NewFiatClient(baseURL, apiKey string, fetcher *Fetcher) *FiatClient {
	return &FiatClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		fetcher: fetcher,
	}
}

// fiatResponse is the upstream envelope: {"data":{"USD":{"value":1.0},...}}
type fiatResponse struct {
	Data types.FiatRateList `json:"data"`
}

// FetchRates performs one retried GET against the rates endpoint and
// returns the rates table in upstream document order
func (c *FiatClient) FetchRates(ctx context.Context) (types.FiatRateList, error) {
	reqURL := fmt.Sprintf("%s?apikey=%s&type=fiat", c.baseURL, url.QueryEscape(c.apiKey))

	var resp fiatResponse
	if err := c.fetcher.GetJSON(ctx, reqURL, nil, &resp); err != nil {
		return nil, errors.NewFetchError("fiat", c.baseURL, err)
	}

	logging.FromContext(ctx).WithField("rates", len(resp.Data)).Info("Fetched fiat rates")
	return resp.Data, nil
}
