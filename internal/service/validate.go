package service

import (
	"github.com/rates-ingestor/internal/errors"
	"github.com/rates-ingestor/internal/types"
)

// RequiredFiatCodes must all be present in the transformed fiat pairs
var RequiredFiatCodes = []string{"USD", "EUR", "RUB"}

// BenchmarkAsset must be present in the transformed crypto pairs
const BenchmarkAsset = "BTC"

// ValidateSnapshot is the hard gate before persistence: it fails when any
// required fiat code is missing or the benchmark crypto asset is absent, so
// partial upstream responses are never written as authoritative.
func ValidateSnapshot(fiatPairs, cryptoPairs []types.RatePair) error {
	present := make(map[string]bool, len(fiatPairs))
	for _, p := range fiatPairs {
		present[p.Code] = true
	}

	var missing []string
	for _, code := range RequiredFiatCodes {
		if !present[code] {
			missing = append(missing, code)
		}
	}

	benchmarkFound := false
	for _, p := range cryptoPairs {
		if p.Code == BenchmarkAsset {
			benchmarkFound = true
			break
		}
	}

	if len(missing) > 0 || !benchmarkFound {
		return errors.NewSanityError(missing, benchmarkFound)
	}
	return nil
}
