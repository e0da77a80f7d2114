package service

import (
	"github.com/rates-ingestor/internal/types"
)

// TransformFiat converts the keyed fiat rates table into an ordered
// sequence of (code, value) pairs. Order follows the source; it is not
// sorted.
func TransformFiat(rates types.FiatRateList) []types.RatePair {
	pairs := make([]types.RatePair, 0, len(rates))
	for _, r := range rates {
		pairs = append(pairs, types.RatePair{Code: r.Code, Value: r.Value})
	}
	return pairs
}

// TransformCrypto converts market rows into an ordered (symbol, price)
// sequence and a symbol-keyed metadata map. Symbols are not deduplicated:
// the sequence keeps every row in fetch order, and in the map the last row
// wins.
func TransformCrypto(assets []types.CryptoAsset) ([]types.RatePair, map[string]types.CryptoMeta) {
	pairs := make([]types.RatePair, 0, len(assets))
	meta := make(map[string]types.CryptoMeta, len(assets))

	for _, a := range assets {
		pairs = append(pairs, types.RatePair{Code: a.Symbol, Value: a.Price})
		meta[a.Symbol] = types.MetaFromAsset(a)
	}
	return pairs, meta
}
