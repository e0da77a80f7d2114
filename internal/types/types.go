// Package types defines the core data types shared across the rates ingestor.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RatePair is a single (code, value) rate entry. It serializes as a
// two-element JSON array, e.g. ["USD",1.0], which is the wire form the
// snapshot documents store.
type RatePair struct {
	Code  string
	Value float64
}

// MarshalJSON encodes the pair as a two-element tuple array.
func (p RatePair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{p.Code, p.Value})
}

// UnmarshalJSON decodes a two-element tuple array into the pair.
func (p *RatePair) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if len(tuple) != 2 {
		return fmt.Errorf("rate pair must have exactly 2 elements, got %d", len(tuple))
	}
	if err := json.Unmarshal(tuple[0], &p.Code); err != nil {
		return fmt.Errorf("rate pair code: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &p.Value); err != nil {
		return fmt.Errorf("rate pair value: %w", err)
	}
	return nil
}

// FiatRate is one entry of the fiat rates table keyed by currency code.
type FiatRate struct {
	Code  string
	Value float64
}

// FiatRateList holds fiat rates in the order the upstream document lists
// them. Plain map decoding would lose that order, so it walks the JSON
// object token by token.
type FiatRateList []FiatRate

// UnmarshalJSON decodes {"USD":{"value":1.0},...} preserving key order.
func (l *FiatRateList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("fiat rates: expected object, got %v", tok)
	}

	out := FiatRateList{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		code, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("fiat rates: non-string key %v", keyTok)
		}

		var entry struct {
			Value float64 `json:"value"`
		}
		if err := dec.Decode(&entry); err != nil {
			return fmt.Errorf("fiat rates: entry %q: %w", code, err)
		}
		out = append(out, FiatRate{Code: code, Value: entry.Value})
	}
	*l = out
	return nil
}

// CryptoAsset is one row of the upstream crypto market listing.
type CryptoAsset struct {
	ID                string          `json:"id"`
	Symbol            string          `json:"symbol"`
	Name              string          `json:"name"`
	Rank              int             `json:"rank"`
	Type              string          `json:"type"`
	LastUpdated       string          `json:"lastUpdated"`
	TotalSupply       float64         `json:"totalSupply"`
	MaxSupply         float64         `json:"maxSupply"`
	CirculatingSupply float64         `json:"circulatingSupply"`
	Price             float64         `json:"price"`
	High24H           float64         `json:"high24h"`
	Low24H            float64         `json:"low24h"`
	Volume24H         float64         `json:"volume24h"`
	MarketCap         float64         `json:"marketCap"`
	ATH               json.RawMessage `json:"ath,omitempty"`
	ATL               json.RawMessage `json:"atl,omitempty"`
	Images            json.RawMessage `json:"images,omitempty"`
}

// CryptoMeta is the per-asset metadata subset stored in the metadata
// snapshot, keyed by symbol.
type CryptoMeta struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Rank              int             `json:"rank"`
	Type              string          `json:"type"`
	LastUpdated       string          `json:"lastUpdated"`
	TotalSupply       float64         `json:"totalSupply"`
	MaxSupply         float64         `json:"maxSupply"`
	CirculatingSupply float64         `json:"circulatingSupply"`
	Price             float64         `json:"price"`
	High24H           float64         `json:"high24h"`
	Low24H            float64         `json:"low24h"`
	Volume24H         float64         `json:"volume24h"`
	MarketCap         float64         `json:"marketCap"`
	ATH               json.RawMessage `json:"ath,omitempty"`
	ATL               json.RawMessage `json:"atl,omitempty"`
	Images            json.RawMessage `json:"images,omitempty"`
}

// MetaFromAsset extracts the stored metadata subset from an upstream row.
func MetaFromAsset(a CryptoAsset) CryptoMeta {
	return CryptoMeta{
		ID:                a.ID,
		Name:              a.Name,
		Rank:              a.Rank,
		Type:              a.Type,
		LastUpdated:       a.LastUpdated,
		TotalSupply:       a.TotalSupply,
		MaxSupply:         a.MaxSupply,
		CirculatingSupply: a.CirculatingSupply,
		Price:             a.Price,
		High24H:           a.High24H,
		Low24H:            a.Low24H,
		Volume24H:         a.Volume24H,
		MarketCap:         a.MarketCap,
		ATH:               a.ATH,
		ATL:               a.ATL,
		Images:            a.Images,
	}
}

// RunResult is the structured outcome of a single ingestion run, returned
// to the invoking trigger as JSON.
type RunResult struct {
	OK       bool                   `json:"ok"`
	RecordID string                 `json:"recordId,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Kind     string                 `json:"kind,omitempty"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// MigrationSummary holds the final counters of a legacy migration run.
type MigrationSummary struct {
	Scanned      int `json:"scanned"`
	Migrated     int `json:"migrated"`
	MetaMigrated int `json:"metaMigrated"`
	Stripped     int `json:"stripped"`
	Failed       int `json:"failed"`
}
