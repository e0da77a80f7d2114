package types

import (
	"encoding/json"
	"testing"
)

func TestRatePairMarshalJSON(t *testing.T) {
	pairs := []RatePair{
		{Code: "USD", Value: 1},
		{Code: "EUR", Value: 0.9},
	}

	b, err := json.Marshal(pairs)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `[["USD",1],["EUR",0.9]]`
	if string(b) != want {
		t.Errorf("Marshal() = %s, want %s", b, want)
	}
}

func TestRatePairUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RatePair
		wantErr bool
	}{
		{
			name:  "valid tuple",
			input: `["BTC",60000]`,
			want:  RatePair{Code: "BTC", Value: 60000},
		},
		{
			name:    "too few elements",
			input:   `["BTC"]`,
			wantErr: true,
		},
		{
			name:    "too many elements",
			input:   `["BTC",1,2]`,
			wantErr: true,
		},
		{
			name:    "non-numeric value",
			input:   `["BTC","high"]`,
			wantErr: true,
		},
		{
			name:    "not an array",
			input:   `{"code":"BTC"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got RatePair
			err := json.Unmarshal([]byte(tt.input), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Unmarshal() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFiatRateListPreservesOrder(t *testing.T) {
	input := `{"USD":{"value":1},"EUR":{"value":0.9},"RUB":{"value":90},"GBP":{"value":0.8}}`

	var list FiatRateList
	if err := json.Unmarshal([]byte(input), &list); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := FiatRateList{
		{Code: "USD", Value: 1},
		{Code: "EUR", Value: 0.9},
		{Code: "RUB", Value: 90},
		{Code: "GBP", Value: 0.8},
	}

	if len(list) != len(want) {
		t.Fatalf("len = %d, want %d", len(list), len(want))
	}
	for i := range want {
		if list[i] != want[i] {
			t.Errorf("list[%d] = %+v, want %+v", i, list[i], want[i])
		}
	}
}

func TestFiatRateListIgnoresExtraFields(t *testing.T) {
	input := `{"USD":{"value":1,"code":"USD","lastUpdated":"2024-01-01"}}`

	var list FiatRateList
	if err := json.Unmarshal([]byte(input), &list); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(list) != 1 || list[0].Value != 1 {
		t.Errorf("list = %+v, want single USD entry", list)
	}
}

func TestFiatRateListRejectsNonObject(t *testing.T) {
	var list FiatRateList
	if err := json.Unmarshal([]byte(`[1,2]`), &list); err == nil {
		t.Error("Unmarshal() expected error for array input")
	}
}

func TestMetaFromAsset(t *testing.T) {
	asset := CryptoAsset{
		ID:        "bitcoin",
		Symbol:    "BTC",
		Name:      "Bitcoin",
		Rank:      1,
		Price:     60000,
		MarketCap: 1.2e12,
	}

	meta := MetaFromAsset(asset)
	if meta.ID != "bitcoin" || meta.Name != "Bitcoin" || meta.Rank != 1 || meta.Price != 60000 {
		t.Errorf("MetaFromAsset() = %+v", meta)
	}
}
