package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigratorRunCopiesLegacyRecords(t *testing.T) {
	legacy := newFakeCollection()
	legacy.seed("legacy-1", map[string]interface{}{
		"date":        "01012024",
		"fiatRates":   `[["USD",1]]`,
		"cryptoRates": `[["BTC",60000]]`,
	})
	legacy.seed("legacy-2", map[string]interface{}{
		"date":      "02012024",
		"fiatRates": `[["USD",1],["EUR",0.9]]`,
	})
	ratesCol := newFakeCollection()
	metaCol := newFakeCollection()

	m := NewMigrator(legacy, ratesCol, metaCol)
	summary, err := m.Run(testContext(t))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Scanned)
	assert.Equal(t, 2, summary.Migrated)
	assert.Zero(t, summary.MetaMigrated)
	assert.Zero(t, summary.Failed)

	require.Len(t, ratesCol.docs, 2)
	var dates []string
	for _, doc := range ratesCol.docs {
		dates = append(dates, doc["date"].(string))
	}
	assert.ElementsMatch(t, []string{"01012024", "02012024"}, dates)
	assert.Empty(t, metaCol.docs)
}

func TestMigratorRunPagesThroughLargeCollections(t *testing.T) {
	legacy := newFakeCollection()
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		key := DateKey(base.AddDate(0, 0, i))
		legacy.seed(key, map[string]interface{}{
			"date":      key,
			"fiatRates": `[["USD",1]]`,
		})
	}
	ratesCol := newFakeCollection()
	metaCol := newFakeCollection()

	m := NewMigrator(legacy, ratesCol, metaCol)
	summary, err := m.Run(testContext(t))
	require.NoError(t, err)

	assert.Equal(t, 120, summary.Scanned)
	assert.Equal(t, 120, summary.Migrated)
	assert.Len(t, ratesCol.docs, 120)
	assert.Equal(t, 2, legacy.listCalls, "120 records span two pages")
}

func TestMigratorRunIsIdempotent(t *testing.T) {
	legacy := newFakeCollection()
	legacy.seed("legacy-1", map[string]interface{}{
		"date":      "01012024",
		"fiatRates": `[["USD",1]]`,
	})
	ratesCol := newFakeCollection()
	metaCol := newFakeCollection()

	m := NewMigrator(legacy, ratesCol, metaCol)
	_, err := m.Run(testContext(t))
	require.NoError(t, err)
	second, err := m.Run(testContext(t))
	require.NoError(t, err)

	assert.Equal(t, 1, second.Migrated)
	assert.Len(t, ratesCol.docs, 1, "re-running must not duplicate records")
}

func TestMigratorRunDateKeyFromIdentifier(t *testing.T) {
	legacy := newFakeCollection()
	// date field absent, identifier carries the date key
	legacy.seed("15062023", map[string]interface{}{
		"fiatRates": `[["USD",1]]`,
	})
	ratesCol := newFakeCollection()
	metaCol := newFakeCollection()

	m := NewMigrator(legacy, ratesCol, metaCol)
	summary, err := m.Run(testContext(t))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Migrated)
	require.Len(t, ratesCol.docs, 1)
	for _, doc := range ratesCol.docs {
		assert.Equal(t, "15062023", doc["date"])
	}
}

func TestMigratorRunSkipsUnparseableDates(t *testing.T) {
	legacy := newFakeCollection()
	legacy.seed("65a1f0c2d4e8", map[string]interface{}{
		"fiatRates": `[["USD",1]]`,
	})
	legacy.seed("legacy-ok", map[string]interface{}{
		"date":      "01012024",
		"fiatRates": `[["USD",1]]`,
	})
	ratesCol := newFakeCollection()
	metaCol := newFakeCollection()

	m := NewMigrator(legacy, ratesCol, metaCol)
	summary, err := m.Run(testContext(t))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Scanned)
	assert.Equal(t, 1, summary.Migrated)
	assert.Equal(t, 1, summary.Failed)
	assert.Len(t, ratesCol.docs, 1)
}

func TestMigratorRunNormalizesRawStructures(t *testing.T) {
	legacy := newFakeCollection()
	legacy.seed("legacy-1", map[string]interface{}{
		"date":      "01012024",
		"fiatRates": []interface{}{[]interface{}{"USD", 1.0}},
	})
	ratesCol := newFakeCollection()
	metaCol := newFakeCollection()

	m := NewMigrator(legacy, ratesCol, metaCol)
	summary, err := m.Run(testContext(t))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Migrated)
	for _, doc := range ratesCol.docs {
		assert.Equal(t, `[["USD",1]]`, doc["fiatRates"])
	}
}

func TestMigratorRunMovesEmbeddedMetadata(t *testing.T) {
	legacy := newFakeCollection()
	legacy.seed("legacy-1", map[string]interface{}{
		"date":       "01012024",
		"fiatRates":  `[["USD",1]]`,
		"cryptoMeta": `{"BTC":{"id":"bitcoin"}}`,
	})
	ratesCol := newFakeCollection()
	metaCol := newFakeCollection()

	m := NewMigrator(legacy, ratesCol, metaCol)
	summary, err := m.Run(testContext(t))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Migrated)
	assert.Equal(t, 1, summary.MetaMigrated)
	assert.Equal(t, 1, summary.Stripped)

	require.Contains(t, metaCol.docs, "01012024")
	assert.Equal(t, `{"BTC":{"id":"bitcoin"}}`, metaCol.docs["01012024"]["cryptoMeta"])
	assert.Nil(t, legacy.docs["legacy-1"]["cryptoMeta"], "blob stripped from the legacy record")
}

func TestMigratorRunToleratesStripFailure(t *testing.T) {
	legacy := newFakeCollection()
	legacy.seed("legacy-1", map[string]interface{}{
		"date":       "01012024",
		"cryptoMeta": `{"BTC":{"id":"bitcoin"}}`,
	})
	legacy.updateErr = errors.New("store down")
	ratesCol := newFakeCollection()
	metaCol := newFakeCollection()

	m := NewMigrator(legacy, ratesCol, metaCol)
	summary, err := m.Run(testContext(t))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Migrated)
	assert.Equal(t, 1, summary.MetaMigrated)
	assert.Zero(t, summary.Stripped)
	assert.Zero(t, summary.Failed, "a failed strip is not a record failure")
	require.Contains(t, metaCol.docs, "01012024")
}

func TestMigratorRunListFailure(t *testing.T) {
	legacy := newFakeCollection()
	legacy.listErr = fmt.Errorf("store down")
	ratesCol := newFakeCollection()
	metaCol := newFakeCollection()

	m := NewMigrator(legacy, ratesCol, metaCol)
	summary, err := m.Run(testContext(t))
	require.Error(t, err)
	assert.Zero(t, summary.Scanned)
}
