package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rates-ingestor/internal/docstore"
	"github.com/rates-ingestor/internal/errors"
	"github.com/rates-ingestor/internal/logging"
	"github.com/rates-ingestor/internal/types"
)

// migrationPageSize is the legacy collection page size
const migrationPageSize = 100

// Migrator copies legacy per-day records into the new collections.
// Per-record failures are logged and counted, never fatal.
type Migrator struct {
	legacy docstore.Collection
	rates  *Upserter
	meta   *Upserter
}

// NewMigrator creates a migrator reading from the legacy collection
func NewMigrator(legacy, rates, meta docstore.Collection) *Migrator {
	return &Migrator{
		legacy: legacy,
		rates:  NewUpserter(rates),
		meta:   NewUpserter(meta),
	}
}

// Run pages through the legacy collection newest-first with cursor-after
// pagination and migrates each record. It terminates on a short page and
// returns the final counters.
func (m *Migrator) Run(ctx context.Context) (*types.MigrationSummary, error) {
	logger := logging.FromContext(ctx)
	summary := &types.MigrationSummary{}

	cursor := ""
	for {
		list, err := m.legacy.List(ctx, docstore.ListQuery{
			Limit:       migrationPageSize,
			CursorAfter: cursor,
			OrderField:  "$createdAt",
			OrderDesc:   true,
		})
		if err != nil {
			return summary, fmt.Errorf("list legacy records: %w", err)
		}
		if len(list.Documents) == 0 {
			break
		}

		for _, doc := range list.Documents {
			summary.Scanned++
			if err := m.migrateRecord(ctx, doc, summary); err != nil {
				summary.Failed++
				logger.WithError(err).WithField("id", doc.ID).Warn("Skipping legacy record")
			}
		}

		cursor = list.Documents[len(list.Documents)-1].ID
		if len(list.Documents) < migrationPageSize {
			break
		}
	}

	logger.WithFields(map[string]interface{}{
		"scanned":      summary.Scanned,
		"migrated":     summary.Migrated,
		"metaMigrated": summary.MetaMigrated,
		"stripped":     summary.Stripped,
		"failed":       summary.Failed,
	}).Info("Migration complete")

	return summary, nil
}

// migrateRecord copies one legacy record into the new layout
func (m *Migrator) migrateRecord(ctx context.Context, doc docstore.Document, summary *types.MigrationSummary) error {
	logger := logging.FromContext(ctx)

	// The date field may be absent; the legacy identifier is then expected
	// to be the date key itself, which is unverified data and must parse.
	dateKey, _ := doc.Data[dateField].(string)
	if dateKey == "" {
		dateKey = doc.ID
	}
	if _, err := ParseDateKey(dateKey); err != nil {
		return errors.NewMigrationRecordError(doc.ID, err)
	}

	data := map[string]interface{}{}
	for _, field := range []string{"fiatRates", "cryptoRates"} {
		serialized, ok, err := normalizeSerialized(doc.Data[field])
		if err != nil {
			return errors.NewMigrationRecordError(doc.ID, fmt.Errorf("%s: %w", field, err))
		}
		if ok {
			data[field] = serialized
		}
	}

	if _, err := m.rates.UpsertByDate(ctx, dateKey, data); err != nil {
		return errors.NewMigrationRecordError(doc.ID, err)
	}
	summary.Migrated++

	// Older records may carry an embedded metadata blob; move it to the
	// metadata collection, then shrink the legacy record.
	if blob, ok := doc.Data["cryptoMeta"]; ok && blob != nil {
		serialized, _, err := normalizeSerialized(blob)
		if err != nil {
			return errors.NewMigrationRecordError(doc.ID, fmt.Errorf("cryptoMeta: %w", err))
		}
		if _, err := m.meta.UpsertByID(ctx, dateKey, map[string]interface{}{
			"cryptoMeta": serialized,
		}); err != nil {
			return errors.NewMigrationRecordError(doc.ID, err)
		}
		summary.MetaMigrated++

		if _, err := m.legacy.Update(ctx, doc.ID, map[string]interface{}{"cryptoMeta": nil}); err != nil {
			logger.WithError(err).WithField("id", doc.ID).Warn("Failed to strip legacy metadata blob")
		} else {
			summary.Stripped++
		}
	}

	return nil
}

// normalizeSerialized brings a legacy rates field to its canonical
// serialized form: strings pass through, raw structures are encoded,
// absent values are reported as not ok.
func normalizeSerialized(v interface{}) (string, bool, error) {
	if v == nil {
		return "", false, nil
	}
	if s, ok := v.(string); ok {
		return s, true, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}
