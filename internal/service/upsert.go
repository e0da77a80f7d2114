package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/rates-ingestor/internal/docstore"
	"github.com/rates-ingestor/internal/errors"
	"github.com/rates-ingestor/internal/logging"
)

// upsertState names the states of the per-store reconciliation machine:
//
//	LOOKUP -> FOUND  -> UPDATE
//	       -> ABSENT -> CREATE (fresh id)
//	LOOKUP fails     -> CREATE_BY_ID -> conflict -> UPDATE_BY_ID
//
// Any failure past the last transition is terminal.
type upsertState int

const (
	stateLookup upsertState = iota
	stateUpdate
	stateCreate
	stateCreateByID
	stateUpdateByID
)

// dateField is the queryable snapshot key field
const dateField = "date"

// Upserter reconciles one per-day document against a collection
type Upserter struct {
	col docstore.Collection
}

// NewUpserter creates an upserter for a collection
func NewUpserter(col docstore.Collection) *Upserter {
	return &Upserter{col: col}
}

// UpsertByDate finds the document whose date field equals dateKey and
// updates it, or creates one with a fresh identifier. When the lookup
// mechanism itself is unavailable it falls back to using the date key as
// the document identifier. Returns the identifier of the written document.
func (u *Upserter) UpsertByDate(ctx context.Context, dateKey string, data map[string]interface{}) (string, error) {
	logger := logging.FromContext(ctx).WithField(dateField, dateKey)
	data[dateField] = dateKey

	state := stateLookup
	var foundID string

	for {
		switch state {
		case stateLookup:
			list, err := u.col.List(ctx, docstore.ListQuery{Field: dateField, Value: dateKey, Limit: 1})
			if err != nil {
				logger.WithError(err).Warn("Date lookup unavailable, falling back to create-by-id")
				state = stateCreateByID
				continue
			}
			if len(list.Documents) > 0 {
				foundID = list.Documents[0].ID
				state = stateUpdate
			} else {
				state = stateCreate
			}

		case stateUpdate:
			if _, err := u.col.Update(ctx, foundID, data); err != nil {
				return "", errors.NewPersistenceError("update", err)
			}
			logger.WithField("id", foundID).Info("Updated snapshot found by query")
			return foundID, nil

		case stateCreate:
			id := uuid.NewString()
			if _, err := u.col.Create(ctx, id, data); err != nil {
				return "", errors.NewPersistenceError("create", err)
			}
			logger.WithField("id", id).Info("Created snapshot with fresh id")
			return id, nil

		case stateCreateByID:
			if _, err := u.col.Create(ctx, dateKey, data); err != nil {
				logger.WithError(err).Warn("Create-by-id failed, assuming existing document")
				state = stateUpdateByID
				continue
			}
			logger.Info("Created snapshot keyed by date")
			return dateKey, nil

		case stateUpdateByID:
			if _, err := u.col.Update(ctx, dateKey, data); err != nil {
				return "", errors.NewPersistenceError("update-by-id", err)
			}
			logger.Info("Updated snapshot keyed by date")
			return dateKey, nil
		}
	}
}

// UpsertByID skips the lookup and uses the date key directly as the
// document identifier: create, and on any failure update the same
// identifier. The metadata store is written this way.
func (u *Upserter) UpsertByID(ctx context.Context, dateKey string, data map[string]interface{}) (string, error) {
	logger := logging.FromContext(ctx).WithField(dateField, dateKey)
	data[dateField] = dateKey

	if _, err := u.col.Create(ctx, dateKey, data); err != nil {
		logger.WithError(err).Warn("Create-by-id failed, assuming existing document")
		if _, err := u.col.Update(ctx, dateKey, data); err != nil {
			return "", errors.NewPersistenceError("update-by-id", err)
		}
		logger.Info("Updated snapshot keyed by date")
		return dateKey, nil
	}

	logger.Info("Created snapshot keyed by date")
	return dateKey, nil
}
