// Package docstore provides a client for the external document store and
// the capability interface the upsert logic is written against.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
)

// Sentinel errors the upsert state machine branches on.
var (
	// ErrConflict indicates a create with an identifier that already exists
	ErrConflict = errors.New("document already exists")
	// ErrNotFound indicates an update of a missing document
	ErrNotFound = errors.New("document not found")
)

// Document is a single record in a collection. System fields ($id,
// $createdAt) live alongside the user data fields in the wire form.
type Document struct {
	ID        string
	CreatedAt string
	Data      map[string]interface{}
}

// UnmarshalJSON splits system fields from data fields
func (d *Document) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Data = make(map[string]interface{}, len(raw))
	for key, value := range raw {
		switch key {
		case "$id":
			if err := json.Unmarshal(value, &d.ID); err != nil {
				return err
			}
		case "$createdAt":
			if err := json.Unmarshal(value, &d.CreatedAt); err != nil {
				return err
			}
		default:
			var v interface{}
			if err := json.Unmarshal(value, &v); err != nil {
				return err
			}
			d.Data[key] = v
		}
	}
	return nil
}

// MarshalJSON flattens system fields back into the wire form
func (d Document) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(d.Data)+2)
	for k, v := range d.Data {
		flat[k] = v
	}
	flat["$id"] = d.ID
	flat["$createdAt"] = d.CreatedAt
	return json.Marshal(flat)
}

// DocumentList is a page of documents with the collection total
type DocumentList struct {
	Total     int64      `json:"total"`
	Documents []Document `json:"documents"`
}

// ListQuery describes a list request. Field/Value add an equality filter;
// CursorAfter resumes pagination after the given document ID.
type ListQuery struct {
	Field       string
	Value       string
	Limit       int
	CursorAfter string
	OrderField  string
	OrderDesc   bool
}

// Collection is the capability set the store exposes per collection:
// equality-filtered listing, create with an explicit identifier, and update
// by identifier.
type Collection interface {
	List(ctx context.Context, q ListQuery) (*DocumentList, error)
	Create(ctx context.Context, id string, data map[string]interface{}) (*Document, error)
	Update(ctx context.Context, id string, data map[string]interface{}) (*Document, error)
}
