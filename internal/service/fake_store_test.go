package service

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rates-ingestor/internal/docstore"
)

// fakeCollection is an in-memory docstore.Collection. Insertion order
// stands in for $createdAt ordering.
type fakeCollection struct {
	mu    sync.Mutex
	docs  map[string]map[string]interface{}
	order []string

	listErr   error
	createErr error
	updateErr error

	listCalls   int
	createCalls int
	updateCalls int
}

func newFakeCollection() *fakeCollection {
	return &fakeCollection{docs: make(map[string]map[string]interface{})}
}

func copyData(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func (f *fakeCollection) List(ctx context.Context, q docstore.ListQuery) (*docstore.DocumentList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++

	if f.listErr != nil {
		return nil, f.listErr
	}

	var ids []string
	if q.Field != "" {
		for _, id := range f.order {
			if f.docs[id][q.Field] == q.Value {
				ids = append(ids, id)
			}
		}
	} else {
		// unfiltered listings are requested newest-first
		for i := len(f.order) - 1; i >= 0; i-- {
			ids = append(ids, f.order[i])
		}
	}

	if q.CursorAfter != "" {
		if idx := slices.Index(ids, q.CursorAfter); idx >= 0 {
			ids = ids[idx+1:]
		}
	}
	if q.Limit > 0 && len(ids) > q.Limit {
		ids = ids[:q.Limit]
	}

	list := &docstore.DocumentList{Total: int64(len(ids))}
	for _, id := range ids {
		list.Documents = append(list.Documents, docstore.Document{ID: id, Data: copyData(f.docs[id])})
	}
	return list, nil
}

func (f *fakeCollection) Create(ctx context.Context, id string, data map[string]interface{}) (*docstore.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++

	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, exists := f.docs[id]; exists {
		return nil, fmt.Errorf("create %s: %w", id, docstore.ErrConflict)
	}

	f.docs[id] = copyData(data)
	f.order = append(f.order, id)
	return &docstore.Document{ID: id, Data: copyData(data)}, nil
}

func (f *fakeCollection) Update(ctx context.Context, id string, data map[string]interface{}) (*docstore.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++

	if f.updateErr != nil {
		return nil, f.updateErr
	}
	doc, exists := f.docs[id]
	if !exists {
		return nil, fmt.Errorf("update %s: %w", id, docstore.ErrNotFound)
	}

	for k, v := range data {
		doc[k] = v
	}
	return &docstore.Document{ID: id, Data: copyData(doc)}, nil
}

// seed inserts a document directly, bypassing call counters
func (f *fakeCollection) seed(id string, data map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[id] = copyData(data)
	f.order = append(f.order, id)
}
