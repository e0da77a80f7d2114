package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to the document store's REST API. Project and key
// credentials are attached to every request.
type Client struct {
	rc *resty.Client
}

// NewClient creates a document store client for the given endpoint
func NewClient(endpoint, projectID, apiKey string) *Client {
	rc := resty.New()
	rc.SetBaseURL(endpoint)
	rc.SetTimeout(30 * time.Second)
	rc.SetHeader("X-Project-ID", projectID)
	rc.SetHeader("X-API-Key", apiKey)
	rc.SetHeader("Content-Type", "application/json")

	return &Client{rc: rc}
}

// Collection scopes the client to a (database, collection) pair
func (c *Client) Collection(databaseID, collectionID string) Collection {
	return &remoteCollection{
		client:       c,
		databaseID:   databaseID,
		collectionID: collectionID,
	}
}

type remoteCollection struct {
	client       *Client
	databaseID   string
	collectionID string
}

func (rc *remoteCollection) documentsPath() string {
	return fmt.Sprintf("/databases/%s/collections/%s/documents", rc.databaseID, rc.collectionID)
}

// List performs an equality-filtered, cursor-paginated listing
func (rc *remoteCollection) List(ctx context.Context, q ListQuery) (*DocumentList, error) {
	req := rc.client.rc.R().SetContext(ctx)

	if q.Field != "" {
		req.SetQueryParam("field", q.Field)
		req.SetQueryParam("value", q.Value)
	}
	if q.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(q.Limit))
	}
	if q.CursorAfter != "" {
		req.SetQueryParam("cursorAfter", q.CursorAfter)
	}
	if q.OrderField != "" {
		req.SetQueryParam("orderField", q.OrderField)
		if q.OrderDesc {
			req.SetQueryParam("orderDir", "desc")
		}
	}

	resp, err := req.Get(rc.documentsPath())
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("list documents: status=%d, body=%s", resp.StatusCode(), resp.String())
	}

	var list DocumentList
	if err := json.Unmarshal(resp.Body(), &list); err != nil {
		return nil, fmt.Errorf("list documents: parse: %w", err)
	}
	return &list, nil
}

// Create creates a document with an explicit identifier
func (rc *remoteCollection) Create(ctx context.Context, id string, data map[string]interface{}) (*Document, error) {
	body := map[string]interface{}{
		"documentId": id,
		"data":       data,
	}

	resp, err := rc.client.rc.R().SetContext(ctx).SetBody(body).Post(rc.documentsPath())
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	if resp.StatusCode() == http.StatusConflict {
		return nil, fmt.Errorf("create document %s: %w", id, ErrConflict)
	}
	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("create document %s: status=%d, body=%s", id, resp.StatusCode(), resp.String())
	}

	var doc Document
	if err := json.Unmarshal(resp.Body(), &doc); err != nil {
		return nil, fmt.Errorf("create document: parse: %w", err)
	}
	return &doc, nil
}

// Update updates a document by identifier
func (rc *remoteCollection) Update(ctx context.Context, id string, data map[string]interface{}) (*Document, error) {
	body := map[string]interface{}{
		"data": data,
	}

	resp, err := rc.client.rc.R().SetContext(ctx).SetBody(body).Patch(rc.documentsPath() + "/" + id)
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("update document %s: %w", id, ErrNotFound)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("update document %s: status=%d, body=%s", id, resp.StatusCode(), resp.String())
	}

	var doc Document
	if err := json.Unmarshal(resp.Body(), &doc); err != nil {
		return nil, fmt.Errorf("update document: parse: %w", err)
	}
	return &doc, nil
}
