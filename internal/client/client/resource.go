package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/brokerdesk/internal/client/models"
)

// Resource issues the CRUD calls of one backend collection. listKey and
// itemKey name the members of the data object holding a list or one record,
// e.g. "properties" and "property".
type Resource[R any] struct {
	c       *Client
	path    string
	listKey string
	itemKey string
}

func NewResource[R any](c *Client, path, listKey, itemKey string) *Resource[R] {
	return &Resource[R]{c: c, path: path, listKey: listKey, itemKey: itemKey}
}

func (r *Resource[R]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

func (r *Resource[R]) List(ctx context.Context, params models.ListParams) (models.Page[R], error) {
	params = params.Normalize()

	data, err := r.c.do(ctx, http.MethodGet, r.path, params.Query(), nil)
	if err != nil {
		return models.Page[R]{}, err
	}

	var m map[string]json.RawMessage
	if err := decodeInto(data, &m); err != nil {
		return models.Page[R]{}, err
	}

	items := []R{}
	if raw, ok := m[r.listKey]; ok {
		if err := json.Unmarshal(raw, &items); err != nil {
			return models.Page[R]{}, fmt.Errorf("decode %s: %w", r.listKey, err)
		}
		if items == nil {
			items = []R{}
		}
	} else {
		return models.Page[R]{}, fmt.Errorf("response has no %q member", r.listKey)
	}

	var pg models.Pagination
	if raw, ok := m["pagination"]; ok {
		if err := json.Unmarshal(raw, &pg); err != nil {
			return models.Page[R]{}, fmt.Errorf("decode pagination: %w", err)
		}
	} else {
		pg = models.Pagination{CurrentPage: params.Page, Total: len(items), TotalPages: models.TotalPagesFor(len(items), params.Limit)}
	}

	return models.Page[R]{Items: items, Pagination: pg, Source: models.SourceServer}, nil
}

func (r *Resource[R]) Get(ctx context.Context, id string) (R, error) {
	return r.one(ctx, http.MethodGet, r.itemPath(id), nil)
}

func (r *Resource[R]) Create(ctx context.Context, payload R) (R, error) {
	return r.one(ctx, http.MethodPost, r.path, payload)
}

func (r *Resource[R]) Update(ctx context.Context, id string, payload R) (R, error) {
	return r.one(ctx, http.MethodPut, r.itemPath(id), payload)
}

func (r *Resource[R]) Delete(ctx context.Context, id string) error {
	_, err := r.c.do(ctx, http.MethodDelete, r.itemPath(id), nil, nil)
	return err
}

func (r *Resource[R]) one(ctx context.Context, method, path string, body any) (R, error) {
	var out R
	data, err := r.c.do(ctx, method, path, nil, body)
	if err != nil {
		return out, err
	}
	if err := member(data, r.itemKey, &out); err != nil {
		return out, err
	}
	return out, nil
}

func decodeInto(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("response has no data")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
