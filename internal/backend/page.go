package backend

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hongminglow/loyalty-console/internal/paging"
)

// ErrMissingPagination is reported on a Page whose pagination block was absent or unreadable.
var ErrMissingPagination = errors.New("missing pagination")

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items []T
	Info  *paging.Info
	// PaginationErr is set when Info could not be read; Items are still usable.
	PaginationErr error
}

func decodeInfo(raw json.RawMessage) (*paging.Info, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ErrMissingPagination
	}
	var info paging.Info
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingPagination, err)
	}
	if !info.Valid() {
		return nil, fmt.Errorf("%w: negative totals", ErrMissingPagination)
	}
	return &info, nil
}

// nestedPage is the {"<items>": [...], "pagination": {...}} shape.
func nestedPage[T any](items []T, raw json.RawMessage) Page[T] {
	info, err := decodeInfo(raw)
	return Page[T]{Items: items, Info: info, PaginationErr: err}
}

// flatPage is the {"data": [...], "current_page": n, ...} shape.
func flatPage[T any](body map[string]json.RawMessage) (Page[T], error) {
	var items []T
	if raw, ok := body["data"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &items); err != nil {
			return Page[T]{}, fmt.Errorf("backend: decode data: %w", err)
		}
	}
	if _, ok := body["total_pages"]; !ok {
		return Page[T]{Items: items, PaginationErr: ErrMissingPagination}, nil
	}
	block, err := json.Marshal(map[string]json.RawMessage{
		"current_page": body["current_page"],
		"per_page":     body["per_page"],
		"total_items":  body["total_items"],
		"total_pages":  body["total_pages"],
	})
	if err != nil {
		return Page[T]{Items: items, PaginationErr: fmt.Errorf("%w: %v", ErrMissingPagination, err)}, nil
	}
	return nestedPage(items, block), nil
}
