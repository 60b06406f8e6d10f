package mcp

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type paginationParams struct {
	Cursor string `json:"cursor,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// encodeCursor makes an opaque cursor from a list offset.
func encodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

func decodeCursor(cursor string) (int, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("invalid cursor: %w", err)
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid cursor: %w", err)
	}
	return offset, nil
}

// applyPagination returns the page of items starting at cursor and the cursor
// of the next page, nil on the last page.
func applyPagination[T any](items []T, cursor string, limit int) ([]T, *string, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	start := 0
	if cursor != "" {
		offset, err := decodeCursor(cursor)
		if err != nil {
			return nil, nil, err
		}
		if offset < 0 || offset > len(items) {
			return nil, nil, fmt.Errorf("cursor out of range")
		}
		start = offset
	}

	end := min(start+limit, len(items))
	page := items[start:end]
	if end >= len(items) {
		return page, nil, nil
	}

	next := encodeCursor(end)
	return page, &next, nil
}

func decodePaginationParams(raw json.RawMessage) (paginationParams, error) {
	var params paginationParams
	if err := decodeParams(raw, &params); err != nil {
		return paginationParams{}, err
	}
	return params, nil
}
