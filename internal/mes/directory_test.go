package mes

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func warehouseListResponse(rows ...map[string]any) map[string]any {
	return map[string]any{
		"success": true,
		"data":    map[string]any{"list": rows},
	}
}

func TestDirectoryResolveAndCache(t *testing.T) {
	fetches := 0
	client := newFakeMES(t, map[string]http.HandlerFunc{
		warehouseListPath: func(w http.ResponseWriter, r *http.Request) {
			fetches++
			writeJSON(w, warehouseListResponse(
				map[string]any{"warehouseId": 101, "warehouseCode": "1WP", "warehouseName": "WIP"},
				map[string]any{"warehouseId": 102, "warehouseCode": "1JO", "warehouseName": "Outsourcing"},
			))
		},
	})
	login(t, client)

	directory := NewDirectory(client)
	ctx := context.Background()

	w, err := directory.Resolve(ctx, "1JO")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if w.WarehouseID != 102 || w.WarehouseName != "Outsourcing" {
		t.Errorf("unexpected warehouse: %+v", w)
	}

	// Second lookup must come from the cache.
	if _, err := directory.Resolve(ctx, "1WP"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if fetches != 1 {
		t.Errorf("expected a single master fetch, got %d", fetches)
	}
}

func TestDirectoryUnknownCode(t *testing.T) {
	client := newFakeMES(t, map[string]http.HandlerFunc{
		warehouseListPath: func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, warehouseListResponse(
				map[string]any{"warehouseId": 101, "warehouseCode": "1WP"},
			))
		},
	})
	login(t, client)

	_, err := NewDirectory(client).Resolve(context.Background(), "NOPE")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDirectoryUnavailable(t *testing.T) {
	client := newFakeMES(t, map[string]http.HandlerFunc{
		warehouseListPath: func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"success": true, "data": nil})
		},
	})
	login(t, client)

	_, err := NewDirectory(client).Resolve(context.Background(), "1WP")
	if !errors.Is(err, ErrDirectoryUnavailable) {
		t.Errorf("expected ErrDirectoryUnavailable, got %v", err)
	}
}
