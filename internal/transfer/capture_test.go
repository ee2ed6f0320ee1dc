package transfer

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"pdabridge/internal/barcode"
)

func stockHandler(t *testing.T, rows ...any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, listResponse(rows...))
	}
}

func TestCaptureBuildsLine(t *testing.T) {
	client := newFakeMES(t, map[string]http.HandlerFunc{
		"/inv/stock-onhand-lot/detail-list": stockHandler(t, map[string]any{
			"lotId":          7,
			"lotCode":        "10A0001-L5-251114001",
			"warehouseId":    21,
			"warehouseCode":  "WH-A",
			"warehouseName":  "자재창고",
			"itemName":       "Copper Wire",
			"primaryUom":     "EA",
			"onhandQuantity": 600,
		}),
	})

	line, err := Capture(context.Background(), client, " 10A0001L5251114001500 ", "WH-A", "WH-B")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	if line.ItemCode != "10A0001" {
		t.Errorf("item code = %q, want 10A0001", line.ItemCode)
	}
	if line.LotCode != "10A0001-L5-251114001" {
		t.Errorf("lot code = %q", line.LotCode)
	}
	if line.Quantity != 500 {
		t.Errorf("quantity = %d, want 500", line.Quantity)
	}
	if line.Barcode != "10A0001L5251114001500" {
		t.Errorf("barcode not trimmed: %q", line.Barcode)
	}
	if line.ItemName != "Copper Wire" || line.UOM != "EA" {
		t.Errorf("stock details not carried: %q / %q", line.ItemName, line.UOM)
	}
	if line.FromWarehouse != "WH-A" || line.ToWarehouse != "WH-B" {
		t.Errorf("warehouses = %q -> %q", line.FromWarehouse, line.ToWarehouse)
	}
	if line.ID == "" {
		t.Error("line has no id")
	}
}

func TestCaptureInsufficientStock(t *testing.T) {
	client := newFakeMES(t, map[string]http.HandlerFunc{
		"/inv/stock-onhand-lot/detail-list": stockHandler(t, map[string]any{
			"lotCode":        "10A0001-L5-251114001",
			"warehouseCode":  "WH-A",
			"onhandQuantity": 499,
		}),
	})

	_, err := Capture(context.Background(), client, "10A0001L5251114001500", "WH-A", "WH-B")
	if !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestCaptureExactQuantityAllowed(t *testing.T) {
	client := newFakeMES(t, map[string]http.HandlerFunc{
		"/inv/stock-onhand-lot/detail-list": stockHandler(t, map[string]any{
			"lotCode":        "10A0001-L5-251114001",
			"warehouseCode":  "WH-A",
			"onhandQuantity": 500,
		}),
	})

	if _, err := Capture(context.Background(), client, "10A0001L5251114001500", "WH-A", "WH-B"); err != nil {
		t.Errorf("moving the full on-hand quantity should be allowed: %v", err)
	}
}

func TestCaptureNoStock(t *testing.T) {
	client := newFakeMES(t, map[string]http.HandlerFunc{
		"/inv/stock-onhand-lot/detail-list": stockHandler(t),
	})

	_, err := Capture(context.Background(), client, "10A0001L5251114001500", "WH-A", "WH-B")
	if !errors.Is(err, ErrNoStock) {
		t.Errorf("expected ErrNoStock, got %v", err)
	}
}

func TestCaptureRejectsBadBarcode(t *testing.T) {
	client := newFakeMES(t, nil)

	// A zero-quantity label must never enter the batch either.
	for _, raw := range []string{"short", "10A0001L52511140010"} {
		_, err := Capture(context.Background(), client, raw, "WH-A", "WH-B")
		if !errors.Is(err, barcode.ErrInvalidFormat) {
			t.Errorf("Capture(%q): expected ErrInvalidFormat, got %v", raw, err)
		}
	}
}
