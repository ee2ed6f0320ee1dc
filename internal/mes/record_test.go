package mes

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestStockRowPassThrough(t *testing.T) {
	raw := `{
		"lotId": 55, "lotCode": "10A0001-L5-251114001",
		"warehouseId": 101, "warehouseCode": "1WP", "warehouseName": "WIP",
		"itemName": "Bracket", "primaryUom": "EA", "onhandQuantity": 500.5,
		"lotStatus": "A", "projectCode": null
	}`

	var row StockRow
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if row.LotCode != "10A0001-L5-251114001" || row.WarehouseCode != "1WP" {
		t.Errorf("unexpected known fields: %+v", row)
	}
	if !row.OnhandQuantity.Equal(decimal.RequireFromString("500.5")) {
		t.Errorf("expected on-hand 500.5, got %s", row.OnhandQuantity)
	}

	// Fields the tool doesn't read survive in Extra.
	if row.Extra["lotStatus"] != "A" {
		t.Errorf("expected lotStatus in Extra, got %v", row.Extra)
	}
	if _, ok := row.Extra["lotCode"]; ok {
		t.Error("known fields must not be duplicated in Extra")
	}
}

func TestTransferHeaderPayloadRoundTrip(t *testing.T) {
	raw := `{
		"itemId": 7, "itemCode": "10A0001", "warehouseId": 101,
		"warehouseCode": "1WP", "plantId": 10, "locationId": null,
		"projectId": 3, "onhandStockId": 9001,
		"availableForLocationFlag": "N", "itemSpec": "M6x20"
	}`

	var header TransferHeader
	if err := json.Unmarshal([]byte(raw), &header); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if header.LocationID != nil {
		t.Errorf("expected null locationId, got %v", *header.LocationID)
	}
	if header.ProjectID == nil || *header.ProjectID != 3 {
		t.Errorf("expected projectId 3, got %v", header.ProjectID)
	}

	payload := header.Payload()
	if payload["itemSpec"] != "M6x20" {
		t.Errorf("pass-through field lost: %v", payload["itemSpec"])
	}
	if payload["onhandStockId"] != int64(9001) {
		t.Errorf("expected onhandStockId 9001, got %v", payload["onhandStockId"])
	}

	// Payload returns a fresh map each time.
	payload["itemSpec"] = "changed"
	if header.Payload()["itemSpec"] != "M6x20" {
		t.Error("mutating a payload must not affect the record")
	}
}

func TestWarehouseMarshalKeepsExtra(t *testing.T) {
	var w Warehouse
	raw := `{"warehouseId": 101, "warehouseCode": "1WP", "warehouseName": "WIP",
		"availableForLocationFlag": "Y", "outsideFlag": "N"}`
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	out, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var round map[string]any
	json.Unmarshal(out, &round)
	if round["outsideFlag"] != "N" || round["warehouseCode"] != "1WP" {
		t.Errorf("round trip lost fields: %v", round)
	}
}
