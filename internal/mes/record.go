package mes

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Remote records expose only the fields this tool reads; everything else the
// MES sends is kept verbatim in Extra so that payloads built from a record
// round-trip back to the MES with all the fields it expects.

// Warehouse is one row of the warehouse master list.
type Warehouse struct {
	WarehouseID              int64  `json:"warehouseId"`
	WarehouseCode            string `json:"warehouseCode"`
	WarehouseName            string `json:"warehouseName"`
	AvailableForLocationFlag string `json:"availableForLocationFlag"`

	Extra map[string]any `json:"-"`
}

func (w *Warehouse) UnmarshalJSON(data []byte) error {
	type known Warehouse
	extra, err := unmarshalRecord(data, (*known)(w),
		"warehouseId", "warehouseCode", "warehouseName", "availableForLocationFlag")
	if err != nil {
		return err
	}
	w.Extra = extra
	return nil
}

func (w Warehouse) MarshalJSON() ([]byte, error) {
	return marshalRecord(w.Extra, map[string]any{
		"warehouseId":              w.WarehouseID,
		"warehouseCode":            w.WarehouseCode,
		"warehouseName":            w.WarehouseName,
		"availableForLocationFlag": w.AvailableForLocationFlag,
	})
}

// StockRow is one row of the on-hand lot detail list.
type StockRow struct {
	LotID          int64           `json:"lotId"`
	LotCode        string          `json:"lotCode"`
	WarehouseID    int64           `json:"warehouseId"`
	WarehouseCode  string          `json:"warehouseCode"`
	WarehouseName  string          `json:"warehouseName"`
	ItemName       string          `json:"itemName"`
	PrimaryUOM     string          `json:"primaryUom"`
	OnhandQuantity decimal.Decimal `json:"onhandQuantity"`

	Extra map[string]any `json:"-"`
}

func (s *StockRow) UnmarshalJSON(data []byte) error {
	type known StockRow
	extra, err := unmarshalRecord(data, (*known)(s),
		"lotId", "lotCode", "warehouseId", "warehouseCode", "warehouseName",
		"itemName", "primaryUom", "onhandQuantity")
	if err != nil {
		return err
	}
	s.Extra = extra
	return nil
}

func (s StockRow) MarshalJSON() ([]byte, error) {
	return marshalRecord(s.Extra, map[string]any{
		"lotId":          s.LotID,
		"lotCode":        s.LotCode,
		"warehouseId":    s.WarehouseID,
		"warehouseCode":  s.WarehouseCode,
		"warehouseName":  s.WarehouseName,
		"itemName":       s.ItemName,
		"primaryUom":     s.PrimaryUOM,
		"onhandQuantity": s.OnhandQuantity,
	})
}

// TransferHeader is one row of the stock-transfer-warehouse list: the
// item/warehouse pairing with the numeric identifiers the rest of the
// transfer workflow is keyed on.
type TransferHeader struct {
	ItemID                   int64  `json:"itemId"`
	ItemCode                 string `json:"itemCode"`
	WarehouseID              int64  `json:"warehouseId"`
	WarehouseCode            string `json:"warehouseCode"`
	PlantID                  int64  `json:"plantId"`
	LocationID               *int64 `json:"locationId"`
	ProjectID                *int64 `json:"projectId"`
	OnhandStockID            int64  `json:"onhandStockId"`
	AvailableForLocationFlag string `json:"availableForLocationFlag"`

	Extra map[string]any `json:"-"`
}

func (h *TransferHeader) UnmarshalJSON(data []byte) error {
	type known TransferHeader
	extra, err := unmarshalRecord(data, (*known)(h),
		"itemId", "itemCode", "warehouseId", "warehouseCode", "plantId",
		"locationId", "projectId", "onhandStockId", "availableForLocationFlag")
	if err != nil {
		return err
	}
	h.Extra = extra
	return nil
}

// Payload returns the header as a mutable map with all pass-through fields
// restored, ready to be turned into a stage record.
func (h *TransferHeader) Payload() map[string]any {
	return mergeRecord(h.Extra, map[string]any{
		"itemId":                   h.ItemID,
		"itemCode":                 h.ItemCode,
		"warehouseId":              h.WarehouseID,
		"warehouseCode":            h.WarehouseCode,
		"plantId":                  h.PlantID,
		"locationId":               h.LocationID,
		"projectId":                h.ProjectID,
		"onhandStockId":            h.OnhandStockID,
		"availableForLocationFlag": h.AvailableForLocationFlag,
	})
}

// TransferLot is one candidate row of the stock-transfer-warehouse lot list.
type TransferLot struct {
	LotID   int64  `json:"lotId"`
	LotCode string `json:"lotCode"`

	Extra map[string]any `json:"-"`
}

func (l *TransferLot) UnmarshalJSON(data []byte) error {
	type known TransferLot
	extra, err := unmarshalRecord(data, (*known)(l), "lotId", "lotCode")
	if err != nil {
		return err
	}
	l.Extra = extra
	return nil
}

// Payload returns the lot row as a mutable map with all pass-through fields
// restored.
func (l *TransferLot) Payload() map[string]any {
	return mergeRecord(l.Extra, map[string]any{
		"lotId":   l.LotID,
		"lotCode": l.LotCode,
	})
}

// unmarshalRecord decodes data into the known-field struct and returns the
// remaining fields as a pass-through map.
func unmarshalRecord(data []byte, known any, knownKeys ...string) (map[string]any, error) {
	if err := json.Unmarshal(data, known); err != nil {
		return nil, err
	}
	var extra map[string]any
	if err := json.Unmarshal(data, &extra); err != nil {
		return nil, err
	}
	for _, k := range knownKeys {
		delete(extra, k)
	}
	return extra, nil
}

// mergeRecord combines pass-through fields with the known fields, known
// fields winning. The input maps are not modified.
func mergeRecord(extra, known map[string]any) map[string]any {
	merged := make(map[string]any, len(extra)+len(known))
	for k, v := range extra {
		merged[k] = v
	}
	for k, v := range known {
		merged[k] = v
	}
	return merged
}

func marshalRecord(extra, known map[string]any) ([]byte, error) {
	return json.Marshal(mergeRecord(extra, known))
}
