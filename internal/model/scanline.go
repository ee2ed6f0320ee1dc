package model

import (
	"github.com/shopspring/decimal"

	"pdabridge/internal/mes"
)

// ScanLine is one decoded barcode pending transfer, together with the
// on-hand stock row it resolved to. Lines live in the scan batch ledger
// until they are deleted, the batch is cleared, or the batch commits.
type ScanLine struct {
	ID             string          `json:"id"`
	Barcode        string          `json:"barcode"`
	ItemCode       string          `json:"item_code"`
	LotCode        string          `json:"lot_code"`
	Quantity       int64           `json:"quantity"`
	FromWarehouse  string          `json:"from_warehouse"`
	ToWarehouse    string          `json:"to_warehouse"`
	ItemName       string          `json:"item_name,omitempty"`
	WarehouseName  string          `json:"warehouse_name,omitempty"`
	UOM            string          `json:"uom,omitempty"`
	OnhandQuantity decimal.Decimal `json:"onhand_quantity"`

	// Stock is the resolved remote row, kept whole for the commit payload.
	Stock *mes.StockRow `json:"-"`
}
