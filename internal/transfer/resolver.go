// Package transfer implements the core of the PDA tool: scan capture, the
// per-warehouse-pair scan ledger, and the two-phase stage/commit workflow
// that turns a batch of scanned lines into MES warehouse transfers.
package transfer

import (
	"context"
	"log/slog"

	"pdabridge/internal/mes"
)

// ResolveStock queries on-hand lots for a lot code at a warehouse and picks
// the best candidate row. It returns nil (with no error) when the MES has no
// stock for the query at all.
func ResolveStock(ctx context.Context, client *mes.Client, lotCode, warehouseCode string) (*mes.StockRow, error) {
	rows, err := client.StockOnhandRows(ctx, lotCode, warehouseCode)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return selectStockRow(rows, lotCode, warehouseCode), nil
}

// selectStockRow applies the fallback-matching policy over the rows the MES
// returned, in strict priority order:
//
//  1. lot code and warehouse code both match exactly;
//  2. lot code matches, warehouse ignored;
//  3. the first row, as a last resort.
//
// The MES lot+warehouse filter is not always perfectly selective, so a
// looser match keeps the operator moving instead of blocking the scan. The
// last-resort tier can pick an unrelated lot; it is logged so a wrong pick
// is visible afterwards.
func selectStockRow(rows []mes.StockRow, lotCode, warehouseCode string) *mes.StockRow {
	for i := range rows {
		if rows[i].LotCode == lotCode && rows[i].WarehouseCode == warehouseCode {
			return &rows[i]
		}
	}

	for i := range rows {
		if rows[i].LotCode == lotCode {
			return &rows[i]
		}
	}

	slog.Warn("stock lookup fell back to first returned row",
		"lot", lotCode, "warehouse", warehouseCode,
		"picked_lot", rows[0].LotCode, "picked_warehouse", rows[0].WarehouseCode)
	return &rows[0]
}
