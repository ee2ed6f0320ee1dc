package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pdabridge/internal/barcode"
	"pdabridge/internal/mes"
	"pdabridge/internal/model"
)

// Capture errors.
var (
	// ErrNoStock is returned when the source warehouse has no on-hand stock
	// for the scanned lot.
	ErrNoStock = errors.New("no stock for lot in source warehouse")

	// ErrInsufficientStock is returned when the scanned quantity exceeds the
	// resolved on-hand quantity. The guard runs at capture time only; it is
	// not re-checked at commit.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Capture decodes a scanned barcode, resolves its on-hand stock in the
// source warehouse and builds the ledger line. The line is only valid for
// the ledger if the requested quantity is covered by on-hand stock.
func Capture(ctx context.Context, client *mes.Client, raw, fromWarehouse, toWarehouse string) (model.ScanLine, error) {
	raw = strings.TrimSpace(raw)
	scan, err := barcode.Decode(raw)
	if err != nil {
		return model.ScanLine{}, err
	}

	stock, err := ResolveStock(ctx, client, scan.LotCode, fromWarehouse)
	if err != nil {
		return model.ScanLine{}, fmt.Errorf("resolving stock for lot %s: %w", scan.LotCode, err)
	}
	if stock == nil {
		return model.ScanLine{}, fmt.Errorf("%w: lot %s in %s", ErrNoStock, scan.LotCode, fromWarehouse)
	}

	requested := decimal.NewFromInt(scan.Quantity)
	if requested.GreaterThan(stock.OnhandQuantity) {
		return model.ScanLine{}, fmt.Errorf("%w: on hand %s, requested %d",
			ErrInsufficientStock, stock.OnhandQuantity, scan.Quantity)
	}

	return model.ScanLine{
		ID:             uuid.NewString(),
		Barcode:        raw,
		ItemCode:       scan.ItemCode,
		LotCode:        scan.LotCode,
		Quantity:       scan.Quantity,
		FromWarehouse:  fromWarehouse,
		ToWarehouse:    toWarehouse,
		ItemName:       stock.ItemName,
		WarehouseName:  stock.WarehouseName,
		UOM:            stock.PrimaryUOM,
		OnhandQuantity: stock.OnhandQuantity,
		Stock:          stock,
	}, nil
}
