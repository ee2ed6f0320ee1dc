package transfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pdabridge/internal/mes"
	"pdabridge/internal/model"
	"pdabridge/internal/store"
)

// Workflow failure kinds, one per step of the per-line state machine.
var (
	ErrHeaderNotFound = errors.New("transfer header not found")
	ErrLotNotFound    = errors.New("transfer lot not found")
	ErrStageFailed    = errors.New("staging transfer failed")
	ErrCommitFailed   = errors.New("committing transfer failed")
)

// MES constants for the manual warehouse-transfer transaction, as sent by
// the MES web UI for this screen.
const (
	transactionTypeID = 10084
	webURLID          = 13648
)

// LineError reports which line of a batch failed and at which step. Lines
// committed before the failing one are not rolled back; the ledger is left
// untouched so the operator can retry the batch.
type LineError struct {
	Position int
	LotCode  string
	Kind     error
	Err      error
}

func (e *LineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("line %d (lot %s): %v", e.Position, e.LotCode, e.Kind)
	}
	return fmt.Sprintf("line %d (lot %s): %v: %v", e.Position, e.LotCode, e.Kind, e.Err)
}

func (e *LineError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Orchestrator drives the two-phase MES workflow for a batch of scanned
// lines: per line, resolve the transfer header, match the lot, stage the
// transfer, then finalize it. Lines are processed strictly in ledger order;
// the first failure halts the batch.
type Orchestrator struct {
	Client    *mes.Client
	Directory *mes.Directory
	DB        *sql.DB
	Operator  string

	// Now is the clock for transaction/period dates; nil means time.Now.
	Now func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// CommitBatch transfers every line of a batch, one MES transaction per line.
// On failure it returns a *LineError naming the failing line; earlier lines
// stay committed on the MES and nothing is removed from any ledger — the
// caller clears the batch only on full success.
func (o *Orchestrator) CommitBatch(ctx context.Context, lines []model.ScanLine, fromCode, toCode string) error {
	if len(lines) == 0 {
		return errors.New("no scanned lines to transfer")
	}

	dest, err := o.Directory.Resolve(ctx, toCode)
	if err != nil {
		return fmt.Errorf("resolving destination warehouse %s: %w", toCode, err)
	}

	for i, line := range lines {
		if lineErr := o.commitLine(ctx, line, fromCode, dest); lineErr != nil {
			lineErr.Position = i + 1
			slog.Error("batch halted", "line", lineErr.Position, "lot", line.LotCode, "error", lineErr)
			return lineErr
		}
		slog.Info("line transferred", "lot", line.LotCode, "quantity", line.Quantity,
			"from", fromCode, "to", toCode)
	}
	return nil
}

// commitLine runs the state machine for one line:
// header resolved -> lot resolved -> staged -> committed.
func (o *Orchestrator) commitLine(ctx context.Context, line model.ScanLine, fromCode string, dest mes.Warehouse) *LineError {
	headers, err := o.Client.TransferHeaders(ctx, line.ItemCode, fromCode)
	if err != nil {
		o.recordFailure(ctx, line, err.Error())
		return &LineError{LotCode: line.LotCode, Kind: ErrHeaderNotFound, Err: err}
	}
	header := matchHeader(headers, line.ItemCode, fromCode)
	if header == nil {
		o.recordFailure(ctx, line, fmt.Sprintf("no transfer header for item %s in %s", line.ItemCode, fromCode))
		return &LineError{LotCode: line.LotCode, Kind: ErrHeaderNotFound}
	}

	lots, err := o.Client.TransferLots(ctx, header.ItemID, header.WarehouseID)
	if err != nil {
		o.recordFailure(ctx, line, err.Error())
		return &LineError{LotCode: line.LotCode, Kind: ErrLotNotFound, Err: err}
	}
	lot := matchLot(lots, line.LotCode)
	if lot == nil {
		o.recordFailure(ctx, line, fmt.Sprintf("lot %s not in transfer lot list", line.LotCode))
		return &LineError{LotCode: line.LotCode, Kind: ErrLotNotFound}
	}

	headerPayload, lotPayload := o.buildStagePayloads(line, header, lot, dest)

	stagedID, err := o.Client.SaveTransfer(ctx, headerPayload, lotPayload)
	if err != nil {
		o.recordFailure(ctx, line, err.Error())
		return &LineError{LotCode: line.LotCode, Kind: ErrStageFailed, Err: err}
	}

	// The transfer now exists on the MES in staged form. Record that before
	// the finalize call so a failure in between leaves a visible marker.
	journalID := o.recordStaged(ctx, line, stagedID)

	if err := o.Client.CommitTransfer(ctx, stagedID); err != nil {
		o.recordCommitFailure(ctx, journalID, err.Error())
		return &LineError{LotCode: line.LotCode, Kind: ErrCommitFailed, Err: err}
	}

	o.recordCommitted(ctx, journalID)
	return nil
}

func matchHeader(headers []mes.TransferHeader, itemCode, warehouseCode string) *mes.TransferHeader {
	for i := range headers {
		if headers[i].ItemCode == itemCode && headers[i].WarehouseCode == warehouseCode {
			return &headers[i]
		}
	}
	return nil
}

func matchLot(lots []mes.TransferLot, lotCode string) *mes.TransferLot {
	for i := range lots {
		if lots[i].LotCode == lotCode {
			return &lots[i]
		}
	}
	return nil
}

// buildStagePayloads assembles the header-update and lot-update records for
// the stage call by cloning the fetched rows and overriding the fields the
// MES web UI sets for a manual transfer.
func (o *Orchestrator) buildStagePayloads(line model.ScanLine, header *mes.TransferHeader, lot *mes.TransferLot, dest mes.Warehouse) (map[string]any, map[string]any) {
	now := o.now()

	// Quantities go over the wire as JSON numbers, like the browser
	// save payload.
	moveQty := float64(line.Quantity)

	h := header.Payload()

	// The MES treats null location/project as 0 in the save payload.
	h["locationId"] = int64OrZero(header.LocationID)
	h["projectId"] = int64OrZero(header.ProjectID)

	// Transaction quantity must equal the lot move quantity.
	h["primaryQuantity"] = moveQty

	if _, ok := h["id"]; !ok {
		h["id"] = "pda-" + line.ID
	}
	h["row-active"] = true

	h["saveWarehouseId"] = dest.WarehouseID
	h["saveWarehouseCode"] = dest.WarehouseCode
	h["saveWarehouseName"] = dest.WarehouseName
	h["saveLocationId"] = nil
	h["saveLocationCode"] = nil
	h["saveLocationName"] = nil
	h["saveMoveQuantity"] = line.Quantity

	h["editStatus"] = "U"
	h["errorField"] = map[string]any{}
	h["transferWarehouseId"] = dest.WarehouseID
	h["transactionTypeId"] = transactionTypeID
	h["transactionDate"] = now.Format("2006-01-02 15:04:05")
	h["periodDate"] = now.Format("2006-01")
	h["availableForLocationFlag"] = flagOrDefault(header.AvailableForLocationFlag, "N")
	h["transferLocationId"] = 0
	h["lotCount"] = 1
	h["transferItemId"] = header.ItemID
	h["transferPlantId"] = plantID(header, o.Client.Profile())
	h["webUrlId"] = webURLID
	h["interfaceFlag"] = "N"

	l := lot.Payload()
	if _, ok := l["id"]; !ok {
		l["id"] = fmt.Sprintf("pda-lot-%d", lot.LotID)
	}
	l["editStatus"] = "U"
	l["moveQuantity"] = moveQty
	l["onhandStockId"] = header.OnhandStockID

	return h, l
}

func int64OrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func flagOrDefault(flag, fallback string) string {
	if flag == "" {
		return fallback
	}
	return flag
}

func plantID(header *mes.TransferHeader, profile mes.Profile) int64 {
	if header.PlantID != 0 {
		return header.PlantID
	}
	return profile.PlantID
}

// Journal writes are best effort: a local bookkeeping failure must not abort
// a remote workflow that is already in flight, but it is never silent.

func (o *Orchestrator) recordStaged(ctx context.Context, line model.ScanLine, stagedID int64) int64 {
	id, err := store.RecordStaged(ctx, o.DB, journalEntry(line, o.Operator), stagedID)
	if err != nil {
		slog.Error("failed to journal staged transfer", "lot", line.LotCode, "staged_id", stagedID, "error", err)
	}
	return id
}

func (o *Orchestrator) recordCommitted(ctx context.Context, journalID int64) {
	if err := store.MarkCommitted(ctx, o.DB, journalID); err != nil {
		slog.Error("failed to journal committed transfer", "journal_id", journalID, "error", err)
	}
}

func (o *Orchestrator) recordCommitFailure(ctx context.Context, journalID int64, msg string) {
	if err := store.MarkCommitFailure(ctx, o.DB, journalID, msg); err != nil {
		slog.Error("failed to journal commit failure", "journal_id", journalID, "error", err)
	}
}

func (o *Orchestrator) recordFailure(ctx context.Context, line model.ScanLine, msg string) {
	if _, err := store.RecordFailed(ctx, o.DB, journalEntry(line, o.Operator), msg); err != nil {
		slog.Error("failed to journal line failure", "lot", line.LotCode, "error", err)
	}
}

func journalEntry(line model.ScanLine, operator string) model.JournalEntry {
	return model.JournalEntry{
		Barcode:       line.Barcode,
		ItemCode:      line.ItemCode,
		LotCode:       line.LotCode,
		Quantity:      line.Quantity,
		FromWarehouse: line.FromWarehouse,
		ToWarehouse:   line.ToWarehouse,
		Operator:      operator,
	}
}
