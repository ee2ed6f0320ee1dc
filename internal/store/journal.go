// Package store persists the tool's local state: the transfer journal,
// settings, and revoked tokens.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"pdabridge/internal/model"
)

// RecordStaged inserts a journal row for a transfer that has been staged on
// the MES but not yet finalized. The row keeps status 'staged' until
// MarkCommitted flips it — a row stuck in 'staged' is the durable marker of
// the stage/commit inconsistency window.
func RecordStaged(ctx context.Context, db *sql.DB, entry model.JournalEntry, stagedID int64) (int64, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO transfer_log (barcode, item_code, lot_code, quantity,
		                           from_warehouse, to_warehouse, staged_id, status, operator)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Barcode, entry.ItemCode, entry.LotCode, entry.Quantity,
		entry.FromWarehouse, entry.ToWarehouse, stagedID, model.StatusStaged, entry.Operator,
	)
	if err != nil {
		return 0, fmt.Errorf("recording staged transfer: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("recording staged transfer: %w", err)
	}
	return id, nil
}

// RecordFailed inserts a journal row for a line that failed before anything
// was staged on the MES.
func RecordFailed(ctx context.Context, db *sql.DB, entry model.JournalEntry, message string) (int64, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO transfer_log (barcode, item_code, lot_code, quantity,
		                           from_warehouse, to_warehouse, status, message, operator)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Barcode, entry.ItemCode, entry.LotCode, entry.Quantity,
		entry.FromWarehouse, entry.ToWarehouse, model.StatusFailed, message, entry.Operator,
	)
	if err != nil {
		return 0, fmt.Errorf("recording failed transfer: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("recording failed transfer: %w", err)
	}
	return id, nil
}

// MarkCommitted flips a staged journal row to committed.
func MarkCommitted(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE transfer_log SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		model.StatusCommitted, id,
	)
	if err != nil {
		return fmt.Errorf("marking transfer committed: %w", err)
	}
	return nil
}

// MarkCommitFailure records why the finalize call failed. The row keeps
// status 'staged': the staged transfer still exists on the MES and nothing
// here can clean it up.
func MarkCommitFailure(ctx context.Context, db *sql.DB, id int64, message string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE transfer_log SET message = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		message, id,
	)
	if err != nil {
		return fmt.Errorf("recording commit failure: %w", err)
	}
	return nil
}

// ListJournal returns journal entries, newest first, optionally filtered by
// status and by warehouse (matching either side of the transfer).
func ListJournal(ctx context.Context, db *sql.DB, status, warehouse string) ([]model.JournalEntry, error) {
	query := `SELECT id, barcode, item_code, lot_code, quantity,
	                 from_warehouse, to_warehouse, staged_id, status, message, operator,
	                 created_at, updated_at
	          FROM transfer_log WHERE 1=1`
	var args []any

	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	if warehouse != "" {
		query += ` AND (from_warehouse = ? OR to_warehouse = ?)`
		args = append(args, warehouse, warehouse)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing journal: %w", err)
	}
	defer rows.Close()

	var entries []model.JournalEntry
	for rows.Next() {
		var e model.JournalEntry
		var stagedID sql.NullInt64
		var message, operator sql.NullString
		if err := rows.Scan(&e.ID, &e.Barcode, &e.ItemCode, &e.LotCode, &e.Quantity,
			&e.FromWarehouse, &e.ToWarehouse, &stagedID, &e.Status, &message, &operator,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		e.StagedID = stagedID.Int64
		e.Message = message.String
		e.Operator = operator.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
