package model

import "time"

// Journal entry statuses. A row stays in StatusStaged when the stage call
// succeeded but the finalize call did not complete: that is the recorded
// inconsistency window, since the MES offers no way to undo a staged
// transfer.
const (
	StatusStaged    = "staged"
	StatusCommitted = "committed"
	StatusFailed    = "failed"
)

// JournalEntry is one line of the local transfer journal: the durable record
// of every stage/commit attempt against the MES.
type JournalEntry struct {
	ID            int64     `json:"id"`
	Barcode       string    `json:"barcode"`
	ItemCode      string    `json:"item_code"`
	LotCode       string    `json:"lot_code"`
	Quantity      int64     `json:"quantity"`
	FromWarehouse string    `json:"from_warehouse"`
	ToWarehouse   string    `json:"to_warehouse"`
	StagedID      int64     `json:"staged_id,omitempty"`
	Status        string    `json:"status"`
	Message       string    `json:"message,omitempty"`
	Operator      string    `json:"operator,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
