package transfer

import (
	"fmt"

	"pdabridge/internal/model"
)

// Ledger holds the pending scan lines of one operator session, grouped by
// (source, destination) warehouse pair. Insertion order is the display order
// and the commit order. The same barcode may appear twice; lines are never
// deduplicated.
type Ledger struct {
	batches map[string][]model.ScanLine
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{batches: make(map[string][]model.ScanLine)}
}

func batchKey(from, to string) string {
	return from + "->" + to
}

// Append adds a line to the batch for its warehouse pair and returns its
// 1-based display position.
func (l *Ledger) Append(line model.ScanLine) int {
	key := batchKey(line.FromWarehouse, line.ToWarehouse)
	l.batches[key] = append(l.batches[key], line)
	return len(l.batches[key])
}

// Lines returns a copy of the pending lines for a warehouse pair, in scan
// order.
func (l *Ledger) Lines(from, to string) []model.ScanLine {
	batch := l.batches[batchKey(from, to)]
	if len(batch) == 0 {
		return nil
	}
	lines := make([]model.ScanLine, len(batch))
	copy(lines, batch)
	return lines
}

// Len returns the number of pending lines for a warehouse pair.
func (l *Ledger) Len(from, to string) int {
	return len(l.batches[batchKey(from, to)])
}

// Delete removes the line at the given 1-based display position; later lines
// move up by one.
func (l *Ledger) Delete(from, to string, position int) error {
	key := batchKey(from, to)
	batch := l.batches[key]
	if position < 1 || position > len(batch) {
		return fmt.Errorf("no scan line at position %d", position)
	}
	l.batches[key] = append(batch[:position-1], batch[position:]...)
	return nil
}

// Clear drops every pending line for a warehouse pair.
func (l *Ledger) Clear(from, to string) {
	delete(l.batches, batchKey(from, to))
}
