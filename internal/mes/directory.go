package mes

import (
	"context"
	"fmt"
)

// Directory is the session-lifetime cache of the warehouse master, keyed by
// warehouse code. The master is fetched once on first use and never
// invalidated; warehouse setup does not change mid-shift.
type Directory struct {
	client *Client
	byCode map[string]Warehouse
}

// NewDirectory creates an empty directory backed by client. Nothing is
// fetched until the first Resolve call.
func NewDirectory(client *Client) *Directory {
	return &Directory{client: client}
}

// Resolve returns the warehouse master record for a warehouse code, fetching
// and indexing the full list on first use. An unknown code fails with
// ErrNotFound; a fetch that yields no usable mapping fails with
// ErrDirectoryUnavailable and is retried on the next call.
func (d *Directory) Resolve(ctx context.Context, code string) (Warehouse, error) {
	if d.byCode == nil {
		if err := d.load(ctx); err != nil {
			return Warehouse{}, err
		}
	}

	w, ok := d.byCode[code]
	if !ok {
		return Warehouse{}, fmt.Errorf("%w: warehouse %q", ErrNotFound, code)
	}
	return w, nil
}

func (d *Directory) load(ctx context.Context) error {
	warehouses, err := d.client.Warehouses(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	byCode := make(map[string]Warehouse, len(warehouses))
	for _, w := range warehouses {
		if w.WarehouseCode != "" {
			byCode[w.WarehouseCode] = w
		}
	}
	if len(byCode) == 0 {
		return fmt.Errorf("%w: warehouse list is empty", ErrDirectoryUnavailable)
	}

	d.byCode = byCode
	return nil
}
