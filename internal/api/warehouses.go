package api

import (
	"errors"
	"net/http"

	"pdabridge/internal/mes"
)

// WarehousesHandler resolves warehouse codes against the session's cached
// warehouse directory.
type WarehousesHandler struct{}

type warehouseResponse struct {
	WarehouseID   int64  `json:"warehouse_id"`
	WarehouseCode string `json:"warehouse_code"`
	WarehouseName string `json:"warehouse_name"`
}

// Get handles GET /api/warehouses/{code}.
func (h *WarehousesHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := GetSession(r.Context())
	code := r.PathValue("code")

	sess.Lock()
	warehouse, err := sess.Directory.Resolve(r.Context(), code)
	sess.Unlock()

	if err != nil {
		if errors.Is(err, mes.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "unknown warehouse code")
			return
		}
		mesError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, warehouseResponse{
		WarehouseID:   warehouse.WarehouseID,
		WarehouseCode: warehouse.WarehouseCode,
		WarehouseName: warehouse.WarehouseName,
	})
}
