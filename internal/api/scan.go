package api

import (
	"errors"
	"net/http"
	"strconv"

	"pdabridge/internal/barcode"
	"pdabridge/internal/model"
	"pdabridge/internal/transfer"
)

// ScanHandler manages the pending scan batch of the operator's session.
type ScanHandler struct{}

type scanRequest struct {
	Barcode string `json:"barcode" validate:"required"`
	From    string `json:"from" validate:"required"`
	To      string `json:"to" validate:"required"`
}

type scanLineResponse struct {
	Position int            `json:"position"`
	Line     model.ScanLine `json:"line"`
}

// Create handles POST /api/scan: decode the barcode, resolve its stock and
// append the line to the batch for the (from, to) pair.
func (h *ScanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "barcode, from and to required")
		return
	}

	sess := GetSession(r.Context())
	sess.Lock()
	defer sess.Unlock()

	line, err := transfer.Capture(r.Context(), sess.Client, req.Barcode, req.From, req.To)
	if err != nil {
		switch {
		case errors.Is(err, barcode.ErrInvalidFormat):
			jsonError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, transfer.ErrInsufficientStock):
			jsonError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, transfer.ErrNoStock):
			jsonError(w, http.StatusNotFound, err.Error())
		default:
			mesError(w, err)
		}
		return
	}

	position := sess.Ledger.Append(line)
	jsonResponse(w, http.StatusCreated, scanLineResponse{Position: position, Line: line})
}

// List handles GET /api/scan?from=&to=: the pending lines of one batch,
// numbered in scan order.
func (h *ScanHandler) List(w http.ResponseWriter, r *http.Request) {
	from, to, ok := batchParams(w, r)
	if !ok {
		return
	}

	sess := GetSession(r.Context())
	sess.Lock()
	lines := sess.Ledger.Lines(from, to)
	sess.Unlock()

	numbered := make([]scanLineResponse, len(lines))
	for i, line := range lines {
		numbered[i] = scanLineResponse{Position: i + 1, Line: line}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"lines": numbered})
}

// Delete handles DELETE /api/scan/{no}?from=&to=: remove one line by its
// display number. Remaining lines renumber.
func (h *ScanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	from, to, ok := batchParams(w, r)
	if !ok {
		return
	}

	position, err := strconv.Atoi(r.PathValue("no"))
	if err != nil || position < 1 {
		jsonError(w, http.StatusBadRequest, "invalid line number")
		return
	}

	sess := GetSession(r.Context())
	sess.Lock()
	err = sess.Ledger.Delete(from, to, position)
	sess.Unlock()

	if err != nil {
		jsonError(w, http.StatusNotFound, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "line deleted"})
}

// Clear handles DELETE /api/scan?from=&to=: drop the whole pending batch.
func (h *ScanHandler) Clear(w http.ResponseWriter, r *http.Request) {
	from, to, ok := batchParams(w, r)
	if !ok {
		return
	}

	sess := GetSession(r.Context())
	sess.Lock()
	sess.Ledger.Clear(from, to)
	sess.Unlock()

	jsonResponse(w, http.StatusOK, map[string]string{"message": "batch cleared"})
}

// batchParams reads the from/to warehouse pair off the query string.
func batchParams(w http.ResponseWriter, r *http.Request) (from, to string, ok bool) {
	from = r.URL.Query().Get("from")
	to = r.URL.Query().Get("to")
	if from == "" || to == "" {
		jsonError(w, http.StatusBadRequest, "from and to query parameters required")
		return "", "", false
	}
	return from, to, true
}
