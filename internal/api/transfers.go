package api

import (
	"database/sql"
	"errors"
	"net/http"

	"pdabridge/internal/mes"
	"pdabridge/internal/model"
	"pdabridge/internal/store"
	"pdabridge/internal/transfer"
)

// TransfersHandler commits scan batches and serves the transfer journal.
type TransfersHandler struct {
	DB *sql.DB
}

type commitRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

type commitResponse struct {
	Committed int `json:"committed"`
}

// lineFailureResponse reports the line a batch halted on. Lines before it
// are committed on the MES; the pending batch is left untouched.
type lineFailureResponse struct {
	Error     string `json:"error"`
	Line      int    `json:"line"`
	LotCode   string `json:"lot_code"`
	Kind      string `json:"kind"`
	Remote    string `json:"remote_message,omitempty"`
	Committed int    `json:"committed"`
}

// Commit handles POST /api/transfer: transfer every pending line of the
// batch, in scan order, one MES transaction per line. The batch is cleared
// only when every line went through.
func (h *TransfersHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "from and to required")
		return
	}

	sess := GetSession(r.Context())
	sess.Lock()
	defer sess.Unlock()

	lines := sess.Ledger.Lines(req.From, req.To)
	if len(lines) == 0 {
		jsonError(w, http.StatusBadRequest, "no scanned lines to transfer")
		return
	}

	orch := &transfer.Orchestrator{
		Client:    sess.Client,
		Directory: sess.Directory,
		DB:        h.DB,
		Operator:  sess.Operator,
	}

	err := orch.CommitBatch(r.Context(), lines, req.From, req.To)
	if err == nil {
		sess.Ledger.Clear(req.From, req.To)
		jsonResponse(w, http.StatusOK, commitResponse{Committed: len(lines)})
		return
	}

	var lineErr *transfer.LineError
	if errors.As(err, &lineErr) {
		status := http.StatusBadGateway
		if errors.Is(err, transfer.ErrHeaderNotFound) || errors.Is(err, transfer.ErrLotNotFound) {
			status = http.StatusConflict
		}

		resp := lineFailureResponse{
			Error:     lineErr.Error(),
			Line:      lineErr.Position,
			LotCode:   lineErr.LotCode,
			Kind:      failureKind(lineErr.Kind),
			Committed: lineErr.Position - 1,
		}
		var remote *mes.RemoteError
		if errors.As(err, &remote) {
			resp.Remote = remote.Msg
		}
		jsonResponse(w, status, resp)
		return
	}

	if errors.Is(err, mes.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "unknown destination warehouse")
		return
	}
	mesError(w, err)
}

func failureKind(kind error) string {
	switch {
	case errors.Is(kind, transfer.ErrHeaderNotFound):
		return "header_not_found"
	case errors.Is(kind, transfer.ErrLotNotFound):
		return "lot_not_found"
	case errors.Is(kind, transfer.ErrStageFailed):
		return "stage_failed"
	case errors.Is(kind, transfer.ErrCommitFailed):
		return "commit_failed"
	default:
		return "error"
	}
}

// History handles GET /api/transfers?status=&warehouse=: the local journal,
// newest first.
func (h *TransfersHandler) History(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", model.StatusStaged, model.StatusCommitted, model.StatusFailed:
	default:
		jsonError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	entries, err := store.ListJournal(r.Context(), h.DB, status, r.URL.Query().Get("warehouse"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if entries == nil {
		entries = []model.JournalEntry{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"transfers": entries})
}
