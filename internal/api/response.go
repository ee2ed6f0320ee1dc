// Package api is the HTTP shell around the transfer workflow: thin JSON
// handlers that translate PDA requests into session operations and remote
// failures into status codes.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"pdabridge/internal/mes"
)

var validate = validator.New()

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target and runs its
// validation tags.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return err
	}
	return validate.Struct(target)
}

// mesError maps an MES client failure onto an HTTP status. Business
// rejections and transport failures both surface as 502 with the remote
// message, since from the operator's side the MES refused either way.
func mesError(w http.ResponseWriter, err error) {
	if errors.Is(err, mes.ErrNotAuthenticated) {
		jsonError(w, http.StatusUnauthorized, "MES session lost, log in again")
		return
	}

	var remote *mes.RemoteError
	if errors.As(err, &remote) {
		jsonError(w, http.StatusBadGateway, remote.Msg)
		return
	}

	jsonError(w, http.StatusBadGateway, "MES request failed")
}
