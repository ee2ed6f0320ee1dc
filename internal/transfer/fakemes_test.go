package transfer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pdabridge/internal/mes"
)

// newFakeMES starts a fake MES serving the given path handlers plus a stock
// login handler, and returns a logged-in client for it.
func newFakeMES(t *testing.T, handlers map[string]http.HandlerFunc) *mes.Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/common/login/post-login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "fake-session"})
		writeJSON(t, w, map[string]any{
			"success": true,
			"userInfo": map[string]any{
				"userName":    "Tester",
				"companyId":   40601,
				"plantId":     10,
				"companyCode": "BWC40601",
				"companyName": "BWC",
			},
		})
	})
	for path, handler := range handlers {
		mux.HandleFunc(path, handler)
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := mes.NewClient(srv.URL, "BWC40601")
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	if err := client.Login(context.Background(), "tester", "secret"); err != nil {
		t.Fatalf("logging in: %v", err)
	}
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

// listResponse wraps rows in the MES list envelope.
func listResponse(rows ...any) map[string]any {
	if rows == nil {
		rows = []any{}
	}
	return map[string]any{"success": true, "data": map[string]any{"list": rows}}
}

// decodePayload reads the request body as a generic JSON object.
func decodePayload(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		t.Errorf("decoding request payload: %v", err)
	}
	return payload
}
