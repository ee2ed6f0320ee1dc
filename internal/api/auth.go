package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"pdabridge/internal/auth"
	"pdabridge/internal/mes"
	"pdabridge/internal/session"
	"pdabridge/internal/store"
)

// AuthHandler handles operator login and logout. Each login creates a fresh
// MES client so that cookies never leak between operators.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
	Sessions  *session.Manager

	MESURL      string
	CompanyCode string
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token       string    `json:"token"`
	UserName    string    `json:"user_name"`
	CompanyCode string    `json:"company_code"`
	CompanyName string    `json:"company_name"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Login handles POST /api/auth/login. Credentials are forwarded to the MES;
// there is no local credential store.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "username and password required")
		return
	}

	client, err := mes.NewClient(h.MESURL, h.CompanyCode)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := client.Login(r.Context(), req.Username, req.Password); err != nil {
		var remote *mes.RemoteError
		if errors.As(err, &remote) && !remote.Transport() {
			// The MES rejected the credentials; pass its message through.
			slog.Warn("login rejected", "user", req.Username, "msg", remote.Msg)
			jsonError(w, http.StatusUnauthorized, remote.Msg)
			return
		}
		slog.Error("MES unreachable during login", "user", req.Username, "error", err)
		jsonError(w, http.StatusBadGateway, "MES unreachable")
		return
	}

	profile := client.Profile()
	token, claims, err := auth.GenerateToken(h.JWTSecret, req.Username, profile.UserName, profile.CompanyCode)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	h.Sessions.Put(claims.ID, session.New(client, req.Username, claims.ExpiresAt.Time))

	slog.Info("operator logged in", "user", req.Username, "company", profile.CompanyCode)
	jsonResponse(w, http.StatusOK, loginResponse{
		Token:       token,
		UserName:    profile.UserName,
		CompanyCode: profile.CompanyCode,
		CompanyName: profile.CompanyName,
		ExpiresAt:   claims.ExpiresAt.Time,
	})
}

// Logout handles POST /api/auth/logout: the token is revoked and the
// server-side session, including any pending scans, is dropped.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to revoke token")
		return
	}
	h.Sessions.Delete(claims.ID)

	slog.Info("operator logged out", "user", claims.UserKey)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}
