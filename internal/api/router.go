package api

import (
	"database/sql"
	"net/http"

	"pdabridge/internal/session"
)

// Config carries the MES connection settings the login handler needs.
type Config struct {
	MESURL      string
	CompanyCode string
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, sessions *session.Manager, cfg Config) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{
		DB:          db,
		JWTSecret:   jwtSecret,
		Sessions:    sessions,
		MESURL:      cfg.MESURL,
		CompanyCode: cfg.CompanyCode,
	}
	warehousesHandler := &WarehousesHandler{}
	scanHandler := &ScanHandler{}
	transfersHandler := &TransfersHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db, sessions)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	mux.Handle("GET /api/warehouses/{code}", authMW(http.HandlerFunc(warehousesHandler.Get)))

	mux.Handle("POST /api/scan", authMW(http.HandlerFunc(scanHandler.Create)))
	mux.Handle("GET /api/scan", authMW(http.HandlerFunc(scanHandler.List)))
	mux.Handle("DELETE /api/scan/{no}", authMW(http.HandlerFunc(scanHandler.Delete)))
	mux.Handle("DELETE /api/scan", authMW(http.HandlerFunc(scanHandler.Clear)))

	mux.Handle("POST /api/transfer", authMW(http.HandlerFunc(transfersHandler.Commit)))
	mux.Handle("GET /api/transfers", authMW(http.HandlerFunc(transfersHandler.History)))

	return mux
}
