package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. The database holds only what this
// tool owns locally: the transfer journal, settings, and revoked tokens.
// Inventory truth lives in the MES.
const schema = `
CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS transfer_log (
    id             INTEGER PRIMARY KEY,
    barcode        TEXT NOT NULL,
    item_code      TEXT NOT NULL,
    lot_code       TEXT NOT NULL,
    quantity       INTEGER NOT NULL CHECK (quantity > 0),
    from_warehouse TEXT NOT NULL,
    to_warehouse   TEXT NOT NULL,
    staged_id      INTEGER,
    status         TEXT NOT NULL CHECK (status IN ('staged', 'committed', 'failed')),
    message        TEXT,
    operator       TEXT,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_transfer_log_status
    ON transfer_log(status);
CREATE INDEX IF NOT EXISTS idx_transfer_log_created
    ON transfer_log(created_at);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at the
// end.
var migrations = []string{}

// Migrate creates the schema and applies all migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
