package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Quantities use -1 for "not applicable".
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'responsable' CHECK (role IN ('admin', 'responsable')),
    branch        TEXT NOT NULL DEFAULT '',
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS branches (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    location   TEXT NOT NULL DEFAULT '',
    image      BLOB,
    image_mime TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_branches_name_active
    ON branches(name) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS inventory_items (
    id            INTEGER PRIMARY KEY,
    kind          TEXT NOT NULL CHECK (kind IN ('pc', 'printer')),
    branch        TEXT NOT NULL,
    asset_name    TEXT NOT NULL DEFAULT '',
    serial_number TEXT NOT NULL DEFAULT '',
    assigned_user TEXT NOT NULL DEFAULT '',
    email         TEXT NOT NULL DEFAULT '',
    service       TEXT NOT NULL DEFAULT '',
    description   TEXT NOT NULL DEFAULT '',
    assigned_on   TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL DEFAULT '',
    remark        TEXT NOT NULL DEFAULT '',
    location      TEXT NOT NULL DEFAULT '',
    ip_address    TEXT NOT NULL DEFAULT '',
    hostname      TEXT NOT NULL DEFAULT '',
    model         TEXT NOT NULL DEFAULT '',
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS consumables (
    id          INTEGER PRIMARY KEY,
    brand       TEXT NOT NULL,
    reference   TEXT NOT NULL,
    toner_type  TEXT NOT NULL CHECK (toner_type IN ('unicolor', 'multicolor')),
    black       INTEGER NOT NULL DEFAULT -1 CHECK (black >= -1),
    cyan        INTEGER NOT NULL DEFAULT -1 CHECK (cyan >= -1),
    magenta     INTEGER NOT NULL DEFAULT -1 CHECK (magenta >= -1),
    yellow      INTEGER NOT NULL DEFAULT -1 CHECK (yellow >= -1),
    color_black INTEGER NOT NULL DEFAULT -1 CHECK (color_black >= -1),
    drum        INTEGER NOT NULL DEFAULT -1 CHECK (drum >= -1),
    branch      TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    state       TEXT NOT NULL DEFAULT 'disponible' CHECK (state IN ('disponible', 'endemande')),
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS password_requests (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    email      TEXT NOT NULL,
    message    TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS new_pcs (
    id           INTEGER PRIMARY KEY,
    brand        TEXT NOT NULL,
    model        TEXT NOT NULL,
    quantity     INTEGER NOT NULL CHECK (quantity >= 1),
    arrival_date TEXT NOT NULL,
    admin_name   TEXT NOT NULL DEFAULT '',
    supplier     TEXT NOT NULL DEFAULT '',
    availability TEXT NOT NULL CHECK (availability IN ('disponible', 'pas encore disponible')),
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// migrations are applied in order after the schema. Each one must be
// idempotent. Append new migrations at the end.
var migrations = []string{
	`CREATE INDEX IF NOT EXISTS idx_inventory_items_branch_kind
	     ON inventory_items(branch, kind)`,
	`CREATE INDEX IF NOT EXISTS idx_consumables_branch_state
	     ON consumables(branch, state)`,
}

// EnsureSchema creates all tables and indexes if they don't already exist and
// applies pending migrations.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
