package store

import "database/sql"

// migrate applies the schema. Statements are idempotent so opening an
// existing database is a no-op.
func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS pending_orders (
		id                TEXT PRIMARY KEY,
		items             TEXT NOT NULL,
		total             TEXT NOT NULL,
		payment           TEXT NOT NULL,
		customer          TEXT,
		status            TEXT NOT NULL DEFAULT 'pending',
		synced            INTEGER NOT NULL DEFAULT 0,
		sync_attempts     INTEGER NOT NULL DEFAULT 0,
		last_sync_attempt TEXT,
		synced_at         TEXT,
		remote_id         TEXT,
		sync_error        TEXT,
		created_at        TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_pending_orders_synced ON pending_orders(synced);
	CREATE INDEX IF NOT EXISTS idx_pending_orders_created_at ON pending_orders(created_at);

	CREATE TABLE IF NOT EXISTS product_cache (
		id                  TEXT PRIMARY KEY,
		name                TEXT NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		price               TEXT NOT NULL,
		category            TEXT NOT NULL DEFAULT '',
		image_url           TEXT NOT NULL DEFAULT '',
		available           INTEGER NOT NULL DEFAULT 1,
		preparation_minutes INTEGER NOT NULL DEFAULT 0,
		last_updated        TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_product_cache_last_updated ON product_cache(last_updated);

	CREATE TABLE IF NOT EXISTS operators (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		username   TEXT NOT NULL UNIQUE,
		pin_hash   TEXT NOT NULL,
		role       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		last_login TEXT
	);

	CREATE TABLE IF NOT EXISTS app_settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}
