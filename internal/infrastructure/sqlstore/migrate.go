package sqlstore

import (
	"context"
	"fmt"
)

// Column types are the common subset of sqlite and postgres. Money is kept
// as decimal text, timestamps as RFC 3339 text, list fields as JSON text.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS storefronts (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		doc  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id                  TEXT PRIMARY KEY,
		store_id            TEXT NOT NULL,
		owner_id            TEXT NOT NULL DEFAULT '',
		title               TEXT NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		category            TEXT NOT NULL,
		brand               TEXT NOT NULL DEFAULT '',
		sku                 TEXT NOT NULL DEFAULT '',
		price               TEXT NOT NULL,
		discount_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
		rating              DOUBLE PRECISION NOT NULL DEFAULT 0,
		stock               INTEGER NOT NULL DEFAULT 0,
		tags                TEXT NOT NULL DEFAULT '[]',
		images              TEXT NOT NULL DEFAULT '[]',
		thumbnail           TEXT NOT NULL DEFAULT '',
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS products_store_idx ON products (store_id)`,
	`CREATE INDEX IF NOT EXISTS products_owner_idx ON products (owner_id)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id              TEXT PRIMARY KEY,
		idempotency_key TEXT NOT NULL DEFAULT '',
		customer_id     TEXT NOT NULL,
		store_id        TEXT NOT NULL,
		lines           TEXT NOT NULL,
		subtotal        TEXT NOT NULL,
		shipping_cost   TEXT NOT NULL,
		total           TEXT NOT NULL,
		shipping        TEXT NOT NULL,
		payment_method  TEXT NOT NULL,
		contact         TEXT NOT NULL,
		status          TEXT NOT NULL,
		failure_reason  TEXT NOT NULL DEFAULT '',
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS orders_idempotency_idx
		ON orders (customer_id, idempotency_key) WHERE idempotency_key <> ''`,
	`CREATE INDEX IF NOT EXISTS orders_customer_idx ON orders (customer_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS cart_snapshots (
		session_id TEXT PRIMARY KEY,
		store_id   TEXT NOT NULL DEFAULT '',
		lines      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
}

// Migrate creates missing tables and indexes. It is safe to run repeatedly.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlstore: migrate step %d: %w", i, err)
		}
	}
	return nil
}
