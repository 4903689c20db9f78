package database

import (
	"context"
	"fmt"
)

// schemaStatements is the idempotent DDL run at startup. Turso deployments do
// not use a versioned migration system; every table is CREATE IF NOT EXISTS.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS campaign_bundles (
		id TEXT PRIMARY KEY,
		airtable_id TEXT,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		target_audience TEXT NOT NULL,
		budget_range TEXT NOT NULL,
		estimated_total REAL NOT NULL,
		original_total REAL,
		savings REAL NOT NULL DEFAULT 0,
		discount_percentage REAL NOT NULL DEFAULT 0,
		popularity INTEGER NOT NULL DEFAULT 5,
		is_active INTEGER NOT NULL DEFAULT 1,
		is_featured INTEGER NOT NULL DEFAULT 0,
		tags TEXT NOT NULL DEFAULT '[]',
		display_order INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	// The airtable_id indexes are the upsert conflict targets. They must stay
	// plain unique indexes: SQLite will not match a partial index against a
	// bare ON CONFLICT (airtable_id) clause, and NULLs are distinct under
	// UNIQUE so rows that never came from Airtable do not collide.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_campaign_bundles_airtable
		ON campaign_bundles(airtable_id)`,
	`CREATE TABLE IF NOT EXISTS bundle_products (
		id TEXT PRIMARY KEY,
		bundle_id TEXT NOT NULL REFERENCES campaign_bundles(id),
		product_id TEXT NOT NULL,
		name TEXT NOT NULL,
		base_price REAL NOT NULL,
		quantity INTEGER NOT NULL,
		subtotal REAL NOT NULL,
		display_order INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bundle_products_bundle ON bundle_products(bundle_id)`,
	`CREATE TABLE IF NOT EXISTS bundle_analytics (
		id TEXT PRIMARY KEY,
		bundle_id TEXT NOT NULL,
		views INTEGER NOT NULL DEFAULT 0,
		conversions INTEGER NOT NULL DEFAULT 0,
		last_viewed_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS bundle_customizations (
		id TEXT PRIMARY KEY,
		bundle_id TEXT NOT NULL,
		customer_email TEXT,
		payload TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		airtable_id TEXT,
		name TEXT NOT NULL,
		reference TEXT,
		category TEXT,
		description TEXT,
		base_price REAL NOT NULL DEFAULT 0,
		min_quantity INTEGER NOT NULL DEFAULT 1,
		max_quantity INTEGER NOT NULL DEFAULT 1000,
		image_url TEXT,
		usage_count INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1,
		last_sync TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_products_airtable
		ON products(airtable_id)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		airtable_id TEXT,
		name TEXT NOT NULL,
		slug TEXT NOT NULL,
		description TEXT,
		display_order INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1,
		last_sync TEXT
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_airtable
		ON categories(airtable_id)`,
	`CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		public_id TEXT NOT NULL,
		url TEXT NOT NULL,
		secure_url TEXT,
		format TEXT,
		width INTEGER,
		height INTEGER,
		folder TEXT,
		tags TEXT NOT NULL DEFAULT '[]',
		is_active INTEGER NOT NULL DEFAULT 1,
		uploaded_at TEXT NOT NULL DEFAULT (datetime('now')),
		last_sync TEXT
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_assets_public_id ON assets(public_id)`,
	`CREATE TABLE IF NOT EXISTS asset_usages (
		id TEXT PRIMARY KEY,
		asset_id TEXT NOT NULL REFERENCES assets(id),
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		used_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS realisations (
		id TEXT PRIMARY KEY,
		airtable_id TEXT,
		title TEXT NOT NULL,
		description TEXT,
		cloudinary_public_ids TEXT NOT NULL DEFAULT '[]',
		product_ids TEXT NOT NULL DEFAULT '[]',
		tags TEXT NOT NULL DEFAULT '[]',
		is_featured INTEGER NOT NULL DEFAULT 0,
		display_order INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1,
		source TEXT NOT NULL DEFAULT 'turso'
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_realisations_airtable
		ON realisations(airtable_id)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		bundle_id TEXT,
		customer_name TEXT,
		customer_email TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		archived_reason TEXT,
		total REAL NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_bundle ON orders(bundle_id)`,
	`CREATE TABLE IF NOT EXISTS quotes (
		id TEXT PRIMARY KEY,
		bundle_id TEXT,
		customer_email TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		expires_at TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quotes_bundle ON quotes(bundle_id)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT,
		company TEXT,
		message TEXT,
		payload TEXT NOT NULL DEFAULT '{}',
		status TEXT NOT NULL DEFAULT 'new',
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS sync_status (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_type TEXT NOT NULL,
		records_synced INTEGER NOT NULL DEFAULT 0,
		records_failed INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		dry_run INTEGER NOT NULL DEFAULT 0,
		details TEXT,
		last_sync TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_status_entity ON sync_status(entity_type, last_sync)`,
	`CREATE TABLE IF NOT EXISTS system_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		level TEXT NOT NULL,
		scope TEXT NOT NULL,
		message TEXT NOT NULL,
		context TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
}

// EnsureSchema runs the idempotent DDL. Safe to call on every startup.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
