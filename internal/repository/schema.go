package repository

import "database/sql"

// InitDB creates the schema. The partial unique index on pending
// purchases and the used_receipts primary key are load-bearing: they
// enforce the one-pending-per-actor and one-ledger-row-per-fingerprint
// invariants at the storage layer.
func InitDB(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS actors (
			actor_id BIGINT PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS balances (
			actor_id BIGINT PRIMARY KEY,
			balance BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS purchases (
			id BIGSERIAL PRIMARY KEY,
			actor_id BIGINT NOT NULL,
			product_slug TEXT NOT NULL,
			amount BIGINT NOT NULL,
			status TEXT NOT NULL,
			receipt_ref TEXT NOT NULL DEFAULT '',
			receipt_fingerprint TEXT NOT NULL DEFAULT '',
			receipt_count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_purchases_one_pending
			ON purchases(actor_id) WHERE status = 'pending'`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_status ON purchases(status)`,
		`CREATE TABLE IF NOT EXISTS used_receipts (
			fingerprint TEXT PRIMARY KEY,
			purchase_id BIGINT NOT NULL,
			actor_id BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
