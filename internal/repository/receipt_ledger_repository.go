package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ReceiptLedgerRepository is the anti-fraud ledger of consumed
// proof-of-payment fingerprints. Rows are never updated or deleted.
type ReceiptLedgerRepository struct {
	db *sql.DB
}

func NewReceiptLedgerRepository(db *sql.DB) *ReceiptLedgerRepository {
	return &ReceiptLedgerRepository{db: db}
}

func (r *ReceiptLedgerRepository) IsUsed(ctx context.Context, fingerprint string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM used_receipts WHERE fingerprint = $1`, fingerprint).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check receipt use: %w", err)
	}
	return true, nil
}

// MarkUsed inserts the fingerprint if absent. Two submissions racing
// on one fingerprint resolve at the primary key: exactly one insert
// wins and the loser sees false.
func (r *ReceiptLedgerRepository) MarkUsed(ctx context.Context, fingerprint string, purchaseID, actorID int64, now time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO used_receipts (fingerprint, purchase_id, actor_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (fingerprint) DO NOTHING
	`, fingerprint, purchaseID, actorID, now)
	if err != nil {
		return false, fmt.Errorf("mark receipt used: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark receipt used: %w", err)
	}
	return rows == 1, nil
}
