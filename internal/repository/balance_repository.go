package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type BalanceRepository struct {
	db *sql.DB
}

func NewBalanceRepository(db *sql.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// Add applies a delta and returns the resulting balance in one
// statement, so concurrent grants cannot lose an update.
func (r *BalanceRepository) Add(ctx context.Context, actorID int64, delta int64) (int64, error) {
	var balance int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO balances (actor_id, balance) VALUES ($1, $2)
		ON CONFLICT (actor_id) DO UPDATE SET balance = balances.balance + EXCLUDED.balance
		RETURNING balance
	`, actorID, delta).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("add balance: %w", err)
	}
	return balance, nil
}
