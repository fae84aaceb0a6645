package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/DemosCVV/Oge/internal/models"
)

const uniqueViolation = "23505"

type PurchaseRepository struct {
	db *sql.DB
}

func NewPurchaseRepository(db *sql.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) Create(ctx context.Context, actorID int64, productSlug string, amount int64, now time.Time) (*models.Purchase, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO purchases (actor_id, product_slug, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`, actorID, productSlug, amount, models.StatusPending, now).Scan(&id)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return nil, models.ErrAlreadyPending
	}
	if err != nil {
		return nil, fmt.Errorf("create purchase: %w", err)
	}

	return &models.Purchase{
		ID:          id,
		ActorID:     actorID,
		ProductSlug: productSlug,
		Amount:      amount,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

const purchaseColumns = `id, actor_id, product_slug, amount, status,
	receipt_ref, receipt_fingerprint, receipt_count, created_at, updated_at`

func scanPurchase(row *sql.Row) (*models.Purchase, error) {
	var p models.Purchase
	err := row.Scan(&p.ID, &p.ActorID, &p.ProductSlug, &p.Amount, &p.Status,
		&p.ReceiptRef, &p.ReceiptFingerprint, &p.ReceiptCount, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrPurchaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan purchase: %w", err)
	}
	return &p, nil
}

func (r *PurchaseRepository) Get(ctx context.Context, id int64) (*models.Purchase, error) {
	return scanPurchase(r.db.QueryRowContext(ctx, `
		SELECT `+purchaseColumns+` FROM purchases WHERE id = $1
	`, id))
}

func (r *PurchaseRepository) LatestPending(ctx context.Context, actorID int64) (*models.Purchase, error) {
	return scanPurchase(r.db.QueryRowContext(ctx, `
		SELECT `+purchaseColumns+` FROM purchases
		WHERE actor_id = $1 AND status = $2
		ORDER BY id DESC LIMIT 1
	`, actorID, models.StatusPending))
}

// AttachReceipt is the single conditional statement that makes receipt
// submission linearizable: the increment only lands while the row is
// still pending and under the attempt cap.
func (r *PurchaseRepository) AttachReceipt(ctx context.Context, id int64, artifactRef, fingerprint string, maxAttempts int, now time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		UPDATE purchases
		SET receipt_ref = $1, receipt_fingerprint = $2,
		    receipt_count = receipt_count + 1, updated_at = $3
		WHERE id = $4 AND status = $5 AND receipt_count < $6
		RETURNING receipt_count
	`, artifactRef, fingerprint, now, id, models.StatusPending, maxAttempts).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrNotPending
	}
	if err != nil {
		return 0, fmt.Errorf("attach receipt: %w", err)
	}
	return count, nil
}

func (r *PurchaseRepository) Decide(ctx context.Context, id int64, status models.PurchaseStatus, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE purchases SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`, status, now, id, models.StatusPending)
	if err != nil {
		return 0, fmt.Errorf("decide purchase: %w", err)
	}
	return result.RowsAffected()
}

func (r *PurchaseRepository) Stats(ctx context.Context) (*models.Stats, error) {
	var st models.Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'approved'),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status IN ('denied', 'canceled')),
		       COALESCE(SUM(amount) FILTER (WHERE status = 'approved'), 0)
		FROM purchases
	`).Scan(&st.PurchasesTotal, &st.Approved, &st.Pending, &st.Denied, &st.Revenue)
	if err != nil {
		return nil, fmt.Errorf("purchase stats: %w", err)
	}
	return &st, nil
}
