package interfaces

import (
	"context"
	"time"

	"github.com/DemosCVV/Oge/internal/models"
)

// PurchaseRepository defines the contract for purchase persistence.
// All mutating calls are single-statement conditional writes; callers
// interpret affected-row counts or the sentinel errors in models.
type PurchaseRepository interface {
	// Create inserts a pending purchase. Returns
	// models.ErrAlreadyPending if the actor already has one (enforced
	// by a storage-level partial unique index).
	Create(ctx context.Context, actorID int64, productSlug string, amount int64, now time.Time) (*models.Purchase, error)

	// Get returns models.ErrPurchaseNotFound when the id is unknown.
	Get(ctx context.Context, id int64) (*models.Purchase, error)

	// LatestPending returns the actor's pending purchase, or
	// models.ErrPurchaseNotFound.
	LatestPending(ctx context.Context, actorID int64) (*models.Purchase, error)

	// AttachReceipt conditionally increments the attempt count and
	// stores the artifact while the purchase is pending and under the
	// attempt cap. Returns the new count, or models.ErrNotPending when
	// the conditional update matched no row.
	AttachReceipt(ctx context.Context, id int64, artifactRef, fingerprint string, maxAttempts int, now time.Time) (int, error)

	// Decide sets a terminal status iff the purchase is still pending.
	// Returns the number of rows updated (0 means already terminal).
	Decide(ctx context.Context, id int64, status models.PurchaseStatus, now time.Time) (int64, error)

	Stats(ctx context.Context) (*models.Stats, error)
}

// ReceiptLedger records consumed proof-of-payment fingerprints.
// Entries are permanent.
type ReceiptLedger interface {
	IsUsed(ctx context.Context, fingerprint string) (bool, error)

	// MarkUsed inserts the fingerprint if absent. Returns false when a
	// row for the fingerprint already existed.
	MarkUsed(ctx context.Context, fingerprint string, purchaseID, actorID int64, now time.Time) (bool, error)
}

// ActorRepository tracks every actor that has ever contacted the
// service.
type ActorRepository interface {
	Upsert(ctx context.Context, actor models.Actor) error

	// Get returns models.ErrActorNotFound for an unknown id.
	Get(ctx context.Context, id int64) (*models.Actor, error)

	Count(ctx context.Context) (int64, error)
	AllIDs(ctx context.Context) ([]int64, error)

	// FindByUsername returns models.ErrActorNotFound when no actor has
	// the given username.
	FindByUsername(ctx context.Context, username string) (int64, error)
}

// SettingsRepository is the operator-owned key/value store (card
// number, card owner).
type SettingsRepository interface {
	Get(ctx context.Context, key, def string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// BalanceRepository maintains per-actor integer balances.
type BalanceRepository interface {
	// Add applies a delta and returns the resulting balance.
	Add(ctx context.Context, actorID int64, delta int64) (int64, error)
}
