package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DemosCVV/Oge/internal/config"
	"github.com/DemosCVV/Oge/internal/interfaces"
	"github.com/DemosCVV/Oge/internal/metrics"
	"github.com/DemosCVV/Oge/internal/models"
	"github.com/DemosCVV/Oge/internal/repository"
	"github.com/DemosCVV/Oge/internal/session"
)

const submitLockTTL = 30 * time.Second

// Lifecycle is the purchase lifecycle controller. Every transition it
// performs is a single conditional write in the store, so concurrent
// submissions or operator clicks resolve to exactly one winner.
type Lifecycle struct {
	purchases   interfaces.PurchaseRepository
	ledger      interfaces.ReceiptLedger
	settings    interfaces.SettingsRepository
	catalog     *config.Catalog
	dispatcher  interfaces.Dispatcher
	publisher   interfaces.EventPublisher
	locker      session.Locker
	operatorID  int64
	maxAttempts int
	log         *zap.Logger
}

func NewLifecycle(
	purchases interfaces.PurchaseRepository,
	ledger interfaces.ReceiptLedger,
	settings interfaces.SettingsRepository,
	catalog *config.Catalog,
	dispatcher interfaces.Dispatcher,
	publisher interfaces.EventPublisher,
	locker session.Locker,
	operatorID int64,
	maxAttempts int,
	log *zap.Logger,
) *Lifecycle {
	return &Lifecycle{
		purchases:   purchases,
		ledger:      ledger,
		settings:    settings,
		catalog:     catalog,
		dispatcher:  dispatcher,
		publisher:   publisher,
		locker:      locker,
		operatorID:  operatorID,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// StartPurchase creates a pending purchase for the actor and sends the
// payment instructions. Returns models.ErrUnknownProduct or
// models.ErrAlreadyPending.
func (l *Lifecycle) StartPurchase(ctx context.Context, actorID int64, productSlug string, now time.Time) (*models.Purchase, error) {
	product, ok := l.catalog.Get(productSlug)
	if !ok {
		return nil, models.ErrUnknownProduct
	}

	purchase, err := l.purchases.Create(ctx, actorID, productSlug, product.Price, now)
	if err != nil {
		return nil, err
	}

	metrics.PurchasesCreated.Inc()
	l.publishState(ctx, purchase, "", purchase.Status)

	card, _ := l.settings.Get(ctx, repository.SettingCardNumber, "")
	owner, _ := l.settings.Get(ctx, repository.SettingCardOwner, "")
	l.notifyActor(ctx, actorID, models.NotifyPaymentInstructions, models.PaymentInstructions{
		Product:    product,
		CardNumber: card,
		CardOwner:  owner,
	})

	l.log.Info("Purchase created",
		zap.Int64("purchase_id", purchase.ID),
		zap.Int64("actor_id", actorID),
		zap.String("product_slug", productSlug),
		zap.Int64("amount", purchase.Amount),
	)
	return purchase, nil
}

// SubmitReceipt attaches a proof-of-payment artifact to a pending
// purchase and queues it for operator review. Returns the number of
// attempts remaining, or one of models.ErrPurchaseNotFound,
// ErrNotPending, ErrAttemptLimit, ErrDuplicateReceipt, ErrRateLimited.
func (l *Lifecycle) SubmitReceipt(ctx context.Context, actor models.Actor, purchaseID int64, artifactRef, fingerprint string, now time.Time) (int, error) {
	purchase, err := l.purchases.Get(ctx, purchaseID)
	if err != nil {
		return 0, err
	}
	if purchase.Status != models.StatusPending {
		return 0, models.ErrNotPending
	}
	if purchase.ReceiptCount >= l.maxAttempts {
		return 0, models.ErrAttemptLimit
	}

	lockKey := fmt.Sprintf("receipt_submit:%d", purchaseID)
	acquired, err := l.locker.Acquire(ctx, lockKey, submitLockTTL)
	if err != nil {
		return 0, fmt.Errorf("acquire submit lock: %w", err)
	}
	if !acquired {
		return 0, models.ErrRateLimited
	}
	defer l.locker.Release(ctx, lockKey)

	// The ledger row is written before the attempt counter moves, so
	// one real payment artifact can never be credited to two
	// purchases; the duplicate attempt is not counted against this
	// purchase's limit.
	used, err := l.ledger.IsUsed(ctx, fingerprint)
	if err != nil {
		return 0, fmt.Errorf("check receipt fingerprint: %w", err)
	}
	if !used {
		inserted, err := l.ledger.MarkUsed(ctx, fingerprint, purchaseID, actor.ID, now)
		if err != nil {
			return 0, fmt.Errorf("ledger receipt fingerprint: %w", err)
		}
		used = !inserted
	}
	if used {
		metrics.DuplicateReceipts.Inc()
		l.log.Warn("Duplicate receipt fingerprint",
			zap.Int64("actor_id", actor.ID),
			zap.Int64("purchase_id", purchaseID),
		)
		l.notifyOperator(ctx, models.NotifySuspiciousReuse, models.SuspiciousReuseAlert{
			Actor:      actor,
			PurchaseID: purchaseID,
		})
		return 0, models.ErrDuplicateReceipt
	}

	count, err := l.purchases.AttachReceipt(ctx, purchaseID, artifactRef, fingerprint, l.maxAttempts, now)
	if err != nil {
		// Lost a race with a concurrent decision; the fingerprint
		// stays burned in the ledger.
		return 0, err
	}
	remaining := l.maxAttempts - count

	metrics.ReceiptsAccepted.Inc()
	purchase.ReceiptCount = count
	l.publishState(ctx, purchase, models.StatusPending, models.StatusPending)

	product, _ := l.catalog.Get(purchase.ProductSlug)
	l.notifyOperator(ctx, models.NotifyReviewRequest, models.ReviewRequest{
		PurchaseID:        purchaseID,
		Actor:             actor,
		Product:           product,
		Amount:            purchase.Amount,
		AttemptsRemaining: remaining,
		ArtifactRef:       artifactRef,
	})
	l.notifyActor(ctx, actor.ID, models.NotifyReceiptAcknowledged, nil)

	l.log.Info("Receipt submitted",
		zap.Int64("purchase_id", purchaseID),
		zap.Int64("actor_id", actor.ID),
		zap.Int("attempts_remaining", remaining),
	)
	return remaining, nil
}

// Decide applies the operator's verdict. Idempotent from the caller's
// perspective: a repeat decision returns models.ErrAlreadyDecided and
// never re-sends the actor notification.
func (l *Lifecycle) Decide(ctx context.Context, callerID, purchaseID int64, decision models.Decision, now time.Time) (*models.Purchase, error) {
	if callerID != l.operatorID {
		return nil, models.ErrAccessDenied
	}
	if decision != models.DecisionApprove && decision != models.DecisionDeny {
		return nil, fmt.Errorf("%w: decision must be approve or deny", models.ErrValidation)
	}

	purchase, err := l.purchases.Get(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.Status.Terminal() {
		return nil, models.ErrAlreadyDecided
	}

	status := decision.Status()
	rows, err := l.purchases.Decide(ctx, purchaseID, status, now)
	if err != nil {
		return nil, fmt.Errorf("apply decision: %w", err)
	}
	if rows == 0 {
		return nil, models.ErrAlreadyDecided
	}

	purchase.Status = status
	purchase.UpdatedAt = now
	metrics.Decisions.WithLabelValues(string(decision)).Inc()
	l.publishState(ctx, purchase, models.StatusPending, status)

	if status == models.StatusApproved {
		product, _ := l.catalog.Get(purchase.ProductSlug)
		l.notifyActor(ctx, purchase.ActorID, models.NotifyPurchaseApproved, models.PurchaseApproved{Link: product.Link})
	} else {
		l.notifyActor(ctx, purchase.ActorID, models.NotifyPurchaseDenied, nil)
	}

	l.log.Info("Purchase decided",
		zap.Int64("purchase_id", purchaseID),
		zap.String("status", string(status)),
	)
	return purchase, nil
}

// CancelPending withdraws the actor's own pending purchase. The
// operator is not notified.
func (l *Lifecycle) CancelPending(ctx context.Context, actorID int64, now time.Time) error {
	purchase, err := l.purchases.LatestPending(ctx, actorID)
	if err != nil {
		return err
	}

	rows, err := l.purchases.Decide(ctx, purchase.ID, models.StatusCanceled, now)
	if err != nil {
		return fmt.Errorf("cancel purchase: %w", err)
	}
	if rows == 0 {
		return models.ErrPurchaseNotFound
	}

	purchase.Status = models.StatusCanceled
	l.publishState(ctx, purchase, models.StatusPending, models.StatusCanceled)
	l.log.Info("Purchase canceled",
		zap.Int64("purchase_id", purchase.ID),
		zap.Int64("actor_id", actorID),
	)
	return nil
}

// Stale reports whether a conversation's purchase binding no longer
// points at a live pending purchase.
func (l *Lifecycle) Stale(ctx context.Context, purchaseID int64) bool {
	purchase, err := l.purchases.Get(ctx, purchaseID)
	if errors.Is(err, models.ErrPurchaseNotFound) {
		return true
	}
	if err != nil {
		return false
	}
	return purchase.Status != models.StatusPending
}

func (l *Lifecycle) publishState(ctx context.Context, p *models.Purchase, from, to models.PurchaseStatus) {
	err := l.publisher.PublishStateChanged(ctx, models.StateChangedEvent{
		PurchaseID:    p.ID,
		ActorID:       p.ActorID,
		Status:        to,
		PreviousState: from,
		ReceiptCount:  p.ReceiptCount,
		Timestamp:     time.Now(),
	})
	if err != nil {
		l.log.Error("Failed to publish state change",
			zap.Int64("purchase_id", p.ID),
			zap.Error(err),
		)
	}
}

func (l *Lifecycle) notifyActor(ctx context.Context, actorID int64, kind models.NotificationKind, payload any) {
	if err := l.dispatcher.NotifyActor(ctx, actorID, kind, payload); err != nil {
		metrics.NotifyFailures.Inc()
		l.log.Warn("Actor notification failed",
			zap.Int64("actor_id", actorID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

func (l *Lifecycle) notifyOperator(ctx context.Context, kind models.NotificationKind, payload any) {
	if err := l.dispatcher.NotifyOperator(ctx, kind, payload); err != nil {
		metrics.NotifyFailures.Inc()
		l.log.Warn("Operator notification failed",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}
