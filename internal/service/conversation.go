package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DemosCVV/Oge/internal/interfaces"
	"github.com/DemosCVV/Oge/internal/metrics"
	"github.com/DemosCVV/Oge/internal/models"
	"github.com/DemosCVV/Oge/internal/ratelimit"
	"github.com/DemosCVV/Oge/internal/repository"
	"github.com/DemosCVV/Oge/internal/session"
)

const maxBalanceGrant = 10_000_000

// Conversation routes inbound events through the per-actor state
// machine. Events for one actor are serialized on the actor mutex; the
// machine is not safe under concurrent mutation of one record.
type Conversation struct {
	sessions   session.Store
	actormu    *session.ActorMutex
	limiter    *ratelimit.Limiter
	lifecycle  *Lifecycle
	actors     interfaces.ActorRepository
	settings   interfaces.SettingsRepository
	balances   interfaces.BalanceRepository
	dispatcher interfaces.Dispatcher
	broadcast  *Broadcaster
	operatorID int64
	log        *zap.Logger
	now        func() time.Time
}

func NewConversation(
	sessions session.Store,
	limiter *ratelimit.Limiter,
	lifecycle *Lifecycle,
	actors interfaces.ActorRepository,
	settings interfaces.SettingsRepository,
	balances interfaces.BalanceRepository,
	dispatcher interfaces.Dispatcher,
	broadcast *Broadcaster,
	operatorID int64,
	log *zap.Logger,
) *Conversation {
	return &Conversation{
		sessions:   sessions,
		actormu:    session.NewActorMutex(),
		limiter:    limiter,
		lifecycle:  lifecycle,
		actors:     actors,
		settings:   settings,
		balances:   balances,
		dispatcher: dispatcher,
		broadcast:  broadcast,
		operatorID: operatorID,
		log:        log,
		now:        time.Now,
	}
}

func (c *Conversation) isOperator(actorID int64) bool {
	return actorID == c.operatorID
}

func (c *Conversation) allow(actorID int64) bool {
	if c.limiter.Allow(actorID, c.now()) {
		return true
	}
	metrics.RateLimited.Inc()
	return false
}

// HandleStart processes a product selection: creates the purchase and
// moves the actor into AwaitingReceipt with the purchase id bound.
func (c *Conversation) HandleStart(ctx context.Context, ev models.StartPurchaseEvent) (*models.Purchase, error) {
	unlock := c.actormu.Lock(ev.ActorID)
	defer unlock()

	if !c.allow(ev.ActorID) {
		return nil, models.ErrRateLimited
	}

	now := c.now()
	err := c.actors.Upsert(ctx, models.Actor{
		ID:        ev.ActorID,
		Username:  ev.Username,
		FirstName: ev.FirstName,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	purchase, err := c.lifecycle.StartPurchase(ctx, ev.ActorID, ev.ProductSlug, now)
	if err != nil {
		return nil, err
	}

	state := session.State{
		Step:       session.StepAwaitingReceipt,
		PurchaseID: purchase.ID,
		UpdatedAt:  now,
	}
	if err := c.sessions.Set(ctx, ev.ActorID, state); err != nil {
		return nil, err
	}
	return purchase, nil
}

// HandleReceipt processes a proof-of-payment submission within the
// AwaitingReceipt step. A binding to a missing or already-terminal
// purchase resets the actor to Idle and reports the flow as expired
// instead of erroring.
func (c *Conversation) HandleReceipt(ctx context.Context, ev models.SubmitReceiptEvent) (int, error) {
	unlock := c.actormu.Lock(ev.ActorID)
	defer unlock()

	if !c.allow(ev.ActorID) {
		return 0, models.ErrRateLimited
	}
	if ev.Fingerprint == "" || ev.ArtifactRef == "" {
		return 0, fmt.Errorf("%w: receipt artifact and fingerprint required", models.ErrValidation)
	}

	state, err := c.sessions.Get(ctx, ev.ActorID)
	if err != nil {
		return 0, err
	}
	if state.Step != session.StepAwaitingReceipt || state.PurchaseID == 0 {
		return 0, models.ErrNoActiveFlow
	}
	if c.lifecycle.Stale(ctx, state.PurchaseID) {
		return 0, c.expireFlow(ctx, ev.ActorID)
	}

	actor := models.Actor{ID: ev.ActorID}
	if known, err := c.actors.Get(ctx, ev.ActorID); err == nil {
		actor = *known
	}
	remaining, err := c.lifecycle.SubmitReceipt(ctx, actor, state.PurchaseID, ev.ArtifactRef, ev.Fingerprint, c.now())
	if errors.Is(err, models.ErrPurchaseNotFound) || errors.Is(err, models.ErrNotPending) {
		return 0, c.expireFlow(ctx, ev.ActorID)
	}
	return remaining, err
}

func (c *Conversation) expireFlow(ctx context.Context, actorID int64) error {
	if err := c.sessions.Clear(ctx, actorID); err != nil {
		c.log.Warn("Failed to clear expired session", zap.Int64("actor_id", actorID), zap.Error(err))
	}
	return models.ErrFlowExpired
}

// HandleCancel withdraws the actor's pending purchase and resets the
// conversation.
func (c *Conversation) HandleCancel(ctx context.Context, ev models.CancelPendingEvent) error {
	unlock := c.actormu.Lock(ev.ActorID)
	defer unlock()

	if err := c.lifecycle.CancelPending(ctx, ev.ActorID, c.now()); err != nil {
		return err
	}
	return c.sessions.Clear(ctx, ev.ActorID)
}

// HandleDecision relays an operator verdict into the lifecycle
// controller, which authorizes the caller.
func (c *Conversation) HandleDecision(ctx context.Context, ev models.OperatorDecisionEvent) (*models.Purchase, error) {
	return c.lifecycle.Decide(ctx, ev.OperatorID, ev.PurchaseID, ev.Decision, c.now())
}

// Admin flow entry points, keyed the way the chat gateway names them.
const (
	FlowCard      = "card"
	FlowBroadcast = "broadcast"
	FlowBalance   = "balance"
)

// EnterAdminFlow moves the operator into the first step of an admin
// sub-flow. Non-operators are refused with state unchanged.
func (c *Conversation) EnterAdminFlow(ctx context.Context, actorID int64, flow string) error {
	if !c.isOperator(actorID) {
		return models.ErrAccessDenied
	}

	unlock := c.actormu.Lock(actorID)
	defer unlock()

	var step session.Step
	switch flow {
	case FlowCard:
		step = session.StepAdminAwaitingCardNumber
	case FlowBroadcast:
		step = session.StepAdminAwaitingBroadcastContent
	case FlowBalance:
		step = session.StepAdminAwaitingBalanceTarget
	default:
		return fmt.Errorf("%w: unknown admin flow %q", models.ErrValidation, flow)
	}

	return c.sessions.Set(ctx, actorID, session.State{Step: step, UpdatedAt: c.now()})
}

// HandleText advances whichever text-driven step the actor is in.
func (c *Conversation) HandleText(ctx context.Context, ev models.TextEvent) (string, error) {
	unlock := c.actormu.Lock(ev.ActorID)
	defer unlock()

	state, err := c.sessions.Get(ctx, ev.ActorID)
	if err != nil {
		return "", err
	}

	if state.Step.Admin() && !c.isOperator(ev.ActorID) {
		// A non-operator can only reach an admin step through a stale
		// or forged session; refuse without touching state.
		return "", models.ErrAccessDenied
	}

	text := strings.TrimSpace(ev.Text)

	switch state.Step {
	case session.StepAdminAwaitingCardNumber:
		return c.adminCardNumber(ctx, ev.ActorID, state, text)
	case session.StepAdminAwaitingCardOwner:
		return c.adminCardOwner(ctx, ev.ActorID, state, text)
	case session.StepAdminAwaitingBroadcastContent:
		return c.adminBroadcastContent(ctx, ev.ActorID, state, text)
	case session.StepAdminAwaitingBalanceTarget:
		return c.adminBalanceTarget(ctx, ev.ActorID, state, text)
	case session.StepAdminAwaitingBalanceAmount:
		return c.adminBalanceAmount(ctx, ev.ActorID, state, text)
	default:
		return "", models.ErrNoActiveFlow
	}
}

func (c *Conversation) adminCardNumber(ctx context.Context, actorID int64, state session.State, text string) (string, error) {
	if len(text) < 8 {
		return "", fmt.Errorf("%w: card number too short", models.ErrValidation)
	}
	state.Step = session.StepAdminAwaitingCardOwner
	state.CardNumber = text
	state.UpdatedAt = c.now()
	if err := c.sessions.Set(ctx, actorID, state); err != nil {
		return "", err
	}
	return "awaiting card owner", nil
}

func (c *Conversation) adminCardOwner(ctx context.Context, actorID int64, state session.State, text string) (string, error) {
	if len(text) < 2 {
		return "", fmt.Errorf("%w: owner name too short", models.ErrValidation)
	}
	if err := c.settings.Set(ctx, repository.SettingCardNumber, state.CardNumber); err != nil {
		return "", err
	}
	if err := c.settings.Set(ctx, repository.SettingCardOwner, text); err != nil {
		return "", err
	}
	if err := c.sessions.Clear(ctx, actorID); err != nil {
		return "", err
	}
	c.log.Info("Payment card updated")
	return "card updated", nil
}

func (c *Conversation) adminBroadcastContent(ctx context.Context, actorID int64, state session.State, text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("%w: broadcast payload required", models.ErrValidation)
	}
	state.Step = session.StepAdminAwaitingBroadcastConfirm
	state.BroadcastPayload = text
	state.UpdatedAt = c.now()
	if err := c.sessions.Set(ctx, actorID, state); err != nil {
		return "", err
	}
	return "awaiting broadcast confirmation", nil
}

func (c *Conversation) adminBalanceTarget(ctx context.Context, actorID int64, state session.State, text string) (string, error) {
	var target int64
	if id, err := strconv.ParseInt(text, 10, 64); err == nil && id > 0 {
		target = id
	} else if strings.HasPrefix(text, "@") {
		id, err := c.actors.FindByUsername(ctx, text)
		if err != nil {
			return "", err
		}
		target = id
	} else {
		return "", models.ErrActorNotFound
	}

	state.Step = session.StepAdminAwaitingBalanceAmount
	state.BalanceTarget = target
	state.UpdatedAt = c.now()
	if err := c.sessions.Set(ctx, actorID, state); err != nil {
		return "", err
	}
	return "awaiting grant amount", nil
}

func (c *Conversation) adminBalanceAmount(ctx context.Context, actorID int64, state session.State, text string) (string, error) {
	amount, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: amount must be an integer", models.ErrValidation)
	}
	if amount == 0 || amount > maxBalanceGrant || amount < -maxBalanceGrant {
		return "", models.ErrInvalidAmount
	}

	balance, err := c.balances.Add(ctx, state.BalanceTarget, amount)
	if err != nil {
		return "", err
	}
	if err := c.sessions.Clear(ctx, actorID); err != nil {
		return "", err
	}

	if err := c.dispatcher.NotifyActor(ctx, state.BalanceTarget, models.NotifyBalanceGranted, models.BalanceGranted{
		Amount:     amount,
		NewBalance: balance,
	}); err != nil {
		metrics.NotifyFailures.Inc()
		c.log.Warn("Balance notification failed",
			zap.Int64("actor_id", state.BalanceTarget),
			zap.Error(err),
		)
	}

	c.log.Info("Balance granted",
		zap.Int64("actor_id", state.BalanceTarget),
		zap.Int64("amount", amount),
		zap.Int64("balance", balance),
	)
	return fmt.Sprintf("balance of %d is now %d", state.BalanceTarget, balance), nil
}

// ConfirmBroadcast resolves the broadcast confirmation step. On
// confirm it fans the payload out to every known actor; either way the
// operator returns to Idle.
func (c *Conversation) ConfirmBroadcast(ctx context.Context, actorID int64, confirm bool) (BroadcastResult, error) {
	if !c.isOperator(actorID) {
		return BroadcastResult{}, models.ErrAccessDenied
	}

	unlock := c.actormu.Lock(actorID)
	defer unlock()

	state, err := c.sessions.Get(ctx, actorID)
	if err != nil {
		return BroadcastResult{}, err
	}
	if state.Step != session.StepAdminAwaitingBroadcastConfirm || state.BroadcastPayload == "" {
		return BroadcastResult{}, models.ErrNoActiveFlow
	}

	if err := c.sessions.Clear(ctx, actorID); err != nil {
		return BroadcastResult{}, err
	}
	if !confirm {
		return BroadcastResult{}, nil
	}
	return c.broadcast.Send(ctx, state.BroadcastPayload)
}

// Stats returns the operator dashboard aggregates.
func (c *Conversation) Stats(ctx context.Context, actorID int64) (*models.Stats, error) {
	if !c.isOperator(actorID) {
		return nil, models.ErrAccessDenied
	}

	stats, err := c.lifecycle.purchases.Stats(ctx)
	if err != nil {
		return nil, err
	}
	users, err := c.actors.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.Users = users
	return stats, nil
}
