package session

import "time"

// Step identifies where in the purchase or admin flow an actor is.
type Step string

const (
	StepIdle            Step = "idle"
	StepAwaitingReceipt Step = "awaiting_receipt"

	StepAdminAwaitingCardNumber       Step = "admin_awaiting_card_number"
	StepAdminAwaitingCardOwner        Step = "admin_awaiting_card_owner"
	StepAdminAwaitingBroadcastContent Step = "admin_awaiting_broadcast_content"
	StepAdminAwaitingBroadcastConfirm Step = "admin_awaiting_broadcast_confirm"
	StepAdminAwaitingBalanceTarget    Step = "admin_awaiting_balance_target"
	StepAdminAwaitingBalanceAmount    Step = "admin_awaiting_balance_amount"
)

// Admin reports whether the step belongs to an operator-only flow.
func (s Step) Admin() bool {
	switch s {
	case StepAdminAwaitingCardNumber, StepAdminAwaitingCardOwner,
		StepAdminAwaitingBroadcastContent, StepAdminAwaitingBroadcastConfirm,
		StepAdminAwaitingBalanceTarget, StepAdminAwaitingBalanceAmount:
		return true
	}
	return false
}

// State is one actor's conversation position plus the step-scoped
// working data. It is overwritten wholesale on every transition.
type State struct {
	Step Step `json:"step"`

	// PurchaseID is bound while Step is StepAwaitingReceipt.
	PurchaseID int64 `json:"purchase_id,omitempty"`

	// CardNumber carries the first half of the card flow.
	CardNumber string `json:"card_number,omitempty"`

	// BroadcastPayload is the pending broadcast awaiting confirmation.
	BroadcastPayload string `json:"broadcast_payload,omitempty"`

	// BalanceTarget is the resolved recipient of a balance grant.
	BalanceTarget int64 `json:"balance_target,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Idle is the initial state and the state every flow returns to.
func Idle() State {
	return State{Step: StepIdle}
}
