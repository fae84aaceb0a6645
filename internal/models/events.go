package models

import "time"

// Inbound events, as delivered by the chat gateway.

type StartPurchaseEvent struct {
	ActorID     int64  `json:"actor_id"`
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	ProductSlug string `json:"product_slug"`
}

type SubmitReceiptEvent struct {
	ActorID     int64  `json:"actor_id"`
	ArtifactRef string `json:"artifact_ref"`
	Fingerprint string `json:"artifact_fingerprint"`
}

type CancelPendingEvent struct {
	ActorID int64 `json:"actor_id"`
}

type OperatorDecisionEvent struct {
	OperatorID int64    `json:"operator_id"`
	PurchaseID int64    `json:"purchase_id"`
	Decision   Decision `json:"decision"`
}

type TextEvent struct {
	ActorID int64  `json:"actor_id"`
	Text    string `json:"text"`
}

// Outbound notifications, consumed by the review dispatcher.

type NotificationKind string

const (
	NotifyPaymentInstructions NotificationKind = "payment_instructions"
	NotifyReceiptAcknowledged NotificationKind = "receipt_acknowledged"
	NotifyReviewRequest       NotificationKind = "operator_review_request"
	NotifySuspiciousReuse     NotificationKind = "suspicious_reuse_alert"
	NotifyPurchaseApproved    NotificationKind = "purchase_approved"
	NotifyPurchaseDenied      NotificationKind = "purchase_denied"
	NotifyBalanceGranted      NotificationKind = "balance_granted"
	NotifyBroadcast           NotificationKind = "broadcast"
)

type PaymentInstructions struct {
	Product    Product `json:"product"`
	CardNumber string  `json:"card_number"`
	CardOwner  string  `json:"card_owner"`
}

type ReviewRequest struct {
	PurchaseID        int64   `json:"purchase_id"`
	Actor             Actor   `json:"actor"`
	Product           Product `json:"product"`
	Amount            int64   `json:"amount"`
	AttemptsRemaining int     `json:"attempts_remaining"`
	ArtifactRef       string  `json:"artifact_ref"`
}

type SuspiciousReuseAlert struct {
	Actor      Actor `json:"actor"`
	PurchaseID int64 `json:"purchase_id"`
}

type PurchaseApproved struct {
	Link string `json:"link"`
}

type BalanceGranted struct {
	Amount     int64 `json:"amount"`
	NewBalance int64 `json:"new_balance"`
}

// StateChangedEvent is appended to the purchase event stream on every
// purchase transition.
type StateChangedEvent struct {
	PurchaseID    int64          `json:"purchase_id"`
	ActorID       int64          `json:"actor_id"`
	Status        PurchaseStatus `json:"status"`
	PreviousState PurchaseStatus `json:"previous_state"`
	ReceiptCount  int            `json:"receipt_count,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}
