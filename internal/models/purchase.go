package models

import "time"

type PurchaseStatus string

const (
	StatusPending  PurchaseStatus = "pending"
	StatusApproved PurchaseStatus = "approved"
	StatusDenied   PurchaseStatus = "denied"
	StatusCanceled PurchaseStatus = "canceled"
)

// Terminal reports whether the status permits no further mutation.
func (s PurchaseStatus) Terminal() bool {
	return s == StatusApproved || s == StatusDenied || s == StatusCanceled
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDeny    Decision = "deny"
)

// Status returns the terminal purchase status the decision maps to.
func (d Decision) Status() PurchaseStatus {
	if d == DecisionApprove {
		return StatusApproved
	}
	return StatusDenied
}

// Purchase is the central entity: one payment attempt by one actor for
// one catalog product. Amount is snapshotted from the catalog at
// creation time and never changes afterwards.
type Purchase struct {
	ID                 int64          `json:"id"`
	ActorID            int64          `json:"actor_id"`
	ProductSlug        string         `json:"product_slug"`
	Amount             int64          `json:"amount"`
	Status             PurchaseStatus `json:"status"`
	ReceiptRef         string         `json:"receipt_ref,omitempty"`
	ReceiptFingerprint string         `json:"receipt_fingerprint,omitempty"`
	ReceiptCount       int            `json:"receipt_count"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Actor is an external chat user. Upserted on every contact, never
// deleted.
type Actor struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Product is a static catalog entry. Price is in minor currency units.
type Product struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Link  string `json:"link"`
}

// ReceiptUse records that a proof-of-payment fingerprint has been
// consumed. Rows are permanent; the fingerprint is the primary key.
type ReceiptUse struct {
	Fingerprint string    `json:"fingerprint"`
	PurchaseID  int64     `json:"purchase_id"`
	ActorID     int64     `json:"actor_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Stats aggregates purchase totals for the admin panel. Canceled
// purchases are folded into Denied.
type Stats struct {
	Users          int64 `json:"users"`
	PurchasesTotal int64 `json:"purchases_total"`
	Approved       int64 `json:"approved"`
	Pending        int64 `json:"pending"`
	Denied         int64 `json:"denied"`
	Revenue        int64 `json:"revenue"`
}
