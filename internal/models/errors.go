package models

import "errors"

// Policy and validation errors surfaced by the lifecycle controller
// and the conversation service. Handlers map these to user-facing
// refusals; none of them is a system fault.
var (
	ErrUnknownProduct   = errors.New("unknown product slug")
	ErrAlreadyPending   = errors.New("actor already has a pending purchase")
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrNotPending       = errors.New("purchase is not pending")
	ErrAlreadyDecided   = errors.New("purchase already decided")
	ErrAttemptLimit     = errors.New("receipt attempt limit reached")
	ErrDuplicateReceipt = errors.New("receipt fingerprint already used")
	ErrAccessDenied     = errors.New("access denied")
	ErrRateLimited      = errors.New("rate limited")
	ErrFlowExpired      = errors.New("payment flow expired")
	ErrActorNotFound    = errors.New("actor not found")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNoActiveFlow     = errors.New("no active flow for this step")
	ErrValidation       = errors.New("validation failed")
)
