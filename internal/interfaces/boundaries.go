package interfaces

import (
	"context"

	"github.com/DemosCVV/Oge/internal/models"
)

// Dispatcher is the messaging boundary toward the chat gateway. Sends
// are best effort: callers log and count failures, they never fail the
// transition that triggered the send.
type Dispatcher interface {
	NotifyActor(ctx context.Context, actorID int64, kind models.NotificationKind, payload any) error
	NotifyOperator(ctx context.Context, kind models.NotificationKind, payload any) error
}

// EventPublisher appends purchase transitions to the event stream.
type EventPublisher interface {
	PublishStateChanged(ctx context.Context, event models.StateChangedEvent) error
}
