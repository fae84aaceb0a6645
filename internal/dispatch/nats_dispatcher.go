package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/DemosCVV/Oge/internal/models"
)

// NATS subjects consumed by the chat gateway process.
const (
	SubjectActorNotify    = "notify.actor"
	SubjectOperatorNotify = "notify.operator"
)

// Envelope wraps every outbound notification with its kind, recipient
// and timestamp.
type Envelope struct {
	Kind      models.NotificationKind `json:"kind"`
	ActorID   int64                   `json:"actor_id,omitempty"`
	Payload   any                     `json:"payload,omitempty"`
	Timestamp time.Time               `json:"timestamp"`
}

// NatsDispatcher publishes notifications for the chat gateway.
// Delivery is best effort: callers count and log failures, the
// triggering transition never fails on them.
type NatsDispatcher struct {
	nc *nats.Conn
}

func NewNatsDispatcher(nc *nats.Conn) *NatsDispatcher {
	return &NatsDispatcher{nc: nc}
}

func (d *NatsDispatcher) publish(subject string, env Envelope) error {
	env.Timestamp = time.Now()
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s notification: %w", env.Kind, err)
	}
	if err := d.nc.Publish(subject, raw); err != nil {
		return fmt.Errorf("publish %s notification: %w", env.Kind, err)
	}
	return nil
}

func (d *NatsDispatcher) NotifyActor(_ context.Context, actorID int64, kind models.NotificationKind, payload any) error {
	return d.publish(SubjectActorNotify, Envelope{Kind: kind, ActorID: actorID, Payload: payload})
}

func (d *NatsDispatcher) NotifyOperator(_ context.Context, kind models.NotificationKind, payload any) error {
	return d.publish(SubjectOperatorNotify, Envelope{Kind: kind, Payload: payload})
}
