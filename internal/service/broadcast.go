package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/DemosCVV/Oge/internal/interfaces"
	"github.com/DemosCVV/Oge/internal/metrics"
	"github.com/DemosCVV/Oge/internal/models"
)

// BroadcastResult tallies a fan-out. Failures are counted, never
// surfaced individually.
type BroadcastResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Broadcaster fans one payload out to every known actor. Best effort:
// no retry, no dead-letter, a failed recipient never aborts the batch.
type Broadcaster struct {
	actors     interfaces.ActorRepository
	dispatcher interfaces.Dispatcher
	log        *zap.Logger
}

func NewBroadcaster(actors interfaces.ActorRepository, dispatcher interfaces.Dispatcher, log *zap.Logger) *Broadcaster {
	return &Broadcaster{actors: actors, dispatcher: dispatcher, log: log}
}

func (b *Broadcaster) Send(ctx context.Context, payload string) (BroadcastResult, error) {
	ids, err := b.actors.AllIDs(ctx)
	if err != nil {
		return BroadcastResult{}, err
	}

	var result BroadcastResult
	for _, id := range ids {
		if err := b.dispatcher.NotifyActor(ctx, id, models.NotifyBroadcast, payload); err != nil {
			result.Failed++
			metrics.BroadcastDeliveries.WithLabelValues("failed").Inc()
			continue
		}
		result.Sent++
		metrics.BroadcastDeliveries.WithLabelValues("sent").Inc()
	}

	b.log.Info("Broadcast finished",
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
