package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/DemosCVV/Oge/internal/models"
)

const StateChangedTopic = "purchase.state.changed"

// NewStateChangedWriter builds the writer for the purchase event
// stream. Keyed by purchase id so per-purchase ordering survives
// partitioning.
func NewStateChangedWriter(brokers string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers),
		Topic:    StateChangedTopic,
		Balancer: &kafka.LeastBytes{},
	}
}

// KafkaPublisher appends purchase transitions to the event stream.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) PublishStateChanged(ctx context.Context, event models.StateChangedEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode state change: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.PurchaseID, 10)),
		Value: raw,
	})
	if err != nil {
		return fmt.Errorf("publish state change: %w", err)
	}
	return nil
}
