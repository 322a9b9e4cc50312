// README: Booking change events and their Kafka publisher.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"roadbook/internal/types"
)

// Change is published after a transition has been committed.
type Change struct {
	ID          string    `json:"id"`
	BookingID   types.ID  `json:"booking_id"`
	Action      Action    `json:"action"`
	From        Status    `json:"from"`
	To          Status    `json:"to"`
	ActorRole   ActorRole `json:"actor_role"`
	ActorID     *types.ID `json:"actor_id,omitempty"`
	Reason      *string   `json:"reason,omitempty"`
	PassengerID *types.ID `json:"passenger_id,omitempty"`
	DriverID    *types.ID `json:"driver_id,omitempty"`
	TotalPrice  string    `json:"total_price"`
	Currency    string    `json:"currency"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, c Change) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Change) error { return nil }

// MultiPublisher delivers to every publisher and joins their errors.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, c Change) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// KafkaPublisher writes changes keyed by booking id, so one booking's
// changes stay ordered within a partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(_ context.Context, c Change) error {
	value, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal booking change: %w", err)
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(c.BookingID),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("action"), Value: []byte(c.Action)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish booking change: %w", err)
	}
	return nil
}
