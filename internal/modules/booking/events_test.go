package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadbook/internal/types"
)

func sampleChange() Change {
	drv := types.ID("drv-1")
	return Change{
		ID:         "chg-1",
		BookingID:  "bk-1",
		Action:     ActionCreate,
		From:       StatusNone,
		To:         StatusPending,
		ActorRole:  RolePassenger,
		DriverID:   &drv,
		TotalPrice: "195",
		Currency:   "EUR",
		OccurredAt: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisher_SendsJSONKeyedByBooking(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var c Change
		if err := json.Unmarshal(val, &c); err != nil {
			return err
		}
		if c.BookingID != "bk-1" || c.To != StatusPending || c.TotalPrice != "195" {
			return fmt.Errorf("unexpected payload %s", val)
		}
		return nil
	})
	defer producer.Close()

	err := NewKafkaPublisher(producer, "booking-events").Publish(context.Background(), sampleChange())
	require.NoError(t, err)
}

func TestKafkaPublisher_PropagatesBrokerError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	defer producer.Close()

	err := NewKafkaPublisher(producer, "booking-events").Publish(context.Background(), sampleChange())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}

type fakeMessenger struct {
	sent []*messaging.Message
	err  error
}

func (f *fakeMessenger) Send(_ context.Context, m *messaging.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, m)
	return fmt.Sprintf("msg-%d", len(f.sent)), nil
}

func TestPushNotifier_Topics(t *testing.T) {
	m := &fakeMessenger{}
	p := NewPushNotifier(m)

	require.NoError(t, p.Publish(context.Background(), sampleChange()))
	require.Len(t, m.sent, 2)
	assert.Equal(t, "booking_bk-1", m.sent[0].Topic)
	assert.Equal(t, "driver_drv-1", m.sent[1].Topic)
	assert.Equal(t, "pending", m.sent[0].Data["status"])
	assert.Equal(t, "New booking request", m.sent[0].Notification.Title)

	m.sent = nil
	c := sampleChange()
	c.Action, c.From, c.To = ActionConfirm, StatusPending, StatusConfirmed
	require.NoError(t, p.Publish(context.Background(), c))
	require.Len(t, m.sent, 1, "only the booking topic hears about later changes")
	assert.Equal(t, "Booking confirmed", m.sent[0].Notification.Title)
}

func TestMultiPublisher_JoinsErrors(t *testing.T) {
	ok := &recordingPublisher{}
	boom := errors.New("push down")
	bad := &recordingPublisher{err: boom}

	err := MultiPublisher{ok, bad}.Publish(context.Background(), sampleChange())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, ok.changes, 1)
	assert.Len(t, bad.changes, 1)

	assert.NoError(t, MultiPublisher{ok, NopPublisher{}}.Publish(context.Background(), sampleChange()))
}
