// README: FCM topic push for booking changes.
package booking

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
)

// Messenger is the part of *messaging.Client used for pushes.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushNotifier sends every change to the booking topic, and new bookings to
// the assigned driver's topic as well.
type PushNotifier struct {
	client Messenger
}

func NewPushNotifier(client Messenger) *PushNotifier {
	return &PushNotifier{client: client}
}

func BookingTopic(id string) string { return "booking_" + id }
func DriverTopic(id string) string  { return "driver_" + id }

func (p *PushNotifier) Publish(ctx context.Context, c Change) error {
	data := map[string]string{
		"booking_id": string(c.BookingID),
		"action":     string(c.Action),
		"status":     string(c.To),
	}
	topics := []string{BookingTopic(string(c.BookingID))}
	if c.Action == ActionCreate && c.DriverID != nil {
		topics = append(topics, DriverTopic(string(*c.DriverID)))
	}

	for _, topic := range topics {
		msg := &messaging.Message{
			Topic: topic,
			Data:  data,
			Notification: &messaging.Notification{
				Title: pushTitle(c),
				Body:  fmt.Sprintf("Booking %s is now %s", c.BookingID, c.To),
			},
		}
		if _, err := p.client.Send(ctx, msg); err != nil {
			return fmt.Errorf("push to %s: %w", topic, err)
		}
	}
	return nil
}

func pushTitle(c Change) string {
	switch c.Action {
	case ActionCreate:
		return "New booking request"
	case ActionConfirm:
		return "Booking confirmed"
	case ActionReject:
		return "Booking rejected"
	case ActionCancel:
		return "Booking cancelled"
	case ActionComplete:
		return "Trip completed"
	}
	return "Booking update"
}
