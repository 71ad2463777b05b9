package email

import (
	"context"
	"log"

	"github.com/akulagin/flightbook/internal/kafka"
)

// Sender is the notification stub. Delivery failures never affect the
// already-committed booking or cancellation.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.NotificationEvent) error {
	log.Printf("send email to %s about %s (booking %d, code %s)", event.CustomerEmail, event.Type, event.BookingID, event.ConfirmationCode)
	return nil
}
