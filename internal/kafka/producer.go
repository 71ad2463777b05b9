package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// NotificationEvent is the payload published after a committed issuance,
// booking or cancellation. Delivery is best effort; consumers must tolerate
// duplicates and use EventID for dedup.
type NotificationEvent struct {
	EventID          string    `json:"event_id"`
	Type             string    `json:"type"`
	CustomerEmail    string    `json:"customer_email"`
	TicketID         int64     `json:"ticket_id,omitempty"`
	BookingID        int64     `json:"booking_id,omitempty"`
	ConfirmationCode string    `json:"confirmation_code,omitempty"`
	FlightID         int64     `json:"flight_id,omitempty"`
	SeatNumber       int       `json:"seat_number,omitempty"`
	PriceCents       int64     `json:"price_cents,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

const (
	EventTicketIssued     = "ticket_issued"
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
