package booking

import (
	"context"
	"crypto/rand"
	"log"
	"time"

	"github.com/akulagin/flightbook/internal/domain"
	"github.com/akulagin/flightbook/internal/kafka"
	"github.com/akulagin/flightbook/internal/repository"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, []domain.Ticket, error)
	CancelBooking(ctx context.Context, id int64) (*domain.Booking, error)
}

type Cache interface {
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

const adultAge = 18

type Service struct {
	bookings           repository.BookingRepository
	tickets            repository.TicketRepository
	cache              Cache
	producer           Producer
	notificationsTopic string
	cancellationCutoff time.Duration
}

type CreateBookingInput struct {
	CustomerID    int64   `json:"customer_id"`
	CustomerEmail string  `json:"customer_email"`
	TicketIDs     []int64 `json:"ticket_ids"`
}

func NewService(
	bookings repository.BookingRepository,
	tickets repository.TicketRepository,
	cache Cache,
	producer Producer,
	notificationsTopic string,
	cancellationCutoff time.Duration,
) *Service {
	return &Service{
		bookings:           bookings,
		tickets:            tickets,
		cache:              cache,
		producer:           producer,
		notificationsTopic: notificationsTopic,
		cancellationCutoff: cancellationCutoff,
	}
}

// CreateBooking groups already-issued tickets into one confirmed, priced
// booking. Seats and counters are untouched here; that happened at issuance.
func (s *Service) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.CustomerID <= 0 {
		return nil, domain.Validationf("customer id is required")
	}
	if len(input.TicketIDs) == 0 {
		return nil, domain.Validationf("at least one ticket id is required")
	}

	tickets, err := s.tickets.GetByIDsForCustomer(ctx, input.TicketIDs, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if len(tickets) != len(input.TicketIDs) {
		return nil, domain.NotFoundf("one or more tickets were not found for this customer")
	}

	now := time.Now()
	hasAdult := false
	var total int64
	for _, t := range tickets {
		if t.PassengerAgeAt(now) >= adultAge {
			hasAdult = true
		}
		total += t.PriceCents
	}
	if !hasAdult {
		return nil, domain.BusinessRulef("at least one passenger must be %d or older", adultAge)
	}

	booking := &domain.Booking{
		CustomerID:       input.CustomerID,
		ConfirmationCode: newConfirmationCode(),
		TotalPriceCents:  total,
	}
	if err := s.bookings.Create(ctx, booking, input.TicketIDs); err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.EventBookingCreated, input.CustomerEmail, booking)
	return booking, nil
}

func (s *Service) GetBooking(ctx context.Context, id int64) (*domain.Booking, []domain.Ticket, error) {
	return s.bookings.GetWithTickets(ctx, id)
}

// CancelBooking releases every seat and counter the booking holds, gated by
// the time-to-departure rule. The rejection paths run before any mutation;
// the release itself is atomic per booking. Cancelling an already cancelled
// booking fails with a business-rule error and changes nothing.
func (s *Service) CancelBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, tickets, err := s.bookings.GetWithTickets(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.Confirmed {
		return nil, domain.BusinessRulef("booking %d is already cancelled", id)
	}

	earliest := earliestDeparture(tickets)
	if !earliest.IsZero() && time.Until(earliest) < s.cancellationCutoff {
		return nil, domain.BusinessRulef("booking %d departs in less than %s and can no longer be cancelled", id, s.cancellationCutoff)
	}

	if _, err := s.bookings.Release(ctx, id); err != nil {
		return nil, err
	}
	booking.Confirmed = false

	if s.cache != nil {
		_ = s.cache.InvalidateFlights(ctx)
	}
	s.publish(ctx, kafka.EventBookingCancelled, "", booking)
	return booking, nil
}

func earliestDeparture(tickets []domain.Ticket) time.Time {
	var earliest time.Time
	for _, t := range tickets {
		if earliest.IsZero() || t.Departure.DepartureTime.Before(earliest) {
			earliest = t.Departure.DepartureTime
		}
		if t.Return != nil && t.Return.DepartureTime.Before(earliest) {
			earliest = t.Return.DepartureTime
		}
	}
	return earliest
}

func (s *Service) publish(ctx context.Context, eventType, email string, booking *domain.Booking) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}
	event := kafka.NotificationEvent{
		EventID:          uuid.NewString(),
		Type:             eventType,
		CustomerEmail:    email,
		BookingID:        booking.ID,
		ConfirmationCode: booking.ConfirmationCode,
		PriceCents:       booking.TotalPriceCents,
		OccurredAt:       time.Now(),
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, booking.ConfirmationCode, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %d: %v", eventType, booking.ID, err)
	}
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newConfirmationCode returns a 6-character PNR-style code.
func newConfirmationCode() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()[:6]
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}

var _ BookingUseCase = (*Service)(nil)
