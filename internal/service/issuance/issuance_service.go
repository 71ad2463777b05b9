package issuance

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/akulagin/flightbook/internal/domain"
	"github.com/akulagin/flightbook/internal/kafka"
	"github.com/akulagin/flightbook/internal/repository"
	"github.com/google/uuid"
)

type TicketUseCase interface {
	IssueTicket(ctx context.Context, input IssueTicketInput) (*domain.Ticket, error)
}

type Cache interface {
	AcquireSeatLock(ctx context.Context, flightID int64, seatNumber int, ttl time.Duration) (bool, error)
	ReleaseSeatLock(ctx context.Context, flightID int64, seatNumber int) error
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Service struct {
	tickets            repository.TicketRepository
	cache              Cache
	producer           Producer
	notificationsTopic string
	holdTTL            time.Duration
}

type IssueTicketInput struct {
	CustomerID        int64        `json:"customer_id"`
	CustomerEmail     string       `json:"customer_email"`
	PassengerName     string       `json:"passenger_name"`
	PassengerDOB      time.Time    `json:"passenger_dob"`
	Cabin             domain.Cabin `json:"cabin"`
	DepartureFlightID int64        `json:"departure_flight_id"`
	DepartureSeat     int          `json:"departure_seat"`
	ReturnFlightID    *int64       `json:"return_flight_id,omitempty"`
	ReturnSeat        *int         `json:"return_seat,omitempty"`
}

func NewService(tickets repository.TicketRepository, cache Cache, producer Producer, notificationsTopic string, holdTTL time.Duration) *Service {
	return &Service{
		tickets:            tickets,
		cache:              cache,
		producer:           producer,
		notificationsTopic: notificationsTopic,
		holdTTL:            holdTTL,
	}
}

// IssueTicket validates the request, fast-fails on a held seat, then runs the
// all-or-nothing claim in the repository. Validation always happens before
// any mutable state is touched.
func (s *Service) IssueTicket(ctx context.Context, input IssueTicketInput) (*domain.Ticket, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	held, err := s.acquireLocks(ctx, input)
	if err != nil {
		return nil, err
	}

	ticket, err := s.tickets.Issue(ctx, repository.IssueTicketParams{
		CustomerID:        input.CustomerID,
		PassengerName:     input.PassengerName,
		PassengerDOB:      input.PassengerDOB,
		Cabin:             input.Cabin,
		DepartureFlightID: input.DepartureFlightID,
		DepartureSeat:     input.DepartureSeat,
		ReturnFlightID:    input.ReturnFlightID,
		ReturnSeat:        input.ReturnSeat,
	})
	if err != nil {
		s.releaseLocks(ctx, held)
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateFlights(ctx)
	}
	s.publishIssued(ctx, input.CustomerEmail, ticket)
	return ticket, nil
}

func validateInput(input IssueTicketInput) error {
	if input.CustomerID <= 0 {
		return domain.Validationf("customer id is required")
	}
	if input.PassengerName == "" {
		return domain.Validationf("passenger name is required")
	}
	if input.PassengerDOB.IsZero() {
		return domain.Validationf("passenger date of birth is required")
	}
	if input.PassengerDOB.After(time.Now()) {
		return domain.Validationf("passenger date of birth must not be in the future")
	}
	if !input.Cabin.Valid() {
		return domain.Validationf("cabin must be ECONOMY or BUSINESS")
	}
	if input.DepartureFlightID <= 0 {
		return domain.Validationf("departure flight id is required")
	}
	if input.DepartureSeat <= 0 {
		return domain.Validationf("departure seat number must be positive")
	}
	if (input.ReturnFlightID == nil) != (input.ReturnSeat == nil) {
		return domain.Validationf("return flight id and return seat must be supplied together")
	}
	if input.ReturnFlightID != nil && *input.ReturnFlightID <= 0 {
		return domain.Validationf("return flight id must be positive")
	}
	if input.ReturnSeat != nil && *input.ReturnSeat <= 0 {
		return domain.Validationf("return seat number must be positive")
	}
	return nil
}

type seatHold struct {
	flightID   int64
	seatNumber int
}

// acquireLocks takes the advisory redis hold on every requested seat,
// releasing earlier holds if a later one is contended.
func (s *Service) acquireLocks(ctx context.Context, input IssueTicketInput) ([]seatHold, error) {
	if s.cache == nil {
		return nil, nil
	}

	wanted := []seatHold{{flightID: input.DepartureFlightID, seatNumber: input.DepartureSeat}}
	if input.ReturnFlightID != nil {
		wanted = append(wanted, seatHold{flightID: *input.ReturnFlightID, seatNumber: *input.ReturnSeat})
	}

	held := make([]seatHold, 0, len(wanted))
	for _, h := range wanted {
		ok, err := s.cache.AcquireSeatLock(ctx, h.flightID, h.seatNumber, s.holdTTL)
		if err != nil {
			s.releaseLocks(ctx, held)
			return nil, domain.Infraf(err, "acquire seat hold")
		}
		if !ok {
			s.releaseLocks(ctx, held)
			return nil, domain.Conflictf("seat %d on flight %d is being booked by someone else", h.seatNumber, h.flightID)
		}
		held = append(held, h)
	}
	return held, nil
}

func (s *Service) releaseLocks(ctx context.Context, held []seatHold) {
	for _, h := range held {
		_ = s.cache.ReleaseSeatLock(ctx, h.flightID, h.seatNumber)
	}
}

func (s *Service) publishIssued(ctx context.Context, email string, ticket *domain.Ticket) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}
	event := kafka.NotificationEvent{
		EventID:       uuid.NewString(),
		Type:          kafka.EventTicketIssued,
		CustomerEmail: email,
		TicketID:      ticket.ID,
		FlightID:      ticket.Departure.FlightID,
		SeatNumber:    ticket.DepartureSeat,
		PriceCents:    ticket.PriceCents,
		OccurredAt:    time.Now(),
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, strconv.FormatInt(ticket.ID, 10), event); err != nil {
		log.Printf("WARNING: failed to publish %s event for ticket %d: %v", event.Type, ticket.ID, err)
	}
}

var _ TicketUseCase = (*Service)(nil)
