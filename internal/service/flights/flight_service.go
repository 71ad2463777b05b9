package flights

import (
	"context"
	"time"

	"github.com/akulagin/flightbook/internal/domain"
	"github.com/akulagin/flightbook/internal/repository"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
}

type Cache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type Service struct {
	repo  repository.FlightRepository
	cache Cache
}

type CreateFlightInput struct {
	FromAirport            string    `json:"from_airport"`
	ToAirport              string    `json:"to_airport"`
	DepartureTime          time.Time `json:"departure_time"`
	ArrivalTime            time.Time `json:"arrival_time"`
	EconomyCapacity        int       `json:"economy_capacity"`
	EconomyBasePriceCents  int64     `json:"economy_base_price_cents"`
	BusinessCapacity       int       `json:"business_capacity"`
	BusinessBasePriceCents int64     `json:"business_base_price_cents"`
}

func NewService(repo repository.FlightRepository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

func (s *Service) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	if id <= 0 {
		return nil, domain.Validationf("flight id is required")
	}
	return s.repo.GetByID(ctx, id)
}

// Create validates the reference data and provisions the flight with its
// seats; current prices start at the base price.
func (s *Service) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	if len(input.FromAirport) != 3 || len(input.ToAirport) != 3 {
		return nil, domain.Validationf("airport codes must be 3 letters")
	}
	if input.FromAirport == input.ToAirport {
		return nil, domain.Validationf("departure and arrival airports must differ")
	}
	if input.DepartureTime.IsZero() || input.ArrivalTime.IsZero() {
		return nil, domain.Validationf("departure and arrival times are required")
	}
	if !input.ArrivalTime.After(input.DepartureTime) {
		return nil, domain.Validationf("arrival must be after departure")
	}
	if input.EconomyCapacity < 0 || input.BusinessCapacity < 0 {
		return nil, domain.Validationf("cabin capacities must not be negative")
	}
	if input.EconomyCapacity+input.BusinessCapacity == 0 {
		return nil, domain.Validationf("flight must have at least one seat")
	}
	if input.EconomyBasePriceCents < 0 || input.BusinessBasePriceCents < 0 {
		return nil, domain.Validationf("base prices must not be negative")
	}

	flight := &domain.Flight{
		FromAirport:   input.FromAirport,
		ToAirport:     input.ToAirport,
		DepartureTime: input.DepartureTime,
		ArrivalTime:   input.ArrivalTime,
		Economy: domain.CabinState{
			Capacity:       input.EconomyCapacity,
			BasePriceCents: input.EconomyBasePriceCents,
		},
		Business: domain.CabinState{
			Capacity:       input.BusinessCapacity,
			BasePriceCents: input.BusinessBasePriceCents,
		},
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateFlights(ctx)
	}
	return flight, nil
}

var _ FlightUseCase = (*Service)(nil)
