package fare

import (
	"context"
	"log"

	"github.com/akulagin/flightbook/internal/domain"
	"github.com/akulagin/flightbook/internal/repository"
)

type FareUseCase interface {
	Recalculate(ctx context.Context, flightID int64, cabin domain.Cabin) (int64, error)
	ReconcileAll(ctx context.Context) error
}

type Cache interface {
	InvalidateFlights(ctx context.Context) error
}

type Service struct {
	flights repository.FlightRepository
	cache   Cache
}

func NewService(flights repository.FlightRepository, cache Cache) *Service {
	return &Service{flights: flights, cache: cache}
}

// Recalculate rewrites the cabin's current price from the counters as they
// stand. Idempotent by construction.
func (s *Service) Recalculate(ctx context.Context, flightID int64, cabin domain.Cabin) (int64, error) {
	if flightID <= 0 {
		return 0, domain.Validationf("flight id is required")
	}
	if !cabin.Valid() {
		return 0, domain.Validationf("cabin must be ECONOMY or BUSINESS")
	}

	price, err := s.flights.RecalculateFare(ctx, flightID, cabin)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateFlights(ctx)
	}
	return price, nil
}

// ReconcileAll sweeps every flight's fares. Used by the worker to repair any
// drift between counters and prices.
func (s *Service) ReconcileAll(ctx context.Context) error {
	flights, err := s.flights.List(ctx)
	if err != nil {
		return err
	}
	for _, f := range flights {
		for _, cabin := range []domain.Cabin{domain.CabinEconomy, domain.CabinBusiness} {
			if _, err := s.flights.RecalculateFare(ctx, f.ID, cabin); err != nil {
				log.Printf("reconcile fare for flight %d %s: %v", f.ID, cabin, err)
			}
		}
	}
	if s.cache != nil {
		_ = s.cache.InvalidateFlights(ctx)
	}
	return nil
}

var _ FareUseCase = (*Service)(nil)
