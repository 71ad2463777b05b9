package domain

import "time"

type Cabin string

const (
	CabinEconomy  Cabin = "ECONOMY"
	CabinBusiness Cabin = "BUSINESS"
)

func (c Cabin) Valid() bool {
	return c == CabinEconomy || c == CabinBusiness
}

// CabinState is the booked/capacity/price aggregate for one cabin of a flight.
// Invariant: 0 <= Booked <= Capacity and CurrentPriceCents >= BasePriceCents.
type CabinState struct {
	Capacity          int   `json:"capacity"`
	Booked            int   `json:"booked"`
	BasePriceCents    int64 `json:"base_price_cents"`
	CurrentPriceCents int64 `json:"current_price_cents"`
}

type Flight struct {
	ID            int64      `json:"id"`
	FromAirport   string     `json:"from_airport"`
	ToAirport     string     `json:"to_airport"`
	DepartureTime time.Time  `json:"departure_time"`
	ArrivalTime   time.Time  `json:"arrival_time"`
	Economy       CabinState `json:"economy"`
	Business      CabinState `json:"business"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (f *Flight) Duration() time.Duration {
	return f.ArrivalTime.Sub(f.DepartureTime)
}

// CabinState returns the aggregate for the given cabin, nil for an unknown one.
func (f *Flight) CabinState(c Cabin) *CabinState {
	switch c {
	case CabinEconomy:
		return &f.Economy
	case CabinBusiness:
		return &f.Business
	}
	return nil
}
