package domain

import "time"

// FlightSnapshot is the immutable copy of a leg's reference data taken at
// issuance time. Tickets keep snapshots, not live references, so later
// changes to the flight never alter an issued ticket.
type FlightSnapshot struct {
	FlightID      int64     `json:"flight_id"`
	FromAirport   string    `json:"from_airport"`
	ToAirport     string    `json:"to_airport"`
	DepartureTime time.Time `json:"departure_time"`
}

// Ticket assigns one passenger to one seat per leg. It is immutable after
// issuance; the price is the snapshot captured inside the issuance
// transaction and is never recomputed.
type Ticket struct {
	ID            int64           `json:"id"`
	CustomerID    int64           `json:"customer_id"`
	PassengerName string          `json:"passenger_name"`
	PassengerDOB  time.Time       `json:"passenger_dob"`
	Cabin         Cabin           `json:"cabin"`
	Departure     FlightSnapshot  `json:"departure"`
	DepartureSeat int             `json:"departure_seat"`
	Return        *FlightSnapshot `json:"return,omitempty"`
	ReturnSeat    *int            `json:"return_seat,omitempty"`
	PriceCents    int64           `json:"price_cents"`
	BookingID     *int64          `json:"booking_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (t *Ticket) RoundTrip() bool {
	return t.Return != nil
}

// PassengerAgeAt returns the passenger's age in full years at the given time.
func (t *Ticket) PassengerAgeAt(at time.Time) int {
	years := at.Year() - t.PassengerDOB.Year()
	anniversary := t.PassengerDOB.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	return years
}
