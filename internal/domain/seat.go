package domain

// Seat is the unit of contention: one passenger per occupied seat.
// Seats are created in bulk when the flight is created and never deleted
// while the flight exists.
type Seat struct {
	ID         int64 `json:"id"`
	FlightID   int64 `json:"flight_id"`
	SeatNumber int   `json:"seat_number"`
	Cabin      Cabin `json:"cabin"`
	Occupied   bool  `json:"occupied"`
}
