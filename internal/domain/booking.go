package domain

import "time"

// Booking groups tickets purchased together by one customer. Confirmed is a
// one-way flag: a cancelled booking can never be re-confirmed.
type Booking struct {
	ID               int64     `json:"id"`
	CustomerID       int64     `json:"customer_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	TotalPriceCents  int64     `json:"total_price_cents"`
	Confirmed        bool      `json:"confirmed"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
