package domain

import "math"

// DynamicPriceCents computes the occupancy-driven fare for a cabin:
// round(base + base * booked/capacity). The result never drops below the
// base price, so an empty cabin sells at base.
func DynamicPriceCents(baseCents int64, booked, capacity int) int64 {
	if capacity <= 0 {
		return baseCents
	}
	if booked < 0 {
		booked = 0
	}
	if booked > capacity {
		booked = capacity
	}
	ratio := float64(booked) / float64(capacity)
	return int64(math.Round(float64(baseCents) * (1 + ratio)))
}
