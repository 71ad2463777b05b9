package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDynamicPriceCents(t *testing.T) {
	testCases := []struct {
		name     string
		base     int64
		booked   int
		capacity int
		expected int64
	}{
		{name: "empty cabin sells at base", base: 1000, booked: 0, capacity: 12, expected: 1000},
		{name: "one of twelve", base: 1000, booked: 1, capacity: 12, expected: 1083},
		{name: "half full", base: 1000, booked: 6, capacity: 12, expected: 1500},
		{name: "full cabin doubles the base", base: 1000, booked: 12, capacity: 12, expected: 2000},
		{name: "rounds to nearest", base: 999, booked: 1, capacity: 3, expected: 1332},
		{name: "zero capacity falls back to base", base: 1000, booked: 0, capacity: 0, expected: 1000},
		{name: "booked clamped to capacity", base: 1000, booked: 15, capacity: 12, expected: 2000},
		{name: "negative booked clamped to zero", base: 1000, booked: -1, capacity: 12, expected: 1000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DynamicPriceCents(tc.base, tc.booked, tc.capacity))
		})
	}
}

func TestDynamicPriceCents_Idempotent(t *testing.T) {
	first := DynamicPriceCents(1000, 7, 60)
	second := DynamicPriceCents(1000, 7, 60)
	assert.Equal(t, first, second)
}

func TestDynamicPriceCents_NeverBelowBase(t *testing.T) {
	for booked := 0; booked <= 60; booked++ {
		price := DynamicPriceCents(12345, booked, 60)
		assert.GreaterOrEqual(t, price, int64(12345))
	}
}
