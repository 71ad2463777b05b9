package repository

import (
	"testing"

	"github.com/akulagin/flightbook/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewFlightRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewFlightRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewTicketRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewTicketRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewBookingRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewBookingRepository(pool)
	assert.NotNil(t, repo)
}

func TestCabinColumn(t *testing.T) {
	assert.Equal(t, "economy", cabinColumn(domain.CabinEconomy))
	assert.Equal(t, "business", cabinColumn(domain.CabinBusiness))
	assert.Panics(t, func() { cabinColumn(domain.Cabin("FIRST")) })
}
