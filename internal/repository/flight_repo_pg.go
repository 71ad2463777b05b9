package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/akulagin/flightbook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	RecalculateFare(ctx context.Context, flightID int64, cabin domain.Cabin) (int64, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, from_airport, to_airport, departure_time, arrival_time,
	economy_capacity, economy_booked, economy_base_price_cents, economy_current_price_cents,
	business_capacity, business_booked, business_base_price_cents, business_current_price_cents,
	created_at, updated_at`

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	err := row.Scan(&f.ID, &f.FromAirport, &f.ToAirport, &f.DepartureTime, &f.ArrivalTime,
		&f.Economy.Capacity, &f.Economy.Booked, &f.Economy.BasePriceCents, &f.Economy.CurrentPriceCents,
		&f.Business.Capacity, &f.Business.Booked, &f.Business.BasePriceCents, &f.Business.CurrentPriceCents,
		&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, domain.Infraf(err, "list flights")
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, domain.Infraf(err, "scan flight")
		}
		flights = append(flights, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Infraf(err, "list flights")
	}
	return flights, nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	f, err := scanFlight(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("flight %d not found", id)
		}
		return nil, domain.Infraf(err, "get flight %d", id)
	}
	return f, nil
}

// Create inserts the flight and provisions capacity seats per cabin in one
// transaction. Business seats are numbered first, then economy, so seat
// numbers are unique within the flight.
func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Infraf(err, "begin create flight")
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `INSERT INTO flights (from_airport, to_airport, departure_time, arrival_time,
			economy_capacity, economy_booked, economy_base_price_cents, economy_current_price_cents,
			business_capacity, business_booked, business_base_price_cents, business_current_price_cents)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $6, $7, 0, $8, $8)
		RETURNING id, created_at, updated_at`,
		flight.FromAirport, flight.ToAirport, flight.DepartureTime, flight.ArrivalTime,
		flight.Economy.Capacity, flight.Economy.BasePriceCents,
		flight.Business.Capacity, flight.Business.BasePriceCents).
		Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt)
	if err != nil {
		return domain.Infraf(err, "insert flight")
	}
	flight.Economy.CurrentPriceCents = flight.Economy.BasePriceCents
	flight.Business.CurrentPriceCents = flight.Business.BasePriceCents

	seats := make([][]interface{}, 0, flight.Business.Capacity+flight.Economy.Capacity)
	number := 1
	for i := 0; i < flight.Business.Capacity; i++ {
		seats = append(seats, []interface{}{flight.ID, number, string(domain.CabinBusiness), false})
		number++
	}
	for i := 0; i < flight.Economy.Capacity; i++ {
		seats = append(seats, []interface{}{flight.ID, number, string(domain.CabinEconomy), false})
		number++
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"seats"},
		[]string{"flight_id", "seat_number", "cabin", "occupied"},
		pgx.CopyFromRows(seats))
	if err != nil {
		return domain.Infraf(err, "bulk insert seats for flight %d", flight.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Infraf(err, "commit create flight")
	}
	return nil
}

// RecalculateFare rewrites the cabin's current price from its counters as
// they stand now. Idempotent: unchanged counters yield the same price.
func (r *PGFlightRepository) RecalculateFare(ctx context.Context, flightID int64, cabin domain.Cabin) (int64, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, domain.Infraf(err, "begin recalculate fare")
	}
	defer tx.Rollback(ctx)

	price, err := recalculateFareTx(ctx, tx, flightID, cabin)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, domain.Infraf(err, "commit recalculate fare")
	}
	return price, nil
}

// recalculateFareTx reads the counters under the flight row lock and writes
// the recomputed price inside the caller's transaction.
func recalculateFareTx(ctx context.Context, tx pgx.Tx, flightID int64, cabin domain.Cabin) (int64, error) {
	col := cabinColumn(cabin)
	var booked, capacity int
	var base int64
	err := tx.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s_booked, %s_capacity, %s_base_price_cents FROM flights WHERE id=$1 FOR UPDATE`,
		col, col, col), flightID).Scan(&booked, &capacity, &base)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.NotFoundf("flight %d not found", flightID)
		}
		return 0, domain.Infraf(err, "lock flight %d", flightID)
	}

	price := domain.DynamicPriceCents(base, booked, capacity)
	_, err = tx.Exec(ctx, fmt.Sprintf(
		`UPDATE flights SET %s_current_price_cents=$1, updated_at=now() WHERE id=$2`,
		col), price, flightID)
	if err != nil {
		return 0, domain.Infraf(err, "update fare for flight %d", flightID)
	}
	return price, nil
}

// cabinColumn maps a validated cabin to its column prefix. Callers must
// validate the cabin first; an unknown value panics rather than reaching SQL.
func cabinColumn(cabin domain.Cabin) string {
	switch cabin {
	case domain.CabinEconomy:
		return "economy"
	case domain.CabinBusiness:
		return "business"
	}
	panic(fmt.Sprintf("unknown cabin %q", cabin))
}

var _ FlightRepository = (*PGFlightRepository)(nil)
