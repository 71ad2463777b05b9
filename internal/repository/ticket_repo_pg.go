package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akulagin/flightbook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IssueTicketParams struct {
	CustomerID        int64
	PassengerName     string
	PassengerDOB      time.Time
	Cabin             domain.Cabin
	DepartureFlightID int64
	DepartureSeat     int
	ReturnFlightID    *int64
	ReturnSeat        *int
}

type TicketRepository interface {
	// Issue claims the seat(s), increments the cabin counters, rewrites the
	// current fare and inserts the ticket, all inside one transaction. On any
	// failure nothing is observable. The ticket price is the cabin's current
	// price as it stands at the moment of the read inside the transaction
	// (summed over both legs for a round trip).
	Issue(ctx context.Context, params IssueTicketParams) (*domain.Ticket, error)
	GetByIDsForCustomer(ctx context.Context, ids []int64, customerID int64) ([]domain.Ticket, error)
}

type PGTicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) TicketRepository {
	return &PGTicketRepository{db: db}
}

func (r *PGTicketRepository) Issue(ctx context.Context, params IssueTicketParams) (*domain.Ticket, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, domain.Infraf(err, "begin issue ticket")
	}
	defer tx.Rollback(ctx)

	departure, depPrice, err := claimLeg(ctx, tx, params.DepartureFlightID, params.DepartureSeat, params.Cabin)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		CustomerID:    params.CustomerID,
		PassengerName: params.PassengerName,
		PassengerDOB:  params.PassengerDOB,
		Cabin:         params.Cabin,
		Departure:     *departure,
		DepartureSeat: params.DepartureSeat,
		PriceCents:    depPrice,
	}

	if params.ReturnFlightID != nil {
		if params.ReturnSeat == nil {
			return nil, domain.Validationf("return seat is required for a round trip")
		}
		ret, retPrice, err := claimLeg(ctx, tx, *params.ReturnFlightID, *params.ReturnSeat, params.Cabin)
		if err != nil {
			// rolls back the departure claim too
			return nil, err
		}
		ticket.Return = ret
		ticket.ReturnSeat = params.ReturnSeat
		ticket.PriceCents += retPrice
	}

	err = tx.QueryRow(ctx, `INSERT INTO tickets (customer_id, passenger_name, passenger_dob, cabin,
			departure_flight_id, departure_from, departure_to, departure_time, departure_seat,
			return_flight_id, return_from, return_to, return_time, return_seat, price_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at`,
		ticket.CustomerID, ticket.PassengerName, ticket.PassengerDOB, string(ticket.Cabin),
		ticket.Departure.FlightID, ticket.Departure.FromAirport, ticket.Departure.ToAirport,
		ticket.Departure.DepartureTime, ticket.DepartureSeat,
		nullableSnapshotID(ticket.Return), nullableSnapshotFrom(ticket.Return),
		nullableSnapshotTo(ticket.Return), nullableSnapshotTime(ticket.Return),
		ticket.ReturnSeat, ticket.PriceCents).
		Scan(&ticket.ID, &ticket.CreatedAt)
	if err != nil {
		return nil, domain.Infraf(err, "insert ticket")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.Infraf(err, "commit issue ticket")
	}
	return ticket, nil
}

// claimLeg reserves one seat on one flight for the requested cabin and
// returns the leg snapshot plus the price in force before the claim.
//
// The flight row lock taken here serializes every read-modify-write of the
// same flight's counters; the conditional seat UPDATE guarantees at most one
// transaction flips a given (flight, seatNumber, cabin) to occupied.
func claimLeg(ctx context.Context, tx pgx.Tx, flightID int64, seatNumber int, cabin domain.Cabin) (*domain.FlightSnapshot, int64, error) {
	col := cabinColumn(cabin)

	var snap domain.FlightSnapshot
	var booked, capacity int
	var base, current int64
	err := tx.QueryRow(ctx, fmt.Sprintf(
		`SELECT id, from_airport, to_airport, departure_time,
			%s_booked, %s_capacity, %s_base_price_cents, %s_current_price_cents
		FROM flights WHERE id=$1 FOR UPDATE`, col, col, col, col), flightID).
		Scan(&snap.FlightID, &snap.FromAirport, &snap.ToAirport, &snap.DepartureTime,
			&booked, &capacity, &base, &current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, domain.NotFoundf("flight %d not found", flightID)
		}
		return nil, 0, domain.Infraf(err, "lock flight %d", flightID)
	}

	if booked >= capacity {
		return nil, 0, domain.Conflictf("flight %d has no free %s seats", flightID, cabin)
	}

	res, err := tx.Exec(ctx,
		`UPDATE seats SET occupied=true WHERE flight_id=$1 AND seat_number=$2 AND cabin=$3 AND occupied=false`,
		flightID, seatNumber, string(cabin))
	if err != nil {
		return nil, 0, domain.Infraf(err, "reserve seat %d on flight %d", seatNumber, flightID)
	}
	if res.RowsAffected() == 0 {
		return nil, 0, diagnoseSeatConflict(ctx, tx, flightID, seatNumber, cabin)
	}

	// price after this claim; the returned snapshot price is the pre-claim one
	next := domain.DynamicPriceCents(base, booked+1, capacity)
	_, err = tx.Exec(ctx, fmt.Sprintf(
		`UPDATE flights SET %s_booked=%s_booked+1, %s_current_price_cents=$1, updated_at=now() WHERE id=$2`,
		col, col, col), next, flightID)
	if err != nil {
		return nil, 0, domain.Infraf(err, "increment booked count for flight %d", flightID)
	}

	return &snap, current, nil
}

// diagnoseSeatConflict tells apart the three reasons the conditional seat
// UPDATE can touch zero rows.
func diagnoseSeatConflict(ctx context.Context, tx pgx.Tx, flightID int64, seatNumber int, cabin domain.Cabin) error {
	var actualCabin string
	var occupied bool
	err := tx.QueryRow(ctx,
		`SELECT cabin, occupied FROM seats WHERE flight_id=$1 AND seat_number=$2`,
		flightID, seatNumber).Scan(&actualCabin, &occupied)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFoundf("seat %d does not exist on flight %d", seatNumber, flightID)
		}
		return domain.Infraf(err, "inspect seat %d on flight %d", seatNumber, flightID)
	}
	if actualCabin != string(cabin) {
		return domain.Conflictf("seat %d on flight %d is a %s seat, not %s", seatNumber, flightID, actualCabin, cabin)
	}
	if occupied {
		return domain.Conflictf("seat %d on flight %d is already occupied", seatNumber, flightID)
	}
	return domain.Conflictf("seat %d on flight %d could not be reserved", seatNumber, flightID)
}

func (r *PGTicketRepository) GetByIDsForCustomer(ctx context.Context, ids []int64, customerID int64) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+`
		FROM tickets WHERE id = ANY($1) AND customer_id = $2`, ids, customerID)
	if err != nil {
		return nil, domain.Infraf(err, "load tickets")
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0, len(ids))
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, domain.Infraf(err, "scan ticket")
		}
		tickets = append(tickets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Infraf(err, "load tickets")
	}
	return tickets, nil
}

const ticketColumns = `id, customer_id, passenger_name, passenger_dob, cabin,
	departure_flight_id, departure_from, departure_to, departure_time, departure_seat,
	return_flight_id, return_from, return_to, return_time, return_seat,
	price_cents, booking_id, created_at`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	var cabin string
	var retID *int64
	var retFrom, retTo *string
	var retTime *time.Time
	err := row.Scan(&t.ID, &t.CustomerID, &t.PassengerName, &t.PassengerDOB, &cabin,
		&t.Departure.FlightID, &t.Departure.FromAirport, &t.Departure.ToAirport,
		&t.Departure.DepartureTime, &t.DepartureSeat,
		&retID, &retFrom, &retTo, &retTime, &t.ReturnSeat,
		&t.PriceCents, &t.BookingID, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Cabin = domain.Cabin(cabin)
	if retID != nil {
		t.Return = &domain.FlightSnapshot{
			FlightID:      *retID,
			FromAirport:   *retFrom,
			ToAirport:     *retTo,
			DepartureTime: *retTime,
		}
	}
	return &t, nil
}

func nullableSnapshotID(s *domain.FlightSnapshot) *int64 {
	if s == nil {
		return nil
	}
	return &s.FlightID
}

func nullableSnapshotFrom(s *domain.FlightSnapshot) *string {
	if s == nil {
		return nil
	}
	return &s.FromAirport
}

func nullableSnapshotTo(s *domain.FlightSnapshot) *string {
	if s == nil {
		return nil
	}
	return &s.ToAirport
}

func nullableSnapshotTime(s *domain.FlightSnapshot) *time.Time {
	if s == nil {
		return nil
	}
	return &s.DepartureTime
}

var _ TicketRepository = (*PGTicketRepository)(nil)
