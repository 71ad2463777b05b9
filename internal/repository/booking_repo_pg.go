package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/akulagin/flightbook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	// Create persists the booking and claims its tickets in one transaction.
	// A ticket already owned by another booking, missing, or belonging to a
	// different customer fails the whole operation.
	Create(ctx context.Context, booking *domain.Booking, ticketIDs []int64) error
	GetWithTickets(ctx context.Context, id int64) (*domain.Booking, []domain.Ticket, error)
	// Release reverses the booking's seat and counter effects atomically:
	// flips confirmed to false, frees every seat, decrements every touched
	// cabin counter and rewrites the affected fares, all in one transaction.
	// It returns the ids of the flights whose counters changed.
	Release(ctx context.Context, bookingID int64) ([]int64, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking, ticketIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Infraf(err, "begin create booking")
	}
	defer tx.Rollback(ctx)

	booking.Confirmed = true
	err = tx.QueryRow(ctx, `INSERT INTO bookings (customer_id, confirmation_code, total_price_cents, confirmed)
		VALUES ($1, $2, $3, true)
		RETURNING id, created_at, updated_at`,
		booking.CustomerID, booking.ConfirmationCode, booking.TotalPriceCents).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return domain.Infraf(err, "insert booking")
	}

	// claim only unowned tickets of this customer; a short count means a
	// concurrent booking grabbed one first
	res, err := tx.Exec(ctx,
		`UPDATE tickets SET booking_id=$1 WHERE id = ANY($2) AND customer_id=$3 AND booking_id IS NULL`,
		booking.ID, ticketIDs, booking.CustomerID)
	if err != nil {
		return domain.Infraf(err, "claim tickets")
	}
	if int(res.RowsAffected()) != len(ticketIDs) {
		return domain.Conflictf("one or more tickets are already part of another booking")
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Infraf(err, "commit create booking")
	}
	return nil
}

func (r *PGBookingRepository) GetWithTickets(ctx context.Context, id int64) (*domain.Booking, []domain.Ticket, error) {
	row := r.db.QueryRow(ctx, `SELECT id, customer_id, confirmation_code, total_price_cents, confirmed, created_at, updated_at
		FROM bookings WHERE id=$1`, id)
	var b domain.Booking
	err := row.Scan(&b.ID, &b.CustomerID, &b.ConfirmationCode, &b.TotalPriceCents, &b.Confirmed, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.NotFoundf("booking %d not found", id)
		}
		return nil, nil, domain.Infraf(err, "get booking %d", id)
	}

	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE booking_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, nil, domain.Infraf(err, "load booking tickets")
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, nil, domain.Infraf(err, "scan ticket")
		}
		tickets = append(tickets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, domain.Infraf(err, "load booking tickets")
	}
	return &b, tickets, nil
}

// releasedLeg is one (flight, seat, cabin) to undo during Release.
type releasedLeg struct {
	flightID   int64
	seatNumber int
	cabin      domain.Cabin
}

func (r *PGBookingRepository) Release(ctx context.Context, bookingID int64) ([]int64, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, domain.Infraf(err, "begin release booking")
	}
	defer tx.Rollback(ctx)

	// guard against a racing double cancel: only the transaction that flips
	// confirmed gets to release seats and counters
	res, err := tx.Exec(ctx, `UPDATE bookings SET confirmed=false, updated_at=now() WHERE id=$1 AND confirmed=true`, bookingID)
	if err != nil {
		return nil, domain.Infraf(err, "cancel booking %d", bookingID)
	}
	if res.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id=$1)`, bookingID).Scan(&exists); err != nil {
			return nil, domain.Infraf(err, "inspect booking %d", bookingID)
		}
		if !exists {
			return nil, domain.NotFoundf("booking %d not found", bookingID)
		}
		return nil, domain.BusinessRulef("booking %d is already cancelled", bookingID)
	}

	rows, err := tx.Query(ctx, `SELECT departure_flight_id, departure_seat, return_flight_id, return_seat, cabin
		FROM tickets WHERE booking_id=$1`, bookingID)
	if err != nil {
		return nil, domain.Infraf(err, "load booking tickets")
	}
	legs := make([]releasedLeg, 0)
	for rows.Next() {
		var depFlight int64
		var depSeat int
		var retFlight *int64
		var retSeat *int
		var cabin string
		if err := rows.Scan(&depFlight, &depSeat, &retFlight, &retSeat, &cabin); err != nil {
			rows.Close()
			return nil, domain.Infraf(err, "scan booking ticket")
		}
		legs = append(legs, releasedLeg{flightID: depFlight, seatNumber: depSeat, cabin: domain.Cabin(cabin)})
		if retFlight != nil && retSeat != nil {
			legs = append(legs, releasedLeg{flightID: *retFlight, seatNumber: *retSeat, cabin: domain.Cabin(cabin)})
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, domain.Infraf(err, "load booking tickets")
	}

	// lock flights in id order so concurrent releases cannot deadlock
	sort.Slice(legs, func(i, j int) bool { return legs[i].flightID < legs[j].flightID })

	touched := make(map[int64]map[domain.Cabin]bool)
	for _, leg := range legs {
		if err := releaseLeg(ctx, tx, leg); err != nil {
			return nil, err
		}
		if touched[leg.flightID] == nil {
			touched[leg.flightID] = make(map[domain.Cabin]bool)
		}
		touched[leg.flightID][leg.cabin] = true
	}

	flightIDs := make([]int64, 0, len(touched))
	for flightID, cabins := range touched {
		for cabin := range cabins {
			if _, err := recalculateFareTx(ctx, tx, flightID, cabin); err != nil {
				return nil, err
			}
		}
		flightIDs = append(flightIDs, flightID)
	}
	sort.Slice(flightIDs, func(i, j int) bool { return flightIDs[i] < flightIDs[j] })

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.Infraf(err, "commit release booking")
	}
	return flightIDs, nil
}

func releaseLeg(ctx context.Context, tx pgx.Tx, leg releasedLeg) error {
	col := cabinColumn(leg.cabin)

	// take the flight row lock before the seat row, the same order issuance
	// uses, so the two can never deadlock on one flight
	if _, err := tx.Exec(ctx, `SELECT id FROM flights WHERE id=$1 FOR UPDATE`, leg.flightID); err != nil {
		return domain.Infraf(err, "lock flight %d", leg.flightID)
	}

	// already-free seat is a no-op, not an error
	res, err := tx.Exec(ctx,
		`UPDATE seats SET occupied=false WHERE flight_id=$1 AND seat_number=$2 AND occupied=true`,
		leg.flightID, leg.seatNumber)
	if err != nil {
		return domain.Infraf(err, "free seat %d on flight %d", leg.seatNumber, leg.flightID)
	}
	if res.RowsAffected() == 0 {
		return nil
	}

	_, err = tx.Exec(ctx, fmt.Sprintf(
		`UPDATE flights SET %s_booked = GREATEST(%s_booked - 1, 0), updated_at=now() WHERE id=$1`,
		col, col), leg.flightID)
	if err != nil {
		return domain.Infraf(err, "decrement booked count for flight %d", leg.flightID)
	}
	return nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
