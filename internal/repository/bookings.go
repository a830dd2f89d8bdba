package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventtix/internal/database"
	apperrors "eventtix/internal/errors"
	"eventtix/internal/models"

	"github.com/google/uuid"
)

type PostgresBookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *PostgresBookingRepository {
	return &PostgresBookingRepository{db: db}
}

// Reserve checks availability and creates a confirmed booking as one atomic
// unit. The event row is locked for the duration of the transaction, so two
// reservations against the same event serialize and the last-seat race
// resolves to exactly one winner.
func (r *PostgresBookingRepository) Reserve(ctx context.Context, eventID, userID string, tickets int) (*models.Booking, *models.Event, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	lockQuery := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	event, err := scanEvent(tx.QueryRowContext(ctx, lockQuery, eventID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, apperrors.ErrEventNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("lock event: %w", err)
	}

	if event.Status != models.EventStatusApproved {
		return nil, nil, apperrors.ErrEventNotBookable
	}
	if tickets > event.RemainingTickets {
		return nil, nil, &apperrors.InsufficientInventoryError{Remaining: event.RemainingTickets}
	}

	updateQuery := `
		UPDATE events
		SET remaining_tickets = remaining_tickets - $1, updated_at = NOW()
		WHERE id = $2`
	if _, err := tx.ExecContext(ctx, updateQuery, tickets, eventID); err != nil {
		return nil, nil, fmt.Errorf("decrement inventory: %w", err)
	}

	// Price snapshot: totalPrice is fixed here and never recomputed.
	booking := &models.Booking{
		ID:            uuid.New().String(),
		UserID:        userID,
		EventID:       eventID,
		TicketsBooked: tickets,
		TotalPrice:    float64(tickets) * event.TicketPrice,
		Status:        models.BookingStatusConfirmed,
	}

	insertQuery := `
		INSERT INTO bookings (id, user_id, event_id, tickets_booked, total_price, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`
	if err := tx.QueryRowContext(ctx, insertQuery,
		booking.ID,
		booking.UserID,
		booking.EventID,
		booking.TicketsBooked,
		booking.TotalPrice,
		booking.Status,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return nil, nil, fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}

	event.RemainingTickets -= tickets
	return booking, event, nil
}

// Cancel marks the booking canceled and credits the event's inventory once.
// The event row is locked before the booking row so cancellation and event
// deletion take row locks in the same order. If the event no longer exists
// the booking is still canceled but nothing is refunded.
func (r *PostgresBookingRepository) Cancel(ctx context.Context, bookingID, userID string) (*models.CancellationResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var eventID string
	peekQuery := `SELECT event_id FROM bookings WHERE id = $1`
	if err := tx.QueryRowContext(ctx, peekQuery, bookingID).Scan(&eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}

	var eventName string
	eventExists := true
	eventLockQuery := `SELECT title FROM events WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, eventLockQuery, eventID).Scan(&eventName); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lock event: %w", err)
		}
		eventExists = false
	}

	booking := &models.Booking{ID: bookingID, EventID: eventID}
	bookingLockQuery := `
		SELECT user_id, tickets_booked, total_price, status, created_at, updated_at
		FROM bookings WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, bookingLockQuery, bookingID).Scan(
		&booking.UserID,
		&booking.TicketsBooked,
		&booking.TotalPrice,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("lock booking: %w", err)
	}

	if booking.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	if booking.Status == models.BookingStatusCanceled {
		return nil, apperrors.ErrAlreadyCanceled
	}
	wasConfirmed := booking.Status == models.BookingStatusConfirmed

	booking.Status = models.BookingStatusCanceled
	booking.UpdatedAt = time.Now().UTC()
	updateBookingQuery := `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, updateBookingQuery,
		booking.Status, booking.UpdatedAt, bookingID); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}

	refunded := 0
	if eventExists && wasConfirmed {
		creditQuery := `
			UPDATE events
			SET remaining_tickets = remaining_tickets + $1, updated_at = NOW()
			WHERE id = $2`
		if _, err := tx.ExecContext(ctx, creditQuery, booking.TicketsBooked, eventID); err != nil {
			return nil, fmt.Errorf("credit inventory: %w", err)
		}
		refunded = booking.TicketsBooked
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &models.CancellationResult{
		Booking:         *booking,
		EventName:       eventName,
		RefundedTickets: refunded,
	}, nil
}

const bookingWithEventColumns = `b.id, b.user_id, b.event_id, b.tickets_booked, b.total_price,
       b.status, b.created_at, b.updated_at,
       COALESCE(e.title, ''), COALESCE(e.event_date, b.created_at), COALESCE(e.location, '')`

func scanBookingWithEvent(row interface{ Scan(...any) error }) (*models.BookingWithEvent, error) {
	b := &models.BookingWithEvent{}
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.EventID,
		&b.TicketsBooked,
		&b.TotalPrice,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.Event.Name,
		&b.Event.Date,
		&b.Event.Venue,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*models.BookingWithEvent, error) {
	query := `
		SELECT ` + bookingWithEventColumns + `
		FROM bookings b
		LEFT JOIN events e ON e.id = b.event_id
		WHERE b.id = $1`

	booking, err := scanBookingWithEvent(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return booking, err
}

func (r *PostgresBookingRepository) ListConfirmedByUser(ctx context.Context, userID string) ([]models.BookingWithEvent, error) {
	query := `
		SELECT ` + bookingWithEventColumns + `
		FROM bookings b
		LEFT JOIN events e ON e.id = b.event_id
		WHERE b.user_id = $1 AND b.status = $2
		ORDER BY b.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, models.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.BookingWithEvent
	for rows.Next() {
		booking, err := scanBookingWithEvent(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}
