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
)

const eventColumns = `id, title, description, category, location, image, event_date,
       ticket_price, total_tickets, remaining_tickets, status, organizer_id,
       created_at, updated_at`

type PostgresEventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

func scanEvent(row interface{ Scan(...any) error }) (*models.Event, error) {
	event := &models.Event{}
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Category,
		&event.Location,
		&event.Image,
		&event.Date,
		&event.TicketPrice,
		&event.TotalTickets,
		&event.RemainingTickets,
		&event.Status,
		&event.OrganizerID,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *PostgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (id, title, description, category, location, image, event_date,
		                    ticket_price, total_tickets, remaining_tickets, status, organizer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Category,
		event.Location,
		event.Image,
		event.Date,
		event.TicketPrice,
		event.TotalTickets,
		event.RemainingTickets,
		event.Status,
		event.OrganizerID,
	).Scan(&event.CreatedAt, &event.UpdatedAt)

	return err
}

func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return event, err
}

func (r *PostgresEventRepository) ListApproved(ctx context.Context, page, pageSize int) ([]models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE status = $1
		ORDER BY event_date ASC`

	args := []any{models.EventStatusApproved}
	if page > 0 && pageSize > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, pageSize, (page-1)*pageSize)
	}

	return r.queryEvents(ctx, query, args...)
}

func (r *PostgresEventRepository) ListAll(ctx context.Context) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC`
	return r.queryEvents(ctx, query)
}

func (r *PostgresEventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE organizer_id = $1 ORDER BY created_at DESC`
	return r.queryEvents(ctx, query, organizerID)
}

func (r *PostgresEventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}

	return events, rows.Err()
}

// UpdateDetails applies the organizer's edits. The event row is locked so a
// capacity increase cannot interleave with a concurrent reserve or cancel;
// the added capacity is credited to remaining_tickets in the same statement.
func (r *PostgresEventRepository) UpdateDetails(ctx context.Context, id string, upd models.EventUpdate) (*models.Event, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	lockQuery := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	event, err := scanEvent(tx.QueryRowContext(ctx, lockQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock event: %w", err)
	}

	if upd.Date != nil {
		event.Date = *upd.Date
	}
	if upd.Location != nil {
		event.Location = *upd.Location
	}
	if upd.TotalTickets != nil {
		if *upd.TotalTickets < event.TotalTickets {
			return nil, apperrors.ErrCapacityReductionDenied
		}
		delta := *upd.TotalTickets - event.TotalTickets
		event.TotalTickets = *upd.TotalTickets
		event.RemainingTickets += delta
	}
	event.UpdatedAt = time.Now().UTC()

	updateQuery := `
		UPDATE events
		SET event_date = $1, location = $2, total_tickets = $3, remaining_tickets = $4, updated_at = $5
		WHERE id = $6`

	if _, err := tx.ExecContext(ctx, updateQuery,
		event.Date, event.Location, event.TotalTickets, event.RemainingTickets, event.UpdatedAt, id,
	); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return event, nil
}

func (r *PostgresEventRepository) UpdateStatus(ctx context.Context, id string, status models.EventStatus) (*models.Event, error) {
	query := `
		UPDATE events
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + eventColumns

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, status, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrEventNotFound
	}
	return event, err
}

// Delete removes the event and cascade-cancels its confirmed bookings in the
// same transaction. Booking rows are retained as history. The event row is
// locked first, matching the lock order of the booking ledger.
func (r *PostgresEventRepository) Delete(ctx context.Context, id string) (*models.Event, int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	lockQuery := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	event, err := scanEvent(tx.QueryRowContext(ctx, lockQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, apperrors.ErrEventNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("lock event: %w", err)
	}

	cancelQuery := `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE event_id = $2 AND status = $3`

	res, err := tx.ExecContext(ctx, cancelQuery,
		models.BookingStatusCanceled, id, models.BookingStatusConfirmed)
	if err != nil {
		return nil, 0, fmt.Errorf("cancel bookings: %w", err)
	}
	canceled, err := res.RowsAffected()
	if err != nil {
		return nil, 0, fmt.Errorf("rows affected: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return nil, 0, fmt.Errorf("delete event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit: %w", err)
	}
	return event, canceled, nil
}

func (r *PostgresEventRepository) Analytics(ctx context.Context, id string) (*models.EventAnalytics, error) {
	query := `
		SELECT e.total_tickets, e.remaining_tickets,
		       COALESCE(SUM(b.tickets_booked), 0),
		       COUNT(b.id),
		       COALESCE(SUM(b.total_price), 0)
		FROM events e
		LEFT JOIN bookings b ON b.event_id = e.id AND b.status = $2
		WHERE e.id = $1
		GROUP BY e.total_tickets, e.remaining_tickets`

	analytics := &models.EventAnalytics{EventID: id}
	err := r.db.QueryRowContext(ctx, query, id, models.BookingStatusConfirmed).Scan(
		&analytics.TotalTickets,
		&analytics.RemainingTickets,
		&analytics.TicketsBooked,
		&analytics.ConfirmedBookings,
		&analytics.Revenue,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}

	return analytics, nil
}
