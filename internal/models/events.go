package models

import "time"

// NATS subjects
const (
	SubjectBookingReserved = "booking.reserved"
	SubjectBookingCanceled = "booking.canceled"
	SubjectEventUpserted   = "event.upserted"
	SubjectEventDeleted    = "event.deleted"
)

// BookingReservedEvent is published after a reservation commits.
type BookingReservedEvent struct {
	BookingID  string    `json:"booking_id"`
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	Tickets    int       `json:"tickets"`
	TotalPrice float64   `json:"total_price"`
	Timestamp  time.Time `json:"timestamp"`
}

// BookingCanceledEvent is published after a cancellation commits.
type BookingCanceledEvent struct {
	BookingID       string    `json:"booking_id"`
	EventID         string    `json:"event_id"`
	UserID          string    `json:"user_id"`
	RefundedTickets int       `json:"refunded_tickets"`
	Timestamp       time.Time `json:"timestamp"`
}

// EventUpsertedEvent carries the full event after any lifecycle change so
// consumers can reindex without a read back.
type EventUpsertedEvent struct {
	Event     Event     `json:"event"`
	Timestamp time.Time `json:"timestamp"`
}

// EventDeletedEvent is published after an event is removed.
type EventDeletedEvent struct {
	EventID          string    `json:"event_id"`
	Title            string    `json:"title"`
	CanceledBookings int64     `json:"canceled_bookings"`
	Timestamp        time.Time `json:"timestamp"`
}
