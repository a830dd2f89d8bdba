package models

import (
	"time"
)

// Role identifies what a caller is allowed to do. The role is resolved by the
// auth middleware from the token; the core trusts it as given.
type Role string

const (
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// Actor is the authenticated caller as resolved by the auth middleware.
type Actor struct {
	ID   string
	Role Role
}

// EventStatus is the approval state of an event. Only approved events accept
// new bookings.
type EventStatus string

const (
	EventStatusPending  EventStatus = "pending"
	EventStatusApproved EventStatus = "approved"
	EventStatusRejected EventStatus = "rejected"
)

// Valid reports whether s is one of the three known statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusPending, EventStatusApproved, EventStatusRejected:
		return true
	}
	return false
}

// BookingStatus is the lifecycle state of a booking. A booking is created as
// pending, promoted to confirmed in the same reservation transaction, and can
// only move to canceled afterwards. Bookings are never deleted.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCanceled  BookingStatus = "canceled"
)

// User represents a user in the system
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Event represents an event in the catalog.
//
// Invariant maintained by the booking ledger and the lifecycle manager:
// RemainingTickets + sum of confirmed bookings' TicketsBooked == TotalTickets.
type Event struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Category         string      `json:"category"`
	Location         string      `json:"location"`
	Image            string      `json:"image,omitempty"`
	Date             time.Time   `json:"date"`
	TicketPrice      float64     `json:"ticketPrice"`
	TotalTickets     int         `json:"totalTickets"`
	RemainingTickets int         `json:"remainingTickets"`
	Status           EventStatus `json:"status"`
	OrganizerID      string      `json:"organizer"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// Booking represents a confirmed or canceled ticket purchase. TotalPrice is
// snapshotted at reservation time and never recomputed from the event.
type Booking struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user"`
	EventID       string        `json:"event"`
	TicketsBooked int           `json:"ticketsBooked"`
	TotalPrice    float64       `json:"totalPrice"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// EventProjection is the minimal event view attached to a booking in list
// responses. Empty when the referenced event has been deleted.
type EventProjection struct {
	Name  string    `json:"name"`
	Date  time.Time `json:"date"`
	Venue string    `json:"venue"`
}

// BookingWithEvent is a booking joined with its event projection.
type BookingWithEvent struct {
	Booking
	Event EventProjection `json:"event"`
}

// CancellationResult describes the outcome of a booking cancellation.
// RefundedTickets is zero when the event no longer exists and there was no
// inventory to credit.
type CancellationResult struct {
	Booking         Booking
	EventName       string
	RefundedTickets int
}

// EventUpdate is the organizer-editable subset of an event. Nil fields are
// left unchanged. A TotalTickets value below the current capacity is rejected.
type EventUpdate struct {
	Date         *time.Time
	Location     *string
	TotalTickets *int
}

// EventAnalytics aggregates the booking ledger for one event.
type EventAnalytics struct {
	EventID           string  `json:"eventId"`
	TotalTickets      int     `json:"totalTickets"`
	RemainingTickets  int     `json:"remainingTickets"`
	TicketsBooked     int     `json:"ticketsBooked"`
	ConfirmedBookings int     `json:"confirmedBookings"`
	Revenue           float64 `json:"revenue"`
}
