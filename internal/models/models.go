package models

import "time"

// CreateBookingRequest is the reserve payload. TicketsBooked is validated in
// the service so that a missing, zero or negative value fails with the same
// domain error.
type CreateBookingRequest struct {
	EventID       string `json:"eventId" binding:"required"`
	TicketsBooked int    `json:"ticketsBooked"`
}

// CreateBookingResponse is returned on a successful reservation.
type CreateBookingResponse struct {
	Booking     Booking   `json:"booking"`
	EventName   string    `json:"eventName"`
	EventDate   time.Time `json:"eventDate"`
	TotalAmount float64   `json:"totalAmount"`
}

// CancelBookingResponse is returned on a successful cancellation.
type CancelBookingResponse struct {
	BookingID       string `json:"bookingId"`
	EventName       string `json:"eventName"`
	RefundedTickets int    `json:"refundedTickets"`
}

// ListBookingsResponse lists a user's confirmed bookings, most recent first.
type ListBookingsResponse struct {
	TotalBookings int                `json:"totalBookings"`
	Bookings      []BookingWithEvent `json:"bookings"`
}

// CreateEventRequest is the organizer's event creation payload.
type CreateEventRequest struct {
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Location     string    `json:"location"`
	Image        string    `json:"image"`
	Date         time.Time `json:"date" binding:"required"`
	TicketPrice  float64   `json:"ticketPrice" binding:"gte=0"`
	TotalTickets int       `json:"totalTickets" binding:"required,gt=0"`
}

// UpdateEventRequest carries the role-dependent update body. Organizers may
// set date, location and totalTickets; admins may set status only.
type UpdateEventRequest struct {
	Date         *time.Time `json:"date"`
	Location     *string    `json:"location"`
	TotalTickets *int       `json:"totalTickets"`
	Status       *string    `json:"status"`
}

// ListEventsResponse lists events for the public catalog and admin views.
type ListEventsResponse struct {
	TotalEvents int     `json:"totalEvents"`
	Events      []Event `json:"events"`
}

// DeleteEventResponse is returned when an event is removed.
type DeleteEventResponse struct {
	EventID string `json:"eventId"`
	Title   string `json:"title"`
}
