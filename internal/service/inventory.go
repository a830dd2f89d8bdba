package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	apperrors "eventtix/internal/errors"
	"eventtix/internal/messaging"
	"eventtix/internal/metrics"
	"eventtix/internal/models"
	"eventtix/internal/repository"
)

// InventoryService coordinates reservations and cancellations. All capacity
// accounting is delegated to the booking ledger's transactions; this layer
// validates input, publishes domain events and shapes responses.
type InventoryService struct {
	bookings repository.BookingRepository
	nats     *messaging.NATSClient
}

func NewInventoryService(bookings repository.BookingRepository, nats *messaging.NATSClient) *InventoryService {
	return &InventoryService{bookings: bookings, nats: nats}
}

// Reserve books tickets for the actor on the given event.
func (s *InventoryService) Reserve(ctx context.Context, actor models.Actor, req models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	if req.TicketsBooked <= 0 {
		metrics.RecordReservation("invalid_quantity", 0)
		return nil, apperrors.ErrInvalidQuantity
	}

	booking, event, err := s.bookings.Reserve(ctx, req.EventID, actor.ID, req.TicketsBooked)
	if err != nil {
		metrics.RecordReservation(reservationOutcome(err), 0)
		return nil, err
	}

	metrics.RecordReservation("success", booking.TicketsBooked)

	if err := s.nats.Publish(models.SubjectBookingReserved, models.BookingReservedEvent{
		BookingID:  booking.ID,
		EventID:    booking.EventID,
		UserID:     booking.UserID,
		Tickets:    booking.TicketsBooked,
		TotalPrice: booking.TotalPrice,
		Timestamp:  time.Now().UTC(),
	}); err != nil {
		slog.Error("Failed to publish booking.reserved", "booking_id", booking.ID, "error", err)
	}

	slog.Info("Booking created",
		"booking_id", booking.ID,
		"event_id", booking.EventID,
		"user_id", booking.UserID,
		"tickets", booking.TicketsBooked,
		"remaining", event.RemainingTickets)

	return &models.CreateBookingResponse{
		Booking:     *booking,
		EventName:   event.Title,
		EventDate:   event.Date,
		TotalAmount: booking.TotalPrice,
	}, nil
}

// Cancel cancels the actor's booking and refunds its tickets to the event's
// inventory when the event still exists.
func (s *InventoryService) Cancel(ctx context.Context, actor models.Actor, bookingID string) (*models.CancelBookingResponse, error) {
	result, err := s.bookings.Cancel(ctx, bookingID, actor.ID)
	if err != nil {
		metrics.RecordCancellation(cancellationOutcome(err), 0)
		return nil, err
	}

	metrics.RecordCancellation("success", result.RefundedTickets)

	if err := s.nats.Publish(models.SubjectBookingCanceled, models.BookingCanceledEvent{
		BookingID:       result.Booking.ID,
		EventID:         result.Booking.EventID,
		UserID:          result.Booking.UserID,
		RefundedTickets: result.RefundedTickets,
		Timestamp:       time.Now().UTC(),
	}); err != nil {
		slog.Error("Failed to publish booking.canceled", "booking_id", result.Booking.ID, "error", err)
	}

	slog.Info("Booking canceled",
		"booking_id", result.Booking.ID,
		"event_id", result.Booking.EventID,
		"refunded", result.RefundedTickets)

	return &models.CancelBookingResponse{
		BookingID:       result.Booking.ID,
		EventName:       result.EventName,
		RefundedTickets: result.RefundedTickets,
	}, nil
}

// ListForUser returns the actor's confirmed bookings, most recent first.
func (s *InventoryService) ListForUser(ctx context.Context, actor models.Actor) (*models.ListBookingsResponse, error) {
	bookings, err := s.bookings.ListConfirmedByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []models.BookingWithEvent{}
	}

	return &models.ListBookingsResponse{
		TotalBookings: len(bookings),
		Bookings:      bookings,
	}, nil
}

// GetBooking returns a single booking. Only the owner may read it.
func (s *InventoryService) GetBooking(ctx context.Context, actor models.Actor, bookingID string) (*models.BookingWithEvent, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperrors.ErrBookingNotFound
	}
	if booking.UserID != actor.ID {
		return nil, apperrors.ErrForbidden
	}
	return booking, nil
}

func reservationOutcome(err error) string {
	var inv *apperrors.InsufficientInventoryError
	switch {
	case errors.As(err, &inv):
		return "insufficient_inventory"
	case errors.Is(err, apperrors.ErrEventNotFound):
		return "event_not_found"
	case errors.Is(err, apperrors.ErrEventNotBookable):
		return "event_not_bookable"
	case errors.Is(err, apperrors.ErrInvalidQuantity):
		return "invalid_quantity"
	default:
		return "error"
	}
}

func cancellationOutcome(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrBookingNotFound):
		return "booking_not_found"
	case errors.Is(err, apperrors.ErrForbidden):
		return "forbidden"
	case errors.Is(err, apperrors.ErrAlreadyCanceled):
		return "already_canceled"
	default:
		return "error"
	}
}
