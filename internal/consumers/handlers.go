package consumers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"eventtix/internal/models"

	"github.com/nats-io/stan.go"
)

const handlerTimeout = 25 * time.Second

// handleEventUpserted reindexes the event and drops the cached public list.
// Approved events go into the search index; anything else comes out, so the
// index only ever serves bookable events.
func (s *Service) handleEventUpserted(m *stan.Msg) {
	var payload models.EventUpsertedEvent
	if err := json.Unmarshal(m.Data, &payload); err != nil {
		slog.Error("Failed to decode event.upserted", "error", err)
		m.Ack()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if s.search != nil {
		event := payload.Event
		var err error
		if event.Status == models.EventStatusApproved {
			err = s.search.IndexEvent(ctx, &event)
		} else {
			err = s.search.DeleteEvent(ctx, event.ID)
		}
		if err != nil {
			slog.Error("Failed to sync search index", "event_id", event.ID, "error", err)
			// Leave unacked so the message is redelivered
			return
		}
	}

	if s.cache != nil {
		s.cache.InvalidateEventsList(ctx)
	}

	slog.Info("Event synced", "event_id", payload.Event.ID, "status", string(payload.Event.Status))
	m.Ack()
}

// handleEventDeleted removes the event from the index and drops the cache.
func (s *Service) handleEventDeleted(m *stan.Msg) {
	var payload models.EventDeletedEvent
	if err := json.Unmarshal(m.Data, &payload); err != nil {
		slog.Error("Failed to decode event.deleted", "error", err)
		m.Ack()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if s.search != nil {
		if err := s.search.DeleteEvent(ctx, payload.EventID); err != nil {
			slog.Error("Failed to remove event from search index", "event_id", payload.EventID, "error", err)
			return
		}
	}

	if s.cache != nil {
		s.cache.InvalidateEventsList(ctx)
	}

	slog.Info("Event removed",
		"event_id", payload.EventID,
		"canceled_bookings", payload.CanceledBookings)
	m.Ack()
}

// handleBookingReserved sends the booking confirmation notification.
func (s *Service) handleBookingReserved(m *stan.Msg) {
	var payload models.BookingReservedEvent
	if err := json.Unmarshal(m.Data, &payload); err != nil {
		slog.Error("Failed to decode booking.reserved", "error", err)
		m.Ack()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	s.notify(ctx, payload.UserID, "booking_confirmed",
		"booking_id", payload.BookingID,
		"event_id", payload.EventID,
		"tickets", payload.Tickets,
		"total_price", payload.TotalPrice)

	m.Ack()
}

// handleBookingCanceled sends the cancellation notification.
func (s *Service) handleBookingCanceled(m *stan.Msg) {
	var payload models.BookingCanceledEvent
	if err := json.Unmarshal(m.Data, &payload); err != nil {
		slog.Error("Failed to decode booking.canceled", "error", err)
		m.Ack()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	s.notify(ctx, payload.UserID, "booking_canceled",
		"booking_id", payload.BookingID,
		"event_id", payload.EventID,
		"refunded_tickets", payload.RefundedTickets)

	m.Ack()
}

// notify resolves the user and emits the notification. Delivery is a log line
// for now; the mail sender hangs off this call.
func (s *Service) notify(ctx context.Context, userID, kind string, fields ...any) {
	email := ""
	if user, err := s.users.GetByID(ctx, userID); err != nil {
		slog.Error("Failed to resolve user for notification", "user_id", userID, "error", err)
	} else if user != nil {
		email = user.Email
	}

	args := append([]any{"user_id", userID, "email", email}, fields...)
	slog.Info("Notification: "+kind, args...)
}
