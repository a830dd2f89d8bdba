package service

import (
	"context"
	"log/slog"
	"time"

	"eventtix/internal/cache"
	apperrors "eventtix/internal/errors"
	"eventtix/internal/messaging"
	"eventtix/internal/metrics"
	"eventtix/internal/models"
	"eventtix/internal/repository"
	"eventtix/internal/search"

	"github.com/google/uuid"
)

// EventService owns the event lifecycle: creation, organizer edits, admin
// status transitions and deletion. Mutations publish event.upserted or
// event.deleted and invalidate the public list cache.
type EventService struct {
	events repository.EventRepository
	nats   *messaging.NATSClient
	cache  *cache.Client
	search *search.Client
}

func NewEventService(events repository.EventRepository, nats *messaging.NATSClient, cacheClient *cache.Client, searchClient *search.Client) *EventService {
	return &EventService{events: events, nats: nats, cache: cacheClient, search: searchClient}
}

// Create registers a new event. Only organizers may create events; new events
// start pending and invisible to the public catalog until approved.
func (s *EventService) Create(ctx context.Context, actor models.Actor, req models.CreateEventRequest) (*models.Event, error) {
	if actor.Role != models.RoleOrganizer {
		return nil, apperrors.ErrForbidden
	}
	if req.TotalTickets <= 0 {
		return nil, apperrors.ErrInvalidQuantity
	}

	event := &models.Event{
		ID:               uuid.New().String(),
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		Location:         req.Location,
		Image:            req.Image,
		Date:             req.Date,
		TicketPrice:      req.TicketPrice,
		TotalTickets:     req.TotalTickets,
		RemainingTickets: req.TotalTickets,
		Status:           models.EventStatusPending,
		OrganizerID:      actor.ID,
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	slog.Info("Event created", "event_id", event.ID, "organizer_id", actor.ID, "title", event.Title)
	s.publishUpserted(event)

	return event, nil
}

// Update applies a role-dependent edit. Organizers may change the schedule,
// venue and capacity of their own events; admins may change status only.
// Fields outside the caller's role are ignored, matching the update form
// each role sees.
func (s *EventService) Update(ctx context.Context, actor models.Actor, eventID string, req models.UpdateEventRequest) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperrors.ErrEventNotFound
	}

	switch actor.Role {
	case models.RoleOrganizer:
		if event.OrganizerID != actor.ID {
			return nil, apperrors.ErrForbidden
		}
		updated, err := s.events.UpdateDetails(ctx, eventID, models.EventUpdate{
			Date:         req.Date,
			Location:     req.Location,
			TotalTickets: req.TotalTickets,
		})
		if err != nil {
			return nil, err
		}
		s.invalidate(ctx)
		s.publishUpserted(updated)
		return updated, nil

	case models.RoleAdmin:
		if req.Status == nil {
			return nil, apperrors.ErrInvalidStatus
		}
		status := models.EventStatus(*req.Status)
		if !status.Valid() {
			return nil, apperrors.ErrInvalidStatus
		}
		updated, err := s.events.UpdateStatus(ctx, eventID, status)
		if err != nil {
			return nil, err
		}
		metrics.RecordStatusTransition(string(status))
		slog.Info("Event status changed", "event_id", eventID, "status", string(status))
		s.invalidate(ctx)
		s.publishUpserted(updated)
		return updated, nil

	default:
		return nil, apperrors.ErrForbidden
	}
}

// Delete removes an event. The owning organizer or an admin may delete; all
// confirmed bookings on the event are canceled in the same transaction.
func (s *EventService) Delete(ctx context.Context, actor models.Actor, eventID string) (*models.DeleteEventResponse, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperrors.ErrEventNotFound
	}
	if actor.Role != models.RoleAdmin && !(actor.Role == models.RoleOrganizer && event.OrganizerID == actor.ID) {
		return nil, apperrors.ErrForbidden
	}

	deleted, canceled, err := s.events.Delete(ctx, eventID)
	if err != nil {
		return nil, err
	}

	slog.Info("Event deleted", "event_id", eventID, "canceled_bookings", canceled)
	s.invalidate(ctx)

	if err := s.nats.Publish(models.SubjectEventDeleted, models.EventDeletedEvent{
		EventID:          deleted.ID,
		Title:            deleted.Title,
		CanceledBookings: canceled,
		Timestamp:        time.Now().UTC(),
	}); err != nil {
		slog.Error("Failed to publish event.deleted", "event_id", deleted.ID, "error", err)
	}

	return &models.DeleteEventResponse{EventID: deleted.ID, Title: deleted.Title}, nil
}

// ListApproved returns the public catalog page. When a search query is given
// and the search backend is configured, results come from the full-text index
// instead of the catalog.
func (s *EventService) ListApproved(ctx context.Context, query string, page, pageSize int) (*models.ListEventsResponse, error) {
	var (
		events []models.Event
		err    error
	)
	if query != "" && s.search != nil {
		events, err = s.search.Search(ctx, query, page, pageSize)
	} else {
		events, err = s.events.ListApproved(ctx, page, pageSize)
	}
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.Event{}
	}

	return &models.ListEventsResponse{TotalEvents: len(events), Events: events}, nil
}

// ListAll returns every event regardless of status. Admin only.
func (s *EventService) ListAll(ctx context.Context, actor models.Actor) (*models.ListEventsResponse, error) {
	if actor.Role != models.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}

	events, err := s.events.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.Event{}
	}

	return &models.ListEventsResponse{TotalEvents: len(events), Events: events}, nil
}

// ListByOrganizer returns the actor's own events. Organizer only.
func (s *EventService) ListByOrganizer(ctx context.Context, actor models.Actor) (*models.ListEventsResponse, error) {
	if actor.Role != models.RoleOrganizer {
		return nil, apperrors.ErrForbidden
	}

	events, err := s.events.ListByOrganizer(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.Event{}
	}

	return &models.ListEventsResponse{TotalEvents: len(events), Events: events}, nil
}

// Get returns a single event by ID.
func (s *EventService) Get(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperrors.ErrEventNotFound
	}
	return event, nil
}

// Analytics aggregates the booking ledger for one event. Visible to the
// owning organizer and admins.
func (s *EventService) Analytics(ctx context.Context, actor models.Actor, eventID string) (*models.EventAnalytics, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperrors.ErrEventNotFound
	}
	if actor.Role != models.RoleAdmin && event.OrganizerID != actor.ID {
		return nil, apperrors.ErrForbidden
	}

	return s.events.Analytics(ctx, eventID)
}

func (s *EventService) publishUpserted(event *models.Event) {
	if err := s.nats.Publish(models.SubjectEventUpserted, models.EventUpsertedEvent{
		Event:     *event,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		slog.Error("Failed to publish event.upserted", "event_id", event.ID, "error", err)
	}
}

func (s *EventService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateEventsList(ctx)
	}
}
