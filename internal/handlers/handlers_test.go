package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	apperrors "eventtix/internal/errors"
	"eventtix/internal/messaging"
	"eventtix/internal/models"
	"eventtix/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore backs both repositories with a single lock, mirroring the
// serialization the SQL layer provides.
type fakeStore struct {
	mu       sync.Mutex
	events   map[string]*models.Event
	bookings map[string]*models.Booking
}

func newFakeStore(events ...*models.Event) *fakeStore {
	s := &fakeStore{
		events:   make(map[string]*models.Event),
		bookings: make(map[string]*models.Booking),
	}
	for _, e := range events {
		s.events[e.ID] = e
	}
	return s
}

func (s *fakeStore) Reserve(_ context.Context, eventID, userID string, tickets int) (*models.Booking, *models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return nil, nil, apperrors.ErrEventNotFound
	}
	if event.Status != models.EventStatusApproved {
		return nil, nil, apperrors.ErrEventNotBookable
	}
	if tickets > event.RemainingTickets {
		return nil, nil, &apperrors.InsufficientInventoryError{Remaining: event.RemainingTickets}
	}

	event.RemainingTickets -= tickets
	booking := &models.Booking{
		ID:            uuid.New().String(),
		UserID:        userID,
		EventID:       eventID,
		TicketsBooked: tickets,
		TotalPrice:    float64(tickets) * event.TicketPrice,
		Status:        models.BookingStatusConfirmed,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	s.bookings[booking.ID] = booking

	eventCopy := *event
	return booking, &eventCopy, nil
}

func (s *fakeStore) Cancel(_ context.Context, bookingID, userID string) (*models.CancellationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[bookingID]
	if !ok {
		return nil, apperrors.ErrBookingNotFound
	}
	if booking.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	if booking.Status == models.BookingStatusCanceled {
		return nil, apperrors.ErrAlreadyCanceled
	}

	wasConfirmed := booking.Status == models.BookingStatusConfirmed
	booking.Status = models.BookingStatusCanceled

	refunded := 0
	eventName := ""
	if event, ok := s.events[booking.EventID]; ok {
		eventName = event.Title
		if wasConfirmed {
			event.RemainingTickets += booking.TicketsBooked
			refunded = booking.TicketsBooked
		}
	}

	return &models.CancellationResult{
		Booking:         *booking,
		EventName:       eventName,
		RefundedTickets: refunded,
	}, nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*models.BookingWithEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[id]
	if !ok {
		return nil, nil
	}
	out := &models.BookingWithEvent{Booking: *booking}
	if event, ok := s.events[booking.EventID]; ok {
		out.Event = models.EventProjection{Name: event.Title, Date: event.Date, Venue: event.Location}
	}
	return out, nil
}

func (s *fakeStore) ListConfirmedByUser(_ context.Context, userID string) ([]models.BookingWithEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.BookingWithEvent
	for _, booking := range s.bookings {
		if booking.UserID != userID || booking.Status != models.BookingStatusConfirmed {
			continue
		}
		bwe := models.BookingWithEvent{Booking: *booking}
		if event, ok := s.events[booking.EventID]; ok {
			bwe.Event = models.EventProjection{Name: event.Title, Date: event.Date, Venue: event.Location}
		}
		out = append(out, bwe)
	}
	return out, nil
}

// Event repository methods over the same store.

func (s *fakeStore) Create(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()
	s.events[event.ID] = event
	return nil
}

func (s *fakeStore) GetEventByID(_ context.Context, id string) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return nil, nil
	}
	eventCopy := *event
	return &eventCopy, nil
}

func (s *fakeStore) ListApproved(_ context.Context, _, _ int) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Event
	for _, event := range s.events {
		if event.Status == models.EventStatusApproved {
			out = append(out, *event)
		}
	}
	return out, nil
}

func (s *fakeStore) ListAll(_ context.Context) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Event
	for _, event := range s.events {
		out = append(out, *event)
	}
	return out, nil
}

func (s *fakeStore) ListByOrganizer(_ context.Context, organizerID string) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Event
	for _, event := range s.events {
		if event.OrganizerID == organizerID {
			out = append(out, *event)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateDetails(_ context.Context, id string, upd models.EventUpdate) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
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
	eventCopy := *event
	return &eventCopy, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, id string, status models.EventStatus) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	event.Status = status
	eventCopy := *event
	return &eventCopy, nil
}

func (s *fakeStore) Delete(_ context.Context, id string) (*models.Event, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return nil, 0, apperrors.ErrEventNotFound
	}
	var canceled int64
	for _, booking := range s.bookings {
		if booking.EventID == id && booking.Status == models.BookingStatusConfirmed {
			booking.Status = models.BookingStatusCanceled
			canceled++
		}
	}
	delete(s.events, id)
	return event, canceled, nil
}

func (s *fakeStore) Analytics(_ context.Context, id string) (*models.EventAnalytics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	analytics := &models.EventAnalytics{
		EventID:          id,
		TotalTickets:     event.TotalTickets,
		RemainingTickets: event.RemainingTickets,
	}
	for _, booking := range s.bookings {
		if booking.EventID == id && booking.Status == models.BookingStatusConfirmed {
			analytics.TicketsBooked += booking.TicketsBooked
			analytics.ConfirmedBookings++
			analytics.Revenue += booking.TotalPrice
		}
	}
	return analytics, nil
}

// eventRepoAdapter renames GetEventByID to satisfy the repository interface
// alongside the booking-side GetByID on the same store.
type eventRepoAdapter struct{ *fakeStore }

func (a eventRepoAdapter) GetByID(ctx context.Context, id string) (*models.Event, error) {
	return a.GetEventByID(ctx, id)
}

func testActor(actor models.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("actor", actor)
		c.Next()
	}
}

func setupRouter(store *fakeStore, actor models.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)

	nats := messaging.NewDisabledClient()
	services := &service.Services{
		Inventory: service.NewInventoryService(store, nats),
		Events:    service.NewEventService(eventRepoAdapter{store}, nats, nil, nil),
	}
	h := NewHandlers(services, nil)

	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.GET("/events", h.ListEvents)
	v1.GET("/events/:id", h.GetEvent)

	auth := v1.Group("")
	auth.Use(testActor(actor))
	auth.GET("/events/all", h.ListAllEvents)
	auth.GET("/events/organizer", h.ListOrganizerEvents)
	auth.GET("/events/:id/analytics", h.GetEventAnalytics)
	auth.POST("/events", h.CreateEvent)
	auth.PUT("/events/:id", h.UpdateEvent)
	auth.DELETE("/events/:id", h.DeleteEvent)
	auth.POST("/bookings", h.CreateBooking)
	auth.GET("/bookings", h.ListBookings)
	auth.GET("/bookings/:id", h.GetBooking)
	auth.DELETE("/bookings/:id", h.CancelBooking)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seededEvent() *models.Event {
	return &models.Event{
		ID:               "event-1",
		Title:            "Go Conference",
		Location:         "Astana Arena",
		Date:             time.Date(2026, 11, 20, 18, 0, 0, 0, time.UTC),
		TicketPrice:      20,
		TotalTickets:     10,
		RemainingTickets: 10,
		Status:           models.EventStatusApproved,
		OrganizerID:      "org-1",
	}
}

func TestCreateBookingEndpoint(t *testing.T) {
	store := newFakeStore(seededEvent())
	r := setupRouter(store, models.Actor{ID: "user-1", Role: models.RoleUser})

	w := doJSON(t, r, http.MethodPost, "/api/v1/bookings",
		gin.H{"eventId": "event-1", "ticketsBooked": 6})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Booking     models.Booking `json:"booking"`
		EventName   string         `json:"eventName"`
		TotalAmount float64        `json:"totalAmount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Go Conference", resp.EventName)
	assert.Equal(t, 120.0, resp.TotalAmount)
	assert.Equal(t, "user-1", resp.Booking.UserID)
	assert.Equal(t, 6, resp.Booking.TicketsBooked)
}

func TestCreateBookingValidation(t *testing.T) {
	store := newFakeStore(seededEvent())
	r := setupRouter(store, models.Actor{ID: "user-1", Role: models.RoleUser})

	// Missing eventId fails binding
	w := doJSON(t, r, http.MethodPost, "/api/v1/bookings", gin.H{"ticketsBooked": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing ticketsBooked fails quantity validation
	w = doJSON(t, r, http.MethodPost, "/api/v1/bookings", gin.H{"eventId": "event-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "positive integer")

	w = doJSON(t, r, http.MethodPost, "/api/v1/bookings",
		gin.H{"eventId": "event-1", "ticketsBooked": -2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBookingErrorStatuses(t *testing.T) {
	pending := seededEvent()
	pending.ID = "event-2"
	pending.Status = models.EventStatusPending

	store := newFakeStore(seededEvent(), pending)
	r := setupRouter(store, models.Actor{ID: "user-1", Role: models.RoleUser})

	w := doJSON(t, r, http.MethodPost, "/api/v1/bookings",
		gin.H{"eventId": "missing", "ticketsBooked": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/bookings",
		gin.H{"eventId": "event-2", "ticketsBooked": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not available for booking")

	w = doJSON(t, r, http.MethodPost, "/api/v1/bookings",
		gin.H{"eventId": "event-1", "ticketsBooked": 11})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "only 10 tickets are available")
}

func TestCancelBookingEndpoint(t *testing.T) {
	store := newFakeStore(seededEvent())
	r := setupRouter(store, models.Actor{ID: "user-1", Role: models.RoleUser})

	w := doJSON(t, r, http.MethodPost, "/api/v1/bookings",
		gin.H{"eventId": "event-1", "ticketsBooked": 3})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Booking models.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, r, http.MethodDelete, "/api/v1/bookings/"+created.Booking.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.CancelBookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.Booking.ID, resp.BookingID)
	assert.Equal(t, "Go Conference", resp.EventName)
	assert.Equal(t, 3, resp.RefundedTickets)

	// Cancel again
	w = doJSON(t, r, http.MethodDelete, "/api/v1/bookings/"+created.Booking.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already been canceled")

	// Unknown ID
	w = doJSON(t, r, http.MethodDelete, "/api/v1/bookings/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelBookingWrongOwner(t *testing.T) {
	store := newFakeStore(seededEvent())
	owner := setupRouter(store, models.Actor{ID: "user-1", Role: models.RoleUser})
	stranger := setupRouter(store, models.Actor{ID: "user-2", Role: models.RoleUser})

	w := doJSON(t, owner, http.MethodPost, "/api/v1/bookings",
		gin.H{"eventId": "event-1", "ticketsBooked": 2})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Booking models.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, stranger, http.MethodDelete, "/api/v1/bookings/"+created.Booking.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListBookingsEndpoint(t *testing.T) {
	store := newFakeStore(seededEvent())
	r := setupRouter(store, models.Actor{ID: "user-1", Role: models.RoleUser})

	w := doJSON(t, r, http.MethodGet, "/api/v1/bookings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var empty models.ListBookingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &empty))
	assert.Equal(t, 0, empty.TotalBookings)

	w = doJSON(t, r, http.MethodPost, "/api/v1/bookings",
		gin.H{"eventId": "event-1", "ticketsBooked": 2})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/bookings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ListBookingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.TotalBookings)
	assert.Equal(t, "Go Conference", resp.Bookings[0].Event.Name)
	assert.Equal(t, "Astana Arena", resp.Bookings[0].Event.Venue)
}

func TestEventEndpoints(t *testing.T) {
	store := newFakeStore(seededEvent())
	organizer := setupRouter(store, models.Actor{ID: "org-1", Role: models.RoleOrganizer})
	admin := setupRouter(store, models.Actor{ID: "admin-1", Role: models.RoleAdmin})
	user := setupRouter(store, models.Actor{ID: "user-1", Role: models.RoleUser})

	// Public catalog
	w := doJSON(t, user, http.MethodGet, "/api/v1/events", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing models.ListEventsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Equal(t, 1, listing.TotalEvents)

	w = doJSON(t, user, http.MethodGet, "/api/v1/events/event-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, user, http.MethodGet, "/api/v1/events/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Creation is organizer-only
	createBody := gin.H{
		"title":        "New Event",
		"date":         "2026-12-01T19:00:00Z",
		"ticketPrice":  15,
		"totalTickets": 50,
	}
	w = doJSON(t, user, http.MethodPost, "/api/v1/events", createBody)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, organizer, http.MethodPost, "/api/v1/events", createBody)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.EventStatusPending, created.Status)
	assert.Equal(t, 50, created.RemainingTickets)

	// Admin approves it
	w = doJSON(t, admin, http.MethodPut, "/api/v1/events/"+created.ID, gin.H{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, admin, http.MethodPut, "/api/v1/events/"+created.ID, gin.H{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Organizer grows capacity, cannot shrink it
	w = doJSON(t, organizer, http.MethodPut, "/api/v1/events/"+created.ID, gin.H{"totalTickets": 60})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, 60, updated.TotalTickets)
	assert.Equal(t, 60, updated.RemainingTickets)

	w = doJSON(t, organizer, http.MethodPut, "/api/v1/events/"+created.ID, gin.H{"totalTickets": 40})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot reduce total tickets")

	// Admin list and organizer list are role-gated
	w = doJSON(t, user, http.MethodGet, "/api/v1/events/all", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(t, admin, http.MethodGet, "/api/v1/events/all", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, organizer, http.MethodGet, "/api/v1/events/organizer", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Analytics is owner-or-admin
	w = doJSON(t, user, http.MethodGet, "/api/v1/events/event-1/analytics", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(t, admin, http.MethodGet, "/api/v1/events/event-1/analytics", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Deletion
	w = doJSON(t, user, http.MethodDelete, "/api/v1/events/"+created.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(t, organizer, http.MethodDelete, "/api/v1/events/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var deleted models.DeleteEventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deleted))
	assert.Equal(t, created.ID, deleted.EventID)
	assert.Equal(t, "New Event", deleted.Title)
}

func TestDeleteEventCancelsBookings(t *testing.T) {
	store := newFakeStore(seededEvent())
	user := setupRouter(store, models.Actor{ID: "user-1", Role: models.RoleUser})
	organizer := setupRouter(store, models.Actor{ID: "org-1", Role: models.RoleOrganizer})

	w := doJSON(t, user, http.MethodPost, "/api/v1/bookings",
		gin.H{"eventId": "event-1", "ticketsBooked": 4})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, organizer, http.MethodDelete, "/api/v1/events/event-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The booking survives as history but is no longer confirmed
	w = doJSON(t, user, http.MethodGet, "/api/v1/bookings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ListBookingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.TotalBookings)
}
