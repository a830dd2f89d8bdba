package repository

import (
	"context"

	"eventtix/internal/database"
	"eventtix/internal/models"
)

// EventRepository is the event catalog store. All capacity mutations happen
// inside transactions that lock the event row, so they serialize with the
// booking ledger's reserve/cancel paths.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	ListApproved(ctx context.Context, page, pageSize int) ([]models.Event, error)
	ListAll(ctx context.Context) ([]models.Event, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]models.Event, error)
	UpdateDetails(ctx context.Context, id string, upd models.EventUpdate) (*models.Event, error)
	UpdateStatus(ctx context.Context, id string, status models.EventStatus) (*models.Event, error)
	Delete(ctx context.Context, id string) (*models.Event, int64, error)
	Analytics(ctx context.Context, id string) (*models.EventAnalytics, error)
}

// BookingRepository is the booking ledger. Reserve and Cancel are the only
// paths that move tickets between an event's remaining pool and its bookings,
// and both run as single transactions over the event row.
type BookingRepository interface {
	Reserve(ctx context.Context, eventID, userID string, tickets int) (*models.Booking, *models.Event, error)
	Cancel(ctx context.Context, bookingID, userID string) (*models.CancellationResult, error)
	GetByID(ctx context.Context, id string) (*models.BookingWithEvent, error)
	ListConfirmedByUser(ctx context.Context, userID string) ([]models.BookingWithEvent, error)
}

// UserRepository resolves user records for notifications.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type Repositories struct {
	Events   EventRepository
	Bookings BookingRepository
	Users    UserRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Events:   NewEventRepository(db),
		Bookings: NewBookingRepository(db),
		Users:    NewUserRepository(db),
	}
}
