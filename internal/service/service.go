package service

import (
	"eventtix/internal/cache"
	"eventtix/internal/messaging"
	"eventtix/internal/repository"
	"eventtix/internal/search"
)

// Services bundles the business logic layer. The cache and search clients are
// optional; a nil client disables the corresponding feature.
type Services struct {
	Inventory *InventoryService
	Events    *EventService
}

func NewServices(repos *repository.Repositories, nats *messaging.NATSClient, cacheClient *cache.Client, searchClient *search.Client) *Services {
	return &Services{
		Inventory: NewInventoryService(repos.Bookings, nats),
		Events:    NewEventService(repos.Events, nats, cacheClient, searchClient),
	}
}
