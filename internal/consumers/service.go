package consumers

import (
	"fmt"
	"log/slog"

	"eventtix/internal/cache"
	"eventtix/internal/config"
	"eventtix/internal/database"
	"eventtix/internal/messaging"
	"eventtix/internal/models"
	"eventtix/internal/repository"
	"eventtix/internal/search"

	"github.com/nats-io/stan.go"
)

const queueGroup = "workers"

// Service is the background worker. It keeps the search index and the list
// cache in sync with the catalog and sends booking notifications.
type Service struct {
	nats   *messaging.NATSClient
	users  repository.UserRepository
	cache  *cache.Client
	search *search.Client

	db   *database.DB
	subs []stan.Subscription
}

func NewService(cfg *config.Config) (*Service, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	nats, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("messaging: %w", err)
	}

	var cacheClient *cache.Client
	if cfg.Redis.Addr != "" {
		cacheClient, err = cache.New(cfg.Redis)
		if err != nil {
			slog.Error("Redis unavailable, cache invalidation disabled", "error", err)
			cacheClient = nil
		}
	}

	var searchClient *search.Client
	if cfg.Elasticsearch.Enabled() {
		searchClient, err = search.NewClient(cfg.Elasticsearch)
		if err != nil {
			slog.Error("Elasticsearch unavailable, indexing disabled", "error", err)
			searchClient = nil
		}
	}

	return &Service{
		nats:   nats,
		users:  repository.NewUserRepository(db),
		cache:  cacheClient,
		search: searchClient,
		db:     db,
	}, nil
}

// Start subscribes to all domain event subjects.
func (s *Service) Start() error {
	subjects := map[string]stan.MsgHandler{
		models.SubjectEventUpserted:   s.handleEventUpserted,
		models.SubjectEventDeleted:    s.handleEventDeleted,
		models.SubjectBookingReserved: s.handleBookingReserved,
		models.SubjectBookingCanceled: s.handleBookingCanceled,
	}

	for subject, handler := range subjects {
		sub, err := s.nats.SubscribeQueue(subject, queueGroup, handler)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		s.subs = append(s.subs, sub)
	}

	slog.Info("Consumer worker started", "subjects", len(subjects))
	return nil
}

func (s *Service) Stop() {
	for _, sub := range s.subs {
		if err := sub.Close(); err != nil {
			slog.Error("Failed to close subscription", "error", err)
		}
	}
	if s.cache != nil {
		s.cache.Close()
	}
	s.nats.Close()
	s.db.Close()
}
