package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"eventtix/internal/cache"
	"eventtix/internal/config"
	"eventtix/internal/database"
	"eventtix/internal/handlers"
	"eventtix/internal/messaging"
	"eventtix/internal/metrics"
	"eventtix/internal/middleware"
	"eventtix/internal/repository"
	"eventtix/internal/search"
	"eventtix/internal/service"

	"github.com/gin-gonic/gin"
)

type Server struct {
	router *gin.Engine
	config *config.Config
	db     *database.DB
	nats   *messaging.NATSClient
	cache  *cache.Client
}

// NewServer wires the full API: database with migrations, messaging, the
// optional cache and search backends, repositories, services and routes.
func NewServer(cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
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
			slog.Error("Redis unavailable, continuing without cache", "error", err)
			cacheClient = nil
		}
	}

	var searchClient *search.Client
	if cfg.Elasticsearch.Enabled() {
		searchClient, err = search.NewClient(cfg.Elasticsearch)
		if err != nil {
			slog.Error("Elasticsearch unavailable, continuing without search", "error", err)
			searchClient = nil
		}
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, nats, cacheClient, searchClient)
	h := handlers.NewHandlers(services, cacheClient)

	server := &Server{
		router: gin.New(),
		config: cfg,
		db:     db,
		nats:   nats,
		cache:  cacheClient,
	}
	server.setupRoutes(h)

	return server, nil
}

func (s *Server) setupRoutes(h *handlers.Handlers) {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS())
	s.router.Use(metrics.Middleware())

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", metrics.Handler())

	v1 := s.router.Group("/api/v1")

	events := v1.Group("/events")
	{
		events.GET("", h.ListEvents)
		events.GET("/:id", h.GetEvent)
	}

	auth := v1.Group("")
	auth.Use(middleware.Auth(s.config.JWTSecret))
	{
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
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	dbHealth := s.db.HealthCheck(c.Request.Context())

	status := http.StatusOK
	if dbHealth.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   dbHealth.Status,
		"database": dbHealth,
	})
}

func (s *Server) Run() error {
	addr := ":" + s.config.Port
	slog.Info("Starting API server", "addr", addr)
	return s.router.Run(addr)
}

// GetRouter exposes the engine for tests and for custom http.Server setups.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup releases all held connections.
func (s *Server) Cleanup() {
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			slog.Error("Failed to close Redis client", "error", err)
		}
	}
	if err := s.nats.Close(); err != nil {
		slog.Error("Failed to close NATS connection", "error", err)
	}
	if err := s.db.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}
