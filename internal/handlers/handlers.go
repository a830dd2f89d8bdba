package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventtix/internal/cache"
	apperrors "eventtix/internal/errors"
	"eventtix/internal/models"
	"eventtix/internal/service"

	"github.com/gin-gonic/gin"
)

// Handlers holds the HTTP layer. The cache client is optional and only used
// for the public events list.
type Handlers struct {
	services *service.Services
	cache    *cache.Client
}

func NewHandlers(services *service.Services, cacheClient *cache.Client) *Handlers {
	return &Handlers{services: services, cache: cacheClient}
}

func actorFrom(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get("actor")
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}

// respondError maps the domain taxonomy onto HTTP statuses. Unknown errors
// become opaque 500s.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound),
		errors.Is(err, apperrors.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case apperrors.IsDomain(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		slog.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
