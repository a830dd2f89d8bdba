package handlers

import (
	"net/http"
	"strconv"

	"eventtix/internal/models"

	"github.com/gin-gonic/gin"
)

// ListEvents handles GET /api/v1/events. Plain list pages are served from the
// cache when possible; search queries always go to the backend.
func (h *Handlers) ListEvents(c *gin.Context) {
	query := c.Query("query")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "0"))

	cacheable := query == "" && h.cache != nil
	if cacheable {
		if raw, err := h.cache.GetEventsListRaw(c.Request.Context(), page, pageSize); err == nil {
			c.Data(http.StatusOK, "application/json", raw)
			return
		}
	}

	resp, err := h.services.Events.ListApproved(c.Request.Context(), query, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	if cacheable {
		h.cache.SetEventsList(c.Request.Context(), page, pageSize, resp)
	}

	c.JSON(http.StatusOK, resp)
}

// ListAllEvents handles GET /api/v1/events/all.
func (h *Handlers) ListAllEvents(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return
	}

	resp, err := h.services.Events.ListAll(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListOrganizerEvents handles GET /api/v1/events/organizer.
func (h *Handlers) ListOrganizerEvents(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return
	}

	resp, err := h.services.Events.ListByOrganizer(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetEvent handles GET /api/v1/events/:id.
func (h *Handlers) GetEvent(c *gin.Context) {
	event, err := h.services.Events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// GetEventAnalytics handles GET /api/v1/events/:id/analytics.
func (h *Handlers) GetEventAnalytics(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return
	}

	analytics, err := h.services.Events.Analytics(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// CreateEvent handles POST /api/v1/events.
func (h *Handlers) CreateEvent(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return
	}

	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.services.Events.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// UpdateEvent handles PUT /api/v1/events/:id.
func (h *Handlers) UpdateEvent(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return
	}

	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.services.Events.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// DeleteEvent handles DELETE /api/v1/events/:id.
func (h *Handlers) DeleteEvent(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return
	}

	resp, err := h.services.Events.Delete(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
