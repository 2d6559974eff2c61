package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carecircle/backend/internal/middleware"
	"github.com/carecircle/backend/internal/models"
	"github.com/carecircle/backend/pkg/response"
)

// CreateRequest is the body for POST /events and each item of POST /events/bulk.
type CreateRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	StartTime    string `json:"start_time" binding:"required"`
	EndTime      string `json:"end_time" binding:"required"`
	Capacity     int    `json:"capacity"`
	IsAccessible *bool  `json:"is_accessible"`
}

// BulkCreateRequest is the body for POST /events/bulk.
type BulkCreateRequest struct {
	Events []CreateRequest `json:"events" binding:"required,min=1"`
}

// UpdateRequest is the body for PATCH /events/:id. All fields are optional;
// absent fields keep their current value.
type UpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Capacity    *int    `json:"capacity"`
}

// buildEvent turns a create request into an event, applying defaults.
func buildEvent(req CreateRequest, createdBy uuid.UUID) (*models.Event, error) {
	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, errors.New("invalid start_time")
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, errors.New("invalid end_time")
	}
	if !endTime.After(startTime) {
		return nil, errors.New("end_time must be after start_time")
	}

	location := req.Location
	if location == "" {
		location = "TBD"
	}
	capacity := req.Capacity
	if capacity <= 0 {
		capacity = 20
	}
	accessible := true
	if req.IsAccessible != nil {
		accessible = *req.IsAccessible
	}

	return &models.Event{
		Title:        req.Title,
		Description:  req.Description,
		Location:     location,
		StartTime:    startTime,
		EndTime:      endTime,
		Capacity:     capacity,
		IsAccessible: accessible,
		CreatedBy:    &createdBy,
	}, nil
}

// Handler handles event HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates an events handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Create handles POST /events (staff/admin only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	e, err := buildEvent(req, userID)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.repo.Create(c.Request.Context(), e); err != nil {
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, e)
}

// BulkCreate handles POST /events/bulk (staff/admin only). Items matching an
// existing event on title and start time refresh that event instead of
// duplicating it, so re-importing a schedule is safe.
func (h *Handler) BulkCreate(c *gin.Context) {
	var req BulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list := make([]*models.Event, 0, len(req.Events))
	for i, item := range req.Events {
		e, err := buildEvent(item, userID)
		if err != nil {
			response.BadRequest(c, fmt.Sprintf("event %d: %s", i, err.Error()))
			return
		}
		list = append(list, e)
	}

	for _, e := range list {
		if err := h.repo.Upsert(c.Request.Context(), e); err != nil {
			response.Internal(c, "failed to import events")
			return
		}
	}
	response.Created(c, gin.H{"imported": len(list), "events": list})
}

// ListActive handles GET /events. Participants see only active events.
func (h *Handler) ListActive(c *gin.Context) {
	list, err := h.repo.ListActive(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// List handles GET /events/all (staff/admin only).
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /events/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil || e == nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, e)
}

// Update handles PATCH /events/:id (staff/admin only).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var startTime, endTime *time.Time
	if req.StartTime != nil {
		t, err := time.Parse(time.RFC3339, *req.StartTime)
		if err != nil {
			response.BadRequest(c, "invalid start_time")
			return
		}
		startTime = &t
	}
	if req.EndTime != nil {
		t, err := time.Parse(time.RFC3339, *req.EndTime)
		if err != nil {
			response.BadRequest(c, "invalid end_time")
			return
		}
		endTime = &t
	}

	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil || e == nil {
		response.NotFound(c, "event not found")
		return
	}

	if err := h.repo.Update(c.Request.Context(), id, req.Title, req.Description, req.Location, startTime, endTime, req.Capacity); err != nil {
		response.Internal(c, "failed to update event")
		return
	}
	updated, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load event")
		return
	}
	response.OK(c, updated)
}

// Archive handles DELETE /events/:id (staff/admin only). Events are
// archived, not removed; registrations and attendance history stay intact.
func (h *Handler) Archive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.repo.Archive(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to archive event")
		return
	}
	response.NoContent(c)
}
