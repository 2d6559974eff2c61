package caregivers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carecircle/backend/internal/middleware"
	"github.com/carecircle/backend/pkg/response"
)

// LinkRequest is the body for POST /caregivers/participants.
type LinkRequest struct {
	ParticipantID string `json:"participant_id" binding:"required,uuid"`
}

// Handler handles caregiver HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a caregivers handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// ListParticipants handles GET /caregivers/participants.
func (h *Handler) ListParticipants(c *gin.Context) {
	caregiverID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.ListParticipants(c.Request.Context(), caregiverID)
	if err != nil {
		response.Internal(c, "failed to list participants")
		return
	}
	response.OK(c, list)
}

// Link handles POST /caregivers/participants.
func (h *Handler) Link(c *gin.Context) {
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	caregiverID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	participantID, _ := uuid.Parse(req.ParticipantID)
	if err := h.repo.Link(c.Request.Context(), caregiverID, participantID); err != nil {
		response.Internal(c, "failed to link participant")
		return
	}
	response.Created(c, gin.H{"participant_id": participantID})
}

// Unlink handles DELETE /caregivers/participants/:id.
func (h *Handler) Unlink(c *gin.Context) {
	participantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid participant id")
		return
	}
	caregiverID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if err := h.repo.Unlink(c.Request.Context(), caregiverID, participantID); err != nil {
		response.Internal(c, "failed to unlink participant")
		return
	}
	response.NoContent(c)
}
