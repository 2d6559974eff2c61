package registrations

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carecircle/backend/internal/auth"
	"github.com/carecircle/backend/internal/caregivers"
	"github.com/carecircle/backend/internal/events"
	"github.com/carecircle/backend/internal/middleware"
	"github.com/carecircle/backend/internal/models"
	"github.com/carecircle/backend/pkg/response"
)

// RegisterRequest is the body for POST /events/:id/register.
// ParticipantID lets a caregiver register a participant they manage;
// everyone else registers themselves.
type RegisterRequest struct {
	ParticipantID string `json:"participant_id"`
	FullName      string `json:"full_name"` // first-time profile completion
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	repo          *Repository
	eventRepo     *events.Repository
	caregiverRepo *caregivers.Repository
	profileRepo   *auth.Repository
	logger        *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(repo *Repository, eventRepo *events.Repository, caregiverRepo *caregivers.Repository, profileRepo *auth.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, eventRepo: eventRepo, caregiverRepo: caregiverRepo, profileRepo: profileRepo, logger: logger}
}

// Register handles POST /events/:id/register.
func (h *Handler) Register(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.eventRepo.GetByID(c.Request.Context(), eventID)
	if err != nil || e == nil {
		response.NotFound(c, "event not found")
		return
	}
	if e.Status != models.EventActive {
		response.BadRequest(c, "event is not open for registration")
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	callerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	subjectID := callerID
	if req.ParticipantID != "" {
		participantID, err := uuid.Parse(req.ParticipantID)
		if err != nil {
			response.BadRequest(c, "invalid participant_id")
			return
		}
		role, _ := c.Get(middleware.ContextUserRole)
		if roleStr, _ := role.(string); !models.Role(roleStr).IsStaffOrAdmin() {
			linked, err := h.caregiverRepo.IsLinked(c.Request.Context(), callerID, participantID)
			if err != nil || !linked {
				response.Forbidden(c, "not a caregiver for this participant")
				return
			}
		}
		subjectID = participantID
	}

	// First-time registrants may supply their display name alongside.
	if req.FullName != "" {
		if err := h.profileRepo.SetFullName(c.Request.Context(), subjectID, req.FullName); err != nil {
			response.Internal(c, "failed to update profile name")
			return
		}
	}

	reg, err := h.repo.Create(c.Request.Context(), eventID, subjectID)
	if err != nil {
		h.logger.Error("create registration failed", zap.Error(err),
			zap.String("event_id", eventID.String()), zap.String("user_id", subjectID.String()))
		response.Internal(c, "failed to register")
		return
	}
	response.Created(c, reg)
}

// ListMine handles GET /registrations.
func (h *Handler) ListMine(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to list registrations")
		return
	}
	response.OK(c, list)
}

// EventRoster is the staff view at the event entrance: headline counts plus
// the per-attendee rows.
type EventRoster struct {
	Total     int             `json:"total"`
	Attended  int             `json:"attended"`
	Attendees []EventAttendee `json:"attendees"`
}

// ListByEvent handles GET /events/:id/registrations (staff/admin only).
func (h *Handler) ListByEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	list, err := h.repo.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to list registrations")
		return
	}
	total, attended, err := h.repo.CountByEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to count registrations")
		return
	}
	response.OK(c, EventRoster{Total: total, Attended: attended, Attendees: list})
}
