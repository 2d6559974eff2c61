package ticket

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carecircle/backend/internal/caregivers"
	"github.com/carecircle/backend/internal/middleware"
	"github.com/carecircle/backend/internal/models"
	"github.com/carecircle/backend/internal/registrations"
	"github.com/carecircle/backend/pkg/response"
)

// IssueRequest is the body for POST /qr/issue.
type IssueRequest struct {
	RegistrationID string `json:"registration_id" binding:"required,uuid"`
}

// VerifyRequest is the body for POST /qr/verify.
type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
	Notes string `json:"notes"`
}

// Handler handles QR ticket HTTP endpoints.
type Handler struct {
	service       *Service
	regRepo       *registrations.Repository
	caregiverRepo *caregivers.Repository
	logger        *zap.Logger
}

// NewHandler creates a ticket handler.
func NewHandler(service *Service, regRepo *registrations.Repository, caregiverRepo *caregivers.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, regRepo: regRepo, caregiverRepo: caregiverRepo, logger: logger}
}

// Issue handles POST /qr/issue. The caller must own the registration, be a
// caregiver managing its subject, or hold a staff/admin role. The QR image
// embeds the one-time secret; the raw secret is not echoed separately.
func (h *Handler) Issue(c *gin.Context) {
	var req IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "registration_id is required")
		return
	}
	registrationID, _ := uuid.Parse(req.RegistrationID)

	reg, err := h.regRepo.GetByID(c.Request.Context(), registrationID)
	if err != nil {
		response.Internal(c, "failed to load registration")
		return
	}
	if reg == nil {
		response.NotFound(c, "registration not found")
		return
	}

	callerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	roleVal, _ := c.Get(middleware.ContextUserRole)
	roleStr, _ := roleVal.(string)
	if !h.mayIssue(c, callerID, models.Role(roleStr), reg.UserID) {
		response.Forbidden(c, "not allowed to issue a ticket for this registration")
		return
	}

	issued, err := h.service.Issue(c.Request.Context(), registrationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "registration not found")
			return
		}
		h.logger.Error("ticket issuance failed", zap.Error(err), zap.String("registration_id", registrationID.String()))
		response.Internal(c, "failed to issue QR code")
		return
	}

	response.OK(c, gin.H{
		"registration_id": registrationID,
		"qr_code":         DataURL(issued.PNG),
	})
}

func (h *Handler) mayIssue(c *gin.Context, callerID uuid.UUID, role models.Role, subjectID uuid.UUID) bool {
	if callerID == subjectID || role.IsStaffOrAdmin() {
		return true
	}
	if role == models.RoleCaregiver {
		linked, err := h.caregiverRepo.IsLinked(c.Request.Context(), callerID, subjectID)
		return err == nil && linked
	}
	return false
}

// Verify handles POST /qr/verify (staff/admin only). The three outcomes map
// to distinct statuses so scanning staff can tell "already checked in"
// (benign) from "bad code".
func (h *Handler) Verify(c *gin.Context) {
	// Route middleware already gates on role; re-check here so the
	// contract does not depend on wiring alone.
	roleVal, _ := c.Get(middleware.ContextUserRole)
	roleStr, _ := roleVal.(string)
	if !models.Role(roleStr).IsStaffOrAdmin() {
		response.Forbidden(c, "only staff can verify attendance")
		return
	}

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "token is required")
		return
	}

	staffID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	result, err := h.service.Verify(c.Request.Context(), req.Token, &staffID, req.Notes)
	if err != nil {
		h.logger.Error("verification failed", zap.Error(err))
		response.Internal(c, "failed to verify ticket")
		return
	}

	switch result.Status {
	case StatusOK:
		response.OK(c, gin.H{
			"verified":        true,
			"registration_id": result.RegistrationID,
			"attendee_name":   result.AttendeeName,
			"attendee_role":   result.AttendeeRole,
		})
	case StatusAlreadyCheckedIn:
		response.Conflict(c, "this attendee has already checked in")
	default:
		response.Unauthorized(c, "invalid QR code")
	}
}
