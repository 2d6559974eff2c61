package analytics

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/carecircle/backend/internal/models"
	"github.com/carecircle/backend/pkg/response"
)

// Handler handles analytics HTTP endpoints (staff/admin only, enforced by
// route middleware).
type Handler struct {
	repo *Repository
}

// NewHandler creates an analytics handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// AttendanceSummary is the aggregate across the requested events.
type AttendanceSummary struct {
	TotalEvents        int     `json:"total_events"`
	TotalRegistrations int     `json:"total_registrations"`
	TotalAttended      int     `json:"total_attended"`
	AvgAttendanceRate  float64 `json:"avg_attendance_rate"`
}

// Attendance handles GET /analytics/attendance?start=...&end=...
func (h *Handler) Attendance(c *gin.Context) {
	var start, end *time.Time
	if s := c.Query("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			response.BadRequest(c, "invalid start")
			return
		}
		start = &t
	}
	if s := c.Query("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			response.BadRequest(c, "invalid end")
			return
		}
		end = &t
	}

	events, err := h.repo.AttendanceByEvent(c.Request.Context(), start, end)
	if err != nil {
		response.Internal(c, "failed to fetch attendance metrics")
		return
	}

	summary := AttendanceSummary{TotalEvents: len(events)}
	for _, e := range events {
		summary.TotalRegistrations += e.TotalRegistrations
		summary.TotalAttended += e.TotalAttended
	}
	if summary.TotalRegistrations > 0 {
		rate := float64(summary.TotalAttended) / float64(summary.TotalRegistrations) * 100
		summary.AvgAttendanceRate = math.Round(rate*100) / 100
	}

	response.OK(c, gin.H{"events": events, "summary": summary})
}

// TopAttendees handles GET /analytics/top-attendees?role=participant&limit=20.
func (h *Handler) TopAttendees(c *gin.Context) {
	role := models.Role(c.DefaultQuery("role", string(models.RoleParticipant)))
	if role != models.RoleParticipant && role != models.RoleVolunteer {
		response.BadRequest(c, "role must be participant or volunteer")
		return
	}
	limit := parseLimit(c.Query("limit"), 20)

	list, err := h.repo.TopAttendees(c.Request.Context(), role, limit)
	if err != nil {
		response.Internal(c, "failed to fetch attendee metrics")
		return
	}
	response.OK(c, list)
}

// StaffProductivity handles GET /analytics/staff-productivity?limit=10.
func (h *Handler) StaffProductivity(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), 10)
	list, err := h.repo.StaffProductivity(c.Request.Context(), limit)
	if err != nil {
		response.Internal(c, "failed to fetch staff metrics")
		return
	}
	response.OK(c, list)
}

func parseLimit(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 100 {
		return fallback
	}
	return n
}
