package registrations

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carecircle/backend/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestListByEventRejectsBadEventID(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil, nil)
	router := gin.New()
	router.GET("/events/:id/registrations", h.ListByEvent)

	req := httptest.NewRequest(http.MethodGet, "/events/not-a-uuid/registrations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterRejectsBadEventID(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil, nil)
	router := gin.New()
	router.POST("/events/:id/register", h.Register)

	req := httptest.NewRequest(http.MethodPost, "/events/nope/register", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventRosterSerialization(t *testing.T) {
	at := time.Date(2026, 9, 1, 11, 30, 0, 0, time.UTC)
	roster := EventRoster{
		Total:    2,
		Attended: 1,
		Attendees: []EventAttendee{
			{RegistrationID: uuid.New(), UserID: uuid.New(), FullName: "Amina Osei", Role: models.RoleParticipant, Status: models.StatusAttended, CheckInAt: &at},
			{RegistrationID: uuid.New(), UserID: uuid.New(), FullName: "Ben Ito", Role: models.RoleVolunteer, Status: models.StatusRegistered},
		},
	}

	raw, err := json.Marshal(roster)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.EqualValues(t, 2, decoded["total"])
	assert.EqualValues(t, 1, decoded["attended"])
	attendees, ok := decoded["attendees"].([]any)
	require.True(t, ok)
	assert.Len(t, attendees, 2)

	// Absent check-in fields stay out of the staff payload.
	second, ok := attendees[1].(map[string]any)
	require.True(t, ok)
	_, present := second["check_in_at"]
	assert.False(t, present)
}
