package events

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carecircle/backend/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestBuildEventDefaults(t *testing.T) {
	creator := uuid.New()
	e, err := buildEvent(CreateRequest{
		Title:     "Community Lunch",
		StartTime: "2026-09-01T11:00:00Z",
		EndTime:   "2026-09-01T13:00:00Z",
	}, creator)
	require.NoError(t, err)

	assert.Equal(t, "TBD", e.Location)
	assert.Equal(t, 20, e.Capacity)
	assert.True(t, e.IsAccessible)
	require.NotNil(t, e.CreatedBy)
	assert.Equal(t, creator, *e.CreatedBy)
}

func TestBuildEventRejectsBadTimes(t *testing.T) {
	cases := []struct {
		name  string
		start string
		end   string
	}{
		{"garbage start", "next tuesday", "2026-09-01T13:00:00Z"},
		{"garbage end", "2026-09-01T11:00:00Z", "13:00"},
		{"end before start", "2026-09-01T13:00:00Z", "2026-09-01T11:00:00Z"},
		{"zero duration", "2026-09-01T11:00:00Z", "2026-09-01T11:00:00Z"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := buildEvent(CreateRequest{Title: "X", StartTime: tc.start, EndTime: tc.end}, uuid.New())
			assert.Error(t, err)
		})
	}
}

func bulkRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.POST("/events/bulk", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, uuid.New())
		h.BulkCreate(c)
	})
	return router
}

func TestBulkCreateRejectsEmptyList(t *testing.T) {
	router := bulkRouter(NewHandler(nil))

	req := httptest.NewRequest(http.MethodPost, "/events/bulk", bytes.NewBufferString(`{"events":[]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkCreateRejectsBadItem(t *testing.T) {
	router := bulkRouter(NewHandler(nil))

	body := `{"events":[
		{"title":"Lunch","start_time":"2026-09-01T11:00:00Z","end_time":"2026-09-01T13:00:00Z"},
		{"title":"Craft Hour","start_time":"not a time","end_time":"2026-09-02T13:00:00Z"}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/events/bulk", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "event 1")
}

func TestUpdateRequestAllowsPartialBody(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPatch, "/events/x", bytes.NewBufferString(`{"capacity":30}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req UpdateRequest
	require.NoError(t, c.ShouldBindJSON(&req))
	assert.Nil(t, req.Title, "omitting title must not clobber it")
	require.NotNil(t, req.Capacity)
	assert.Equal(t, 30, *req.Capacity)
}
