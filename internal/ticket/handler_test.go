package ticket

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carecircle/backend/internal/middleware"
	"github.com/carecircle/backend/internal/models"
)

func newVerifyRouter(t *testing.T, svc *Service, userRole models.Role) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/qr/verify", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, uuid.New())
		c.Set(middleware.ContextUserRole, string(userRole))
		c.Next()
	}, NewHandler(svc, nil, nil, nil).Verify)
	return r
}

func postVerify(t *testing.T, r *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/qr/verify", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVerifyEndpointOutcomes(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	regID := store.addRegistration("Amina Osei", models.RoleParticipant)
	issued, err := svc.Issue(context.Background(), regID)
	require.NoError(t, err)

	r := newVerifyRouter(t, svc, models.RoleStaff)

	// Valid scan: 200 with attendee details.
	w := postVerify(t, r, gin.H{"token": issued.Secret, "notes": "front door"})
	require.Equal(t, http.StatusOK, w.Code)
	var ok struct {
		Data struct {
			Verified       bool   `json:"verified"`
			AttendeeName   string `json:"attendee_name"`
			RegistrationID string `json:"registration_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.True(t, ok.Data.Verified)
	assert.Equal(t, "Amina Osei", ok.Data.AttendeeName)
	assert.Equal(t, regID.String(), ok.Data.RegistrationID)

	// Re-scan: benign conflict, distinct from a bad code.
	w = postVerify(t, r, gin.H{"token": issued.Secret})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Garbage: rejected.
	w = postVerify(t, r, gin.H{"token": "not-a-real-ticket-secret-aaaaaaaaaaaaaaaaaa"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Missing token: bad request before any store work.
	w = postVerify(t, r, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyEndpointRequiresStaffRole(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	regID := store.addRegistration("Amina Osei", models.RoleParticipant)
	issued, err := svc.Issue(context.Background(), regID)
	require.NoError(t, err)

	r := newVerifyRouter(t, svc, models.RoleParticipant)

	w := postVerify(t, r, gin.H{"token": issued.Secret})
	assert.Equal(t, http.StatusForbidden, w.Code)
	// The handler's internal role check must reject before any mutation.
	assert.Equal(t, models.StatusRegistered, store.get(regID).status)
}
