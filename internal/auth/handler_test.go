package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setRoleRequest(t *testing.T, h *Handler, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.PATCH("/users/:id/role", h.SetRole)

	req := httptest.NewRequest(http.MethodPatch, "/users/"+userID+"/role", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSetRoleRejectsBadUserID(t *testing.T) {
	rec := setRoleRequest(t, NewHandler(nil, nil, nil), "not-a-uuid", `{"role":"staff"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetRoleRejectsUnknownRole(t *testing.T) {
	rec := setRoleRequest(t, NewHandler(nil, nil, nil), uuid.NewString(), `{"role":"superuser"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetRoleRequiresRole(t *testing.T) {
	rec := setRoleRequest(t, NewHandler(nil, nil, nil), uuid.NewString(), `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func registerRequest(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.POST("/auth/register", h.Register)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterRejectsStaffSelfAssignment(t *testing.T) {
	for _, role := range []string{"staff", "admin"} {
		body := `{"email":"a@b.org","password":"secret1","full_name":"A","role":"` + role + `"}`
		rec := registerRequest(t, NewHandler(nil, nil, nil), body)
		assert.Equal(t, http.StatusForbidden, rec.Code, "role %s", role)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	body := `{"email":"a@b.org","password":"secret1","full_name":"A","role":"wizard"}`
	rec := registerRequest(t, NewHandler(nil, nil, nil), body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
