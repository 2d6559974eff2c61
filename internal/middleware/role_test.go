package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func roleRouter(setRole string, allowed ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", func(c *gin.Context) {
		if setRole != "" {
			c.Set(ContextUserRole, setRole)
		}
		c.Next()
	}, RequireRole(allowed...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func get(r *gin.Engine) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	return w.Code
}

func TestRequireRoleAllows(t *testing.T) {
	assert.Equal(t, http.StatusOK, get(roleRouter("staff", "staff", "admin")))
	assert.Equal(t, http.StatusOK, get(roleRouter("admin", "staff", "admin")))
}

func TestRequireRoleForbids(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, get(roleRouter("participant", "staff", "admin")))
	assert.Equal(t, http.StatusForbidden, get(roleRouter("caregiver", "admin")))
}

func TestRequireRoleWithoutContext(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, get(roleRouter("", "staff")))
}
