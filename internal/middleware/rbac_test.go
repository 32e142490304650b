package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/templo-sembrador/portal-api/internal/models"
)

func newRBACRouter(claims *models.JWTClaims, allowed ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
	})
	r.GET("/members/:id", RBAC(allowed...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRBACAllowsRole(t *testing.T) {
	router := newRBACRouter(&models.JWTClaims{MemberID: "mem-1", Role: models.RoleAdmin}, "admin")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/members/mem-2", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRBACDeniesWrongRole(t *testing.T) {
	router := newRBACRouter(&models.JWTClaims{MemberID: "mem-1", Role: models.RoleStudent}, "admin")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/members/mem-2", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRBACAllowsSelf(t *testing.T) {
	router := newRBACRouter(&models.JWTClaims{MemberID: "mem-1", Role: models.RoleStudent}, "admin", "SELF")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/members/mem-1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/members/mem-2", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRBACRequiresClaims(t *testing.T) {
	router := newRBACRouter(nil, "admin")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/members/mem-1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
