package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(capture *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		*capture = Value(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestMiddlewareGeneratesID(t *testing.T) {
	var got string
	r := newRouter(&got)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	assert.NotEmpty(t, got)
	assert.Equal(t, got, w.Header().Get("X-Request-ID"))
}

func TestMiddlewarePreservesInboundID(t *testing.T) {
	var got string
	r := newRouter(&got)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "upstream-123", got)
}

func TestMiddlewareTruncatesOversizedID(t *testing.T) {
	var got string
	r := newRouter(&got)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("a", 200))
	r.ServeHTTP(w, req)

	assert.Len(t, got, maxInboundLen)
}
