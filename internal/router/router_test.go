package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hivcare-api/internal/handler"
	"github.com/jwalitptl/hivcare-api/internal/handler/health"
	promhandler "github.com/jwalitptl/hivcare-api/internal/handler/prometheus"
	"github.com/jwalitptl/hivcare-api/internal/middleware"
	"github.com/jwalitptl/hivcare-api/pkg/auth"
	"github.com/jwalitptl/hivcare-api/pkg/metrics"
)

type echoHandler struct{}

func (echoHandler) RegisterRoutes(r *gin.RouterGroup, authz *middleware.AuthMiddleware) {
	r.GET("/echo", func(c *gin.Context) {
		c.JSON(http.StatusOK, handler.NewSuccessResponse("pong"))
	})
	r.POST("/echo", authz.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, handler.NewSuccessResponse("secret"))
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	r, err := NewRouter(
		middleware.NewAuthMiddleware(auth.NewJWTService("secret", "")),
		metrics.NewMetrics(reg, "hivcare"),
		health.NewHandler(map[string]health.Check{"database": func(context.Context) error { return nil }}),
		promhandler.New(reg),
		[]Handler{echoHandler{}},
		RouterConfig{
			RateLimit:      rate.Inf,
			RateBurst:      1,
			CORSConfig:     middleware.DefaultCORSConfig(),
			RequestTimeout: time.Second,
			MaxBodyBytes:   1 << 20,
		},
	)
	require.NoError(t, err)
	r.Setup()
	return r
}

func do(r *Router, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRouter_Routes(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		code   int
	}{
		{http.MethodGet, "/health/live", http.StatusOK},
		{http.MethodGet, "/health/ready", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/echo", http.StatusOK},
		{http.MethodPost, "/api/v1/echo", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/panic", http.StatusInternalServerError},
		{http.MethodGet, "/api/v1/nowhere", http.StatusNotFound},
		{http.MethodDelete, "/api/v1/echo", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := do(r, tt.method, tt.path)
			assert.Equal(t, tt.code, w.Code)
			assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))
		})
	}
}

func TestRouter_EnvelopeOnUnknownRoute(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/v1/nowhere")

	var resp handler.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestRouter_MetricsRecordsRequests(t *testing.T) {
	r := newTestRouter(t)
	do(r, http.MethodGet, "/api/v1/echo")

	w := do(r, http.MethodGet, "/metrics")

	assert.Contains(t, w.Body.String(), `hivcare_http_requests_total{method="GET",path="/api/v1/echo",status="200"} 1`)
}
