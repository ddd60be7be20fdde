package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hivcare-api/internal/handler"
	"github.com/jwalitptl/hivcare-api/internal/handler/health"
	promhandler "github.com/jwalitptl/hivcare-api/internal/handler/prometheus"
	"github.com/jwalitptl/hivcare-api/internal/middleware"
	"github.com/jwalitptl/hivcare-api/pkg/metrics"
	"github.com/jwalitptl/hivcare-api/pkg/validator"
)

// Handler is implemented by every API handler package.
type Handler interface {
	RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware)
}

type Router struct {
	engine      *gin.Engine
	auth        *middleware.AuthMiddleware
	health      *health.Handler
	prometheus  *promhandler.Handler
	handlers    []Handler
	rateLimiter *middleware.RateLimiter
}

type RouterConfig struct {
	RateLimit      rate.Limit
	RateBurst      int
	CORSConfig     middleware.CORSConfig
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	m *metrics.Metrics,
	healthH *health.Handler,
	prometheusH *promhandler.Handler,
	handlers []Handler,
	config RouterConfig,
) (*Router, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.Metrics(m),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
		rateLimiter.RateLimit(),
		middleware.Timeout(config.RequestTimeout),
		middleware.SizeLimit(config.MaxBodyBytes),
		middleware.ErrorHandler(),
	)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("route not found"))
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, handler.NewErrorResponse("method not allowed"))
	})

	return &Router{
		engine:      engine,
		auth:        auth,
		health:      healthH,
		prometheus:  prometheusH,
		handlers:    handlers,
		rateLimiter: rateLimiter,
	}, nil
}

func (r *Router) Setup() {
	r.health.RegisterRoutes(r.engine)
	r.prometheus.RegisterRoutes(r.engine)

	api := r.engine.Group("/api/v1")
	for _, h := range r.handlers {
		h.RegisterRoutes(api, r.auth)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// RunJanitor evicts idle rate-limit buckets until ctx is done.
func (r *Router) RunJanitor(ctx context.Context) {
	r.rateLimiter.Run(ctx, time.Minute)
}

func registerValidators() error {
	v, ok := binding.Validator.Engine().(*playground.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return validator.Register(v)
}
