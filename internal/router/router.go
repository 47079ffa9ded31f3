package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/medipoint/scheduler-api/internal/handler"
	"github.com/medipoint/scheduler-api/internal/middleware"
	"github.com/medipoint/scheduler-api/pkg/metrics"
)

// Handler registers a group of routes
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit rate.Limit
	RateBurst int
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	health  *handler.HealthHandler
	metrics *metrics.Metrics
	cfg     Config

	appointmentH  Handler
	availabilityH Handler
	notificationH Handler
}

func New(
	auth *middleware.AuthMiddleware,
	health *handler.HealthHandler,
	m *metrics.Metrics,
	cfg Config,
	appointmentH Handler,
	availabilityH Handler,
	notificationH Handler,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	return &Router{
		engine:        gin.New(),
		auth:          auth,
		health:        health,
		metrics:       m,
		cfg:           cfg,
		appointmentH:  appointmentH,
		availabilityH: availabilityH,
		notificationH: notificationH,
	}
}

func (r *Router) Setup() {
	r.engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.RateLimit(middleware.RateLimitConfig{Rate: r.cfg.RateLimit, Burst: r.cfg.RateBurst}),
		r.metricsMiddleware(),
	)

	r.engine.GET("/health", r.health.Health)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")
	api.Use(r.auth.Authenticate())

	r.appointmentH.RegisterRoutes(api)
	r.availabilityH.RegisterRoutes(api)
	r.notificationH.RegisterRoutes(api)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		r.metrics.RequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		r.metrics.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
