package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/kientrank3/revita-scheduling-api/internal/handler"
	"github.com/kientrank3/revita-scheduling-api/internal/middleware"
	"github.com/kientrank3/revita-scheduling-api/pkg/metrics"
)

// Handler is anything that mounts routes on the API group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
}

type Router struct {
	engine   *gin.Engine
	health   *handler.Handler
	handlers []Handler
}

func New(cfg Config, m *metrics.Metrics, health *handler.Handler, handlers ...Handler) *Router {
	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger())
	engine.Use(middleware.Metrics(m))
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	engine.Use(middleware.Timeout(cfg.RequestTimeout))

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  cfg.RateLimit,
		Burst: cfg.RateBurst,
	})
	engine.Use(limiter.RateLimit())

	return &Router{
		engine:   engine,
		health:   health,
		handlers: handlers,
	}
}

func (r *Router) Setup() *gin.Engine {
	health := r.engine.Group("/health")
	{
		health.GET("/live", r.health.LivenessCheck)
		health.GET("/ready", r.health.ReadinessCheck)
		health.GET("/metrics", r.health.MetricsHandler)
	}

	api := r.engine.Group("/api/v1")
	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}
	return r.engine
}
