package router

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-registry/internal/handler"
	"github.com/jwalitptl/patient-registry/internal/handler/health"
	"github.com/jwalitptl/patient-registry/internal/handler/prometheus"
	"github.com/jwalitptl/patient-registry/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine      *gin.Engine
	config      RouterConfig
	patientH    Handler
	attendanceH Handler
	healthH     *health.Handler
	h           *handler.Handler
	metricsH    *prometheus.Handler
}

type RouterConfig struct {
	// RateLimit is nil when rate limiting is disabled.
	RateLimit    *middleware.RateLimiterConfig
	CORSConfig   middleware.CORSConfig
	MaxBodyBytes int64
	// MetricsPath is empty when the metrics endpoint is disabled.
	MetricsPath string
}

func NewRouter(
	patientH Handler,
	attendanceH Handler,
	healthH *health.Handler,
	h *handler.Handler,
	metricsH *prometheus.Handler,
	config RouterConfig,
) *Router {
	engine := gin.New()

	r := &Router{
		engine:      engine,
		config:      config,
		patientH:    patientH,
		attendanceH: attendanceH,
		healthH:     healthH,
		h:           h,
		metricsH:    metricsH,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
	)
	if metricsH != nil {
		engine.Use(metricsH.Middleware())
	}
	engine.Use(
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
	)
	if config.RateLimit != nil {
		engine.Use(middleware.NewRateLimiter(*config.RateLimit).RateLimit())
	}
	if config.MaxBodyBytes > 0 {
		engine.Use(middleware.SizeLimit(config.MaxBodyBytes))
	}

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/", r.h.Info)
	r.healthH.RegisterRoutes(r.engine)
	if r.metricsH != nil && r.config.MetricsPath != "" {
		r.engine.GET(r.config.MetricsPath, r.metricsH.Handler())
	}

	api := r.engine.Group("/api")
	r.patientH.RegisterRoutes(api)
	r.attendanceH.RegisterRoutes(api)

	r.engine.NoRoute(r.h.NotFound)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Endpoints lists the public routes for the service info page.
func Endpoints(metricsPath string) map[string]string {
	endpoints := map[string]string{
		"register":   "POST /api/patients",
		"list":       "GET /api/patients?page=1&limit=10",
		"get":        "GET /api/patients/:id",
		"search":     "GET /api/patients/search?name=",
		"attendance": "POST /api/attendance",
		"health":     "GET /health",
	}
	if metricsPath != "" {
		endpoints["metrics"] = "GET " + metricsPath
	}
	return endpoints
}
