package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"transparency-backend/internal/services/health"
	"transparency-backend/internal/shared/config"
	"transparency-backend/internal/shared/metrics"
	"transparency-backend/internal/shared/server/middleware"
	"transparency-backend/internal/shared/server/respond"
)

const (
	rateGroupPolling = "POLLING"
	rateGroupDefault = "DEFAULT"
)

// RouteRegistrar attaches a feature's routes to the API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries what NewRouter wires.
type RouterDeps struct {
	Config      config.Config
	Health      *health.Service
	RateLimiter *middleware.RateLimiter
	Handlers    []RouteRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	r.GET("/healthz", func(c *gin.Context) {
		report := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(
		middleware.Session(),
		middleware.RateLimit(rateLimitConfig(deps.Config.RateLimitRPM, deps.RateLimiter)),
	)
	for _, h := range deps.Handlers {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	return r
}

// rateLimitConfig limits mutating and expensive calls per session. State
// polling gets a larger budget so the UI can refresh progress.
func rateLimitConfig(rpm int, limiter *middleware.RateLimiter) middleware.RateLimitConfig {
	rules := map[string]middleware.RateLimitRule{}
	if rpm > 0 {
		rules[rateGroupDefault] = middleware.RateLimitRule{Rate: float64(rpm) / 60, Burst: max(rpm/6, 5)}
		rules[rateGroupPolling] = middleware.RateLimitRule{Rate: float64(rpm) / 6, Burst: max(rpm, 20)}
	}
	return middleware.RateLimitConfig{
		Rules:        rules,
		DefaultGroup: rateGroupDefault,
		GroupFor:     rateGroupFor,
		Limiter:      limiter,
	}
}

func rateGroupFor(c *gin.Context) string {
	if c.Request.Method != http.MethodGet {
		return rateGroupDefault
	}
	path := c.FullPath()
	switch {
	case strings.HasSuffix(path, "/state"),
		strings.HasSuffix(path, "/toasts"),
		strings.HasSuffix(path, "/chat"),
		strings.Contains(path, "/documents/current/pages/"):
		return rateGroupPolling
	}
	return rateGroupDefault
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
