package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"records-backend/internal/records"
	"records-backend/internal/services/health"
	"records-backend/internal/shared/config"
	"records-backend/internal/shared/metrics"
	"records-backend/internal/shared/server/middleware"
	"records-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config         config.Config
	RecordsHandler *records.Handler
	Health         *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		metrics.Middleware(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.AuthJWTSecret),
	)
	if cfg.WriteRateLimit > 0 && cfg.WriteRateBurst > 0 {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: middleware.GroupByMethod,
			Rules: map[string]middleware.RateLimitRule{
				middleware.WriteGroup: {Rate: cfg.WriteRateLimit, Burst: cfg.WriteRateBurst},
			},
		}))
	}

	r.GET("/metrics", metrics.Handler())

	hs := deps.Health
	if hs == nil {
		hs = health.NewService(cfg.StoreBackend, nil)
	}
	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		st := hs.Status(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	})
	registerWhoAmIRoutes(api)
	if deps.RecordsHandler != nil {
		deps.RecordsHandler.RegisterRoutes(api)
	}

	return r
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
