package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-feedback/internal/documents"
	"resume-feedback/internal/feedback"
	"resume-feedback/internal/rasterize"
	"resume-feedback/internal/shared/config"
	"resume-feedback/internal/shared/metrics"
	"resume-feedback/internal/shared/server/middleware"
	"resume-feedback/internal/shared/server/respond"
	"resume-feedback/internal/uploads"
)

// RouterDeps are the handlers mounted under /api/v1. Nil handlers are skipped.
type RouterDeps struct {
	Config           config.Config
	DocumentHandler  *documents.Handler
	FeedbackHandler  *feedback.Handler
	RasterizeHandler *rasterize.Handler
	UploadsHandler   *uploads.Handler
	// Rasterizer is reported by the health endpoint.
	Rasterizer *rasterize.Rasterizer
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    rateLimitRules(cfg),
			GroupFor: middleware.RenderGroupFor,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		body := gin.H{"ok": true}
		if deps.Rasterizer != nil {
			renderer := gin.H{"engine": deps.Rasterizer.Engine(), "available": true}
			if err := deps.Rasterizer.Available(); err != nil {
				renderer["available"] = false
				renderer["error"] = err.Error()
			}
			body["renderer"] = renderer
		}
		respond.JSON(c, http.StatusOK, body)
	})

	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.FeedbackHandler != nil {
		deps.FeedbackHandler.RegisterRoutes(api)
	}
	if deps.RasterizeHandler != nil {
		deps.RasterizeHandler.RegisterRoutes(api)
	}
	if deps.UploadsHandler != nil {
		deps.UploadsHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitRules(cfg config.Config) map[string]middleware.RateLimitRule {
	perMinute := cfg.RenderRatePerMinute
	if perMinute <= 0 {
		return nil
	}
	burst := perMinute / 6
	if burst < 1 {
		burst = 1
	}
	return map[string]middleware.RateLimitRule{
		"RENDER": {Rate: float64(perMinute) / 60, Burst: burst},
	}
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
