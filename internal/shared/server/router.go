package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studymate-backend/internal/appstate"
	"studymate-backend/internal/documents"
	"studymate-backend/internal/services/health"
	"studymate-backend/internal/shared/config"
	"studymate-backend/internal/shared/metrics"
	"studymate-backend/internal/shared/server/middleware"
	"studymate-backend/internal/shared/server/respond"
	"studymate-backend/internal/shared/storage/object"
	"studymate-backend/internal/subjects"
	"studymate-backend/internal/uploads"
)

const uploadRateGroup = "UPLOAD"

// RouterDeps holds the handlers mounted under /api/v1.
type RouterDeps struct {
	Config          config.Config
	SubjectHandler  *subjects.Handler
	DocumentHandler *documents.Handler
	ContentHandler  *appstate.ContentHandler
	UploadHandler   *uploads.Handler
	Health          *health.Service
	// FileStore is served at /files when set.
	FileStore   object.ObjectStore
	RateLimiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		metrics.Middleware(),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		st := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	})
	api.GET("/metrics", metrics.Handler())

	if deps.SubjectHandler != nil {
		deps.SubjectHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.ContentHandler != nil {
		deps.ContentHandler.RegisterRoutes(api)
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.RegisterRoutes(api, uploadRateLimit(deps))
	}
	if deps.FileStore != nil {
		uploads.RegisterFileRoutes(api, deps.FileStore)
	}

	return r
}

func uploadRateLimit(deps RouterDeps) gin.HandlerFunc {
	perMinute := deps.Config.UploadsPerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	burst := int(perMinute)
	if burst < 1 {
		burst = 1
	}
	return middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			uploadRateGroup: {Rate: perMinute / 60, Burst: burst},
		},
		DefaultGroup: uploadRateGroup,
		Limiter:      deps.RateLimiter,
	})
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
