package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-extractor/internal/resumes"
	"resume-extractor/internal/shared/config"
	"resume-extractor/internal/shared/metrics"
	"resume-extractor/internal/shared/server/middleware"
	"resume-extractor/internal/shared/server/respond"
)

const (
	apiPrefix  = "/api/v1"
	healthPath = apiPrefix + "/health"
)

// RouterDeps carries the handlers and limits the router needs.
type RouterDeps struct {
	Config  config.Config
	Resumes *resumes.Handler
	Limiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "dev" && deps.Config.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = deps.Config.MaxUploadBytes

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group(apiPrefix)
	api.Use(
		middleware.Auth(healthPath),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: middleware.GroupByPathPrefix(apiPrefix+"/resumes/extract", middleware.RateLimitGroupExtract),
			Limiter:  deps.Limiter,
			Rules: map[string]middleware.RateLimitRule{
				middleware.RateLimitGroupExtract: {Rate: deps.Config.ExtractRateLimit, Burst: deps.Config.ExtractRateBurst},
				middleware.RateLimitGroupDefault: {Rate: deps.Config.DefaultRateLimit, Burst: deps.Config.DefaultRateBurst},
			},
		}),
	)
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/me", func(c *gin.Context) {
		respond.OK(c, gin.H{"userId": middleware.UserIDFromContext(c)})
	})
	if deps.Resumes != nil {
		deps.Resumes.RegisterExtractRoutes(api)
		deps.Resumes.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})

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
