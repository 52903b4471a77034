package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/veritalabs/supplement-verifier/internal/http/handlers"
	"github.com/veritalabs/supplement-verifier/internal/http/middleware"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
)

type RouterConfig struct {
	Log                *logger.Logger
	ServiceName        string
	Auth               *middleware.AuthMiddleware
	HealthHandler      *handlers.HealthHandler
	BatchHandler       *handlers.BatchHandler
	DocumentHandler    *handlers.DocumentHandler
	ExtractionHandler  *handlers.ExtractionHandler
	AttestationHandler *handlers.AttestationHandler
	VerifyHandler      *handlers.VerifyHandler
}

// NewRouter mounts the API. Everything under the admin group needs the
// X-API-Key header; verification and health stay public so anyone
// holding a batch ID can check it.
func NewRouter(cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "supplement-verifier"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middleware.AttachTraceContext())
	r.Use(middleware.CORS())
	r.Use(middleware.RequestLogger(cfg.Log))

	r.GET("/healthcheck", cfg.HealthHandler.Healthcheck)
	r.GET("/batches/:batchId/verify", cfg.VerifyHandler.Verify)

	admin := r.Group("/", cfg.Auth.RequireAPIKey())
	{
		admin.POST("/batches", cfg.BatchHandler.Register)
		admin.GET("/batches/:batchId", cfg.BatchHandler.Get)
		admin.POST("/batches/:batchId/documents", cfg.DocumentHandler.Upload)
		admin.POST("/batches/:batchId/extract", cfg.ExtractionHandler.Extract)
		admin.GET("/batches/:batchId/attestation", cfg.AttestationHandler.Get)
		admin.POST("/batches/:batchId/publish", cfg.AttestationHandler.Publish)
	}

	return r
}
