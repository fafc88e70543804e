package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/laxmielectronics/site-api/config"
	"github.com/laxmielectronics/site-api/internal/handlers"
	"github.com/laxmielectronics/site-api/internal/middleware"
	"github.com/laxmielectronics/site-api/pkg/metrics"
)

const (
	maxJSONBody      = 1 << 20  // 1 MB
	maxMultipartBody = 25 << 20 // 25 MB, two uploads plus fields
)

// routeHandlers groups the handlers mounted on the router
type routeHandlers struct {
	health *handlers.HealthHandler
	email  *handlers.EmailHandler
	forms  *handlers.FormHandler
}

// newRouter builds the gin engine with global middleware and API routes
func newRouter(cfg *config.Config, h routeHandlers) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = 8 << 20

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:5173", "http://127.0.0.1:5173")
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader, "traceparent", "tracestate"},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	generalRateLimiter := middleware.NewRateLimiter(50, 100)
	submissionRateLimiter := middleware.NewRateLimiter(5, 10) // spam guard for the mail relay

	// Unexpected errors and panics on the API become the standard 500 body
	api := router.Group("/api", gin.CustomRecovery(handlers.RecoveryHandler))
	api.GET("/health", h.health.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	api.POST("/send-email",
		submissionRateLimiter.Middleware(),
		middleware.BodySizeLimitMiddleware(maxJSONBody, maxJSONBody),
		h.email.SendEmail,
	)

	v1 := api.Group("/v1")
	v1.POST("/forms/:formType",
		submissionRateLimiter.Middleware(),
		middleware.BodySizeLimitMiddleware(maxJSONBody, maxMultipartBody),
		h.forms.Submit,
	)

	return router
}
