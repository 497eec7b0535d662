package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/config"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/middleware"
)

func NewRouter(
	cfg *config.Config,
	healthHandler *HealthHandler,
	otpHandler *OTPHandler,
	accountHandler *AccountHandler,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware (order matters!)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.SecurityHeaders(cfg.Server.HTTPS))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.CORS))

	// Health endpoints (no auth required)
	r.GET("/health", healthHandler.Shallow)
	r.GET("/health/ready", healthHandler.Ready)

	// Prometheus metrics endpoint (restrict to internal IPs in production)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		// Stateless tools: nothing is stored
		o := v1.Group("/otp")
		{
			o.POST("/generate", otpHandler.Generate)
			o.POST("/parse", otpHandler.Parse)
			o.POST("/secret", otpHandler.NewSecret)
		}

		protected := v1.Group("")
		protected.Use(middleware.RequireUser(cfg.Security.JWTSecret))
		{
			accounts := protected.Group("/accounts")
			{
				accounts.GET("", accountHandler.List)
				accounts.POST("", accountHandler.Create)
				accounts.POST("/import", accountHandler.Import)
				accounts.GET("/:id", accountHandler.Get)
				accounts.DELETE("/:id", accountHandler.Delete)
				accounts.GET("/:id/code", accountHandler.Code)
				accounts.POST("/:id/verify", accountHandler.Verify)
				accounts.GET("/:id/uri", accountHandler.URI)
				accounts.GET("/:id/qr", accountHandler.QR)
			}
			protected.GET("/activity", accountHandler.Activity)
		}
	}

	return r
}
