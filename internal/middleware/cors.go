package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/config"
)

// CORS allows the tracker's web frontend to call the API. Auth travels in the
// Authorization header, so credentials (cookies) are not allowed.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:  cfg.AllowedOrigins,
		AllowMethods:  cfg.AllowedMethods,
		AllowHeaders:  cfg.AllowedHeaders,
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        time.Duration(cfg.MaxAge) * time.Second,
	})
}
