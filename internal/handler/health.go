package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker is satisfied by repository.DB
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Pinger is satisfied by redis.Client
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    HealthChecker
	redis Pinger
}

func NewHealthHandler(db HealthChecker, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

func (h *HealthHandler) Shallow(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]gin.H)
	allHealthy := true

	check := func(name string, fn func(context.Context) error) {
		start := time.Now()
		if err := fn(ctx); err != nil {
			checks[name] = gin.H{"status": "unhealthy", "error": err.Error()}
			allHealthy = false
			return
		}
		checks[name] = gin.H{"status": "ok", "latency_ms": time.Since(start).Milliseconds()}
	}
	check("database", h.db.HealthCheck)
	check("redis", h.redis.Ping)

	status := http.StatusOK
	statusStr := "ok"
	if !allHealthy {
		status = http.StatusServiceUnavailable
		statusStr = "unhealthy"
	}

	c.JSON(status, gin.H{"status": statusStr, "checks": checks})
}
