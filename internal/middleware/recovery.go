package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/pkg/apperror"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/pkg/response"
)

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("Panic recovered",
					slog.Any("error", err),
					slog.String("path", c.Request.URL.Path),
					slog.String("request_id", c.GetString(RequestIDKey)),
					slog.String("stack", string(debug.Stack())),
				)
				response.Error(c, apperror.InternalError(
					"The server hit an unexpected condition",
					"Try again later",
				))
			}
		}()
		c.Next()
	}
}
