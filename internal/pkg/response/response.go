package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/pkg/apperror"
)

// Success sends a successful JSON response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 Created response
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 No Content response
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an RFC 7807 error response
func Error(c *gin.Context, err *apperror.AppError) {
	if err.RequestID == "" {
		err.RequestID = c.GetString("request_id")
	}
	if err.Instance == "" {
		err.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", "application/problem+json")
	c.AbortWithStatusJSON(err.Status, err)
}

// PNG sends raw image bytes
func PNG(c *gin.Context, data []byte) {
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", data)
}

// ErrorFromErr converts a standard error to AppError and sends response
func ErrorFromErr(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		Error(c, appErr)
		return
	}
	Error(c, apperror.InternalError(
		"Unexpected error",
		"Try again later",
	).WithError(err))
}
