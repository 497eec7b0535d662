package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/otp"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/pkg/apperror"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/pkg/response"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/service/totp"
)

// OTPService is the stateless part of totp.Service
type OTPService interface {
	Generate(ctx context.Context, req totp.GenerateRequest) (*otp.Code, error)
	ParseURI(ctx context.Context, uri string) (*otp.ProvisioningURI, error)
	NewSecret(ctx context.Context, req totp.NewSecretRequest) (*totp.NewSecretResponse, error)
}

// OTPHandler serves code generation and URI parsing without stored accounts
type OTPHandler struct {
	service OTPService
}

// NewOTPHandler creates a new OTP handler
func NewOTPHandler(service OTPService) *OTPHandler {
	return &OTPHandler{service: service}
}

// ParseRequest is the body of POST /api/v1/otp/parse
type ParseRequest struct {
	URI string `json:"uri" binding:"required"`
}

// Generate handles POST /api/v1/otp/generate
func (h *OTPHandler) Generate(c *gin.Context) {
	var req totp.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ValidationError("Request body must be JSON", "Send secret, algorithm, digits and period"))
		return
	}

	code, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.ErrorFromErr(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	response.Success(c, code)
}

// Parse handles POST /api/v1/otp/parse
func (h *OTPHandler) Parse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ValidationError("uri is required", "Send the otpauth:// URI from the QR code"))
		return
	}

	p, err := h.service.ParseURI(c.Request.Context(), req.URI)
	if err != nil {
		response.ErrorFromErr(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	response.Success(c, p)
}

// NewSecret handles POST /api/v1/otp/secret
func (h *OTPHandler) NewSecret(c *gin.Context) {
	var req totp.NewSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ValidationError("Request body must be JSON", "Send issuer and account_name"))
		return
	}

	resp, err := h.service.NewSecret(c.Request.Context(), req)
	if err != nil {
		response.ErrorFromErr(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	response.Created(c, resp)
}
