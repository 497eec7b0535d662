package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/domain"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/middleware"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/otp"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/pkg/apperror"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/pkg/response"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/repository"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/service/totp"
)

// AccountService is the per-user part of totp.Service
type AccountService interface {
	CreateAccount(ctx context.Context, userID string, req totp.CreateAccountRequest, clientIP, userAgent string) (*domain.Account, error)
	ImportMigration(ctx context.Context, userID, uri, clientIP, userAgent string) (*totp.ImportResult, error)
	ListAccounts(ctx context.Context, userID string) ([]*domain.Account, error)
	GetAccount(ctx context.Context, userID string, id uuid.UUID) (*domain.Account, error)
	DeleteAccount(ctx context.Context, userID string, id uuid.UUID, clientIP, userAgent string) error
	AccountCode(ctx context.Context, userID string, id uuid.UUID) (*otp.Code, error)
	VerifyCode(ctx context.Context, userID string, id uuid.UUID, code, clientIP, userAgent string) (*totp.VerifyResult, error)
	ProvisioningURI(ctx context.Context, userID string, id uuid.UUID) (string, error)
	QRCode(ctx context.Context, userID string, id uuid.UUID, size int) ([]byte, error)
	ListActivity(ctx context.Context, userID string, limit int) ([]repository.AuditLog, error)
}

// AccountHandler serves stored authenticator accounts. Every route runs
// behind middleware.RequireUser.
type AccountHandler struct {
	service AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(service AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// ImportRequest is the body of POST /api/v1/accounts/import
type ImportRequest struct {
	URI string `json:"uri" binding:"required"`
}

// VerifyRequest is the body of POST /api/v1/accounts/:id/verify
type VerifyRequest struct {
	Code string `json:"code" binding:"required"`
}

// List handles GET /api/v1/accounts
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.service.ListAccounts(c.Request.Context(), userID(c))
	if err != nil {
		response.ErrorFromErr(c, err)
		return
	}
	response.Success(c, gin.H{"accounts": accounts})
}

// Create handles POST /api/v1/accounts
func (h *AccountHandler) Create(c *gin.Context) {
	var req totp.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ValidationError("Request body must be JSON", "Send an otpauth uri or the account fields"))
		return
	}

	account, err := h.service.CreateAccount(c.Request.Context(), userID(c), req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.ErrorFromErr(c, err)
		return
	}
	response.Created(c, account)
}

// Import handles POST /api/v1/accounts/import
func (h *AccountHandler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ValidationError("uri is required", "Send the otpauth-migration:// URI of the export QR code"))
		return
	}

	result, err := h.service.ImportMigration(c.Request.Context(), userID(c), req.URI, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.ErrorFromErr(c, err)
		return
	}
	response.Created(c, result)
}

// Get handles GET /api/v1/accounts/:id
func (h *AccountHandler) Get(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	account, err := h.service.GetAccount(c.Request.Context(), userID(c), id)
	if err != nil {
		response.ErrorFromErr(c, err)
		return
	}
	response.Success(c, account)
}

// Delete handles DELETE /api/v1/accounts/:id
func (h *AccountHandler) Delete(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteAccount(c.Request.Context(), userID(c), id, c.ClientIP(), c.Request.UserAgent()); err != nil {
		response.ErrorFromErr(c, err)
		return
	}
	response.NoContent(c)
}

// Code handles GET /api/v1/accounts/:id/code
func (h *AccountHandler) Code(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	code, err := h.service.AccountCode(c.Request.Context(), userID(c), id)
	if err != nil {
		response.ErrorFromErr(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	response.Success(c, code)
}

// Verify handles POST /api/v1/accounts/:id/verify
func (h *AccountHandler) Verify(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ValidationError("code is required", "Send the code shown by the authenticator"))
		return
	}

	result, err := h.service.VerifyCode(c.Request.Context(), userID(c), id, req.Code, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.ErrorFromErr(c, err)
		return
	}
	response.Success(c, result)
}

// URI handles GET /api/v1/accounts/:id/uri
func (h *AccountHandler) URI(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	uri, err := h.service.ProvisioningURI(c.Request.Context(), userID(c), id)
	if err != nil {
		response.ErrorFromErr(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	response.Success(c, gin.H{"uri": uri})
}

// QR handles GET /api/v1/accounts/:id/qr?size=256
func (h *AccountHandler) QR(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "0"))
	if err != nil {
		response.Error(c, apperror.ValidationError("size must be an integer", "Pass the image size in pixels"))
		return
	}

	png, err := h.service.QRCode(c.Request.Context(), userID(c), id, size)
	if err != nil {
		response.ErrorFromErr(c, err)
		return
	}
	response.PNG(c, png)
}

// Activity handles GET /api/v1/activity?limit=50
func (h *AccountHandler) Activity(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		response.Error(c, apperror.ValidationError("limit must be an integer", "Pass the number of events to return"))
		return
	}
	logs, err := h.service.ListActivity(c.Request.Context(), userID(c), limit)
	if err != nil {
		response.ErrorFromErr(c, err)
		return
	}
	response.Success(c, gin.H{"events": logs})
}

func userID(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}

// accountID parses the :id path parameter, answering 404 for non-UUIDs
func accountID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.NotFoundError("account"))
		return uuid.Nil, false
	}
	return id, true
}
