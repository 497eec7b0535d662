package handler_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/domain"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/otp"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/repository"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/service/totp"
)

// MockOTPService mocks handler.OTPService
type MockOTPService struct {
	mock.Mock
}

func (m *MockOTPService) Generate(ctx context.Context, req totp.GenerateRequest) (*otp.Code, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*otp.Code), args.Error(1)
}

func (m *MockOTPService) ParseURI(ctx context.Context, uri string) (*otp.ProvisioningURI, error) {
	args := m.Called(ctx, uri)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*otp.ProvisioningURI), args.Error(1)
}

func (m *MockOTPService) NewSecret(ctx context.Context, req totp.NewSecretRequest) (*totp.NewSecretResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*totp.NewSecretResponse), args.Error(1)
}

// MockAccountService mocks handler.AccountService
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, userID string, req totp.CreateAccountRequest, clientIP, userAgent string) (*domain.Account, error) {
	args := m.Called(ctx, userID, req, clientIP, userAgent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) ImportMigration(ctx context.Context, userID, uri, clientIP, userAgent string) (*totp.ImportResult, error) {
	args := m.Called(ctx, userID, uri, clientIP, userAgent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*totp.ImportResult), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, userID string) ([]*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, userID string, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, userID string, id uuid.UUID, clientIP, userAgent string) error {
	args := m.Called(ctx, userID, id, clientIP, userAgent)
	return args.Error(0)
}

func (m *MockAccountService) AccountCode(ctx context.Context, userID string, id uuid.UUID) (*otp.Code, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*otp.Code), args.Error(1)
}

func (m *MockAccountService) VerifyCode(ctx context.Context, userID string, id uuid.UUID, code, clientIP, userAgent string) (*totp.VerifyResult, error) {
	args := m.Called(ctx, userID, id, code, clientIP, userAgent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*totp.VerifyResult), args.Error(1)
}

func (m *MockAccountService) ProvisioningURI(ctx context.Context, userID string, id uuid.UUID) (string, error) {
	args := m.Called(ctx, userID, id)
	return args.String(0), args.Error(1)
}

func (m *MockAccountService) QRCode(ctx context.Context, userID string, id uuid.UUID, size int) ([]byte, error) {
	args := m.Called(ctx, userID, id, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockAccountService) ListActivity(ctx context.Context, userID string, limit int) ([]repository.AuditLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.AuditLog), args.Error(1)
}
