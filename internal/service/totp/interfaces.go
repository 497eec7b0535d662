package totp

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/domain"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/otp"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/repository"
)

// AccountRepository defines the account storage needed by the service
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateBatch(ctx context.Context, accounts []*domain.Account) error
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Account, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Account, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	NextCounter(ctx context.Context, userID string, id uuid.UUID) (uint64, error)
}

// AuditRepository defines the audit operations needed by the service
type AuditRepository interface {
	LogEvent(ctx context.Context, event repository.AuditEvent) error
	ListByActor(ctx context.Context, actorID string, limit int32) ([]repository.AuditLog, error)
}

// CodeStore defines the Redis operations needed by the service
type CodeStore interface {
	// Code cache, one entry per account and time window
	GetCachedCode(ctx context.Context, accountID string, counter uint64) (*otp.Code, error)
	CacheCode(ctx context.Context, accountID string, counter uint64, code *otp.Code) error

	// Replay protection
	MarkCodeUsed(ctx context.Context, accountID, code string, ttl time.Duration) (bool, error)

	// Rate limiting
	IncrementCodeRate(ctx context.Context, userID string) (int64, time.Duration, error)
}

// Encryptor defines encryption operations. The additional data binds a
// ciphertext to its account ID.
type Encryptor interface {
	Encrypt(plaintext, additionalData []byte) (string, error)
	Decrypt(ciphertextBase64 string, additionalData []byte) ([]byte, error)
}

// QREncoder renders provisioning URIs as PNG images
type QREncoder interface {
	PNG(content string, size int) ([]byte, error)
}
