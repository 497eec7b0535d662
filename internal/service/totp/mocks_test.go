package totp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/domain"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/otp"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/repository"
)

// MockEncryptor implements Encryptor interface for testing
type MockEncryptor struct {
	EncryptFunc func(plaintext []byte) (string, error)
	DecryptFunc func(ciphertext string) ([]byte, error)
}

func (m *MockEncryptor) Encrypt(plaintext, additionalData []byte) (string, error) {
	if m.EncryptFunc != nil {
		return m.EncryptFunc(plaintext)
	}
	return "encrypted:" + string(plaintext), nil
}

func (m *MockEncryptor) Decrypt(ciphertext string, additionalData []byte) ([]byte, error) {
	if m.DecryptFunc != nil {
		return m.DecryptFunc(ciphertext)
	}
	if plain, ok := strings.CutPrefix(ciphertext, "encrypted:"); ok {
		return []byte(plain), nil
	}
	return nil, errors.New("invalid ciphertext")
}

// MockAccountRepository implements AccountRepository interface for testing
type MockAccountRepository struct {
	Accounts map[uuid.UUID]*domain.Account

	// Error injection
	CreateErr      error
	ListErr        error
	NextCounterErr error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts: make(map[uuid.UUID]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	m.Accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) CreateBatch(ctx context.Context, accounts []*domain.Account) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, a := range accounts {
		m.Accounts[a.ID] = a
	}
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Account, error) {
	if a, ok := m.Accounts[id]; ok && a.UserID == userID {
		return a, nil
	}
	return nil, repository.ErrAccountNotFound
}

func (m *MockAccountRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []*domain.Account
	for _, a := range m.Accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountName < out[j].AccountName })
	return out, nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if a, ok := m.Accounts[id]; ok && a.UserID == userID {
		delete(m.Accounts, id)
		return nil
	}
	return repository.ErrAccountNotFound
}

func (m *MockAccountRepository) NextCounter(ctx context.Context, userID string, id uuid.UUID) (uint64, error) {
	if m.NextCounterErr != nil {
		return 0, m.NextCounterErr
	}
	a, ok := m.Accounts[id]
	if !ok || a.UserID != userID || !a.IsHOTP() {
		return 0, repository.ErrAccountNotFound
	}
	current := a.Counter
	a.Counter++
	return current, nil
}

// MockCodeStore implements CodeStore interface for testing
type MockCodeStore struct {
	Cached    map[string]otp.Code
	UsedCodes map[string]time.Duration
	Rates     map[string]int64

	// Error injection
	GetCachedCodeErr error
	MarkCodeUsedErr  error
	IncrementRateErr error
}

func NewMockCodeStore() *MockCodeStore {
	return &MockCodeStore{
		Cached:    make(map[string]otp.Code),
		UsedCodes: make(map[string]time.Duration),
		Rates:     make(map[string]int64),
	}
}

func cacheKey(accountID string, counter uint64) string {
	return fmt.Sprintf("%s:%d", accountID, counter)
}

func (m *MockCodeStore) GetCachedCode(ctx context.Context, accountID string, counter uint64) (*otp.Code, error) {
	if m.GetCachedCodeErr != nil {
		return nil, m.GetCachedCodeErr
	}
	if code, ok := m.Cached[cacheKey(accountID, counter)]; ok {
		return &code, nil
	}
	return nil, nil
}

func (m *MockCodeStore) CacheCode(ctx context.Context, accountID string, counter uint64, code *otp.Code) error {
	m.Cached[cacheKey(accountID, counter)] = *code
	return nil
}

func (m *MockCodeStore) MarkCodeUsed(ctx context.Context, accountID, code string, ttl time.Duration) (bool, error) {
	if m.MarkCodeUsedErr != nil {
		return false, m.MarkCodeUsedErr
	}
	key := accountID + ":" + code
	if _, used := m.UsedCodes[key]; used {
		return false, nil // Already used (replay)
	}
	m.UsedCodes[key] = ttl
	return true, nil
}

func (m *MockCodeStore) IncrementCodeRate(ctx context.Context, userID string) (int64, time.Duration, error) {
	if m.IncrementRateErr != nil {
		return 0, 0, m.IncrementRateErr
	}
	m.Rates[userID]++
	return m.Rates[userID], 45 * time.Second, nil
}

// MockAuditRepository mocks AuditRepository interface
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) LogEvent(ctx context.Context, event repository.AuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockAuditRepository) ListByActor(ctx context.Context, actorID string, limit int32) ([]repository.AuditLog, error) {
	args := m.Called(ctx, actorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.AuditLog), args.Error(1)
}

// MockQREncoder implements QREncoder interface for testing
type MockQREncoder struct {
	Content string
	Size    int
}

func (m *MockQREncoder) PNG(content string, size int) ([]byte, error) {
	m.Content = content
	m.Size = size
	return []byte("png"), nil
}
