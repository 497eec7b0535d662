package totp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/config"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/domain"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/infrastructure/qrcode"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/infrastructure/redis"
	totpGen "github.com/nguyenquy0710/Financial-Tracking-sub001/internal/infrastructure/totp"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/otp"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/pkg/apperror"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/pkg/crypto"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/repository"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

// Service handles authenticator accounts and one-time codes
type Service struct {
	cfg       config.OTPConfig
	defaults  otp.Options
	encryptor Encryptor
	accounts  AccountRepository
	auditRepo AuditRepository
	store     CodeStore // optional; nil disables caching, replay guard and rate limit
	qr        QREncoder
	clock     *otp.Generator
}

// NewService creates a new service with real implementations
func NewService(cfg config.OTPConfig, accounts repository.AccountRepository, auditRepo repository.AuditRepository, redisClient *redis.Client) (*Service, error) {
	key, err := crypto.ParseKey(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode OTP encryption key: %w", err)
	}
	encryptor, err := crypto.NewAESEncryptor(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES encryptor: %w", err)
	}
	var store CodeStore
	if redisClient != nil {
		store = redisClient
	}
	return NewServiceWithDeps(cfg, encryptor, accounts, auditRepo, store, qrcode.NewEncoder(), otp.NewGenerator())
}

// NewServiceWithDeps creates a new service with injected dependencies (for testing)
func NewServiceWithDeps(cfg config.OTPConfig, encryptor Encryptor, accounts AccountRepository, auditRepo AuditRepository, store CodeStore, qr QREncoder, clock *otp.Generator) (*Service, error) {
	defaults := otp.Options{Digits: cfg.DefaultDigits, Period: cfg.DefaultPeriod}
	if cfg.DefaultAlgorithm != "" {
		alg, err := otp.ParseAlgorithm(cfg.DefaultAlgorithm)
		if err != nil {
			return nil, fmt.Errorf("invalid default algorithm: %w", err)
		}
		defaults.Algorithm = alg
	}
	return &Service{
		cfg:       cfg,
		defaults:  defaults,
		encryptor: encryptor,
		accounts:  accounts,
		auditRepo: auditRepo,
		store:     store,
		qr:        qr,
		clock:     clock,
	}, nil
}

// GenerateRequest is the request for a stateless code
type GenerateRequest struct {
	Secret    string `json:"secret"`
	Algorithm string `json:"algorithm"`
	Digits    int    `json:"digits"`
	Period    int    `json:"period"`
}

// CreateAccountRequest adds an account from an otpauth URI or from manual fields.
// When URI is set the other fields are ignored.
type CreateAccountRequest struct {
	URI         string `json:"uri"`
	Type        string `json:"type"`
	Issuer      string `json:"issuer"`
	AccountName string `json:"account_name"`
	Secret      string `json:"secret"`
	Algorithm   string `json:"algorithm"`
	Digits      int    `json:"digits"`
	Period      int    `json:"period"`
	Counter     uint64 `json:"counter"`
}

// NewSecretRequest is the request for a freshly generated secret
type NewSecretRequest struct {
	Issuer      string `json:"issuer"`
	AccountName string `json:"account_name"`
	Algorithm   string `json:"algorithm"`
	Digits      int    `json:"digits"`
	Period      int    `json:"period"`
}

// NewSecretResponse carries a generated secret and its provisioning URI
type NewSecretResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

// SkippedEntry is an exported account that could not be imported
type SkippedEntry struct {
	Issuer      string `json:"issuer"`
	AccountName string `json:"account_name"`
	Reason      string `json:"reason"`
}

// ImportResult lists the accounts created from an authenticator export
type ImportResult struct {
	Accounts []*domain.Account `json:"accounts"`
	Skipped  []SkippedEntry    `json:"skipped"`
}

// VerifyResult reports whether a submitted code was accepted
type VerifyResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"` // invalid_code, already_used
}

// Generate computes the current code for a raw secret without storing anything
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*otp.Code, error) {
	opts, err := requestOptions(otp.Options{}, req.Algorithm, req.Digits, req.Period)
	if err != nil {
		return nil, err
	}
	code, err := otp.GenerateAt(req.Secret, opts, s.clock.Time())
	if err != nil {
		return nil, inputError(err)
	}
	codesGeneratedTotal.WithLabelValues("stateless").Inc()
	return code, nil
}

// ParseURI parses an otpauth:// provisioning URI
func (s *Service) ParseURI(ctx context.Context, uri string) (*otp.ProvisioningURI, error) {
	p, err := otp.ParseURI(uri)
	if err != nil {
		return nil, inputError(err)
	}
	return p, nil
}

// NewSecret generates a random secret for enrolling a new authenticator
func (s *Service) NewSecret(ctx context.Context, req NewSecretRequest) (*NewSecretResponse, error) {
	if strings.TrimSpace(req.AccountName) == "" {
		return nil, validationError("account_name", "missing_account_name",
			"Account name is required", "Provide the login or email the secret belongs to")
	}
	issuer := req.Issuer
	if issuer == "" {
		issuer = s.cfg.Issuer
	}
	opts, err := requestOptions(s.defaults, req.Algorithm, req.Digits, req.Period)
	if err != nil {
		return nil, err
	}
	result, err := totpGen.Generate(issuer, req.AccountName, opts)
	if err != nil {
		if errors.Is(err, otp.ErrInvalidDigits) || errors.Is(err, otp.ErrInvalidPeriod) || errors.Is(err, otp.ErrCryptoUnavailable) {
			return nil, inputError(err)
		}
		slog.Error("Failed to generate secret", slog.Any("error", err))
		return nil, apperror.InternalError("Secret generation failed", "Try again later").WithError(err)
	}
	return &NewSecretResponse{Secret: result.Secret, OTPAuthURL: result.OTPAuthURL}, nil
}

// CreateAccount validates, encrypts and stores a new authenticator account
func (s *Service) CreateAccount(ctx context.Context, userID string, req CreateAccountRequest, clientIP, userAgent string) (*domain.Account, error) {
	var p *otp.ProvisioningURI
	if req.URI != "" {
		parsed, err := otp.ParseURI(req.URI)
		if err != nil {
			return nil, inputError(err)
		}
		p = parsed
	} else {
		p = s.manualURI(req)
	}

	account, err := s.newAccount(userID, p)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		slog.Error("Failed to create account", slog.Any("error", err), slog.String("user_id", userID))
		return nil, storageError("create account", err)
	}

	s.logEvent(ctx, "account_created", userID, clientIP, userAgent, true, "", map[string]interface{}{
		"account_id": account.ID.String(),
		"issuer":     account.Issuer,
		"type":       string(account.Type),
	})
	return account, nil
}

// ImportMigration creates one account per entry of an otpauth-migration export.
// Entries with parameters this service cannot generate codes for are skipped.
func (s *Service) ImportMigration(ctx context.Context, userID, uri, clientIP, userAgent string) (*ImportResult, error) {
	entries, err := otp.ParseMigrationURI(uri)
	if err != nil {
		return nil, inputError(err)
	}

	result := &ImportResult{Accounts: []*domain.Account{}, Skipped: []SkippedEntry{}}
	for i := range entries {
		account, err := s.newAccount(userID, &entries[i])
		if err != nil {
			reason := err.Error()
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				reason = appErr.Detail
			}
			result.Skipped = append(result.Skipped, SkippedEntry{
				Issuer:      entries[i].Issuer,
				AccountName: entries[i].AccountName,
				Reason:      reason,
			})
			continue
		}
		result.Accounts = append(result.Accounts, account)
	}

	if len(result.Accounts) > 0 {
		if err := s.accounts.CreateBatch(ctx, result.Accounts); err != nil {
			slog.Error("Failed to import accounts", slog.Any("error", err), slog.String("user_id", userID))
			return nil, storageError("import accounts", err)
		}
		accountsImportedTotal.Add(float64(len(result.Accounts)))
	}

	s.logEvent(ctx, "accounts_imported", userID, clientIP, userAgent, true, "", map[string]interface{}{
		"imported": len(result.Accounts),
		"skipped":  len(result.Skipped),
	})
	return result, nil
}

// ListAccounts returns the user's accounts ordered by issuer and name
func (s *Service) ListAccounts(ctx context.Context, userID string) ([]*domain.Account, error) {
	accounts, err := s.accounts.ListByUser(ctx, userID)
	if err != nil {
		slog.Error("Failed to list accounts", slog.Any("error", err), slog.String("user_id", userID))
		return nil, storageError("list accounts", err)
	}
	if accounts == nil {
		accounts = []*domain.Account{}
	}
	return accounts, nil
}

// GetAccount returns one of the user's accounts
func (s *Service) GetAccount(ctx context.Context, userID string, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, apperror.NotFoundError("account")
		}
		slog.Error("Failed to get account", slog.Any("error", err), slog.String("account_id", id.String()))
		return nil, storageError("get account", err)
	}
	return account, nil
}

// DeleteAccount removes one of the user's accounts
func (s *Service) DeleteAccount(ctx context.Context, userID string, id uuid.UUID, clientIP, userAgent string) error {
	if err := s.accounts.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return apperror.NotFoundError("account")
		}
		slog.Error("Failed to delete account", slog.Any("error", err), slog.String("account_id", id.String()))
		return storageError("delete account", err)
	}
	s.logEvent(ctx, "account_deleted", userID, clientIP, userAgent, true, "", map[string]interface{}{
		"account_id": id.String(),
	})
	return nil
}

// AccountCode returns the current code of an account. TOTP codes are cached
// until their window closes; HOTP accounts consume and advance the counter.
func (s *Service) AccountCode(ctx context.Context, userID string, id uuid.UUID) (*otp.Code, error) {
	if err := s.checkRateLimit(ctx, userID); err != nil {
		return nil, err
	}

	account, err := s.GetAccount(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if account.IsHOTP() {
		return s.hotpCode(ctx, account)
	}

	now := s.clock.Time()
	opts := account.Options()
	counter := otp.Counter(now, opts.Period)
	if cached := s.cachedCode(ctx, account.ID, counter); cached != nil {
		cached.TimeRemaining = opts.Period - int(now.Unix()%int64(opts.Period))
		codesGeneratedTotal.WithLabelValues("totp").Inc()
		return cached, nil
	}

	secret, err := s.decryptSecret(account)
	if err != nil {
		return nil, err
	}
	code, err := otp.GenerateAt(secret, opts, now)
	if err != nil {
		return nil, inputError(err)
	}
	if s.store != nil && s.cfg.CacheCodes {
		if err := s.store.CacheCode(ctx, account.ID.String(), counter, code); err != nil {
			slog.Warn("Failed to cache code", slog.Any("error", err), slog.String("account_id", account.ID.String()))
		}
	}
	codesGeneratedTotal.WithLabelValues("totp").Inc()
	return code, nil
}

// VerifyCode checks a code against a TOTP account. An accepted code is
// rejected on reuse until it can no longer match any window.
func (s *Service) VerifyCode(ctx context.Context, userID string, id uuid.UUID, code, clientIP, userAgent string) (*VerifyResult, error) {
	account, err := s.GetAccount(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if account.IsHOTP() {
		return nil, validationError("account", "hotp_verify",
			"Verification is only available for time-based accounts",
			"Use the code endpoint for counter-based accounts")
	}

	code = strings.TrimSpace(code)
	if !IsNumeric(code) || len(code) != account.Digits {
		return s.rejectCode(ctx, account, userID, clientIP, userAgent, "invalid_code"), nil
	}

	secret, err := s.decryptSecret(account)
	if err != nil {
		return nil, err
	}
	opts := account.Options()
	valid, err := s.clock.Validate(secret, code, opts, s.cfg.VerifySkew)
	if err != nil {
		return nil, inputError(err)
	}
	if !valid {
		return s.rejectCode(ctx, account, userID, clientIP, userAgent, "invalid_code"), nil
	}

	if s.store != nil {
		ttl := time.Duration(int(2*s.cfg.VerifySkew+1)*opts.Period) * time.Second
		isNew, err := s.store.MarkCodeUsed(ctx, account.ID.String(), code, ttl)
		if err != nil {
			slog.Error("Failed to mark code used", slog.Any("error", err))
			return nil, apperror.ServiceUnavailableError("Replay protection is unavailable", "Try again later").WithError(err)
		}
		if !isNew {
			verifyTotal.WithLabelValues("replay").Inc()
			s.logEvent(ctx, "code_verify_replay", userID, clientIP, userAgent, false, "already_used", map[string]interface{}{
				"account_id": account.ID.String(),
			})
			return &VerifyResult{Valid: false, Reason: "already_used"}, nil
		}
	}

	verifyTotal.WithLabelValues("valid").Inc()
	return &VerifyResult{Valid: true}, nil
}

// ProvisioningURI rebuilds the otpauth:// URI of an account for re-enrollment
func (s *Service) ProvisioningURI(ctx context.Context, userID string, id uuid.UUID) (string, error) {
	account, err := s.GetAccount(ctx, userID, id)
	if err != nil {
		return "", err
	}
	secret, err := s.decryptSecret(account)
	if err != nil {
		return "", err
	}
	s.logEvent(ctx, "account_exported", userID, "", "", true, "", map[string]interface{}{
		"account_id": account.ID.String(),
	})
	return account.ProvisioningURI(secret).String(), nil
}

// QRCode renders the provisioning URI of an account as a PNG.
// A zero size uses the configured default.
func (s *Service) QRCode(ctx context.Context, userID string, id uuid.UUID, size int) ([]byte, error) {
	if size == 0 {
		size = s.cfg.QRSize
	}
	if size != 0 && (size < qrcode.MinSize || size > qrcode.MaxSize) {
		return nil, validationError("size", "invalid_size",
			fmt.Sprintf("QR size must be between %d and %d", qrcode.MinSize, qrcode.MaxSize),
			"Pick a smaller or larger size")
	}
	uri, err := s.ProvisioningURI(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	png, err := s.qr.PNG(uri, size)
	if err != nil {
		slog.Error("Failed to render QR code", slog.Any("error", err))
		return nil, apperror.InternalError("QR rendering failed", "Try again later").WithError(err)
	}
	return png, nil
}

// ListActivity returns the user's recent audit events
func (s *Service) ListActivity(ctx context.Context, userID string, limit int) ([]repository.AuditLog, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	logs, err := s.auditRepo.ListByActor(ctx, userID, int32(limit))
	if err != nil {
		slog.Error("Failed to list activity", slog.Any("error", err), slog.String("user_id", userID))
		return nil, storageError("list activity", err)
	}
	if logs == nil {
		logs = []repository.AuditLog{}
	}
	return logs, nil
}

// manualURI builds a provisioning URI from individually entered fields
func (s *Service) manualURI(req CreateAccountRequest) *otp.ProvisioningURI {
	p := &otp.ProvisioningURI{
		Type:        strings.ToUpper(req.Type),
		Issuer:      req.Issuer,
		AccountName: req.AccountName,
		Secret:      req.Secret,
		Algorithm:   req.Algorithm,
		Digits:      req.Digits,
		Period:      req.Period,
		Counter:     req.Counter,
	}
	if p.Type == "" {
		p.Type = otp.TypeTOTP
	}
	if p.Algorithm == "" {
		p.Algorithm = s.defaults.Algorithm.String()
	}
	if p.Digits == 0 {
		p.Digits = s.defaults.Digits
	}
	if p.Digits == 0 {
		p.Digits = otp.DefaultDigits
	}
	if p.Period == 0 {
		p.Period = s.defaults.Period
	}
	if p.Period == 0 {
		p.Period = otp.DefaultPeriod
	}
	return p
}

// newAccount validates p and returns an account with its secret encrypted
func (s *Service) newAccount(userID string, p *otp.ProvisioningURI) (*domain.Account, error) {
	accountType, ok := domain.ParseAccountType(p.Type)
	if !ok {
		return nil, validationError("type", "unsupported_type",
			fmt.Sprintf("unsupported account type %q", p.Type),
			"Use TOTP or HOTP")
	}
	if strings.TrimSpace(p.AccountName) == "" {
		return nil, validationError("account_name", "missing_account_name",
			"Account name is required", "Provide the login or email the secret belongs to")
	}
	if p.Secret == "" {
		return nil, inputError(otp.ErrMissingSecret)
	}
	opts, err := p.Options()
	if err != nil {
		return nil, inputError(err)
	}
	key, err := otp.DecodeSecret(p.Secret)
	if err != nil {
		return nil, inputError(err)
	}

	id := uuid.New()
	encrypted, err := s.encryptor.Encrypt([]byte(otp.EncodeSecret(key)), id[:])
	if err != nil {
		slog.Error("Failed to encrypt secret", slog.Any("error", err))
		return nil, apperror.InternalError("Secret encryption failed", "Try again later").WithError(err)
	}

	return &domain.Account{
		ID:              id,
		UserID:          userID,
		Type:            accountType,
		Issuer:          p.Issuer,
		AccountName:     p.AccountName,
		Algorithm:       opts.Algorithm,
		Digits:          opts.Digits,
		Period:          opts.Period,
		Counter:         p.Counter,
		SecretEncrypted: encrypted,
	}, nil
}

func (s *Service) hotpCode(ctx context.Context, account *domain.Account) (*otp.Code, error) {
	secret, err := s.decryptSecret(account)
	if err != nil {
		return nil, err
	}
	counter, err := s.accounts.NextCounter(ctx, account.UserID, account.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, apperror.NotFoundError("account")
		}
		slog.Error("Failed to advance counter", slog.Any("error", err), slog.String("account_id", account.ID.String()))
		return nil, storageError("advance counter", err)
	}
	code, err := otp.GenerateHOTP(secret, account.Options(), counter)
	if err != nil {
		return nil, inputError(err)
	}
	codesGeneratedTotal.WithLabelValues("hotp").Inc()
	return &otp.Code{Code: code}, nil
}

// cachedCode returns the cached code of a window, or nil on miss or when
// caching is off. Cache failures fall through to generation.
func (s *Service) cachedCode(ctx context.Context, id uuid.UUID, counter uint64) *otp.Code {
	if s.store == nil || !s.cfg.CacheCodes {
		return nil
	}
	code, err := s.store.GetCachedCode(ctx, id.String(), counter)
	if err != nil {
		codeCacheTotal.WithLabelValues("error").Inc()
		slog.Warn("Failed to read code cache", slog.Any("error", err), slog.String("account_id", id.String()))
		return nil
	}
	if code == nil {
		codeCacheTotal.WithLabelValues("miss").Inc()
		return nil
	}
	codeCacheTotal.WithLabelValues("hit").Inc()
	return code
}

// checkRateLimit fails open when Redis is unavailable
func (s *Service) checkRateLimit(ctx context.Context, userID string) error {
	if s.store == nil || s.cfg.CodeRateLimit <= 0 {
		return nil
	}
	count, ttl, err := s.store.IncrementCodeRate(ctx, userID)
	if err != nil {
		slog.Error("Failed to check rate limit", slog.Any("error", err), slog.String("user_id", userID))
		return nil
	}
	if count > int64(s.cfg.CodeRateLimit) {
		rateLimitedTotal.Inc()
		seconds := int(ttl.Seconds()) + 1
		return apperror.TooManyRequestsError(
			fmt.Sprintf("At most %d codes per minute", s.cfg.CodeRateLimit),
			fmt.Sprintf("Try again in %d seconds", seconds),
		)
	}
	return nil
}

func (s *Service) decryptSecret(account *domain.Account) (string, error) {
	secret, err := s.encryptor.Decrypt(account.SecretEncrypted, account.ID[:])
	if err != nil {
		slog.Error("Failed to decrypt secret", slog.Any("error", err), slog.String("account_id", account.ID.String()))
		return "", apperror.InternalError("Stored secret cannot be read", "Contact support").WithError(err)
	}
	return string(secret), nil
}

func (s *Service) rejectCode(ctx context.Context, account *domain.Account, userID, clientIP, userAgent, reason string) *VerifyResult {
	verifyTotal.WithLabelValues("invalid").Inc()
	s.logEvent(ctx, "code_verify_failed", userID, clientIP, userAgent, false, reason, map[string]interface{}{
		"account_id": account.ID.String(),
	})
	return &VerifyResult{Valid: false, Reason: reason}
}

// logEvent logs audit events
func (s *Service) logEvent(ctx context.Context, eventType, userID, clientIP, userAgent string, success bool, failureReason string, metadata map[string]interface{}) {
	if s.auditRepo == nil {
		return
	}
	if err := s.auditRepo.LogEvent(ctx, repository.AuditEvent{
		EventType:     eventType,
		ActorID:       userID,
		ClientIP:      clientIP,
		UserAgent:     userAgent,
		Success:       success,
		FailureReason: failureReason,
		Metadata:      metadata,
	}); err != nil {
		slog.Warn("Failed to write audit event", slog.Any("error", err), slog.String("event", eventType))
	}
}

// requestOptions merges textual request parameters over defaults
func requestOptions(defaults otp.Options, algorithm string, digits, period int) (otp.Options, error) {
	opts := defaults
	if algorithm != "" {
		alg, err := otp.ParseAlgorithm(algorithm)
		if err != nil {
			return otp.Options{}, inputError(err)
		}
		opts.Algorithm = alg
	}
	if digits != 0 {
		opts.Digits = digits
	}
	if period != 0 {
		opts.Period = period
	}
	return opts, nil
}

// IsNumeric checks if a string is all digits
func IsNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
