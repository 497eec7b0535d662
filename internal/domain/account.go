package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/otp"
)

type AccountType string

const (
	AccountTypeTOTP AccountType = otp.TypeTOTP
	AccountTypeHOTP AccountType = otp.TypeHOTP
)

// Account is a third-party authenticator entry stored for a user
type Account struct {
	ID              uuid.UUID     `json:"id"`
	UserID          string        `json:"user_id"`
	Type            AccountType   `json:"type"`
	Issuer          string        `json:"issuer"`
	AccountName     string        `json:"account_name"`
	Algorithm       otp.Algorithm `json:"algorithm"`
	Digits          int           `json:"digits"`
	Period          int           `json:"period"`
	Counter         uint64        `json:"counter"`
	SecretEncrypted string        `json:"-"` // Never expose
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Options returns the code generation parameters of the account
func (a *Account) Options() otp.Options {
	return otp.Options{
		Algorithm: a.Algorithm,
		Digits:    a.Digits,
		Period:    a.Period,
	}
}

// IsHOTP reports whether codes are derived from the stored counter
func (a *Account) IsHOTP() bool {
	return a.Type == AccountTypeHOTP
}

// ProvisioningURI rebuilds the otpauth:// representation for a decrypted secret
func (a *Account) ProvisioningURI(secret string) *otp.ProvisioningURI {
	return &otp.ProvisioningURI{
		Type:        string(a.Type),
		Issuer:      a.Issuer,
		AccountName: a.AccountName,
		Secret:      secret,
		Algorithm:   a.Algorithm.String(),
		Digits:      a.Digits,
		Period:      a.Period,
		Counter:     a.Counter,
	}
}

// ParseAccountType accepts TOTP or HOTP in any case
func ParseAccountType(s string) (AccountType, bool) {
	switch AccountType(strings.ToUpper(s)) {
	case AccountTypeTOTP:
		return AccountTypeTOTP, true
	case AccountTypeHOTP:
		return AccountTypeHOTP, true
	}
	return "", false
}
