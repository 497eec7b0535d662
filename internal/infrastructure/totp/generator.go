package totp

import (
	"fmt"

	pqotp "github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/otp"
)

const (
	SecretSize = 20 // 160 bits (32 chars base32)
)

var pquernaAlgorithms = map[otp.Algorithm]pqotp.Algorithm{
	otp.SHA1:   pqotp.AlgorithmSHA1,
	otp.SHA256: pqotp.AlgorithmSHA256,
	otp.SHA512: pqotp.AlgorithmSHA512,
}

// GenerateResult contains a freshly generated secret with its provisioning URI
type GenerateResult struct {
	Secret      string // Base32-encoded secret
	OTPAuthURL  string // otpauth:// URI for QR code
	Issuer      string
	AccountName string
}

// Generate creates a new random TOTP key for the given issuer and account
func Generate(issuer, accountName string, opts otp.Options) (*GenerateResult, error) {
	alg, ok := pquernaAlgorithms[opts.Algorithm]
	if !ok {
		return nil, fmt.Errorf("%w: %s", otp.ErrCryptoUnavailable, opts.Algorithm)
	}
	if opts.Digits == 0 {
		opts.Digits = otp.DefaultDigits
	}
	if opts.Period == 0 {
		opts.Period = otp.DefaultPeriod
	}
	if opts.Digits < 1 || opts.Digits > otp.MaxDigits {
		return nil, fmt.Errorf("%w: %d", otp.ErrInvalidDigits, opts.Digits)
	}
	if opts.Period < 0 {
		return nil, fmt.Errorf("%w: %d", otp.ErrInvalidPeriod, opts.Period)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
		Period:      uint(opts.Period),
		SecretSize:  SecretSize,
		Digits:      pqotp.Digits(opts.Digits),
		Algorithm:   alg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}
	return &GenerateResult{
		Secret:      key.Secret(),
		OTPAuthURL:  key.URL(),
		Issuer:      issuer,
		AccountName: accountName,
	}, nil
}
