package totp

import (
	"errors"
	"fmt"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/otp"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/pkg/apperror"
)

// inputErrors maps core sentinels to the request field at fault and a metric reason
var inputErrors = []struct {
	err    error
	field  string
	reason string
	action string
}{
	{otp.ErrEmptySecret, "secret", "empty_secret", "Provide the base32 secret shown by the issuer"},
	{otp.ErrInvalidBase32, "secret", "invalid_base32", "Secrets use only the letters A-Z and digits 2-7"},
	{otp.ErrMissingSecret, "uri", "missing_secret", "The otpauth URI must carry a secret parameter"},
	{otp.ErrMalformedURI, "uri", "malformed_uri", "Scan the QR code again or enter the account manually"},
	{otp.ErrCryptoUnavailable, "algorithm", "unsupported_algorithm", "Use SHA1, SHA256 or SHA512"},
	{otp.ErrInvalidDigits, "digits", "invalid_digits", "Digits must be between 1 and 10"},
	{otp.ErrInvalidPeriod, "period", "invalid_period", "Period must be a positive number of seconds"},
}

// inputError converts an error from the otp package into a 400 problem and
// counts it. Anything else becomes a 500.
func inputError(err error) *apperror.AppError {
	for _, m := range inputErrors {
		if errors.Is(err, m.err) {
			parseFailuresTotal.WithLabelValues(m.reason).Inc()
			return apperror.ValidationError(err.Error(), m.action).
				WithErrors(map[string]string{m.field: m.reason}).
				WithError(err)
		}
	}
	return apperror.InternalError("Code generation failed", "Try again later").WithError(err)
}

func validationError(field, reason, detail, action string) *apperror.AppError {
	parseFailuresTotal.WithLabelValues(reason).Inc()
	return apperror.ValidationError(detail, action).
		WithErrors(map[string]string{field: reason})
}

func storageError(op string, err error) *apperror.AppError {
	return apperror.InternalError("Account storage is unavailable", "Try again later").
		WithError(fmt.Errorf("%s: %w", op, err))
}
