package otp

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySecret is returned when a secret is empty after stripping padding and whitespace.
	ErrEmptySecret = errors.New("otp: empty secret")
	// ErrInvalidBase32 is returned when a secret contains characters outside A-Z2-7.
	ErrInvalidBase32 = errors.New("otp: invalid base32 secret")
	// ErrCryptoUnavailable is returned for hash algorithms without an HMAC implementation.
	ErrCryptoUnavailable = errors.New("otp: algorithm not available")
	// ErrInvalidDigits is returned when the code length is outside 1..10.
	ErrInvalidDigits = errors.New("otp: invalid digits")
	// ErrInvalidPeriod is returned when the time step is not positive.
	ErrInvalidPeriod = errors.New("otp: invalid period")
	// ErrInvalidTime is returned for timestamps before the Unix epoch.
	ErrInvalidTime = errors.New("otp: invalid time")
	// ErrMissingSecret is returned when a provisioning URI has no secret parameter.
	ErrMissingSecret = errors.New("otp: missing secret")
	// ErrMalformedURI is returned when a provisioning URI cannot be parsed.
	ErrMalformedURI = errors.New("otp: malformed uri")
	// ErrShortDigest is returned by Truncate for a digest too short for its offset.
	ErrShortDigest = errors.New("otp: digest too short")
)

// DecodeError describes an invalid character in a base32 secret.
type DecodeError struct {
	Char     rune
	Position int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: illegal character %q at position %d", ErrInvalidBase32, e.Char, e.Position)
}

func (e *DecodeError) Unwrap() error {
	return ErrInvalidBase32
}
