package otp

import (
	"crypto/subtle"
	"fmt"
	"time"
)

const (
	DefaultDigits = 6
	DefaultPeriod = 30
)

// Options holds the generation parameters of an account. Zero values fall back
// to SHA1, 6 digits and a 30 second period.
type Options struct {
	Algorithm Algorithm `json:"algorithm"`
	Digits    int       `json:"digits"`
	Period    int       `json:"period"`
}

func (o Options) withDefaults() Options {
	if o.Digits == 0 {
		o.Digits = DefaultDigits
	}
	if o.Period == 0 {
		o.Period = DefaultPeriod
	}
	return o
}

// Code is a one-time code together with the time left in its window.
type Code struct {
	Code          string `json:"code"`
	TimeRemaining int    `json:"timeRemaining"`
	Period        int    `json:"period"`
}

// TOTP computes the RFC 6238 code for key at the given time.
func TOTP(key []byte, alg Algorithm, digits, period int, at time.Time) (*Code, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPeriod, period)
	}
	now := at.Unix()
	if now < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTime, at)
	}

	step := int64(period)
	code, err := HOTP(key, uint64(now/step), alg, digits)
	if err != nil {
		return nil, err
	}
	return &Code{
		Code:          code,
		TimeRemaining: int(step - now%step),
		Period:        period,
	}, nil
}

// Counter returns the TOTP time step containing at.
func Counter(at time.Time, period int) uint64 {
	if period <= 0 || at.Unix() < 0 {
		return 0
	}
	return uint64(at.Unix() / int64(period))
}

// Generate returns the current TOTP code for a base32 secret.
func Generate(secret string, opts Options) (*Code, error) {
	return GenerateAt(secret, opts, time.Now())
}

// GenerateAt returns the TOTP code for a base32 secret at a fixed time.
func GenerateAt(secret string, opts Options, at time.Time) (*Code, error) {
	key, err := DecodeSecret(secret)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	return TOTP(key, opts.Algorithm, opts.Digits, opts.Period, at)
}

// GenerateHOTP returns the counter-based code for a base32 secret.
func GenerateHOTP(secret string, opts Options, counter uint64) (string, error) {
	key, err := DecodeSecret(secret)
	if err != nil {
		return "", err
	}
	opts = opts.withDefaults()
	return HOTP(key, counter, opts.Algorithm, opts.Digits)
}

// Validate reports whether code matches the TOTP of secret in any window within
// skew steps of at.
func Validate(secret, code string, opts Options, at time.Time, skew uint) (bool, error) {
	key, err := DecodeSecret(secret)
	if err != nil {
		return false, err
	}
	opts = opts.withDefaults()
	if opts.Period <= 0 {
		return false, fmt.Errorf("%w: %d", ErrInvalidPeriod, opts.Period)
	}
	if at.Unix() < 0 {
		return false, fmt.Errorf("%w: %s", ErrInvalidTime, at)
	}
	if len(code) != opts.Digits {
		return false, nil
	}

	current := Counter(at, opts.Period)
	for i := -int64(skew); i <= int64(skew); i++ {
		if i < 0 && uint64(-i) > current {
			continue
		}
		want, err := HOTP(key, uint64(int64(current)+i), opts.Algorithm, opts.Digits)
		if err != nil {
			return false, err
		}
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
			return true, nil
		}
	}
	return false, nil
}

// Generator produces TOTP codes against an injectable clock.
type Generator struct {
	Now func() time.Time
}

// NewGenerator returns a Generator reading the wall clock.
func NewGenerator() *Generator {
	return &Generator{Now: time.Now}
}

func (g *Generator) now() time.Time {
	if g == nil || g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

// Generate returns the TOTP code for secret at the generator's current time.
func (g *Generator) Generate(secret string, opts Options) (*Code, error) {
	return GenerateAt(secret, opts, g.now())
}

// Validate checks code against the generator's current time.
func (g *Generator) Validate(secret, code string, opts Options, skew uint) (bool, error) {
	return Validate(secret, code, opts, g.now(), skew)
}

// Time returns the generator's current time.
func (g *Generator) Time() time.Time {
	return g.now()
}
