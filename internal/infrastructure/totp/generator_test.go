package totp

import (
	"strings"
	"testing"
	"time"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/otp"
)

func TestGenerate(t *testing.T) {
	result, err := Generate("Financial Tracking", "test@example.com", otp.Options{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// Check secret length (32 chars base32 = 160 bits)
	if len(result.Secret) != 32 {
		t.Errorf("expected secret length 32, got %d", len(result.Secret))
	}

	if !strings.HasPrefix(result.OTPAuthURL, "otpauth://totp/") {
		t.Errorf("invalid otpauth URL: %s", result.OTPAuthURL)
	}
	if !strings.Contains(result.OTPAuthURL, "test%40example.com") && !strings.Contains(result.OTPAuthURL, "test@example.com") {
		t.Errorf("account not found in URL: %s", result.OTPAuthURL)
	}
}

func TestGenerate_URLParsesBack(t *testing.T) {
	result, err := Generate("ACME", "alice", otp.Options{Algorithm: otp.SHA256, Digits: 8, Period: 60})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	p, err := otp.ParseURI(result.OTPAuthURL)
	if err != nil {
		t.Fatalf("ParseURI failed: %v", err)
	}
	if p.Issuer != "ACME" || p.AccountName != "alice" {
		t.Errorf("unexpected label: issuer=%q account=%q", p.Issuer, p.AccountName)
	}
	if p.Secret != result.Secret {
		t.Errorf("secret mismatch: %q != %q", p.Secret, result.Secret)
	}
	if p.Algorithm != "SHA256" || p.Digits != 8 || p.Period != 60 {
		t.Errorf("unexpected parameters: %+v", p)
	}

	opts, err := p.Options()
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	code, err := otp.GenerateAt(p.Secret, opts, time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("GenerateAt failed: %v", err)
	}
	if len(code.Code) != 8 {
		t.Errorf("expected 8 digit code, got %q", code.Code)
	}
}

func TestGenerate_InvalidOptions(t *testing.T) {
	if _, err := Generate("ACME", "alice", otp.Options{Algorithm: otp.Algorithm(9)}); err == nil {
		t.Error("expected error for unknown algorithm")
	}
	if _, err := Generate("ACME", "alice", otp.Options{Digits: 11}); err == nil {
		t.Error("expected error for 11 digits")
	}
}

func TestMultipleGenerateUnique(t *testing.T) {
	secrets := make(map[string]bool)

	for i := 0; i < 10; i++ {
		result, err := Generate("Financial Tracking", "test@example.com", otp.Options{})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if secrets[result.Secret] {
			t.Error("duplicate secret generated")
		}
		secrets[result.Secret] = true
	}
}
