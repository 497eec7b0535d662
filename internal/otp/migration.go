package otp

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
)

const migrationScheme = "otpauth-migration"

// Field numbers of the authenticator export MigrationPayload message.
const (
	payloadOtpParameters protowire.Number = 1

	paramSecret    protowire.Number = 1
	paramName      protowire.Number = 2
	paramIssuer    protowire.Number = 3
	paramAlgorithm protowire.Number = 4
	paramDigits    protowire.Number = 5
	paramType      protowire.Number = 6
	paramCounter   protowire.Number = 7
)

var migrationAlgorithms = map[uint64]string{
	0: "SHA1",
	1: "SHA1",
	2: "SHA256",
	3: "SHA512",
	4: "MD5",
}

var migrationDigits = map[uint64]int{
	0: 6,
	1: 6,
	2: 8,
}

// ParseMigrationURI decodes an otpauth-migration://offline?data=... export
// into one provisioning URI per account.
func ParseMigrationURI(raw string) ([]ProvisioningURI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedURI, err)
	}
	if u.Scheme != migrationScheme || u.Host != "offline" {
		return nil, fmt.Errorf("%w: not an %s://offline uri", ErrMalformedURI, migrationScheme)
	}
	data := strings.ReplaceAll(u.Query().Get("data"), " ", "+")
	if data == "" {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedURI)
	}
	payload, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedURI, err)
	}

	var out []ProvisioningURI
	err = walkFields(payload, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != payloadOtpParameters || typ != protowire.BytesType {
			return skipField(num, typ, b)
		}
		msg, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		p, err := decodeOtpParameters(msg)
		if err != nil {
			return 0, err
		}
		out = append(out, *p)
		return n, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedURI, err)
	}
	return out, nil
}

func decodeOtpParameters(b []byte) (*ProvisioningURI, error) {
	p := &ProvisioningURI{Type: TypeTOTP, Algorithm: "SHA1", Digits: DefaultDigits, Period: DefaultPeriod}
	var name, issuer string

	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case typ == protowire.BytesType && (num == paramSecret || num == paramName || num == paramIssuer):
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			switch num {
			case paramSecret:
				p.Secret = EncodeSecret(v)
			case paramName:
				name = string(v)
			case paramIssuer:
				issuer = string(v)
			}
			return n, nil
		case typ == protowire.VarintType && num >= paramAlgorithm && num <= paramCounter:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			switch num {
			case paramAlgorithm:
				alg, ok := migrationAlgorithms[v]
				if !ok {
					return 0, fmt.Errorf("unknown algorithm %d", v)
				}
				p.Algorithm = alg
			case paramDigits:
				digits, ok := migrationDigits[v]
				if !ok {
					return 0, fmt.Errorf("unknown digit count %d", v)
				}
				p.Digits = digits
			case paramType:
				if v == 1 {
					p.Type = TypeHOTP
				}
			case paramCounter:
				p.Counter = v
			}
			return n, nil
		default:
			return skipField(num, typ, b)
		}
	})
	if err != nil {
		return nil, err
	}
	if p.Secret == "" {
		return nil, ErrMissingSecret
	}

	p.Issuer, p.AccountName = splitLabel(name)
	if issuer != "" {
		p.Issuer = issuer
	}
	if p.Issuer == "" {
		p.Issuer = fallbackIssuer(p.AccountName)
	}
	return p, nil
}

func walkFields(b []byte, fn func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		b = b[m:]
	}
	return nil
}

func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return n, nil
}
