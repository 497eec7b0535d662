package otp

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	uriScheme = "otpauth://"

	TypeTOTP = "TOTP"
	TypeHOTP = "HOTP"
)

// ProvisioningURI is the parsed form of an otpauth:// key URI.
type ProvisioningURI struct {
	Type        string `json:"type"`
	Issuer      string `json:"issuer"`
	AccountName string `json:"accountName"`
	Secret      string `json:"secret"`
	Algorithm   string `json:"algorithm"`
	Digits      int    `json:"digits"`
	Period      int    `json:"period"`
	Counter     uint64 `json:"counter"`
}

// ParseURI parses an otpauth://{type}/{label}?{params} URI. The type is upper-cased
// but not restricted to TOTP or HOTP.
func ParseURI(raw string) (p *ProvisioningURI, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("%w: %v", ErrMalformedURI, r)
		}
	}()

	if !strings.HasPrefix(raw, uriScheme) {
		return nil, fmt.Errorf("%w: scheme is not otpauth", ErrMalformedURI)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedURI, err)
	}
	query, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedURI, err)
	}

	issuer, account := splitLabel(strings.TrimPrefix(u.Path, "/"))

	secret := query.Get("secret")
	if secret == "" {
		return nil, ErrMissingSecret
	}

	p = &ProvisioningURI{
		Type:        strings.ToUpper(u.Host),
		Issuer:      issuer,
		AccountName: account,
		Secret:      secret,
		Algorithm:   "SHA1",
		Digits:      DefaultDigits,
		Period:      DefaultPeriod,
	}
	if v := query.Get("algorithm"); v != "" {
		p.Algorithm = v
	}
	if p.Digits, err = intParam(query, "digits", DefaultDigits); err != nil {
		return nil, err
	}
	if p.Period, err = intParam(query, "period", DefaultPeriod); err != nil {
		return nil, err
	}
	if v := query.Get("counter"); v != "" {
		if p.Counter, err = strconv.ParseUint(v, 10, 64); err != nil {
			return nil, fmt.Errorf("%w: counter %q", ErrMalformedURI, v)
		}
	}
	if v := query.Get("issuer"); v != "" {
		p.Issuer = v
	}
	if p.Issuer == "" {
		p.Issuer = fallbackIssuer(p.AccountName)
	}
	return p, nil
}

// splitLabel splits "issuer:account" on the first colon only.
func splitLabel(label string) (issuer, account string) {
	if before, after, ok := strings.Cut(label, ":"); ok {
		return before, after
	}
	return "", label
}

// fallbackIssuer derives an issuer from an account name: the local part of an
// email address, or the whole name.
func fallbackIssuer(account string) string {
	if before, _, ok := strings.Cut(account, "@"); ok {
		return before
	}
	return account
}

func intParam(query url.Values, name string, def int) (int, error) {
	v := query.Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrMalformedURI, name, v)
	}
	return n, nil
}

// Options converts the textual parameters into generation options.
func (p *ProvisioningURI) Options() (Options, error) {
	alg, err := ParseAlgorithm(p.Algorithm)
	if err != nil {
		return Options{}, err
	}
	if p.Digits < 1 || p.Digits > MaxDigits {
		return Options{}, fmt.Errorf("%w: %d", ErrInvalidDigits, p.Digits)
	}
	if p.Period <= 0 {
		return Options{}, fmt.Errorf("%w: %d", ErrInvalidPeriod, p.Period)
	}
	return Options{Algorithm: alg, Digits: p.Digits, Period: p.Period}, nil
}

// String renders p back into an otpauth:// URI.
func (p *ProvisioningURI) String() string {
	label := p.AccountName
	if p.Issuer != "" {
		label = p.Issuer + ":" + p.AccountName
	}

	v := url.Values{}
	v.Set("secret", p.Secret)
	if p.Issuer != "" {
		v.Set("issuer", p.Issuer)
	}
	if p.Algorithm != "" {
		v.Set("algorithm", p.Algorithm)
	}
	if p.Digits > 0 {
		v.Set("digits", strconv.Itoa(p.Digits))
	}
	if strings.EqualFold(p.Type, TypeHOTP) {
		v.Set("counter", strconv.FormatUint(p.Counter, 10))
	} else if p.Period > 0 {
		v.Set("period", strconv.Itoa(p.Period))
	}

	u := url.URL{
		Scheme:   "otpauth",
		Host:     strings.ToLower(p.Type),
		Path:     "/" + label,
		RawQuery: v.Encode(),
	}
	return u.String()
}
