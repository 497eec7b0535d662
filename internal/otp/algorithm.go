package otp

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strings"
)

// Algorithm selects the hash function behind the HMAC.
type Algorithm int

const (
	SHA1 Algorithm = iota
	SHA256
	SHA512
)

var hashes = map[Algorithm]func() hash.Hash{
	SHA1:   sha1.New,
	SHA256: sha256.New,
	SHA512: sha512.New,
}

var algorithmNames = map[Algorithm]string{
	SHA1:   "SHA1",
	SHA256: "SHA256",
	SHA512: "SHA512",
}

// ParseAlgorithm maps names such as "SHA1", "sha256" or "SHA-512" to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	normalized := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(name)), "-", "")
	for alg, n := range algorithmNames {
		if n == normalized {
			return alg, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrCryptoUnavailable, name)
}

func (a Algorithm) String() string {
	if n, ok := algorithmNames[a]; ok {
		return n
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// Valid reports whether a has an HMAC implementation.
func (a Algorithm) Valid() bool {
	_, ok := hashes[a]
	return ok
}

func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrCryptoUnavailable, int(a))
	}
	return []byte(a.String()), nil
}

func (a *Algorithm) UnmarshalText(text []byte) error {
	alg, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = alg
	return nil
}

func (a Algorithm) hash() (func() hash.Hash, error) {
	h, ok := hashes[a]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCryptoUnavailable, a)
	}
	return h, nil
}
