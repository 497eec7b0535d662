package otp

import (
	"encoding/base32"
	"strings"
	"unicode"
)

var secretEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// DecodeSecret decodes a user-supplied base32 secret. Input is case-insensitive,
// padding and whitespace are ignored, and trailing bits that do not fill a byte
// are dropped so secrets of any length are accepted.
func DecodeSecret(input string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '=' || unicode.IsSpace(r) {
			return -1
		}
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		return r
	}, input)
	if cleaned == "" {
		return nil, ErrEmptySecret
	}

	out := make([]byte, 0, len(cleaned)*5/8)
	var buffer uint32
	var bits uint
	for i, r := range cleaned {
		var v uint32
		switch {
		case r >= 'A' && r <= 'Z':
			v = uint32(r - 'A')
		case r >= '2' && r <= '7':
			v = uint32(r-'2') + 26
		default:
			return nil, &DecodeError{Char: r, Position: i}
		}
		buffer = buffer<<5 | v
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buffer>>bits))
			buffer &= 1<<bits - 1
		}
	}
	return out, nil
}

// EncodeSecret returns the unpadded RFC 4648 base32 form of key.
func EncodeSecret(key []byte) string {
	return secretEncoding.EncodeToString(key)
}
