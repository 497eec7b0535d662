package otp

import (
	"crypto/hmac"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// MaxDigits is the longest code a 31-bit truncated value can fill.
const MaxDigits = 10

var pow10 = [...]uint32{
	1, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9,
}

// HOTP computes the RFC 4226 code for key and counter.
func HOTP(key []byte, counter uint64, alg Algorithm, digits int) (string, error) {
	if digits < 1 || digits > MaxDigits {
		return "", fmt.Errorf("%w: %d", ErrInvalidDigits, digits)
	}
	newHash, err := alg.hash()
	if err != nil {
		return "", err
	}

	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(newHash, key)
	mac.Write(msg[:])
	return Truncate(mac.Sum(nil), digits)
}

// Truncate applies RFC 4226 dynamic truncation to an HMAC digest and formats the
// result as a zero-padded decimal string of the given length.
func Truncate(mac []byte, digits int) (string, error) {
	if digits < 1 || digits > MaxDigits {
		return "", fmt.Errorf("%w: %d", ErrInvalidDigits, digits)
	}
	if len(mac) == 0 {
		return "", ErrShortDigest
	}
	offset := int(mac[len(mac)-1] & 0x0f)
	if len(mac) < offset+4 {
		return "", fmt.Errorf("%w: %d bytes, offset %d", ErrShortDigest, len(mac), offset)
	}
	code := binary.BigEndian.Uint32(mac[offset:offset+4]) & 0x7fffffff
	return format(code, digits), nil
}

func format(code uint32, digits int) string {
	if digits < MaxDigits {
		code %= pow10[digits]
	}
	s := strconv.FormatUint(uint64(code), 10)
	if len(s) < digits {
		s = strings.Repeat("0", digits-len(s)) + s
	}
	return s
}
