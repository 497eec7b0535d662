package otp

import (
	"crypto/rand"
	"encoding/base32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSecret(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []byte
	}{
		{"rfc key", "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", rfcKey},
		{"lower case", "gezdgnbvgy3tqojqgezdgnbvgy3tqojq", rfcKey},
		{"grouped with spaces", "GEZD GNBV GY3T QOJQ GEZD GNBV GY3T QOJQ", rfcKey},
		{"padded", "MZXW6===", []byte("foo")},
		{"unpadded", "MZXW6", []byte("foo")},
		{"tabs and newlines", "MZ\tXW\n6", []byte("foo")},
		{"hello", "JBSWY3DPEHPK3PXP", []byte("Hello!\xde\xad\xbe\xef")},
		{"dangling bits dropped", "MZXW6Y", []byte("foo")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSecret(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeSecret_InvalidCharacters(t *testing.T) {
	for _, input := range []string{"MZXW1", "MZXW8", "MZXW0", "MZ-XW6", "MZXW6!", "MZXWé", "MZXWſ", "ıNBSWY3DP", "MZXWＡ"} {
		t.Run(input, func(t *testing.T) {
			_, err := DecodeSecret(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidBase32)

			var decodeErr *DecodeError
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}

func TestDecodeSecret_ReportsPosition(t *testing.T) {
	_, err := DecodeSecret("ab1c")
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, '1', decodeErr.Char)
	assert.Equal(t, 2, decodeErr.Position)
}

func TestDecodeSecret_Empty(t *testing.T) {
	for _, input := range []string{"", "   ", "====", " = \n"} {
		_, err := DecodeSecret(input)
		assert.ErrorIs(t, err, ErrEmptySecret, "%q", input)
	}
}

func TestDecodeSecret_RoundTrip(t *testing.T) {
	for size := 1; size <= 64; size++ {
		raw := make([]byte, size)
		_, err := rand.Read(raw)
		require.NoError(t, err)

		padded, err := DecodeSecret(base32.StdEncoding.EncodeToString(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, padded, "padded size %d", size)

		unpadded, err := DecodeSecret(EncodeSecret(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, unpadded, "unpadded size %d", size)
	}
}
