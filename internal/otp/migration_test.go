package otp

import (
	"encoding/base64"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

type exportEntry struct {
	secret    []byte
	name      string
	issuer    string
	algorithm uint64
	digits    uint64
	otpType   uint64
	counter   uint64
}

func encodeExport(entries ...exportEntry) string {
	var payload []byte
	for _, e := range entries {
		var msg []byte
		msg = protowire.AppendTag(msg, paramSecret, protowire.BytesType)
		msg = protowire.AppendBytes(msg, e.secret)
		msg = protowire.AppendTag(msg, paramName, protowire.BytesType)
		msg = protowire.AppendString(msg, e.name)
		if e.issuer != "" {
			msg = protowire.AppendTag(msg, paramIssuer, protowire.BytesType)
			msg = protowire.AppendString(msg, e.issuer)
		}
		msg = protowire.AppendTag(msg, paramAlgorithm, protowire.VarintType)
		msg = protowire.AppendVarint(msg, e.algorithm)
		msg = protowire.AppendTag(msg, paramDigits, protowire.VarintType)
		msg = protowire.AppendVarint(msg, e.digits)
		msg = protowire.AppendTag(msg, paramType, protowire.VarintType)
		msg = protowire.AppendVarint(msg, e.otpType)
		msg = protowire.AppendTag(msg, paramCounter, protowire.VarintType)
		msg = protowire.AppendVarint(msg, e.counter)

		payload = protowire.AppendTag(payload, payloadOtpParameters, protowire.BytesType)
		payload = protowire.AppendBytes(payload, msg)
	}
	// version, batch_size, batch_index, batch_id
	for num := protowire.Number(2); num <= 5; num++ {
		payload = protowire.AppendTag(payload, num, protowire.VarintType)
		payload = protowire.AppendVarint(payload, 1)
	}
	return "otpauth-migration://offline?data=" + url.QueryEscape(base64.StdEncoding.EncodeToString(payload))
}

func TestParseMigrationURI(t *testing.T) {
	uri := encodeExport(
		exportEntry{secret: rfcKey, name: "GitHub:octocat", issuer: "GitHub", algorithm: 1, digits: 1, otpType: 2},
		exportEntry{secret: []byte("Hello!\xde\xad\xbe\xef"), name: "bob@example.com", algorithm: 3, digits: 2, otpType: 1, counter: 5},
	)

	accounts, err := ParseMigrationURI(uri)
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.Equal(t, ProvisioningURI{
		Type:        TypeTOTP,
		Issuer:      "GitHub",
		AccountName: "octocat",
		Secret:      "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ",
		Algorithm:   "SHA1",
		Digits:      6,
		Period:      30,
	}, accounts[0])

	assert.Equal(t, ProvisioningURI{
		Type:        TypeHOTP,
		Issuer:      "bob",
		AccountName: "bob@example.com",
		Secret:      "JBSWY3DPEHPK3PXP",
		Algorithm:   "SHA512",
		Digits:      8,
		Period:      30,
		Counter:     5,
	}, accounts[1])
}

func TestParseMigrationURI_UnspecifiedEnumsUseDefaults(t *testing.T) {
	accounts, err := ParseMigrationURI(encodeExport(exportEntry{secret: rfcKey, name: "svc"}))
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, TypeTOTP, accounts[0].Type)
	assert.Equal(t, "SHA1", accounts[0].Algorithm)
	assert.Equal(t, 6, accounts[0].Digits)
}

func TestParseMigrationURI_Failures(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"wrong scheme", "otpauth://totp/x?secret=JBSWY3DPEHPK3PXP"},
		{"wrong host", "otpauth-migration://online?data=AA=="},
		{"missing data", "otpauth-migration://offline"},
		{"bad base64", "otpauth-migration://offline?data=%25%25%25"},
		{"truncated message", "otpauth-migration://offline?data=" + url.QueryEscape(base64.StdEncoding.EncodeToString([]byte{0x0a, 0x10, 0x0a}))},
		{"unknown algorithm", encodeExport(exportEntry{secret: rfcKey, name: "x", algorithm: 9})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMigrationURI(tt.uri)
			assert.ErrorIs(t, err, ErrMalformedURI)
		})
	}
}
