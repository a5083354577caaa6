package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksBase64(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "valid base64", value: "aGVsbG8=", want: true},
		{name: "punctuation rejected", value: "not base64!!", want: false},
		{name: "non-ascii rejected", value: "héllo", want: false},
		{name: "plain json", value: `{"type": "service_account"}`, want: false},
		{name: "empty string", value: "", want: true},
		{name: "missing padding", value: "aGVsbG8", want: false},
		{name: "embedded newline rejected", value: "aGVs\nbGc=", want: false},
		{name: "embedded carriage return rejected", value: "aGVs\rbGc=", want: false},
		{name: "non-canonical trailing bits accepted", value: "ab==", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, looksBase64(tt.value))
		})
	}
}

func TestLooksBase64_RoundTripStable(t *testing.T) {
	decoded, err := decodeBase64("aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(decoded))

	reencoded := base64.StdEncoding.EncodeToString(decoded)
	assert.True(t, looksBase64(reencoded))
}
