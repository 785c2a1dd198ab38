package util

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeURIComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Check out my card: https://example.com/card/42", "Check%20out%20my%20card%3A%20https%3A%2F%2Fexample.com%2Fcard%2F42"},
		{"a+b", "a%2Bb"},
		{"it's (fine)!*~", "it's%20(fine)!*~"},
		{"ಕನ್ನಡ", "%E0%B2%95%E0%B2%A8%E0%B3%8D%E0%B2%A8%E0%B2%A1"},
		{"", ""},
	}

	for _, tt := range tests {
		got := EncodeURIComponent(tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)

		decoded, err := url.QueryUnescape(got)
		require.NoError(t, err)
		assert.Equal(t, tt.in, decoded)
	}
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "919876543210", DigitsOnly("+91 98765-43210"))
	assert.Equal(t, "", DigitsOnly("call me"))
	assert.Equal(t, "", DigitsOnly("١٢٣"))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "abc", TruncateString("abc", 5))
	assert.Equal(t, "ab...", TruncateString("abcdef", 2))
	assert.Equal(t, "ಕನ...", TruncateString("ಕನ್ನಡ", 2))
}
