package epusdt

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestSign_CanonicalString(t *testing.T) {
	params := map[string]string{
		"order_id":     "O1",
		"amount":       "10",
		"notify_url":   "https://example.com/notify",
		"redirect_url": "",
		"signature":    "ignored",
	}

	want := md5Hex("amount=10&notify_url=https://example.com/notify&order_id=O1tok")
	assert.Equal(t, want, Sign(params, "tok"))
}

func TestSign_SignTypeIsNotExcluded(t *testing.T) {
	with := map[string]string{"a": "1", "sign_type": "MD5"}
	without := map[string]string{"a": "1"}
	assert.NotEqual(t, Sign(without, "k"), Sign(with, "k"))
}

func TestSign_SingleValueFlipChangesSignature(t *testing.T) {
	params := map[string]string{"order_id": "O1", "amount": "10", "status": "2"}
	base := Sign(params, "k")

	for key := range params {
		flipped := map[string]string{}
		for k, v := range params {
			flipped[k] = v
		}
		flipped[key] = params[key] + "x"
		assert.NotEqual(t, base, Sign(flipped, "k"), key)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{10.0, "10"},
		{10.5, "10.5"},
		{0, "0"},
		{1.43, "1.43"},
		{70.25, "70.25"},
		{-3, "-3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in))
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"abc", "abc"},
		{json.Number("10.0"), "10"},
		{json.Number("10.50"), "10.5"},
		{json.Number("2"), "2"},
		{float64(3), "3"},
		{true, "true"},
	}
	for _, tt := range tests {
		got, err := stringify(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := stringify(map[string]any{})
	assert.Error(t, err)
}
