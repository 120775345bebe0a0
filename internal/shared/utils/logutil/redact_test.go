package logutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"empty", "", 8, ""},
		{"shorter", "abc", 8, "abc"},
		{"exact", "abcdefgh", 8, "abcdefgh"},
		{"longer", "0123456789abcdef", 8, "01234567..."},
		{"zero", "abc", 0, "..."},
		{"negative", "abc", -1, "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Prefix(tt.in, tt.n))
		})
	}
}

func TestCallbackSignature(t *testing.T) {
	assert.Equal(t, "d41d8cd9...", CallbackSignature(map[string]string{"sign": "d41d8cd98f00b204e9800998ecf8427e"}))
	assert.Equal(t, "0cc175b9...", CallbackSignature(map[string]string{"signature": "0cc175b9c0f1b6a831c399e269772661"}))
	assert.Empty(t, CallbackSignature(map[string]string{"order_id": "O1"}))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "o***@example.com", MaskEmail("ops@example.com"))
	assert.Equal(t, "a***@example.com", MaskEmail("a@example.com"))
	assert.Equal(t, "***", MaskEmail("not-an-email"))
	assert.Equal(t, "***", MaskEmail("@example.com"))
}
