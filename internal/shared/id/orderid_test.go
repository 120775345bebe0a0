package id

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderID_Format(t *testing.T) {
	now := time.Unix(1700000000, 0)

	orderID, err := NewOrderID("123456789012345678", now)
	require.NoError(t, err)

	parts := strings.Split(orderID, "_")
	require.Len(t, parts, 3)
	assert.Equal(t, "O1700000000", parts[0])
	assert.Equal(t, "9012345678", parts[1])
	assert.Len(t, parts[2], 6)
	assert.True(t, IsBase62(parts[2]))
	assert.LessOrEqual(t, len(orderID), MaxOrderIDLength)
}

func TestNewOrderID_ShortUserID(t *testing.T) {
	orderID, err := NewOrderID("42", time.Unix(1700000000, 0))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(orderID, "O1700000000_42_"))
}

func TestNewOrderID_Unique(t *testing.T) {
	now := time.Unix(1700000000, 0)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		orderID, err := NewOrderID("555", now)
		require.NoError(t, err)
		assert.False(t, seen[orderID], "duplicate order id %s", orderID)
		seen[orderID] = true
	}
}

func TestGenerate(t *testing.T) {
	s, err := Generate(0)
	require.NoError(t, err)
	assert.Len(t, s, DefaultLength)
	assert.True(t, IsBase62(s))
	assert.False(t, IsBase62("ab-c"))
}
