package pin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	tests := []struct {
		pin  string
		want bool
	}{
		{"1234", true},
		{"12345678", true},
		{"123", false},
		{"123456789", false},
		{"12a4", false},
		{"", false},
		{" 1234", false},
		{"１２３４", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.pin, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Valid(tt.pin))
		})
	}
}

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher(1000)

	salt, err := h.NewSalt()
	require.NoError(t, err)
	assert.Len(t, salt, 2*saltBytes)

	hash := h.Hash("2468", salt)
	assert.Len(t, hash, 2*keyBytes)
	assert.True(t, h.Verify("2468", salt, hash))
	assert.False(t, h.Verify("2469", salt, hash))
	assert.False(t, h.Verify("2468", salt+"00", hash))
}

func TestHasher_SaltsDiffer(t *testing.T) {
	h := NewHasher(1000)

	a, err := h.NewSalt()
	require.NoError(t, err)
	b, err := h.NewSalt()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, h.Hash("1234", a), h.Hash("1234", b))
}

func TestNewHasher_DefaultIterations(t *testing.T) {
	assert.Equal(t, DefaultIterations, NewHasher(0).iterations)
	assert.Equal(t, 10, NewHasher(10).iterations)
}
