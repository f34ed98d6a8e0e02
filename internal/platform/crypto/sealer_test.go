package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestNewSealer_ShortKey(t *testing.T) {
	_, err := NewSealer("too-short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 bytes")
}

func TestSealer_RoundTrip(t *testing.T) {
	s, err := NewSealer(testKey)
	require.NoError(t, err)

	sealed, err := s.Seal([]byte(`{"role":"seller"}`), []byte("registration_draft:abc"))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "seller")

	plain, err := s.Open(sealed, []byte("registration_draft:abc"))
	require.NoError(t, err)
	assert.Equal(t, `{"role":"seller"}`, string(plain))
}

func TestSealer_NonceIsRandom(t *testing.T) {
	s, err := NewSealer(testKey)
	require.NoError(t, err)

	a, err := s.Seal([]byte("same"), nil)
	require.NoError(t, err)
	b, err := s.Seal([]byte("same"), nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSealer_Open_Rejects(t *testing.T) {
	s, err := NewSealer(testKey)
	require.NoError(t, err)
	other, err := NewSealer("fedcba9876543210fedcba9876543210")
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("secret"), []byte("registration_draft:abc"))
	require.NoError(t, err)

	t.Run("Wrong additional data", func(t *testing.T) {
		_, err := s.Open(sealed, []byte("registration_draft:other"))
		assert.ErrorIs(t, err, ErrSealedValueCorrupt)
	})
	t.Run("Wrong key", func(t *testing.T) {
		_, err := other.Open(sealed, []byte("registration_draft:abc"))
		assert.ErrorIs(t, err, ErrSealedValueCorrupt)
	})
	t.Run("Tampered", func(t *testing.T) {
		tampered := append([]byte(nil), sealed...)
		tampered[len(tampered)-1] ^= 0xff
		_, err := s.Open(tampered, []byte("registration_draft:abc"))
		assert.ErrorIs(t, err, ErrSealedValueCorrupt)
	})
	t.Run("Truncated", func(t *testing.T) {
		_, err := s.Open(sealed[:10], nil)
		assert.ErrorIs(t, err, ErrSealedValueCorrupt)
	})
}
