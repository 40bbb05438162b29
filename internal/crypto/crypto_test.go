package crypto

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSealer(t *testing.T) *Sealer {
	t.Helper()
	key, err := ParseKey(base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32)))
	require.NoError(t, err)
	s, err := NewSealer(key)
	require.NoError(t, err)
	return s
}

func TestSealer_SealOpen(t *testing.T) {
	s := testSealer(t)

	sealed, err := s.Seal("first pet + year")
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.NotContains(t, sealed, "first pet")

	again, err := s.Seal("first pet + year")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonces are random")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "first pet + year", plain)
}

func TestSealer_PassThrough(t *testing.T) {
	s := testSealer(t)

	empty, err := s.Seal("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	legacy, err := s.Open("stored before encryption")
	require.NoError(t, err)
	assert.Equal(t, "stored before encryption", legacy)
}

func TestSealer_TamperedValue(t *testing.T) {
	s := testSealer(t)
	sealed, err := s.Seal("hint")
	require.NoError(t, err)

	_, err = s.Open(sealed[:len(sealed)-4] + "AAAA")
	assert.Error(t, err)
}

func TestParseKey_WrongLength(t *testing.T) {
	_, err := ParseKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrInvalidKey)
}
