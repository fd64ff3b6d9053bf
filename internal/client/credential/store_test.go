package credential

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	s := NewFileStore(path)

	assert.False(t, s.Active())
	assert.Equal(t, "", s.Get())

	require.NoError(t, s.Set("tok-123"))
	assert.True(t, s.Active())
	assert.Equal(t, "tok-123", s.Get())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// survives a fresh store on the same path
	s2 := NewFileStore(path)
	assert.Equal(t, "tok-123", s2.Get())

	require.NoError(t, s.Clear())
	assert.False(t, s.Active())
	// clearing twice is fine
	require.NoError(t, s.Clear())
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()
	assert.False(t, s.Active())
	require.NoError(t, s.Set("abc"))
	assert.Equal(t, "abc", s.Get())
	require.NoError(t, s.Clear())
	assert.Equal(t, "", s.Get())
}

func TestExpiry(t *testing.T) {
	t.Run("jwt with exp claim", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"id":  "user-1",
			"exp": exp.Unix(),
		})
		signed, err := tok.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		assert.True(t, Expiry(signed).Equal(exp))
	})

	t.Run("opaque token", func(t *testing.T) {
		assert.True(t, Expiry("not-a-jwt").IsZero())
	})

	t.Run("empty token", func(t *testing.T) {
		assert.True(t, Expiry("").IsZero())
	})
}
