package refresh_test

import (
	"path/filepath"
	"testing"
	"time"

	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/jrsteele09/etokisana-client/token/refresh"
	"github.com/stretchr/testify/require"
)

func TestFileRepo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens", "refresh.json")
	repo := refresh.NewFileRepo(path)

	_, err := repo.Get("https://api.example.com")
	require.ErrorIs(t, err, clienterrors.ErrNotFound)

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, repo.Upsert(&refresh.StoredRefreshToken{
		Origin:  "https://api.example.com",
		Token:   "rt-1",
		Expires: expires,
		Secure:  true,
	}))

	// A second repo on the same file sees the token
	rt, err := refresh.NewFileRepo(path).Get("https://api.example.com")
	require.NoError(t, err)
	require.Equal(t, "rt-1", rt.Token)
	require.True(t, rt.Secure)
	require.True(t, expires.Equal(rt.Expires))

	require.NoError(t, repo.Delete("https://api.example.com"))
	require.NoError(t, repo.Delete("https://api.example.com"))
	_, err = repo.Get("https://api.example.com")
	require.ErrorIs(t, err, clienterrors.ErrNotFound)
}

func TestStoredRefreshToken_Expired(t *testing.T) {
	now := time.Now()
	require.False(t, (&refresh.StoredRefreshToken{}).Expired(now))
	require.False(t, (&refresh.StoredRefreshToken{Expires: now.Add(time.Minute)}).Expired(now))
	require.True(t, (&refresh.StoredRefreshToken{Expires: now}).Expired(now))
}
