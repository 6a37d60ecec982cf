package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestKindError_Is(t *testing.T) {
	t.Run("matches its kind", func(t *testing.T) {
		err := clienterrors.New(clienterrors.ErrInvalidCredentials, "bad password", nil)
		require.ErrorIs(t, err, clienterrors.ErrInvalidCredentials)
		require.NotErrorIs(t, err, clienterrors.ErrSessionExpired)
		require.Equal(t, "bad password", err.Error())
	})

	t.Run("session expired is also unauthenticated", func(t *testing.T) {
		err := clienterrors.New(clienterrors.ErrSessionExpired, "", nil)
		require.ErrorIs(t, err, clienterrors.ErrSessionExpired)
		require.ErrorIs(t, err, clienterrors.ErrUnauthenticated)
	})

	t.Run("unwraps the cause", func(t *testing.T) {
		cause := &clienterrors.APIError{StatusCode: http.StatusUnauthorized}
		err := fmt.Errorf("outer: %w", clienterrors.New(clienterrors.ErrUnauthenticated, "", cause))
		require.ErrorIs(t, err, clienterrors.ErrUnauthenticated)
		require.Equal(t, http.StatusUnauthorized, clienterrors.StatusCode(err))
	})
}

func TestAPIError_Error(t *testing.T) {
	require.Equal(t, "api error 404: missing", (&clienterrors.APIError{StatusCode: 404, Message: "missing"}).Error())
	require.Equal(t, "api error 500: Internal Server Error", (&clienterrors.APIError{StatusCode: 500}).Error())
}

func TestWrapf(t *testing.T) {
	require.Nil(t, clienterrors.Wrapf(nil, "ctx"))
	err := clienterrors.Wrapf(clienterrors.ErrNotFound, "cart %s", "cart_1")
	require.ErrorIs(t, err, clienterrors.ErrNotFound)
	require.Equal(t, "cart cart_1: not found", err.Error())
}
