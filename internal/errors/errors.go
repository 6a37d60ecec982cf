package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types for the Etokisana client
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
	ErrUnauthenticated    = errors.New("unauthenticated")

	// Token errors
	ErrNoRefreshToken     = errors.New("no refresh token")
	ErrNoAccessToken      = errors.New("no access token returned")
	ErrInvalidTokenFormat = errors.New("invalid token format")
	ErrTokensCleared      = errors.New("tokens cleared during refresh")

	// General errors
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// KindError carries a taxonomy sentinel alongside the message shown to the user.
// errors.Is matches the Kind; errors.As/Unwrap reach the underlying cause.
type KindError struct {
	Kind    error
	Message string
	Err     error
}

func (e *KindError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	}
	return e.Kind.Error()
}

func (e *KindError) Is(target error) bool {
	if target == e.Kind {
		return true
	}
	// A session that expired is, to any caller, also unauthenticated
	return e.Kind == ErrSessionExpired && target == ErrUnauthenticated
}

func (e *KindError) Unwrap() error {
	return e.Err
}

// New returns a KindError for kind with a user facing message.
func New(kind error, message string, cause error) error {
	return &KindError{Kind: kind, Message: message, Err: cause}
}

// APIError is a non-2xx HTTP response returned by the backend.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// StatusCode returns the HTTP status of an APIError in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
