package sessions

import (
	"github.com/jrsteele09/etokisana-client/token"
	"github.com/jrsteele09/etokisana-client/users"
)

// Session is a snapshot of the client's authentication state.
type Session struct {
	Authenticated bool
	Claims        *token.Claims // Decoded for display and navigation hints only
	Loading       bool          // True while the startup restore runs
	LastError     error         // Why the session last became anonymous, if it failed
}

// UserID returns the authenticated subject, or "" when anonymous.
func (s Session) UserID() string {
	if !s.Authenticated || s.Claims == nil {
		return ""
	}
	return s.Claims.Subject
}

// Role returns the role claim of the authenticated user.
func (s Session) Role() string {
	if !s.Authenticated || s.Claims == nil {
		return ""
	}
	return s.Claims.Role
}

// HasRole reports whether the authenticated user may see a view restricted to
// the comma separated allowed roles.
func (s Session) HasRole(allowed string) bool {
	if !s.Authenticated || s.Claims == nil {
		return false
	}
	return users.HasRole(s.Claims.Role, allowed) || users.AnyRole(s.Claims.Roles, allowed)
}
