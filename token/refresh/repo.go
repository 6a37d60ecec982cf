package refresh

import (
	"time"
)

// StoredRefreshToken is the durable copy of the refresh token cookie.
// The cookie jar is authoritative while the process runs; this record lets a
// new process restore the cookie for the same API origin.
type StoredRefreshToken struct {
	Origin  string    `json:"origin"`  // scheme://host of the API
	Token   string    `json:"token"`   // opaque value sent back on refresh
	Expires time.Time `json:"expires"` // cookie expiry
	Secure  bool      `json:"secure"`  // set when the origin is served over TLS
}

// Expired reports whether the token is past its expiry at now.
func (rt *StoredRefreshToken) Expired(now time.Time) bool {
	return !rt.Expires.IsZero() && !now.Before(rt.Expires)
}

// Repo stores at most one refresh token per API origin.
type Repo interface {
	Upsert(refreshToken *StoredRefreshToken) error
	Delete(origin string) error
	Get(origin string) (*StoredRefreshToken, error)
}
