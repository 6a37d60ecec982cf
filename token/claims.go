package token

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/jrsteele09/etokisana-client/internal/utils"
)

// Claims is the decoded access token payload. The signature is never checked
// on the client, so claims only drive display and navigation hints; the API
// re-checks every authorization decision.
type Claims struct {
	Subject   string
	Email     string
	Role      string
	Roles     []string
	ExpiresAt time.Time
	IssuedAt  time.Time
	Raw       map[string]any
}

// DecodeClaims reads the payload segment of raw. Any failure yields nil.
func DecodeClaims(raw string) *Claims {
	c, err := ParseClaims(raw)
	if err != nil {
		return nil
	}
	return c
}

// ParseClaims decodes the second segment of raw. The header is not read, so
// an unknown signing algorithm does not hide the payload.
func ParseClaims(raw string) (*Claims, error) {
	segments := strings.Split(strings.TrimSpace(raw), ".")
	if len(segments) != 3 {
		return nil, clienterrors.Wrapf(clienterrors.ErrInvalidTokenFormat, "token.ParseClaims %d segments", len(segments))
	}
	payload, err := jwt.NewParser().DecodeSegment(segments[1])
	if err != nil {
		return nil, clienterrors.Wrapf(clienterrors.ErrInvalidTokenFormat, "token.ParseClaims decode payload")
	}
	mapClaims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &mapClaims); err != nil {
		return nil, clienterrors.Wrapf(clienterrors.ErrInvalidTokenFormat, "token.ParseClaims unmarshal payload")
	}

	c := &Claims{
		Subject: subjectFrom(mapClaims),
		Email:   utils.FirstString(mapClaims, "email", "userEmail"),
		Role:    utils.FirstString(mapClaims, "role", "userType"),
		Raw:     mapClaims,
	}

	if roles, ok := mapClaims["roles"].([]any); ok {
		c.Roles = utils.ToStringSlice(roles)
	}
	if c.Role == "" && len(c.Roles) > 0 {
		c.Role = c.Roles[0]
	}
	if len(c.Roles) == 0 && c.Role != "" {
		c.Roles = []string{c.Role}
	}

	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	return c, nil
}

// Expired reports whether the advisory exp claim is in the past.
func (c *Claims) Expired(now time.Time) bool {
	return c != nil && !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

func subjectFrom(m jwt.MapClaims) string {
	if sub, err := m.GetSubject(); err == nil && sub != "" {
		return sub
	}
	for _, key := range []string{"id", "userId", "_id"} {
		switch v := m[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
