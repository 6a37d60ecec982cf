package token

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/jrsteele09/etokisana-client/internal/utils"
	"github.com/jrsteele09/etokisana-client/token/refresh"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"
)

const (
	// RefreshCookieName is the cookie that carries the refresh token to the API
	RefreshCookieName = "refreshToken"
	// DefaultRefreshTokenExpiry applies when the server does not say otherwise
	DefaultRefreshTokenExpiry = 7 * 24 * time.Hour
)

// Store holds the access token in memory and the refresh token as a cookie
// scoped to the API origin. It is the only writer of that cookie.
type Store struct {
	// clearMu orders Clear against conditional applies
	clearMu    sync.Mutex
	generation uint64

	mu            sync.RWMutex
	access        *oauth2.Token
	origin        *url.URL
	jar           http.CookieJar
	repo          refresh.Repo
	refreshExpiry time.Duration
	nowFunc       func() time.Time
}

type StoreOption func(*Store)

// WithRefreshRepo mirrors the refresh cookie to repo so it survives restarts.
func WithRefreshRepo(repo refresh.Repo) StoreOption {
	return func(s *Store) {
		s.repo = repo
	}
}

func WithRefreshTokenExpiry(expiry time.Duration) StoreOption {
	return func(s *Store) {
		s.refreshExpiry = expiry
	}
}

func WithCookieJar(jar http.CookieJar) StoreOption {
	return func(s *Store) {
		s.jar = jar
	}
}

func WithNowFunc(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowFunc = now
	}
}

// NewStore creates a token store for the API at baseURL.
func NewStore(baseURL string, options ...StoreOption) (*Store, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "token.NewStore parse base url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, clienterrors.Wrapf(clienterrors.ErrInvalidArgument, "token.NewStore base url %q", baseURL)
	}

	s := &Store{
		origin: &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"},
	}
	for _, opt := range options {
		opt(s)
	}

	if s.jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, errors.Wrap(err, "token.NewStore cookiejar")
		}
		s.jar = jar
	}
	if s.refreshExpiry == 0 {
		s.refreshExpiry = DefaultRefreshTokenExpiry
	}
	if s.nowFunc == nil {
		s.nowFunc = time.Now
	}

	s.restoreRefreshToken()
	return s, nil
}

// Jar is the cookie jar to install on the HTTP client so the refresh cookie
// travels with requests to the API.
func (s *Store) Jar() http.CookieJar {
	return s.jar
}

// Origin returns the API origin the cookies are scoped to.
func (s *Store) Origin() string {
	return strings.TrimSuffix(s.origin.String(), "/")
}

// Secure reports whether the API is served over TLS.
func (s *Store) Secure() bool {
	return s.origin.Scheme == "https"
}

func (s *Store) SetAccessToken(raw string) {
	tok := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	if claims := DecodeClaims(raw); claims != nil {
		tok.Expiry = claims.ExpiresAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = tok
}

// AccessToken returns the current access token or "" when none is held.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.access == nil {
		return ""
	}
	return s.access.AccessToken
}

func (s *Store) ClearAccessToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = nil
}

// SetAuthHeader attaches the bearer credential to r and returns the token used.
func (s *Store) SetAuthHeader(r *http.Request) string {
	s.mu.RLock()
	tok := s.access
	s.mu.RUnlock()

	if tok == nil || tok.AccessToken == "" {
		return ""
	}
	tok.SetAuthHeader(r)
	return tok.AccessToken
}

// SetRefreshToken writes the refresh cookie. A zero expires uses the
// configured expiry from now.
func (s *Store) SetRefreshToken(raw string, expires time.Time) {
	if raw == "" {
		s.ClearRefreshToken()
		return
	}
	if expires.IsZero() {
		expires = s.nowFunc().Add(s.refreshExpiry)
	}

	s.mu.Lock()
	s.jar.SetCookies(s.origin, []*http.Cookie{s.refreshCookie(raw, expires)})
	s.mu.Unlock()

	if s.repo == nil {
		return
	}
	if err := s.repo.Upsert(&refresh.StoredRefreshToken{
		Origin:  s.Origin(),
		Token:   raw,
		Expires: expires,
		Secure:  s.Secure(),
	}); err != nil {
		log.Err(err).Str("origin", s.Origin()).Msg("Failed to persist refresh token")
	}
}

// RefreshToken returns the refresh cookie value or "" when absent.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.jar.Cookies(s.origin) {
		if c.Name == RefreshCookieName {
			return c.Value
		}
	}
	return ""
}

func (s *Store) ClearRefreshToken() {
	expired := s.refreshCookie("", time.Unix(0, 0))
	expired.MaxAge = -1

	s.mu.Lock()
	s.jar.SetCookies(s.origin, []*http.Cookie{expired})
	s.mu.Unlock()

	if s.repo == nil {
		return
	}
	if err := s.repo.Delete(s.Origin()); err != nil {
		log.Err(err).Str("origin", s.Origin()).Msg("Failed to delete persisted refresh token")
	}
}

// Clear drops both tokens and starts a new generation, so a token response
// obtained before the call can no longer be applied.
func (s *Store) Clear() {
	s.clearMu.Lock()
	defer s.clearMu.Unlock()
	s.generation++
	s.ClearAccessToken()
	s.ClearRefreshToken()
}

// Generation counts the calls to Clear.
func (s *Store) Generation() uint64 {
	s.clearMu.Lock()
	defer s.clearMu.Unlock()
	return s.generation
}

// ApplyTokenResponse stores the tokens returned by login or refresh. The
// refresh token is only replaced when the server supplied a new one.
func (s *Store) ApplyTokenResponse(resp *TokenResponse) (string, error) {
	s.clearMu.Lock()
	defer s.clearMu.Unlock()
	return s.applyTokenResponse(resp)
}

// ApplyTokenResponseSince applies resp only if Clear has not been called
// since generation was read. Otherwise it returns ErrTokensCleared.
func (s *Store) ApplyTokenResponseSince(generation uint64, resp *TokenResponse) (string, error) {
	s.clearMu.Lock()
	defer s.clearMu.Unlock()
	if s.generation != generation {
		return "", clienterrors.ErrTokensCleared
	}
	return s.applyTokenResponse(resp)
}

func (s *Store) applyTokenResponse(resp *TokenResponse) (string, error) {
	if resp == nil || utils.Value(resp.AccessToken) == "" {
		return "", clienterrors.ErrNoAccessToken
	}
	accessToken := *resp.AccessToken
	s.SetAccessToken(accessToken)
	if refreshToken := utils.Value(resp.RefreshToken); refreshToken != "" {
		s.SetRefreshToken(refreshToken, time.Time{})
	}
	return accessToken, nil
}

func (s *Store) refreshCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		Secure:   s.Secure(),
		SameSite: http.SameSiteStrictMode,
	}
}

func (s *Store) restoreRefreshToken() {
	if s.repo == nil {
		return
	}
	rt, err := s.repo.Get(s.Origin())
	if err != nil {
		return
	}
	if rt.Expired(s.nowFunc()) || rt.Token == "" {
		if err := s.repo.Delete(s.Origin()); err != nil {
			log.Err(err).Str("origin", s.Origin()).Msg("Failed to delete expired refresh token")
		}
		return
	}
	s.jar.SetCookies(s.origin, []*http.Cookie{s.refreshCookie(rt.Token, rt.Expires)})
}
