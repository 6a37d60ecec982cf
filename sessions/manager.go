package sessions

import (
	"context"
	"net/http"
	"sync"

	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/jrsteele09/etokisana-client/token"
	"github.com/jrsteele09/etokisana-client/transport"
	"github.com/jrsteele09/etokisana-client/users"
	"github.com/rs/zerolog/log"
)

const (
	LoginPath       = "/api/v1/auth/login"
	LogoutPath      = "/api/v1/auth/logout"
	ProfilePath     = "/api/v1/auth/profile"
	VerifyTokenPath = "/auth/verify-token"

	internalServerErrorMessage = "internal server error, please try again later or contact the administrator"
	invalidCredentialsMessage  = "invalid email or password"
)

type loginRequest struct {
	UserEmail    string `json:"userEmail"`
	UserPassword string `json:"userPassword"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Manager owns the session state. It is the only writer of the token store
// besides the transport's refresh.
type Manager struct {
	client *transport.Client
	tokens *token.Store

	initOnce sync.Once

	// notifyMu orders listener calls so a user change is fully handled
	// before a later state change is reported. Listeners must not call back
	// into the manager's mutating methods.
	notifyMu sync.Mutex

	mu          sync.Mutex
	state       Session
	lastUserID  string
	nextSubID   int
	subscribers map[int]func(Session)
	userChanged []func(userID string)
}

type Option func(*Manager)

// WithSubscriber registers fn before the manager can emit any change.
func WithSubscriber(fn func(Session)) Option {
	return func(m *Manager) {
		m.subscribers[m.nextSubID] = fn
		m.nextSubID++
	}
}

// NewManager creates a manager and registers it as the client's session observer.
func NewManager(client *transport.Client, tokens *token.Store, options ...Option) *Manager {
	m := &Manager{
		client:      client,
		tokens:      tokens,
		subscribers: make(map[int]func(Session)),
	}
	for _, opt := range options {
		opt(m)
	}
	client.SetObserver(m)
	return m
}

// Session returns the current state.
func (m *Manager) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe calls fn after every state change until the returned func is called.
func (m *Manager) Subscribe(fn func(Session)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

// OnUserChanged calls fn whenever a different user becomes authenticated, and
// with "" when the session turns anonymous after a user.
func (m *Manager) OnUserChanged(fn func(userID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userChanged = append(m.userChanged, fn)
}

// Login authenticates with the API. A rejected login returns an error matching
// errors.ErrInvalidCredentials whose message is the server's own message when
// it sent one. Failures to reach the API are returned unchanged.
func (m *Manager) Login(ctx context.Context, email, password string) (*token.Claims, error) {
	resp, err := m.client.Do(ctx, &transport.Request{
		Method:          http.MethodPost,
		Path:            LoginPath,
		Body:            loginRequest{UserEmail: email, UserPassword: password},
		SkipAuthRefresh: true,
	})
	if err != nil {
		err = loginError(err)
		m.setAnonymous(err)
		return nil, err
	}

	var tr token.TokenResponse
	if err := resp.Decode(&tr); err != nil {
		m.setAnonymous(err)
		return nil, err
	}
	accessToken, err := m.tokens.ApplyTokenResponse(&tr)
	if err != nil {
		err = clienterrors.New(clienterrors.ErrInvalidCredentials, "", err)
		m.setAnonymous(err)
		return nil, err
	}

	claims := token.DecodeClaims(accessToken)
	m.setAuthenticated(claims)
	log.Info().Str("user_id", subjectOf(claims)).Msg("Logged in")
	return claims, nil
}

func loginError(err error) error {
	var apiErr *clienterrors.APIError
	if !clienterrors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.StatusCode == http.StatusInternalServerError:
		log.Error().Str("body", string(apiErr.Body)).Msg("Login failed with a server error")
		return clienterrors.New(clienterrors.ErrInvalidCredentials, internalServerErrorMessage, apiErr)
	case apiErr.Message != "":
		return clienterrors.New(clienterrors.ErrInvalidCredentials, apiErr.Message, apiErr)
	default:
		return clienterrors.New(clienterrors.ErrInvalidCredentials, invalidCredentialsMessage, apiErr)
	}
}

// Logout tells the API to revoke the refresh token. Local tokens are cleared
// and the session becomes anonymous whether or not that call succeeds; its
// error, if any, is returned afterwards.
func (m *Manager) Logout(ctx context.Context) error {
	_, err := m.client.Do(ctx, &transport.Request{
		Method:          http.MethodPost,
		Path:            LogoutPath,
		Body:            logoutRequest{RefreshToken: m.tokens.RefreshToken()},
		SkipAuthRefresh: true,
	})
	m.tokens.Clear()
	m.setAnonymous(nil)
	if err != nil {
		log.Warn().Err(err).Msg("Logout request failed, local session cleared")
		return err
	}
	return nil
}

// Profile fetches the authenticated user's account.
func (m *Manager) Profile(ctx context.Context) (*users.Profile, error) {
	var p users.Profile
	if err := m.client.Get(ctx, ProfilePath, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// VerifyToken asks the API whether the current access token is still accepted.
func (m *Manager) VerifyToken(ctx context.Context) error {
	return m.client.Post(ctx, VerifyTokenPath, nil, nil)
}

// InitAuth restores the session at startup from a persisted refresh token. It
// runs once; later calls return immediately. A failed restore leaves the
// session anonymous and is never returned to the caller.
func (m *Manager) InitAuth(ctx context.Context) {
	m.initOnce.Do(func() {
		m.initAuth(ctx)
	})
}

func (m *Manager) initAuth(ctx context.Context) {
	m.client.SetBootstrapping(true)
	m.update(func(s *Session) { s.Loading = true })
	defer func() {
		m.client.SetBootstrapping(false)
		m.update(func(s *Session) { s.Loading = false })
	}()

	if m.tokens.RefreshToken() == "" {
		m.setAnonymous(nil)
		return
	}

	accessToken, err := m.client.Refresh(ctx)
	if err != nil {
		log.Info().Err(err).Msg("No session restored")
		m.tokens.Clear()
		m.setAnonymous(clienterrors.New(clienterrors.ErrSessionExpired, "", err))
		return
	}
	m.setAuthenticated(token.DecodeClaims(accessToken))
}

// TokenRefreshed keeps the claims in step with a rotated access token. It is
// ignored once the store no longer holds accessToken, as after a logout that
// raced the refresh.
func (m *Manager) TokenRefreshed(accessToken string) {
	claims := token.DecodeClaims(accessToken)
	m.updateIf(func(s *Session) bool {
		if m.tokens.AccessToken() != accessToken {
			return false
		}
		s.Authenticated = true
		s.Claims = claims
		s.LastError = nil
		return true
	})
}

// SessionExpired is called after a refresh failed and the tokens were cleared.
func (m *Manager) SessionExpired(err error) {
	if !clienterrors.Is(err, clienterrors.ErrSessionExpired) {
		err = clienterrors.New(clienterrors.ErrSessionExpired, "", err)
	}
	m.setAnonymous(err)
}

func (m *Manager) setAuthenticated(claims *token.Claims) {
	m.update(func(s *Session) {
		s.Authenticated = true
		s.Claims = claims
		s.LastError = nil
	})
}

func (m *Manager) setAnonymous(err error) {
	m.update(func(s *Session) {
		s.Authenticated = false
		s.Claims = nil
		s.LastError = err
	})
}

// update applies fn under the lock and then notifies listeners outside it.
func (m *Manager) update(fn func(*Session)) {
	m.updateIf(func(s *Session) bool {
		fn(s)
		return true
	})
}

// updateIf is update for changes that fn may decline by returning false, in
// which case nobody is notified.
func (m *Manager) updateIf(fn func(*Session) bool) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	if !fn(&m.state) {
		m.mu.Unlock()
		return
	}
	snapshot := m.state

	id := snapshot.UserID()
	userChangedNow := id != m.lastUserID
	m.lastUserID = id

	subscribers := make([]func(Session), 0, len(m.subscribers))
	for _, sub := range m.subscribers {
		subscribers = append(subscribers, sub)
	}
	var userChanged []func(string)
	if userChangedNow {
		userChanged = append(userChanged, m.userChanged...)
	}
	m.mu.Unlock()

	for _, notify := range userChanged {
		notify(id)
	}
	for _, sub := range subscribers {
		sub(snapshot)
	}
}

func subjectOf(c *token.Claims) string {
	if c == nil {
		return ""
	}
	return c.Subject
}
