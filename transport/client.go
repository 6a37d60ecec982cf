package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/jrsteele09/etokisana-client/token"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	// RefreshPath is the access token refresh endpoint
	RefreshPath = "/api/v1/auth/refresh"
	// DefaultLoginPath is where the navigator is sent when a session expires
	DefaultLoginPath = "/login"

	requestIDHeader = "X-Request-ID"
)

// Re-exported so callers outside this module can match transport failures.
var (
	ErrUnauthenticated = clienterrors.ErrUnauthenticated
	ErrSessionExpired  = clienterrors.ErrSessionExpired
)

// Client issues requests against a single API origin, attaching the bearer
// token and recovering from access token expiry at most once per request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *token.Store
	navigator  Navigator
	observer   SessionObserver
	loginPath  string
	timeout    time.Duration
	limiter    *rate.Limiter
	metrics    *Metrics
	nowFunc    func() time.Time

	bootstrapping atomic.Bool

	mu        sync.Mutex
	refreshes singleflight.Group
}

type Option func(*Client)

// WithHTTPClient replaces the default client. The token store's cookie jar is
// installed when hc has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithNavigator(n Navigator) Option {
	return func(c *Client) {
		c.navigator = n
	}
}

func WithLoginPath(path string) Option {
	return func(c *Client) {
		c.loginPath = path
	}
}

// WithRateLimit throttles outgoing requests. rps <= 0 leaves requests unthrottled.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithObserver(o SessionObserver) Option {
	return func(c *Client) {
		c.observer = o
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(c *Client) {
		c.nowFunc = now
	}
}

// New creates a client for the API at baseURL using tokens for credentials.
func New(baseURL string, tokens *token.Store, options ...Option) (*Client, error) {
	if tokens == nil {
		return nil, clienterrors.Wrapf(clienterrors.ErrInvalidArgument, "transport.New token store")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, clienterrors.Wrapf(clienterrors.ErrInvalidArgument, "transport.New base url %q", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		loginPath:  DefaultLoginPath,
		nowFunc:    time.Now,
	}
	for _, opt := range options {
		opt(c)
	}

	hc := *c.httpClient
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	if hc.Jar == nil {
		hc.Jar = tokens.Jar()
	}
	c.httpClient = &hc
	return c, nil
}

// SetObserver installs the observer notified after every refresh.
func (c *Client) SetObserver(o SessionObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = o
}

// SetBootstrapping toggles the mode used while the initial session restore
// runs: a 401 then clears the access token and fails without refresh or redirect.
func (c *Client) SetBootstrapping(b bool) {
	c.bootstrapping.Store(b)
}

func (c *Client) Bootstrapping() bool {
	return c.bootstrapping.Load()
}

// Tokens returns the store the client reads credentials from.
func (c *Client) Tokens() *token.Store {
	return c.tokens
}

// Do sends r. Non-2xx responses come back as *errors.APIError, a 401 that
// could not be recovered as an error matching ErrUnauthenticated, and a
// failure to get any response as the underlying http.Client error.
func (c *Client) Do(ctx context.Context, r *Request) (*Response, error) {
	body, err := encodeBody(r.Body)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, &attempt{req: r, body: body, requestID: uuid.NewString()})
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.call(ctx, &Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, &Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.call(ctx, &Request{Method: http.MethodDelete, Path: path}, out)
}

func (c *Client) call(ctx context.Context, r *Request, out any) error {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

func (c *Client) do(ctx context.Context, a *attempt) (*Response, error) {
	resp, usedToken, err := c.send(ctx, a)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return c.handleUnauthorized(ctx, a, resp, usedToken)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, newAPIError(resp)
	}
	return resp, nil
}

// send performs one HTTP exchange and reports the access token it carried.
func (c *Client) send(ctx context.Context, a *attempt) (*Response, string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, "", err
		}
	}

	httpReq, err := c.newHTTPRequest(ctx, a)
	if err != nil {
		return nil, "", err
	}
	usedToken := c.tokens.SetAuthHeader(httpReq)

	start := c.nowFunc()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.observeRequest(a.req.Method, 0, c.nowFunc().Sub(start))
		log.Debug().Err(err).Str("request_id", a.requestID).Str("method", a.req.Method).Str("path", a.req.Path).Msg("Request failed")
		return nil, usedToken, err
	}

	resp, err := readResponse(httpResp)
	elapsed := c.nowFunc().Sub(start)
	c.metrics.observeRequest(a.req.Method, httpResp.StatusCode, elapsed)
	if err != nil {
		return nil, usedToken, err
	}

	log.Debug().
		Str("request_id", a.requestID).
		Str("method", a.req.Method).
		Str("path", a.req.Path).
		Int("status", resp.StatusCode).
		Bool("retry", a.retried).
		Dur("elapsed", elapsed).
		Msg("API request")
	return resp, usedToken, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, a *attempt) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimPrefix(a.req.Path, "/")
	if len(a.req.Query) > 0 {
		target += "?" + a.req.Query.Encode()
	}

	var body io.Reader
	if a.body != nil {
		body = bytes.NewReader(a.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, a.req.Method, target, body)
	if err != nil {
		return nil, clienterrors.Wrapf(err, "build %s %s", a.req.Method, a.req.Path)
	}

	for k, values := range a.req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if a.body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(requestIDHeader, a.requestID)
	return httpReq, nil
}
