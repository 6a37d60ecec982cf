package transport

import (
	"context"
	"net/http"
	"sync"

	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/jrsteele09/etokisana-client/token"
	"github.com/rs/zerolog/log"
)

const refreshKey = "refresh"

// refreshResult is shared by every request that saw a 401 while the refresh
// ran. Waiters are released together when it settles, not in arrival order.
type refreshResult struct {
	accessToken string
	expireOnce  *sync.Once
}

// Refresh obtains a new access token, joining a refresh already in flight.
// On failure both tokens have been cleared and the error matches
// ErrSessionExpired. It never navigates.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	res, err := c.awaitRefresh(ctx)
	if err != nil {
		return "", err
	}
	return res.accessToken, nil
}

// awaitRefresh starts the refresh or joins the one in flight and waits for it
// or for ctx. The refresh itself is not cancelled by ctx.
func (c *Client) awaitRefresh(ctx context.Context) (*refreshResult, error) {
	select {
	case r := <-c.refreshes.DoChan(refreshKey, c.runRefresh):
		res, _ := r.Val.(*refreshResult)
		return res, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) runRefresh() (any, error) {
	accessToken, err := c.requestRefresh(context.Background())
	c.metrics.observeRefresh(err)
	if err != nil {
		c.tokens.Clear()
		log.Err(err).Msg("Access token refresh failed")
	}

	c.mu.Lock()
	observer := c.observer
	c.mu.Unlock()
	if observer != nil {
		go notifyObserver(observer, accessToken, err)
	}
	return &refreshResult{accessToken: accessToken, expireOnce: &sync.Once{}}, err
}

func notifyObserver(observer SessionObserver, accessToken string, err error) {
	if err != nil {
		observer.SessionExpired(err)
		return
	}
	observer.TokenRefreshed(accessToken)
}

func (c *Client) requestRefresh(ctx context.Context) (string, error) {
	generation := c.tokens.Generation()
	refreshToken := c.tokens.RefreshToken()
	if refreshToken == "" {
		return "", clienterrors.New(clienterrors.ErrSessionExpired, "", clienterrors.ErrNoRefreshToken)
	}

	resp, err := c.Do(ctx, &Request{
		Method:          http.MethodPost,
		Path:            RefreshPath,
		Body:            token.RefreshRequest{RefreshToken: refreshToken},
		SkipAuthRefresh: true,
	})
	if err != nil {
		return "", clienterrors.New(clienterrors.ErrSessionExpired, "", err)
	}

	var tokenResp token.TokenResponse
	if err := resp.Decode(&tokenResp); err != nil {
		return "", clienterrors.New(clienterrors.ErrSessionExpired, "", err)
	}
	accessToken, err := c.tokens.ApplyTokenResponseSince(generation, &tokenResp)
	if err != nil {
		return "", clienterrors.New(clienterrors.ErrSessionExpired, "", err)
	}
	return accessToken, nil
}

func (c *Client) handleUnauthorized(ctx context.Context, a *attempt, resp *Response, usedToken string) (*Response, error) {
	apiErr := newAPIError(resp)

	switch {
	case a.req.SkipAuthRefresh:
		return nil, apiErr
	case c.Bootstrapping():
		c.tokens.ClearAccessToken()
		return nil, clienterrors.New(clienterrors.ErrUnauthenticated, "", apiErr)
	case a.retried:
		return nil, clienterrors.New(clienterrors.ErrUnauthenticated, "", apiErr)
	}
	a.retried = true

	// A refresh finished while this request was on the wire
	if current := c.tokens.AccessToken(); current != "" && current != usedToken {
		return c.replay(ctx, a)
	}

	res, err := c.awaitRefresh(ctx)
	switch {
	case err == nil:
		return c.replay(ctx, a)
	case res != nil:
		c.expireSession(res)
	}
	return nil, err
}

func (c *Client) replay(ctx context.Context, a *attempt) (*Response, error) {
	c.metrics.observeRetry()
	return c.do(ctx, a)
}

// expireSession sends the navigator to the login path once per failed refresh.
func (c *Client) expireSession(res *refreshResult) {
	res.expireOnce.Do(func() {
		if c.navigator == nil || c.Bootstrapping() {
			return
		}
		if onPath(c.navigator.CurrentPath(), c.loginPath) {
			return
		}
		log.Info().Str("login_path", c.loginPath).Msg("Session expired, redirecting to login")
		c.navigator.Navigate(c.loginPath)
	})
}
