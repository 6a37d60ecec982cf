package token

// TokenResponse is the body returned by the login and refresh endpoints.
// RefreshToken is only present when the server rotates it.
type TokenResponse struct {
	AccessToken  *string `json:"accessToken,omitempty"`
	RefreshToken *string `json:"refreshToken,omitempty"`
}

// RefreshRequest is the body sent to the refresh and logout endpoints. The
// token also travels in the refreshToken cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
