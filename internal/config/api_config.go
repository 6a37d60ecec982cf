package config

import "time"

const (
	apiBaseURLVar         = "API_BASE_URL"
	loginPathVar          = "LOGIN_PATH"
	requestTimeoutVar     = "REQUEST_TIMEOUT"
	rateLimitRPSVar       = "RATE_LIMIT_RPS"
	rateLimitBurstVar     = "RATE_LIMIT_BURST"
	refreshTokenExpiryVar = "REFRESH_TOKEN_EXPIRY"
)

type API struct {
	src source
}

var _ APIConfig = API{}

// GetAPIBaseURL returns the API origin (e.g., "https://api.etokisana.com")
func (a API) GetAPIBaseURL() string {
	return a.src.get(apiBaseURLVar, "http://localhost:3000")
}

func (a API) GetLoginPath() string {
	return a.src.get(loginPathVar, "/login")
}

func (a API) GetRequestTimeout() time.Duration {
	return a.src.getDuration(requestTimeoutVar, 30*time.Second)
}

// GetRateLimit returns the client side request rate. rps <= 0 disables limiting.
func (a API) GetRateLimit() (float64, int) {
	return a.src.getFloat(rateLimitRPSVar, 0), a.src.getInt(rateLimitBurstVar, 1)
}

func (a API) GetRefreshTokenExpiry() time.Duration {
	return a.src.getDuration(refreshTokenExpiryVar, 7*24*time.Hour) // 7 days
}
