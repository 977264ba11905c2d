package bitpin

import (
	"net/http"
	"sync"
)

// TokenPair holds the bearer tokens for the authenticated user. Access is
// attached to signed requests; Refresh is exchanged for new access tokens.
type TokenPair struct {
	Access  string
	Refresh string
}

// authenticator owns the credentials and the token pair. Token reads and
// writes are guarded by an RWMutex: a background refresh may still replace
// the token a moment after an in-flight request was built with it (no
// ordering is guaranteed), but torn reads cannot happen.
type authenticator struct {
	apiKey    string
	apiSecret string

	mu     sync.RWMutex
	tokens TokenPair
}

func newAuthenticator(opts *Options) *authenticator {
	return &authenticator{
		apiKey:    opts.APIKey,
		apiSecret: opts.APISecret,
		tokens: TokenPair{
			Access:  opts.AccessToken,
			Refresh: opts.RefreshToken,
		},
	}
}

func (a *authenticator) hasCredentials() bool {
	return a.apiKey != "" && a.apiSecret != ""
}

// tokenPair returns a snapshot of the current tokens.
func (a *authenticator) tokenPair() TokenPair {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tokens
}

func (a *authenticator) setTokens(access, refresh string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tokens.Access = access
	a.tokens.Refresh = refresh
}

func (a *authenticator) setAccessToken(access string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tokens.Access = access
}

// injectAuthHeader sets the bearer header for a signed request, replacing
// any prior Authorization value. An empty access token is attached as-is;
// the exchange answers 401 and that is the surfaced error.
func (a *authenticator) injectAuthHeader(headers http.Header) {
	a.mu.RLock()
	access := a.tokens.Access
	a.mu.RUnlock()
	headers.Set("Authorization", "Bearer "+access)
}

// loginPayload builds the usr/authenticate/ body.
func (a *authenticator) loginPayload() (map[string]string, error) {
	if !a.hasCredentials() {
		return nil, ErrNoCredentials
	}
	return map[string]string{
		"api_key":    a.apiKey,
		"secret_key": a.apiSecret,
	}, nil
}

// refreshPayload builds the usr/refresh_token/ body. An empty token falls
// back to the stored refresh token.
func (a *authenticator) refreshPayload(token string) map[string]string {
	if token == "" {
		a.mu.RLock()
		token = a.tokens.Refresh
		a.mu.RUnlock()
	}
	return map[string]string{"refresh": token}
}
