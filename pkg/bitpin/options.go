package bitpin

import (
	"net/http"
	"os"
	"time"

	"github.com/veiloq/bitpin-connector/pkg/logging"
	"github.com/veiloq/bitpin-connector/pkg/ratelimit"
)

// API version segments, selectable per call through request options.
const (
	APIVersion1 = "v1"
	APIVersion2 = "v2"
)

// DefaultBaseURL is the production REST endpoint of the exchange.
const DefaultBaseURL = "https://api.bitpin.ir/api"

// Environment variables consulted by OptionsFromEnv.
const (
	EnvAPIKey       = "BITPIN_API_KEY"
	EnvAPISecret    = "BITPIN_API_SECRET"
	EnvAccessToken  = "BITPIN_ACCESS_TOKEN"
	EnvRefreshToken = "BITPIN_REFRESH_TOKEN"
)

// Default intervals and timeout mirroring the exchange's token lifetimes:
// refresh tokens live roughly a week, access tokens roughly fifteen minutes.
const (
	DefaultReloginInterval      = 6 * 24 * time.Hour
	DefaultRefreshTokenInterval = 13 * time.Minute
	DefaultRequestTimeout       = 10 * time.Second
)

// RequestOptions are per-request knobs. The client's DefaultRequestOptions
// apply to every call; options supplied on an individual call are merged on
// top, caller winning on conflicting keys.
type RequestOptions struct {
	// Timeout overrides the fixed request timeout when positive.
	Timeout time.Duration

	// Headers are merged into the outgoing headers, replacing any prior
	// value for the same header name.
	Headers http.Header

	// Params are merged into the query string.
	Params map[string]string
}

// Options configures a Client or AsyncClient. The zero value is usable for
// public endpoints; signed endpoints need either credentials or tokens.
// All fields are read once at construction.
type Options struct {
	// Credentials. When both are set, the client logs in at construction.
	APIKey    string
	APISecret string

	// Pre-issued tokens, used when logging in is not desired or possible.
	AccessToken  string
	RefreshToken string

	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// RequestTimeout is the fixed per-request timeout, default 10s.
	RequestTimeout time.Duration

	// DefaultRequestOptions apply to every request before per-call options.
	DefaultRequestOptions *RequestOptions

	// BackgroundRelogin re-runs login every BackgroundReloginInterval
	// (default 6 days) on a background task, keeping both tokens fresh.
	// Requires credentials.
	BackgroundRelogin         bool
	BackgroundReloginInterval time.Duration

	// BackgroundRefreshToken refreshes the access token every
	// BackgroundRefreshTokenInterval (default 13 minutes) on a background
	// task. Requires a refresh token or credentials.
	BackgroundRefreshToken         bool
	BackgroundRefreshTokenInterval time.Duration

	// Maintainer retry policy. By default a failed login/refresh attempt is
	// retried immediately with no delay and no bound, which under a
	// persistent failure (revoked credentials, exchange outage) becomes a
	// tight retry loop. Set MaintainerRetryAttempts and
	// MaintainerRetryDelay to bound each retry cycle instead.
	MaintainerRetryAttempts uint
	MaintainerRetryDelay    time.Duration

	// RateLimit optionally paces outgoing requests; nil sends at caller
	// speed. The exchange enforces its documented budgets server-side
	// either way.
	RateLimit *ratelimit.Rate

	// Transport overrides the HTTP round tripper, primarily for tests.
	Transport http.RoundTripper

	// Logger defaults to a nop logger so the library stays silent unless
	// asked otherwise.
	Logger logging.Logger
}

// OptionsFromEnv builds Options from the BITPIN_* environment variables.
// This is the only place the library touches the process environment; core
// logic never does implicit lookups.
func OptionsFromEnv() *Options {
	return &Options{
		APIKey:       os.Getenv(EnvAPIKey),
		APISecret:    os.Getenv(EnvAPISecret),
		AccessToken:  os.Getenv(EnvAccessToken),
		RefreshToken: os.Getenv(EnvRefreshToken),
	}
}

// withDefaults returns a copy with zero fields replaced by defaults.
func (o *Options) withDefaults() *Options {
	opts := &Options{}
	if o != nil {
		*opts = *o
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.BackgroundReloginInterval <= 0 {
		opts.BackgroundReloginInterval = DefaultReloginInterval
	}
	if opts.BackgroundRefreshTokenInterval <= 0 {
		opts.BackgroundRefreshTokenInterval = DefaultRefreshTokenInterval
	}
	if opts.MaintainerRetryAttempts == 0 {
		opts.MaintainerRetryAttempts = 1
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	return opts
}
