// Package rest implements the HTTP transport adapter used by the Bitpin
// clients. A Session owns one underlying connection pool for its whole
// lifetime and must be closed explicitly by the owner. The session performs
// no retries: a non-2xx response is returned to the caller untouched so the
// layer above can normalize it into a typed error.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/veiloq/bitpin-connector/pkg/logging"
	"github.com/veiloq/bitpin-connector/pkg/ratelimit"
)

// Doer is the transport capability consumed by the clients. The concrete
// Session implements it; tests substitute their own.
type Doer interface {
	// Do executes one HTTP exchange and returns the raw response.
	Do(ctx context.Context, req *Request) (*Response, error)

	// Close releases the underlying connection pool. The session must not
	// be used after Close.
	Close() error
}

// Request describes one HTTP exchange. It is an ephemeral value built per
// call and never shared.
type Request struct {
	Method   string
	URL      string
	Query    url.Values
	JSONBody interface{}
	Headers  http.Header

	// Timeout overrides the session timeout for this request when positive.
	Timeout time.Duration
}

// Response carries the raw result of an exchange. Method and Path are kept
// so the response normalizer can special-case DELETE responses, whose
// synthesized payload is derived from the request path.
type Response struct {
	StatusCode int
	Body       []byte
	Method     string
	Path       string
}

// Config holds configuration for a Session.
type Config struct {
	// Timeout applies to each request unless overridden per call.
	Timeout time.Duration

	// RateLimit, when non-nil, paces requests through a token bucket.
	// Leave nil to send at caller speed; the exchange enforces its own
	// budgets server-side.
	RateLimit *ratelimit.Rate

	// Transport overrides the HTTP round tripper, primarily for tests.
	Transport http.RoundTripper

	// Logger defaults to a nop logger.
	Logger logging.Logger
}

// DefaultConfig returns a default session configuration
func DefaultConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		Logger:  logging.NewNopLogger(),
	}
}

// Session implements Doer over one long-lived *http.Client.
type Session struct {
	httpClient *http.Client
	limiter    ratelimit.RateLimiter
	logger     logging.Logger
	timeout    time.Duration
}

// NewSession creates a Session with the given configuration. A nil config
// uses DefaultConfig.
func NewSession(config *Config) *Session {
	if config == nil {
		config = DefaultConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	var limiter ratelimit.RateLimiter
	if config.RateLimit != nil {
		limiter = ratelimit.NewTokenBucketLimiter(*config.RateLimit)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Session{
		httpClient: &http.Client{
			Transport: config.Transport,
		},
		limiter: limiter,
		logger:  logger,
		timeout: timeout,
	}
}

// Do implements the Doer interface.
func (s *Session) Do(ctx context.Context, req *Request) (*Response, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait error: %w", err)
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid request url %q: %w", req.URL, err)
	}
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.JSONBody != nil {
		payload, err := json.Marshal(req.JSONBody)
		if err != nil {
			return nil, fmt.Errorf("error marshaling request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for key, values := range req.Headers {
		httpReq.Header.Del(key)
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	s.logger.Debug("request completed",
		logging.String("method", req.Method),
		logging.String("url", target.String()),
		logging.Int("status", resp.StatusCode),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       raw,
		Method:     req.Method,
		Path:       target.Path,
	}, nil
}

// Close implements the Doer interface.
func (s *Session) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}
