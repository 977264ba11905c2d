package bitpin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/veiloq/bitpin-connector/pkg/logging"
	"github.com/veiloq/bitpin-connector/pkg/rest"
)

// Endpoint paths, relative to BaseURL + version segment.
const (
	loginEndpoint        = "usr/authenticate/"
	refreshTokenEndpoint = "usr/refresh_token/"
	currenciesEndpoint   = "mkt/currencies/"
	marketsEndpoint      = "mkt/markets/"
	tickersEndpoint      = "mkt/tickers/"
	walletsEndpoint      = "wlt/wallets/"
	orderbookEndpoint    = "mth/orderbook/%s/"
	recentTradesEndpoint = "mth/matches/%s/"
	ordersEndpoint       = "odr/orders/"
	bulkOrdersEndpoint   = "odr/orders/bulk/"

	// fillsEndpoint is part of the documented API surface but no current
	// method reaches it: GetUserTrades posts its filters to odr/orders/.
	fillsEndpoint = "odr/fills/"
)

// callSpec is the ephemeral request description an endpoint method hands to
// the core. It is built per call and never shared.
type callSpec struct {
	method  string
	path    string
	signed  bool
	version string
	query   url.Values
	body    interface{}
	opts    *RequestOptions
}

// core is the shared request/authentication lifecycle used by both the
// blocking and the asynchronous client: request building, bearer-token
// management and response normalization live here exactly once.
type core struct {
	baseURL    string
	session    rest.Doer
	auth       *authenticator
	defaults   *RequestOptions
	logger     logging.Logger
	normalizer responseNormalizer
}

func newCore(opts *Options, mode cancelSynthesisMode) *core {
	session := rest.NewSession(&rest.Config{
		Timeout:   opts.RequestTimeout,
		RateLimit: opts.RateLimit,
		Transport: opts.Transport,
		Logger:    opts.Logger,
	})
	return &core{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		session:    session,
		auth:       newAuthenticator(opts),
		defaults:   opts.DefaultRequestOptions,
		logger:     opts.Logger,
		normalizer: responseNormalizer{mode: mode},
	}
}

// apiURL composes baseURL + "/" + version + "/" + path.
func (c *core) apiURL(path, version string) string {
	if version == "" {
		version = APIVersion1
	}
	return c.baseURL + "/" + version + "/" + path
}

// buildRequest finalizes the transport request for a call: it merges the
// configured default options with the per-call ones (caller wins), applies
// the fixed timeout unless overridden, converts a key-value body on GET
// into a query string, and injects the bearer header for signed calls.
// It performs no I/O.
func (c *core) buildRequest(spec *callSpec) (*rest.Request, error) {
	merged := mergeRequestOptions(c.defaults, spec.opts)

	req := &rest.Request{
		Method:  spec.method,
		URL:     c.apiURL(spec.path, spec.version),
		Query:   spec.query,
		Headers: http.Header{},
	}

	if merged.Timeout > 0 {
		req.Timeout = merged.Timeout
	}
	for key, values := range merged.Headers {
		req.Headers[key] = values
	}
	if len(merged.Params) > 0 {
		if req.Query == nil {
			req.Query = url.Values{}
		}
		for k, v := range merged.Params {
			req.Query.Set(k, v)
		}
	}

	// Legacy callers pass filter data as a body on GET; fold it into the
	// query string and drop the body.
	if spec.method == http.MethodGet && spec.body != nil {
		if kv, ok := bodyAsParams(spec.body); ok {
			if req.Query == nil {
				req.Query = url.Values{}
			}
			for k, v := range kv {
				req.Query.Set(k, v)
			}
		} else {
			return nil, fmt.Errorf("unsupported GET body type %T", spec.body)
		}
	} else {
		req.JSONBody = spec.body
	}

	if spec.signed {
		c.auth.injectAuthHeader(req.Headers)
	}

	return req, nil
}

// request executes a call end to end: build, send, normalize.
func (c *core) request(ctx context.Context, spec *callSpec) (json.RawMessage, error) {
	req, err := c.buildRequest(spec)
	if err != nil {
		return nil, err
	}
	resp, err := c.session.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.normalizer.normalize(resp)
}

// requestInto executes a call and decodes the normalized payload into out.
func (c *core) requestInto(ctx context.Context, spec *callSpec, out interface{}) error {
	raw, err := c.request(ctx, spec)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Body: string(raw), Err: err}
	}
	return nil
}

// login performs usr/authenticate/ (unsigned) and stores both tokens.
func (c *core) login(ctx context.Context, opts *RequestOptions) (*LoginResponse, error) {
	payload, err := c.auth.loginPayload()
	if err != nil {
		return nil, err
	}
	var resp LoginResponse
	spec := &callSpec{
		method: http.MethodPost,
		path:   loginEndpoint,
		body:   payload,
		opts:   opts,
	}
	if err := c.requestInto(ctx, spec, &resp); err != nil {
		return nil, err
	}
	c.auth.setTokens(resp.Access, resp.Refresh)
	return &resp, nil
}

// refreshAccessToken performs usr/refresh_token/ (unsigned) and stores the
// new access token, leaving the refresh token untouched. An empty token
// argument uses the stored refresh token.
func (c *core) refreshAccessToken(ctx context.Context, token string, opts *RequestOptions) (*RefreshTokenResponse, error) {
	var resp RefreshTokenResponse
	spec := &callSpec{
		method: http.MethodPost,
		path:   refreshTokenEndpoint,
		body:   c.auth.refreshPayload(token),
		opts:   opts,
	}
	if err := c.requestInto(ctx, spec, &resp); err != nil {
		return nil, err
	}
	c.auth.setAccessToken(resp.Access)
	return &resp, nil
}

// mergeExtraParams folds caller-supplied raw parameters into the query.
// Keys the endpoint does not recognize are reported and dropped; the call
// proceeds with the recognized ones.
func (c *core) mergeExtraParams(operation string, query url.Values, recognized map[string]bool, extra map[string]string) {
	for key, value := range extra {
		if !recognized[key] {
			c.logger.Warn("unrecognized parameter, ignoring",
				logging.String("operation", operation),
				logging.String("param", key),
			)
			continue
		}
		query.Set(key, value)
	}
}

func (c *core) close() error {
	return c.session.Close()
}

// mergeRequestOptions shallow-merges per-call options over defaults, the
// caller winning on conflicting keys.
func mergeRequestOptions(defaults, call *RequestOptions) *RequestOptions {
	merged := &RequestOptions{
		Headers: http.Header{},
		Params:  map[string]string{},
	}
	for _, src := range []*RequestOptions{defaults, call} {
		if src == nil {
			continue
		}
		if src.Timeout > 0 {
			merged.Timeout = src.Timeout
		}
		for key, values := range src.Headers {
			merged.Headers[key] = values
		}
		for k, v := range src.Params {
			merged.Params[k] = v
		}
	}
	return merged
}

// bodyAsParams converts a key-value body into flat query parameters.
func bodyAsParams(body interface{}) (map[string]string, bool) {
	switch kv := body.(type) {
	case map[string]string:
		return kv, true
	case map[string]interface{}:
		out := make(map[string]string, len(kv))
		for k, v := range kv {
			out[k] = paramString(v)
		}
		return out, true
	default:
		return nil, false
	}
}

func paramString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprintf("%v", s)
	}
}
