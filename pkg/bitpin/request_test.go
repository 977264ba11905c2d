package bitpin

import (
	"io"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veiloq/bitpin-connector/pkg/logging"
)

// capturingLogger records every entry for assertions on warn output.
type capturingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *capturingLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, msg)
}

func (l *capturingLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

func (l *capturingLogger) Debug(msg string, fields ...logging.Field) { l.record(msg) }
func (l *capturingLogger) Info(msg string, fields ...logging.Field)  { l.record(msg) }
func (l *capturingLogger) Warn(msg string, fields ...logging.Field)  { l.record(msg) }
func (l *capturingLogger) Error(msg string, fields ...logging.Field) { l.record(msg) }
func (l *capturingLogger) WithFields(fields ...logging.Field) logging.Logger {
	return l
}
func (l *capturingLogger) SetLevel(level logging.Level) {}
func (l *capturingLogger) SetOutput(w io.Writer)        {}

func newTestCore(opts *Options) *core {
	return newCore(opts.withDefaults(), cancelSynthesizeAlways)
}

func TestAPIURL_Composition(t *testing.T) {
	c := newTestCore(&Options{BaseURL: "https://api.example.test/api/"})

	assert.Equal(t, "https://api.example.test/api/v1/mkt/markets/", c.apiURL(marketsEndpoint, ""))
	assert.Equal(t, "https://api.example.test/api/v2/mkt/tickers/", c.apiURL(tickersEndpoint, APIVersion2))
}

func TestBuildRequest_SignedInjectsBearer(t *testing.T) {
	c := newTestCore(&Options{AccessToken: "at-5"})

	req, err := c.buildRequest(&callSpec{method: http.MethodGet, path: walletsEndpoint, signed: true})
	require.NoError(t, err)
	assert.Equal(t, "Bearer at-5", req.Headers.Get("Authorization"))

	unsigned, err := c.buildRequest(&callSpec{method: http.MethodGet, path: marketsEndpoint})
	require.NoError(t, err)
	assert.Empty(t, unsigned.Headers.Get("Authorization"))
}

func TestBuildRequest_OptionMerge(t *testing.T) {
	c := newTestCore(&Options{
		DefaultRequestOptions: &RequestOptions{
			Timeout: 2 * time.Second,
			Headers: http.Header{"X-A": []string{"default"}, "X-B": []string{"default"}},
			Params:  map[string]string{"p": "default", "q": "default"},
		},
	})

	req, err := c.buildRequest(&callSpec{
		method: http.MethodGet,
		path:   marketsEndpoint,
		opts: &RequestOptions{
			Timeout: 5 * time.Second,
			Headers: http.Header{"X-B": []string{"call"}},
			Params:  map[string]string{"q": "call"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, req.Timeout)
	assert.Equal(t, "default", req.Headers.Get("X-A"))
	assert.Equal(t, "call", req.Headers.Get("X-B"))
	assert.Equal(t, "default", req.Query.Get("p"))
	assert.Equal(t, "call", req.Query.Get("q"))
}

func TestBuildRequest_GETBodyBecomesQuery(t *testing.T) {
	c := newTestCore(&Options{})

	req, err := c.buildRequest(&callSpec{
		method: http.MethodGet,
		path:   walletsEndpoint,
		body:   map[string]interface{}{"assets": "BTC", "limit": 25, "tradable": true},
	})
	require.NoError(t, err)

	assert.Nil(t, req.JSONBody)
	assert.Equal(t, "BTC", req.Query.Get("assets"))
	assert.Equal(t, "25", req.Query.Get("limit"))
	assert.Equal(t, "true", req.Query.Get("tradable"))
}

func TestBuildRequest_POSTBodyKept(t *testing.T) {
	c := newTestCore(&Options{})
	body := map[string]string{"refresh": "rt"}

	req, err := c.buildRequest(&callSpec{
		method: http.MethodPost,
		path:   refreshTokenEndpoint,
		body:   body,
	})
	require.NoError(t, err)
	assert.Equal(t, body, req.JSONBody)
	assert.Empty(t, req.Query)
}

func TestMergeExtraParams_WarnsAndDrops(t *testing.T) {
	logger := &capturingLogger{}
	c := newTestCore(&Options{Logger: logger})

	query := url.Values{}
	c.mergeExtraParams("GetWallets", query, walletParams, map[string]string{
		"limit":   "3",
		"unknown": "x",
	})

	assert.Equal(t, "3", query.Get("limit"))
	assert.False(t, query.Has("unknown"))
	require.Len(t, logger.messages(), 1)
	assert.Contains(t, logger.messages()[0], "unrecognized parameter")
}

func TestMergeRequestOptions_NilSafe(t *testing.T) {
	merged := mergeRequestOptions(nil, nil)
	require.NotNil(t, merged)
	assert.Zero(t, merged.Timeout)
	assert.Empty(t, merged.Headers)
	assert.Empty(t, merged.Params)
}
