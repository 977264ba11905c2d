package bitpin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAsyncClient(t *testing.T, server *recordingServer, opts *Options) *AsyncClient {
	t.Helper()
	if opts == nil {
		opts = &Options{}
	}
	opts.BaseURL = server.URL
	client, err := NewAsyncClient(opts)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestAsyncClient_LoginAtConstruction(t *testing.T) {
	server := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/usr/authenticate/", r.URL.Path)
		fmt.Fprint(w, `{"refresh":"rt-a","access":"at-a"}`)
	})

	client := newTestAsyncClient(t, server, &Options{APIKey: "key", APISecret: "secret"})

	tokens := client.Tokens()
	assert.Equal(t, "at-a", tokens.Access)
	assert.Equal(t, "rt-a", tokens.Refresh)
}

func TestAsyncClient_GetTickersInfo(t *testing.T) {
	server := newRecordingServer(t, jsonHandler(http.StatusOK,
		`[{"symbol":"BTC_IRT","price":"42000000000"}]`))
	client := newTestAsyncClient(t, server, nil)

	promise := client.GetTickersInfo(context.Background())
	tickers, err := promise.Await(context.Background())
	require.NoError(t, err)
	require.Len(t, tickers, 1)
	assert.Equal(t, "BTC_IRT", tickers[0].Symbol)
}

func TestAsyncClient_ConcurrentRequests(t *testing.T) {
	server := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	client := newTestAsyncClient(t, server, nil)

	ctx := context.Background()
	markets := client.GetMarketsInfo(ctx)
	currencies := client.GetCurrenciesInfo(ctx)
	tickers := client.GetTickersInfo(ctx)

	_, err := markets.Await(ctx)
	require.NoError(t, err)
	_, err = currencies.Await(ctx)
	require.NoError(t, err)
	_, err = tickers.Await(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, server.count())
}

// The async client raises on a failed DELETE where the blocking client
// synthesizes a success payload.
func TestAsyncClient_CancelOrderRaisesOnError(t *testing.T) {
	server := newRecordingServer(t, jsonHandler(http.StatusNotFound, `{"detail":"no such order"}`))
	client := newTestAsyncClient(t, server, &Options{AccessToken: "tok"})

	_, err := client.CancelOrder(context.Background(), "31").Await(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "no such order", apiErr.Message)
}

func TestAsyncClient_CancelOrderSuccess(t *testing.T) {
	server := newRecordingServer(t, jsonHandler(http.StatusNoContent, ``))
	client := newTestAsyncClient(t, server, &Options{AccessToken: "tok"})

	resp, err := client.CancelOrder(context.Background(), "31").Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &CancelOrderResponse{Status: "success", ID: "31"}, resp)
}

func TestAsyncClient_BulkValidationResolvesWithoutNetwork(t *testing.T) {
	server := newRecordingServer(t, jsonHandler(http.StatusOK, `[]`))
	client := newTestAsyncClient(t, server, &Options{AccessToken: "tok"})

	orders := make([]BulkOrderItem, 11)
	for i := range orders {
		orders[i] = BulkOrderItem{Symbol: "BTC_IRT", Side: SideBuy, Type: ModeLimit, BaseAmount: 1, Price: 1}
	}

	_, err := client.CreateOrderBulk(context.Background(), orders).Await(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyBulkOrders)
	assert.Equal(t, 0, server.count())
}

func TestPromise_AwaitHonorsContext(t *testing.T) {
	p := newPromise[int]()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPromise_AwaitRepeatedly(t *testing.T) {
	p := promiseOf(func() (string, error) {
		return "value", nil
	})

	for i := 0; i < 3; i++ {
		got, err := p.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "value", got)
	}
}

func TestPromise_PropagatesError(t *testing.T) {
	sentinel := errors.New("boom")
	p := promiseOf(func() (int, error) { return 0, sentinel })

	_, err := p.Await(context.Background())
	assert.ErrorIs(t, err, sentinel)
}
