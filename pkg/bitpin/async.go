package bitpin

import (
	"context"
	"fmt"
	"net/http"
)

// Promise is the handle returned by AsyncClient methods. The call runs on
// its own goroutine; Await blocks until the result is available or the
// given context is done. Await may be called any number of times.
type Promise[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newPromise[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

func (p *Promise[T]) resolve(value T, err error) {
	p.value = value
	p.err = err
	close(p.done)
}

// Await blocks until the promise resolves or ctx is done. Abandoning a
// promise does not cancel the underlying request; the context passed to
// the originating method governs that.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// promiseOf runs fn on a new goroutine and resolves the returned promise
// with its result.
func promiseOf[T any](fn func() (T, error)) *Promise[T] {
	p := newPromise[T]()
	go func() {
		p.resolve(fn())
	}()
	return p
}

// AsyncClient is the non-blocking Bitpin API client. Every method returns
// immediately with a Promise resolved by a background goroutine over the
// shared session.
//
// Within one client no ordering is guaranteed between a background token
// refresh and an in-flight signed request: a request may be built with a
// token that is replaced a moment later. This mirrors the blocking client.
//
// Unlike the blocking client, the async normalizer raises an APIError for
// every non-2xx response, including DELETE; see cancelSynthesisMode.
type AsyncClient struct {
	core    *core
	relogin *maintainer
	refresh *maintainer
}

// NewAsyncClient creates an asynchronous client. Construction itself is
// synchronous: when credentials are present the initial login completes
// before NewAsyncClient returns, so a signed call may follow directly.
func NewAsyncClient(opts *Options) (*AsyncClient, error) {
	opts = opts.withDefaults()

	c := &AsyncClient{core: newCore(opts, cancelSynthesizeOnSuccess)}

	ctx, cancel := context.WithTimeout(context.Background(), opts.RequestTimeout)
	defer cancel()

	if c.core.auth.hasCredentials() {
		if _, err := c.core.login(ctx, nil); err != nil {
			c.core.close()
			return nil, fmt.Errorf("initial login failed: %w", err)
		}
	}

	c.relogin, c.refresh = startMaintainers(c.core, opts)
	return c, nil
}

// Tokens returns a snapshot of the current token pair.
func (c *AsyncClient) Tokens() TokenPair {
	return c.core.auth.tokenPair()
}

// Login authenticates with the configured API key and secret and stores
// the returned token pair.
func (c *AsyncClient) Login(ctx context.Context, opts ...*RequestOptions) *Promise[*LoginResponse] {
	return promiseOf(func() (*LoginResponse, error) {
		return c.core.login(ctx, firstOption(opts))
	})
}

// RefreshAccessToken exchanges a refresh token for a new access token and
// stores it. An empty token uses the stored refresh token.
func (c *AsyncClient) RefreshAccessToken(ctx context.Context, refreshToken string, opts ...*RequestOptions) *Promise[*RefreshTokenResponse] {
	return promiseOf(func() (*RefreshTokenResponse, error) {
		return c.core.refreshAccessToken(ctx, refreshToken, firstOption(opts))
	})
}

// GetUserInfo is a frozen compatibility shim for callers of the legacy
// API surface; the endpoint no longer exists and no call is made.
//
// Deprecated: the exchange removed the user-info endpoint.
func (c *AsyncClient) GetUserInfo(ctx context.Context) error {
	c.core.logger.Warn("GetUserInfo is deprecated and performs no request")
	return nil
}

// GetCurrenciesInfo lists all known assets.
func (c *AsyncClient) GetCurrenciesInfo(ctx context.Context, opts ...*RequestOptions) *Promise[[]Currency] {
	return promiseOf(func() ([]Currency, error) {
		var out []Currency
		err := c.core.requestInto(ctx, &callSpec{
			method: http.MethodGet,
			path:   currenciesEndpoint,
			opts:   firstOption(opts),
		}, &out)
		return out, err
	})
}

// GetMarketsInfo lists all trading pairs.
func (c *AsyncClient) GetMarketsInfo(ctx context.Context, opts ...*RequestOptions) *Promise[[]Market] {
	return promiseOf(func() ([]Market, error) {
		var out []Market
		err := c.core.requestInto(ctx, &callSpec{
			method: http.MethodGet,
			path:   marketsEndpoint,
			opts:   firstOption(opts),
		}, &out)
		return out, err
	})
}

// GetTickersInfo lists current prices for all markets.
func (c *AsyncClient) GetTickersInfo(ctx context.Context, opts ...*RequestOptions) *Promise[[]Ticker] {
	return promiseOf(func() ([]Ticker, error) {
		var out []Ticker
		err := c.core.requestInto(ctx, &callSpec{
			method: http.MethodGet,
			path:   tickersEndpoint,
			opts:   firstOption(opts),
		}, &out)
		return out, err
	})
}

// GetWallets lists the authenticated user's wallets. Signed.
func (c *AsyncClient) GetWallets(ctx context.Context, filter *WalletFilter, opts ...*RequestOptions) *Promise[[]Wallet] {
	return promiseOf(func() ([]Wallet, error) {
		var out []Wallet
		err := c.core.requestInto(ctx, &callSpec{
			method: http.MethodGet,
			path:   walletsEndpoint,
			signed: true,
			query:  c.core.walletQuery(filter),
			opts:   firstOption(opts),
		}, &out)
		return out, err
	})
}

// GetOrderbook returns the order book for a symbol.
func (c *AsyncClient) GetOrderbook(ctx context.Context, symbol string, opts ...*RequestOptions) *Promise[*Orderbook] {
	return promiseOf(func() (*Orderbook, error) {
		var out Orderbook
		err := c.core.requestInto(ctx, &callSpec{
			method: http.MethodGet,
			path:   fmt.Sprintf(orderbookEndpoint, symbol),
			opts:   firstOption(opts),
		}, &out)
		if err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// GetRecentTrades returns the latest matches for a symbol.
func (c *AsyncClient) GetRecentTrades(ctx context.Context, symbol string, opts ...*RequestOptions) *Promise[[]Trade] {
	return promiseOf(func() ([]Trade, error) {
		var out []Trade
		err := c.core.requestInto(ctx, &callSpec{
			method: http.MethodGet,
			path:   fmt.Sprintf(recentTradesEndpoint, symbol),
			opts:   firstOption(opts),
		}, &out)
		return out, err
	})
}

// GetUserOrders lists the authenticated user's orders. Signed.
func (c *AsyncClient) GetUserOrders(ctx context.Context, filter *OrderFilter, opts ...*RequestOptions) *Promise[[]Order] {
	return promiseOf(func() ([]Order, error) {
		var out []Order
		err := c.core.requestInto(ctx, &callSpec{
			method: http.MethodGet,
			path:   ordersEndpoint,
			signed: true,
			query:  c.core.orderQuery(filter),
			opts:   firstOption(opts),
		}, &out)
		return out, err
	})
}

// CreateOrder places a single order, stripping absent optional fields.
// Signed.
func (c *AsyncClient) CreateOrder(ctx context.Context, order *OrderRequest, opts ...*RequestOptions) *Promise[*Order] {
	return promiseOf(func() (*Order, error) {
		var out Order
		err := c.core.requestInto(ctx, &callSpec{
			method: http.MethodPost,
			path:   ordersEndpoint,
			signed: true,
			body:   orderPayload(order),
			opts:   firstOption(opts),
		}, &out)
		if err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// CreateOrderBulk places up to ten orders in one call. Local validation
// failures resolve the promise without any network call. Signed.
func (c *AsyncClient) CreateOrderBulk(ctx context.Context, orders []BulkOrderItem, opts ...*RequestOptions) *Promise[[]Order] {
	if err := validateBulkOrders(orders); err != nil {
		p := newPromise[[]Order]()
		p.resolve(nil, err)
		return p
	}
	return promiseOf(func() ([]Order, error) {
		var out []Order
		err := c.core.requestInto(ctx, &callSpec{
			method: http.MethodPost,
			path:   bulkOrdersEndpoint,
			signed: true,
			body:   map[string]interface{}{"orders": orders},
			opts:   firstOption(opts),
		}, &out)
		return out, err
	})
}

// CancelOrder cancels one order by id. Signed. A non-2xx response resolves
// with an APIError; only a successful DELETE yields the synthesized
// payload.
func (c *AsyncClient) CancelOrder(ctx context.Context, orderID string, opts ...*RequestOptions) *Promise[*CancelOrderResponse] {
	return promiseOf(func() (*CancelOrderResponse, error) {
		var out CancelOrderResponse
		err := c.core.requestInto(ctx, &callSpec{
			method: http.MethodDelete,
			path:   ordersEndpoint + orderID + "/",
			signed: true,
			opts:   firstOption(opts),
		}, &out)
		if err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// CancelOrderBulk cancels multiple orders by ids or identifiers. Signed.
func (c *AsyncClient) CancelOrderBulk(ctx context.Context, ids, identifiers []string, opts ...*RequestOptions) *Promise[*CancelOrderResponse] {
	return promiseOf(func() (*CancelOrderResponse, error) {
		var out CancelOrderResponse
		err := c.core.requestInto(ctx, &callSpec{
			method: http.MethodDelete,
			path:   bulkOrdersEndpoint,
			signed: true,
			body:   bulkCancelPayload(ids, identifiers),
			opts:   firstOption(opts),
		}, &out)
		if err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// GetUserTrades lists the authenticated user's executed orders. Signed.
func (c *AsyncClient) GetUserTrades(ctx context.Context, filter *TradeFilter, opts ...*RequestOptions) *Promise[[]Fill] {
	return promiseOf(func() ([]Fill, error) {
		var out []Fill
		err := c.core.requestInto(ctx, &callSpec{
			method: http.MethodGet,
			path:   ordersEndpoint,
			signed: true,
			query:  c.core.tradeQuery(filter),
			opts:   firstOption(opts),
		}, &out)
		return out, err
	})
}

// Close stops the background maintainers and releases the HTTP session.
// The client must not be used after Close.
func (c *AsyncClient) Close() error {
	stopMaintainers(c.relogin, c.refresh)
	return c.core.close()
}
