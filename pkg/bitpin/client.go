// Package bitpin implements the Bitpin exchange REST API client.
//
// Client is the blocking variant: every method occupies the calling
// goroutine until the HTTP exchange completes. AsyncClient is the
// promise-based variant. Both compose the same core, so authentication,
// request building and response normalization behave identically.
package bitpin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Client is the blocking Bitpin API client. It owns one HTTP session for
// its whole lifetime; callers must release it with Close.
type Client struct {
	core    *core
	relogin *maintainer
	refresh *maintainer
}

// NewClient creates a blocking client. When credentials are present it
// logs in immediately, so a signed call may follow construction directly.
// Background maintainers are started here when enabled.
func NewClient(opts *Options) (*Client, error) {
	opts = opts.withDefaults()

	c := &Client{core: newCore(opts, cancelSynthesizeAlways)}
	if err := c.handleLogin(opts); err != nil {
		c.core.close()
		return nil, err
	}
	return c, nil
}

// handleLogin performs the construction-time login and starts the enabled
// maintainers. Mirrors the lifecycle on the async client.
func (c *Client) handleLogin(opts *Options) error {
	ctx, cancel := context.WithTimeout(context.Background(), opts.RequestTimeout)
	defer cancel()

	if c.core.auth.hasCredentials() {
		if _, err := c.Login(ctx); err != nil {
			return fmt.Errorf("initial login failed: %w", err)
		}
	}

	c.relogin, c.refresh = startMaintainers(c.core, opts)
	return nil
}

// startMaintainers starts the relogin and refresh maintainers for which the
// corresponding flag is set and usable credentials are present. Shared by
// both client variants.
func startMaintainers(core *core, opts *Options) (relogin, refresh *maintainer) {
	if opts.BackgroundRelogin && core.auth.hasCredentials() {
		relogin = newMaintainer("relogin", opts.BackgroundReloginInterval, opts,
			func(ctx context.Context) error {
				_, err := core.login(ctx, nil)
				return err
			})
		relogin.Start()
	}

	if opts.BackgroundRefreshToken && (core.auth.tokenPair().Refresh != "" || core.auth.hasCredentials()) {
		refresh = newMaintainer("refresh_token", opts.BackgroundRefreshTokenInterval, opts,
			func(ctx context.Context) error {
				_, err := core.refreshAccessToken(ctx, "", nil)
				return err
			})
		refresh.Start()
	}
	return relogin, refresh
}

// Tokens returns a snapshot of the current token pair.
func (c *Client) Tokens() TokenPair {
	return c.core.auth.tokenPair()
}

// Login authenticates with the configured API key and secret and stores
// the returned token pair.
//
// Rate limit: not documented.
func (c *Client) Login(ctx context.Context, opts ...*RequestOptions) (*LoginResponse, error) {
	return c.core.login(ctx, firstOption(opts))
}

// RefreshAccessToken exchanges a refresh token for a new access token and
// stores it. An empty token uses the stored refresh token.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string, opts ...*RequestOptions) (*RefreshTokenResponse, error) {
	return c.core.refreshAccessToken(ctx, refreshToken, firstOption(opts))
}

// GetUserInfo is a frozen compatibility shim for callers of the legacy
// API surface; the endpoint no longer exists and no call is made.
//
// Deprecated: the exchange removed the user-info endpoint.
func (c *Client) GetUserInfo(ctx context.Context) error {
	c.core.logger.Warn("GetUserInfo is deprecated and performs no request")
	return nil
}

// GetCurrenciesInfo lists all known assets.
//
// Rate limit: 10000/day, or 200/minute when authenticated.
func (c *Client) GetCurrenciesInfo(ctx context.Context, opts ...*RequestOptions) ([]Currency, error) {
	var out []Currency
	err := c.core.requestInto(ctx, &callSpec{
		method: http.MethodGet,
		path:   currenciesEndpoint,
		opts:   firstOption(opts),
	}, &out)
	return out, err
}

// GetMarketsInfo lists all trading pairs.
//
// Rate limit: 10000/day, or 200/minute when authenticated.
func (c *Client) GetMarketsInfo(ctx context.Context, opts ...*RequestOptions) ([]Market, error) {
	var out []Market
	err := c.core.requestInto(ctx, &callSpec{
		method: http.MethodGet,
		path:   marketsEndpoint,
		opts:   firstOption(opts),
	}, &out)
	return out, err
}

// GetTickersInfo lists current prices for all markets.
//
// Rate limit: 80/minute.
func (c *Client) GetTickersInfo(ctx context.Context, opts ...*RequestOptions) ([]Ticker, error) {
	var out []Ticker
	err := c.core.requestInto(ctx, &callSpec{
		method: http.MethodGet,
		path:   tickersEndpoint,
		opts:   firstOption(opts),
	}, &out)
	return out, err
}

// GetWallets lists the authenticated user's wallets, optionally narrowed
// by the filter. Signed.
//
// Rate limit: 10000/day.
func (c *Client) GetWallets(ctx context.Context, filter *WalletFilter, opts ...*RequestOptions) ([]Wallet, error) {
	var out []Wallet
	err := c.core.requestInto(ctx, &callSpec{
		method: http.MethodGet,
		path:   walletsEndpoint,
		signed: true,
		query:  c.core.walletQuery(filter),
		opts:   firstOption(opts),
	}, &out)
	return out, err
}

// GetOrderbook returns the order book for a symbol, e.g. "BTC_IRT".
//
// Rate limit: 60/minute.
func (c *Client) GetOrderbook(ctx context.Context, symbol string, opts ...*RequestOptions) (*Orderbook, error) {
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
}

// GetRecentTrades returns the latest matches for a symbol.
//
// Rate limit: 60/minute.
func (c *Client) GetRecentTrades(ctx context.Context, symbol string, opts ...*RequestOptions) ([]Trade, error) {
	var out []Trade
	err := c.core.requestInto(ctx, &callSpec{
		method: http.MethodGet,
		path:   fmt.Sprintf(recentTradesEndpoint, symbol),
		opts:   firstOption(opts),
	}, &out)
	return out, err
}

// GetUserOrders lists the authenticated user's orders, optionally narrowed
// by the filter. Signed.
//
// Rate limit: 80/minute.
func (c *Client) GetUserOrders(ctx context.Context, filter *OrderFilter, opts ...*RequestOptions) ([]Order, error) {
	var out []Order
	err := c.core.requestInto(ctx, &callSpec{
		method: http.MethodGet,
		path:   ordersEndpoint,
		signed: true,
		query:  c.core.orderQuery(filter),
		opts:   firstOption(opts),
	}, &out)
	return out, err
}

// CreateOrder places a single order. Optional zero-valued fields are
// stripped from the payload so the exchange applies its own per-order-type
// required-field defaults. Signed.
//
// Rate limit: 5400/hour.
func (c *Client) CreateOrder(ctx context.Context, order *OrderRequest, opts ...*RequestOptions) (*Order, error) {
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
}

// CreateOrderBulk places up to ten orders in one call. All entries must
// share one market symbol; violations fail locally without any network
// call. Signed.
//
// Rate limit: 1800/hour.
func (c *Client) CreateOrderBulk(ctx context.Context, orders []BulkOrderItem, opts ...*RequestOptions) ([]Order, error) {
	if err := validateBulkOrders(orders); err != nil {
		return nil, err
	}
	var out []Order
	err := c.core.requestInto(ctx, &callSpec{
		method: http.MethodPost,
		path:   bulkOrdersEndpoint,
		signed: true,
		body:   map[string]interface{}{"orders": orders},
		opts:   firstOption(opts),
	}, &out)
	return out, err
}

// CancelOrder cancels one order by id. The exchange returns no body on
// DELETE, so the response is the synthesized {status, id} payload. Signed.
//
// Rate limit: 5400/hour.
func (c *Client) CancelOrder(ctx context.Context, orderID string, opts ...*RequestOptions) (*CancelOrderResponse, error) {
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
}

// CancelOrderBulk cancels multiple orders by ids or identifiers. Signed.
func (c *Client) CancelOrderBulk(ctx context.Context, ids, identifiers []string, opts ...*RequestOptions) (*CancelOrderResponse, error) {
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
}

// GetUserTrades lists the authenticated user's executed orders, optionally
// narrowed by the filter. Signed.
//
// Rate limit: 80/minute.
func (c *Client) GetUserTrades(ctx context.Context, filter *TradeFilter, opts ...*RequestOptions) ([]Fill, error) {
	var out []Fill
	err := c.core.requestInto(ctx, &callSpec{
		method: http.MethodGet,
		path:   ordersEndpoint,
		signed: true,
		query:  c.core.tradeQuery(filter),
		opts:   firstOption(opts),
	}, &out)
	return out, err
}

// Close stops the background maintainers and releases the HTTP session.
// The client must not be used after Close.
func (c *Client) Close() error {
	stopMaintainers(c.relogin, c.refresh)
	return c.core.close()
}

func stopMaintainers(ms ...*maintainer) {
	for _, m := range ms {
		if m != nil {
			m.Stop()
		}
	}
}

func firstOption(opts []*RequestOptions) *RequestOptions {
	if len(opts) > 0 {
		return opts[0]
	}
	return nil
}

// validateBulkOrders enforces the exchange's bulk constraints locally.
func validateBulkOrders(orders []BulkOrderItem) error {
	const maxOrders = 10
	if len(orders) > maxOrders {
		return ErrTooManyBulkOrders
	}
	if len(orders) == 0 {
		return nil
	}
	market := orders[0].Symbol
	for _, order := range orders[1:] {
		if order.Symbol != market {
			return ErrMixedBulkMarkets
		}
	}
	return nil
}

// orderPayload builds the order-creation body, stripping absent fields.
func orderPayload(order *OrderRequest) map[string]interface{} {
	payload := map[string]interface{}{
		"symbol":      order.Symbol,
		"type":        order.Type,
		"side":        order.Side,
		"base_amount": order.BaseAmount,
	}
	if order.QuoteAmount != 0 {
		payload["quote_amount"] = order.QuoteAmount
	}
	if order.Price != 0 {
		payload["price"] = order.Price
	}
	if order.StopPrice != 0 {
		payload["stop_price"] = order.StopPrice
	}
	if order.OCOTargetPrice != 0 {
		payload["oco_target_price"] = order.OCOTargetPrice
	}
	if order.Identifier != "" {
		payload["identifier"] = order.Identifier
	}
	return payload
}

func bulkCancelPayload(ids, identifiers []string) map[string]interface{} {
	payload := map[string]interface{}{}
	if len(ids) > 0 {
		payload["ids"] = ids
	}
	if len(identifiers) > 0 {
		payload["identifiers"] = identifiers
	}
	return payload
}

// Query shaping. Recognized keys mirror the exchange's documented filter
// parameters; anything else in Extra is warn-logged and dropped.

var walletParams = map[string]bool{
	"assets": true, "service": true, "offset": true, "limit": true,
}

func (c *core) walletQuery(filter *WalletFilter) url.Values {
	query := url.Values{}
	if filter == nil {
		return query
	}
	if filter.Assets != "" {
		query.Set("assets", filter.Assets)
	}
	if filter.Service != "" {
		query.Set("service", filter.Service)
	}
	if filter.Offset > 0 {
		query.Set("offset", strconv.Itoa(filter.Offset))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	c.mergeExtraParams("GetWallets", query, walletParams, filter.Extra)
	return query
}

var orderParams = map[string]bool{
	"symbol": true, "side": true, "state": true, "type": true,
	"identifier": true, "start": true, "end": true,
	"ids_in": true, "identifiers_in": true, "offset": true, "limit": true,
}

func (c *core) orderQuery(filter *OrderFilter) url.Values {
	query := url.Values{}
	if filter == nil {
		return query
	}
	if filter.Symbol != "" {
		query.Set("symbol", filter.Symbol)
	}
	if len(filter.Side) > 0 {
		query.Set("side", joinParams(filter.Side))
	}
	if len(filter.State) > 0 {
		query.Set("state", joinParams(filter.State))
	}
	if len(filter.Type) > 0 {
		query.Set("type", joinParams(filter.Type))
	}
	if filter.Identifier != "" {
		query.Set("identifier", filter.Identifier)
	}
	if filter.Start != "" {
		query.Set("start", filter.Start)
	}
	if filter.End != "" {
		query.Set("end", filter.End)
	}
	if len(filter.IDsIn) > 0 {
		query.Set("ids_in", strings.Join(filter.IDsIn, ","))
	}
	if len(filter.IdentifiersIn) > 0 {
		query.Set("identifiers_in", strings.Join(filter.IdentifiersIn, ","))
	}
	if filter.Offset > 0 {
		query.Set("offset", strconv.Itoa(filter.Offset))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	c.mergeExtraParams("GetUserOrders", query, orderParams, filter.Extra)
	return query
}

var tradeParams = map[string]bool{
	"symbol": true, "side": true, "offset": true, "limit": true,
}

func (c *core) tradeQuery(filter *TradeFilter) url.Values {
	query := url.Values{}
	if filter == nil {
		return query
	}
	if filter.Symbol != "" {
		query.Set("symbol", filter.Symbol)
	}
	if filter.Side != "" {
		query.Set("side", string(filter.Side))
	}
	if filter.Offset > 0 {
		query.Set("offset", strconv.Itoa(filter.Offset))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	c.mergeExtraParams("GetUserTrades", query, tradeParams, filter.Extra)
	return query
}

// joinParams joins enum slices for list-style query parameters.
func joinParams[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ",")
}
