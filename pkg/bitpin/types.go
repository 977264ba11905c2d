package bitpin

// OrderSide is the side of an order or trade.
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// OrderMode is the execution type of an order.
type OrderMode string

const (
	ModeLimit     OrderMode = "limit"
	ModeMarket    OrderMode = "market"
	ModeStopLimit OrderMode = "stop_limit"
	ModeOCO       OrderMode = "oco"
)

// OrderState is the lifecycle state of an order.
type OrderState string

const (
	StateInitial OrderState = "initial"
	StateActive  OrderState = "active"
	StateClosed  OrderState = "closed"
)

// LoginResponse is the payload of usr/authenticate/.
type LoginResponse struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

// RefreshTokenResponse is the payload of usr/refresh_token/.
type RefreshTokenResponse struct {
	Access string `json:"access"`
}

// Currency describes one tradable asset.
type Currency struct {
	Currency  string `json:"currency"`
	Name      string `json:"name"`
	Tradable  bool   `json:"tradable"`
	Precision string `json:"precision"`
}

// Market describes one trading pair.
type Market struct {
	Symbol               string `json:"symbol"`
	Name                 string `json:"name"`
	Base                 string `json:"base"`
	Quote                string `json:"quote"`
	Tradable             bool   `json:"tradable"`
	PricePrecision       string `json:"price_precision"`
	BaseAmountPrecision  string `json:"base_amount_precision"`
	QuoteAmountPrecision string `json:"quote_amount_precision"`
}

// Ticker is one entry of mkt/tickers/. Prices come back as strings; the
// exchange quotes IRT pairs beyond float64 precision.
type Ticker struct {
	Symbol           string  `json:"symbol"`
	Price            string  `json:"price"`
	DailyChangePrice float64 `json:"daily_change_price"`
	Low              string  `json:"low"`
	High             string  `json:"high"`
	Timestamp        float64 `json:"timestamp"`
}

// Wallet is one entry of wlt/wallets/.
type Wallet struct {
	ID      int    `json:"id"`
	Asset   string `json:"asset"`
	Balance string `json:"balance"`
	Frozen  string `json:"frozen"`
	Service string `json:"service"`
}

// OrderbookEntry is one price level.
type OrderbookEntry struct {
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
}

// Orderbook is the payload of mth/orderbook/{symbol}/.
type Orderbook struct {
	Asks []OrderbookEntry `json:"asks"`
	Bids []OrderbookEntry `json:"bids"`
}

// Trade is one entry of mth/matches/{symbol}/.
type Trade struct {
	ID          string    `json:"id"`
	Price       string    `json:"price"`
	BaseAmount  string    `json:"base_amount"`
	QuoteAmount string    `json:"quote_amount"`
	Side        OrderSide `json:"side"`
}

// Order is an order as returned by odr/orders/.
type Order struct {
	ID                int64     `json:"id"`
	Symbol            string    `json:"symbol"`
	Type              OrderMode `json:"type"`
	Side              OrderSide `json:"side"`
	Price             string    `json:"price"`
	StopPrice         string    `json:"stop_price"`
	OCOTargetPrice    string    `json:"oco_target_price"`
	BaseAmount        string    `json:"base_amount"`
	QuoteAmount       string    `json:"quote_amount"`
	Identifier        string    `json:"identifier"`
	State             string    `json:"state"`
	ClosedAt          string    `json:"closed_at"`
	CreatedAt         string    `json:"created_at"`
	DealedBaseAmount  string    `json:"dealed_base_amount"`
	DealedQuoteAmount string    `json:"dealed_quote_amount"`
	ReqToCancel       bool      `json:"req_to_cancel"`
	Commission        string    `json:"commission"`
}

// Fill is one executed trade of the authenticated user.
type Fill struct {
	ID          int64     `json:"id"`
	Symbol      string    `json:"symbol"`
	BaseAmount  string    `json:"base_amount"`
	QuoteAmount string    `json:"quote_amount"`
	Price       string    `json:"price"`
	CreatedAt   string    `json:"created_at"`
	Commission  string    `json:"commission"`
	Side        OrderSide `json:"side"`
	OrderID     int64     `json:"order_id"`
	Identifier  string    `json:"identifier"`
}

// CancelOrderResponse is the synthesized payload of an order cancellation.
// The exchange returns no usable JSON body on DELETE, so the response
// normalizer builds this from the request path.
type CancelOrderResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// OrderRequest describes a single order to place. BaseAmount is required;
// the remaining zero-valued fields are stripped from the payload before
// sending so the exchange's own per-order-type defaults apply.
type OrderRequest struct {
	Symbol         string
	Type           OrderMode
	Side           OrderSide
	BaseAmount     float64
	QuoteAmount    float64
	Price          float64
	StopPrice      float64
	OCOTargetPrice float64
	Identifier     string
}

// BulkOrderItem is one entry of a bulk order placement. All entries of one
// call must share the same Symbol, and at most ten entries are accepted.
type BulkOrderItem struct {
	Symbol     string    `json:"symbol"`
	Type       OrderMode `json:"type"`
	Side       OrderSide `json:"side"`
	BaseAmount float64   `json:"base_amount"`
	Price      float64   `json:"price"`
}

// OrderFilter narrows GetUserOrders. Zero values are omitted. Extra carries
// raw query parameters; keys the endpoint does not recognize are reported
// through the logger and dropped, and the call proceeds with the rest.
type OrderFilter struct {
	Symbol        string
	Side          []OrderSide
	State         []OrderState
	Type          []OrderMode
	Identifier    string
	Start         string
	End           string
	IDsIn         []string
	IdentifiersIn []string
	Offset        int
	Limit         int
	Extra         map[string]string
}

// WalletFilter narrows GetWallets. Zero values are omitted.
type WalletFilter struct {
	Assets  string
	Service string
	Offset  int
	Limit   int
	Extra   map[string]string
}

// TradeFilter narrows GetUserTrades. Zero values are omitted.
type TradeFilter struct {
	Symbol string
	Side   OrderSide
	Offset int
	Limit  int
	Extra  map[string]string
}
