package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/veiloq/bitpin-connector/pkg/bitpin"
	"github.com/veiloq/bitpin-connector/pkg/logging"
)

// TestBitpinClient_E2E exercises the client against the live Bitpin API.
// Public market-data endpoints always run; signed endpoints need
// credentials.
//
// To run this test:
// BITPIN_API_KEY=your_api_key BITPIN_API_SECRET=your_api_secret go test -v ./test/e2e
func TestBitpinClient_E2E(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	logger := logging.NewLogger()
	logger.SetLevel(logging.DEBUG)

	options := bitpin.OptionsFromEnv()
	options.Logger = logger

	hasCredentials := options.APIKey != "" && options.APISecret != ""
	runningInCI := os.Getenv("CI") != ""

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := bitpin.NewClient(options)
	require.NoError(t, err, "failed to create client")
	defer client.Close()

	t.Run("GetMarketsInfo", func(t *testing.T) {
		markets, err := client.GetMarketsInfo(ctx)
		require.NoError(t, err, "failed to get markets")
		require.NotEmpty(t, markets, "no markets returned")
		require.NotEmpty(t, markets[0].Symbol)
	})

	t.Run("GetCurrenciesInfo", func(t *testing.T) {
		currencies, err := client.GetCurrenciesInfo(ctx)
		require.NoError(t, err, "failed to get currencies")
		require.NotEmpty(t, currencies, "no currencies returned")
	})

	t.Run("GetTickersInfo", func(t *testing.T) {
		tickers, err := client.GetTickersInfo(ctx)
		require.NoError(t, err, "failed to get tickers")
		require.NotEmpty(t, tickers, "no tickers returned")
		require.NotEmpty(t, tickers[0].Price)
	})

	t.Run("GetOrderbook", func(t *testing.T) {
		book, err := client.GetOrderbook(ctx, "BTC_IRT")
		require.NoError(t, err, "failed to get order book")
		require.NotEmpty(t, book.Bids)
		require.NotEmpty(t, book.Asks)
	})

	t.Run("GetRecentTrades", func(t *testing.T) {
		trades, err := client.GetRecentTrades(ctx, "BTC_IRT")
		require.NoError(t, err, "failed to get recent trades")
		require.NotEmpty(t, trades, "no trades returned")
	})

	t.Run("SignedEndpoints", func(t *testing.T) {
		if !hasCredentials || runningInCI {
			t.Skip("skipping signed endpoint test - requires valid API credentials and not running in CI")
		}

		tokens := client.Tokens()
		require.NotEmpty(t, tokens.Access, "login did not yield an access token")
		require.NotEmpty(t, tokens.Refresh, "login did not yield a refresh token")

		wallets, err := client.GetWallets(ctx, nil)
		require.NoError(t, err, "failed to get wallets")
		require.NotEmpty(t, wallets, "no wallets returned")

		_, err = client.GetUserOrders(ctx, &bitpin.OrderFilter{Limit: 10})
		require.NoError(t, err, "failed to get user orders")

		// Refresh the access token and verify signed calls still work
		refreshed, err := client.RefreshAccessToken(ctx, "")
		require.NoError(t, err, "failed to refresh access token")
		require.NotEmpty(t, refreshed.Access)

		_, err = client.GetWallets(ctx, nil)
		require.NoError(t, err, "failed to get wallets with refreshed token")
	})
}

// TestBitpinAsyncClient_E2E runs a handful of concurrent market-data
// requests through the async client against the live API.
func TestBitpinAsyncClient_E2E(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := bitpin.NewAsyncClient(&bitpin.Options{})
	require.NoError(t, err, "failed to create async client")
	defer client.Close()

	marketsPromise := client.GetMarketsInfo(ctx)
	tickersPromise := client.GetTickersInfo(ctx)
	bookPromise := client.GetOrderbook(ctx, "BTC_IRT")

	markets, err := marketsPromise.Await(ctx)
	require.NoError(t, err, "failed to get markets")
	require.NotEmpty(t, markets)

	tickers, err := tickersPromise.Await(ctx)
	require.NoError(t, err, "failed to get tickers")
	require.NotEmpty(t, tickers)

	book, err := bookPromise.Await(ctx)
	require.NoError(t, err, "failed to get order book")
	require.NotEmpty(t, book.Asks)
}
