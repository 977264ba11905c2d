package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veiloq/bitpin-connector/pkg/bitpin"
	"github.com/veiloq/bitpin-connector/pkg/logging"
)

func main() {
	// Create logger
	logger := logging.NewLogger()
	logger.SetLevel(logging.DEBUG)

	// Credentials come from BITPIN_API_KEY / BITPIN_API_SECRET; public
	// endpoints work without them.
	options := bitpin.OptionsFromEnv()
	options.Logger = logger
	options.RequestTimeout = 15 * time.Second

	// Keep the tokens fresh in the background while we run.
	options.BackgroundRefreshToken = true
	options.BackgroundRelogin = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("creating client")
	client, err := bitpin.NewClient(options)
	if err != nil {
		logger.Error("failed to create client", logging.Error(err))
		os.Exit(1)
	}
	defer client.Close()

	// Get markets
	logger.Info("fetching markets")
	markets, err := client.GetMarketsInfo(ctx)
	if err != nil {
		logger.Error("failed to get markets", logging.Error(err))
		os.Exit(1)
	}
	for _, market := range markets[:min(5, len(markets))] {
		logger.Info("market",
			logging.String("symbol", market.Symbol),
			logging.String("base", market.Base),
			logging.String("quote", market.Quote),
			logging.Bool("tradable", market.Tradable),
		)
	}

	// Get tickers
	logger.Info("fetching tickers")
	tickers, err := client.GetTickersInfo(ctx)
	if err != nil {
		logger.Error("failed to get tickers", logging.Error(err))
		os.Exit(1)
	}
	for _, ticker := range tickers[:min(5, len(tickers))] {
		logger.Info("ticker",
			logging.String("symbol", ticker.Symbol),
			logging.String("price", ticker.Price),
			logging.Float64("daily_change", ticker.DailyChangePrice),
		)
	}

	// Get the order book for one market
	logger.Info("fetching order book")
	book, err := client.GetOrderbook(ctx, "BTC_IRT")
	if err != nil {
		logger.Error("failed to get order book", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("order book snapshot",
		logging.String("symbol", "BTC_IRT"),
		logging.Int("bid_levels", len(book.Bids)),
		logging.Int("ask_levels", len(book.Asks)),
	)

	// Signed endpoints need credentials
	if tokens := client.Tokens(); tokens.Access != "" {
		logger.Info("fetching wallets")
		wallets, err := client.GetWallets(ctx, &bitpin.WalletFilter{Limit: 10})
		if err != nil {
			logger.Error("failed to get wallets", logging.Error(err))
			os.Exit(1)
		}
		for _, wallet := range wallets {
			logger.Info("wallet",
				logging.String("asset", wallet.Asset),
				logging.String("balance", wallet.Balance),
				logging.String("frozen", wallet.Frozen),
			)
		}
	} else {
		logger.Info("no credentials, skipping signed endpoints")
	}

	// The async client shares the same surface; fire a few concurrent
	// market-data requests and await them.
	asyncClient, err := bitpin.NewAsyncClient(bitpin.OptionsFromEnv())
	if err != nil {
		logger.Error("failed to create async client", logging.Error(err))
		os.Exit(1)
	}
	defer asyncClient.Close()

	currenciesPromise := asyncClient.GetCurrenciesInfo(ctx)
	tradesPromise := asyncClient.GetRecentTrades(ctx, "BTC_IRT")

	currencies, err := currenciesPromise.Await(ctx)
	if err != nil {
		logger.Error("failed to get currencies", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("currencies", logging.Int("count", len(currencies)))

	trades, err := tradesPromise.Await(ctx)
	if err != nil {
		logger.Error("failed to get recent trades", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("recent trades", logging.Int("count", len(trades)))

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("running, token maintainers active... press Ctrl+C to exit")
	<-sigChan

	logger.Info("shutting down")
	cancel()
}
