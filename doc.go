// Package bitpinconnector provides a Go client library for the Bitpin
// cryptocurrency exchange REST API.
//
// The library ships two clients over a shared core: a blocking client
// (bitpin.Client) whose methods return once the HTTP exchange completes,
// and an asynchronous client (bitpin.AsyncClient) whose methods return a
// promise resolved by a background goroutine. Both share the same
// authentication, request-building and response-normalization logic, so
// the token-refresh and error contracts are identical across the two.
//
// Core Features:
//
//   - Bearer-token authentication with login and token refresh
//   - Optional background maintainers that keep tokens fresh on an interval
//   - Market data operations (currencies, markets, tickers, orderbook, trades)
//   - Wallet and order operations, including bulk order placement
//   - Typed API errors carrying the HTTP status and raw response body
//
// # Standard Errors
//
// The library defines a small error taxonomy so callers can branch on the
// failure class rather than on strings:
//
//   - APIError: any non-2xx response; carries the status code and raw body
//
//   - DecodeError: a 2xx response whose body is not the JSON the endpoint
//     promises
//
//   - ErrTooManyBulkOrders: bulk order placement with more than ten entries,
//     rejected locally before any network call
//
//   - ErrMixedBulkMarkets: bulk order placement spanning more than one
//     market symbol, rejected locally before any network call
//
//   - ErrNoCredentials: login attempted without an API key and secret
//
// # Examples
//
// Blocking usage:
//
//	opts := bitpin.OptionsFromEnv()
//	client, err := bitpin.NewClient(opts)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	markets, err := client.GetMarketsInfo(ctx)
//
// Asynchronous usage:
//
//	async, err := bitpin.NewAsyncClient(opts)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer async.Close()
//
//	p := async.GetTickersInfo(ctx)
//	// ... do other work ...
//	tickers, err := p.Await(ctx)
//
// Signed endpoints require an access token; enable the background
// maintainers to keep it fresh without caller intervention:
//
//	opts.BackgroundRefreshToken = true
//	opts.BackgroundRelogin = true
package bitpinconnector
