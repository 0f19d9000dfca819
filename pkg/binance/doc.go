// Package binance is a REST client for the Binance spot API.
//
// A Client signs requests that need it, sends them directly or through a
// forward proxy, retries transport failures and classifies every answer into
// a *core.Payload or one of the typed errors of package core.
//
// Example usage:
//
//	cfg := core.DefaultConfig().WithCredentials(&core.Credentials{APIKey: key, SecretKey: secret})
//	client, err := binance.New(cfg, binance.WithLogger(logger))
//	payload, err := client.Klines(ctx, binance.KlinesParams{Symbol: "BTCUSDT", Interval: "1h"})
package binance
