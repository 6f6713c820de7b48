// Package binance implements the Binance USDⓈ-M futures protocol.
// It targets the futures testnet by default and speaks the signed REST
// endpoints for account, price, and order operations.
//
// The package includes:
//   - Client: the exchange.Client facade with rate limiting and circuit breaking
//   - Protocol: REST request building, response parsing, and HMAC signing
//   - Normalizer: conversion between Binance payloads and canonical types
//
// Example usage:
//
//	client, err := binance.New(core.DefaultConfig().WithCredentials(key, secret))
//	quote, err := client.GetPrice(ctx, "BTCUSDT")
package binance
