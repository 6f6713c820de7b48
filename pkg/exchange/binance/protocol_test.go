package binance

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"resty.dev/v3"

	"nakula/pkg/core"
)

func TestProtocol_Name(t *testing.T) {
	p := NewProtocol()
	assert.Equal(t, "binance-futures", p.Name())
}

func TestProtocol_BaseURL(t *testing.T) {
	p := NewProtocol()
	assert.Equal(t, "https://fapi.binance.com", p.BaseURL(false))
	assert.Equal(t, "https://testnet.binancefuture.com", p.BaseURL(true))
}

func TestProtocol_BuildRequest_Ping(t *testing.T) {
	p := NewProtocol()

	req, err := p.BuildRequest(core.OpPing, core.Params{})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/fapi/v1/ping", req.Path)
	assert.False(t, req.RequireAuth)
}

func TestProtocol_BuildRequest_GetAccount(t *testing.T) {
	p := NewProtocol()

	req, err := p.BuildRequest(core.OpGetAccount, core.Params{})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/fapi/v2/account", req.Path)
	assert.True(t, req.RequireAuth)
	assert.Equal(t, 5, req.Weight)
}

func TestProtocol_BuildRequest_GetPrice(t *testing.T) {
	p := NewProtocol()

	req, err := p.BuildRequest(core.OpGetPrice, core.Params{"symbol": "btc/usdt"})
	require.NoError(t, err)
	assert.Equal(t, "/fapi/v1/ticker/price", req.Path)
	assert.Equal(t, "BTCUSDT", req.Query["symbol"])
	assert.False(t, req.RequireAuth)

	_, err = p.BuildRequest(core.OpGetPrice, core.Params{})
	assert.Error(t, err)
}

func TestProtocol_BuildRequest_PlaceOrder_Market(t *testing.T) {
	p := NewProtocol()

	req, err := p.BuildRequest(core.OpPlaceOrder, core.Params{
		"symbol":   "BTCUSDT",
		"side":     "BUY",
		"type":     "MARKET",
		"quantity": "0.001",
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/fapi/v1/order", req.Path)
	assert.True(t, req.RequireAuth)
	assert.Equal(t, "BTCUSDT", req.Query["symbol"])
	assert.Equal(t, "BUY", req.Query["side"])
	assert.Equal(t, "MARKET", req.Query["type"])
	assert.Equal(t, "0.001", req.Query["quantity"])
	assert.NotContains(t, req.Query, "price")
	assert.NotContains(t, req.Query, "timeInForce")
}

func TestProtocol_BuildRequest_PlaceOrder_Limit(t *testing.T) {
	p := NewProtocol()

	req, err := p.BuildRequest(core.OpPlaceOrder, core.Params{
		"symbol":   "BTCUSDT",
		"side":     "sell",
		"type":     "limit",
		"quantity": "0.002",
		"price":    "50000",
	})
	require.NoError(t, err)
	assert.Equal(t, "SELL", req.Query["side"])
	assert.Equal(t, "LIMIT", req.Query["type"])
	assert.Equal(t, "50000", req.Query["price"])
	// Futures limit orders need an explicit time in force.
	assert.Equal(t, "GTC", req.Query["timeInForce"])
}

func TestProtocol_BuildRequest_PlaceOrder_LimitIOC(t *testing.T) {
	p := NewProtocol()

	req, err := p.BuildRequest(core.OpPlaceOrder, core.Params{
		"symbol":        "BTCUSDT",
		"side":          "BUY",
		"type":          "LIMIT",
		"quantity":      "0.002",
		"price":         "50000",
		"time_in_force": "IOC",
	})
	require.NoError(t, err)
	assert.Equal(t, "IOC", req.Query["timeInForce"])
}

func TestProtocol_BuildRequest_PlaceOrder_MissingParams(t *testing.T) {
	p := NewProtocol()

	for _, missing := range []string{"symbol", "side", "type", "quantity"} {
		params := core.Params{
			"symbol":   "BTCUSDT",
			"side":     "BUY",
			"type":     "MARKET",
			"quantity": "0.001",
		}
		delete(params, missing)

		_, err := p.BuildRequest(core.OpPlaceOrder, params)
		assert.Error(t, err, missing)
	}
}

func TestProtocol_BuildRequest_CancelOrder(t *testing.T) {
	p := NewProtocol()

	req, err := p.BuildRequest(core.OpCancelOrder, core.Params{
		"symbol":   "BTCUSDT",
		"order_id": "12345",
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/fapi/v1/order", req.Path)
	assert.Equal(t, "12345", req.Query["orderId"])
	assert.True(t, req.RequireAuth)

	_, err = p.BuildRequest(core.OpCancelOrder, core.Params{"symbol": "BTCUSDT"})
	assert.Error(t, err)
}

func TestProtocol_BuildRequest_GetOpenOrders_Weight(t *testing.T) {
	p := NewProtocol()

	filtered, err := p.BuildRequest(core.OpGetOpenOrders, core.Params{"symbol": "BTCUSDT"})
	require.NoError(t, err)
	assert.Equal(t, 1, filtered.Weight)
	assert.Equal(t, "BTCUSDT", filtered.Query["symbol"])

	unfiltered, err := p.BuildRequest(core.OpGetOpenOrders, core.Params{})
	require.NoError(t, err)
	assert.Equal(t, 40, unfiltered.Weight)
	assert.NotContains(t, unfiltered.Query, "symbol")
}

func TestFormatSymbol(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"btcusdt", "BTCUSDT"},
		{"BTC/USDT", "BTCUSDT"},
		{"eth/usdt", "ETHUSDT"},
		{"BTCUSDT", "BTCUSDT"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSymbol(tt.input))
	}
}

func TestSignHMAC_KnownVector(t *testing.T) {
	// Example from the Binance API documentation.
	message := "symbol=LTCBTC&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559"
	secret := "NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j"

	assert.Equal(t,
		"c8db56825ae71d6d79447849e617115f4a920fa2acdcab2b053c4b2838bd6b71",
		signHMAC(message, secret))
}

func TestProtocol_SignRequest(t *testing.T) {
	p := NewProtocol()
	req := resty.New().R().SetQueryParam("symbol", "BTCUSDT")

	err := p.SignRequest(req, core.Credentials{APIKey: "key", SecretKey: "secret"})
	require.NoError(t, err)

	assert.Equal(t, "key", req.Header.Get("X-MBX-APIKEY"))
	assert.Equal(t, "5000", req.QueryParams.Get("recvWindow"))
	assert.NotEmpty(t, req.QueryParams.Get("timestamp"))

	// The signature must cover every other query parameter.
	signed := url.Values{}
	for k, vs := range req.QueryParams {
		if k == "signature" {
			continue
		}
		for _, v := range vs {
			signed.Add(k, v)
		}
	}
	assert.Equal(t, signHMAC(signed.Encode(), "secret"), req.QueryParams.Get("signature"))
}

func TestProtocol_SignRequest_NoSecret(t *testing.T) {
	p := NewProtocol()
	req := resty.New().R()

	err := p.SignRequest(req, core.Credentials{APIKey: "key"})
	assert.Error(t, err)
}

func TestMapBinanceErrorCode(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		statusCode int
		want       core.ErrorKind
	}{
		{"invalid symbol", -1121, 400, core.ErrKindNotFound},
		{"unknown order on cancel", -2011, 400, core.ErrKindNotFound},
		{"order does not exist", -2013, 400, core.ErrKindNotFound},
		{"unauthorized", -1002, 401, core.ErrKindAuth},
		{"bad signature", -1022, 400, core.ErrKindAuth},
		{"rejected key", -2015, 401, core.ErrKindAuth},
		{"too many requests", -1003, 429, core.ErrKindRateLimit},
		{"insufficient margin", -2019, 400, core.ErrKindExchange},
		{"order would trigger", -2021, 400, core.ErrKindExchange},
		{"malformed parameter", -1102, 400, core.ErrKindExchange},
		{"price filter violation", -4016, 400, core.ErrKindExchange},
		{"unknown code falls back to status", -999, 400, core.ErrKindExchange},
		{"unknown code with server status", -999, 503, core.ErrKindServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapBinanceErrorCode(tt.code, tt.statusCode))
		})
	}
}

func TestMapStatusCode(t *testing.T) {
	tests := []struct {
		statusCode int
		want       core.ErrorKind
	}{
		{500, core.ErrKindServer},
		{503, core.ErrKindServer},
		{429, core.ErrKindRateLimit},
		{418, core.ErrKindRateLimit},
		{401, core.ErrKindAuth},
		{403, core.ErrKindAuth},
		{404, core.ErrKindNotFound},
		{400, core.ErrKindExchange},
		{302, core.ErrKindUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mapStatusCode(tt.statusCode), tt.statusCode)
	}
}
