package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"resty.dev/v3"

	"nakula/pkg/core"
)

// USDⓈ-M futures API endpoints. Sandbox is the futures testnet, which is
// API-compatible with production but settles simulated funds.
const (
	ProductionURL = "https://fapi.binance.com"
	SandboxURL    = "https://testnet.binancefuture.com"
)

// Protocol builds, signs, and parses requests against the Binance futures
// REST API. It is stateless and safe for concurrent use.
type Protocol struct{}

// NewProtocol creates a new futures protocol instance.
func NewProtocol() *Protocol {
	return &Protocol{}
}

// Name returns the protocol identifier "binance-futures".
func (p *Protocol) Name() string {
	return "binance-futures"
}

// BaseURL returns the API base URL for the given environment.
func (p *Protocol) BaseURL(sandbox bool) string {
	if sandbox {
		return SandboxURL
	}
	return ProductionURL
}

// BuildRequest constructs the HTTP request for the given operation.
// It validates required parameters and sets path, query, and request weight.
func (p *Protocol) BuildRequest(op core.Operation, params core.Params) (*core.Request, error) {
	switch op {
	case core.OpPing:
		return core.NewRequest(http.MethodGet, "/fapi/v1/ping"), nil
	case core.OpGetAccount:
		return p.buildGetAccountRequest(params)
	case core.OpGetPrice:
		return p.buildGetPriceRequest(params)
	case core.OpGetExchangeInfo:
		return core.NewRequest(http.MethodGet, "/fapi/v1/exchangeInfo"), nil
	case core.OpPlaceOrder:
		return p.buildPlaceOrderRequest(params)
	case core.OpCancelOrder:
		return p.buildCancelOrderRequest(params)
	case core.OpGetOrder:
		return p.buildGetOrderRequest(params)
	case core.OpGetOpenOrders:
		return p.buildGetOpenOrdersRequest(params)
	default:
		return nil, fmt.Errorf("unsupported operation: %s", op)
	}
}

// ParseResponse parses an HTTP response and normalizes it to canonical
// types. Exchange error payloads are mapped to the error taxonomy with the
// exchange's numeric code carried verbatim.
func (p *Protocol) ParseResponse(op core.Operation, resp *resty.Response) (any, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil response")
	}

	if resp.StatusCode() >= 400 {
		return nil, p.parseError(resp)
	}

	n := NewNormalizer()
	body := resp.Bytes()

	switch op {
	case core.OpPing:
		return nil, nil

	case core.OpGetAccount:
		var data futuresAccount
		if err := sonic.Unmarshal(body, &data); err != nil {
			return nil, fmt.Errorf("unmarshal account: %w", err)
		}
		return n.NormalizeAccount(&data), nil

	case core.OpGetPrice:
		var data futuresPriceTicker
		if err := sonic.Unmarshal(body, &data); err != nil {
			return nil, fmt.Errorf("unmarshal price ticker: %w", err)
		}
		return n.NormalizePriceQuote(&data), nil

	case core.OpGetExchangeInfo:
		var data futuresExchangeInfo
		if err := sonic.Unmarshal(body, &data); err != nil {
			return nil, fmt.Errorf("unmarshal exchange info: %w", err)
		}
		return n.NormalizeSymbolInfos(&data)

	case core.OpPlaceOrder, core.OpCancelOrder, core.OpGetOrder:
		var data futuresOrder
		if err := sonic.Unmarshal(body, &data); err != nil {
			return nil, fmt.Errorf("unmarshal order: %w", err)
		}
		return n.NormalizeOrder(&data), nil

	case core.OpGetOpenOrders:
		var data []futuresOrder
		if err := sonic.Unmarshal(body, &data); err != nil {
			return nil, fmt.Errorf("unmarshal orders: %w", err)
		}
		return n.NormalizeOrders(data), nil

	default:
		var result any
		if err := sonic.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
		return result, nil
	}
}

func (p *Protocol) parseError(resp *resty.Response) error {
	var apiErr binanceAPIError
	if err := sonic.Unmarshal(resp.Bytes(), &apiErr); err == nil && apiErr.Code != 0 {
		return core.NewClientErrorWithCode(
			mapBinanceErrorCode(apiErr.Code, resp.StatusCode()),
			resp.StatusCode(),
			strconv.Itoa(apiErr.Code),
			apiErr.Msg,
		)
	}
	return core.NewClientError(
		mapStatusCode(resp.StatusCode()),
		resp.StatusCode(),
		fmt.Sprintf("HTTP error: %s", resp.Status()),
	)
}

// SignRequest signs an HTTP request with HMAC-SHA256 authentication.
// It adds timestamp, recvWindow, and signature query parameters and the
// API key header, per the Binance signed-endpoint contract.
func (p *Protocol) SignRequest(req *resty.Request, creds core.Credentials) error {
	if creds.SecretKey == "" {
		return fmt.Errorf("secret key is required for signing")
	}

	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)

	queryParams := req.QueryParams
	if queryParams == nil {
		queryParams = url.Values{}
	}
	queryParams.Set("timestamp", ts)
	queryParams.Set("recvWindow", "5000")

	signature := signHMAC(queryParams.Encode(), creds.SecretKey)
	queryParams.Set("signature", signature)

	req.SetQueryParamsFromValues(queryParams)
	req.SetHeader("X-MBX-APIKEY", creds.APIKey)

	return nil
}

func (p *Protocol) buildGetAccountRequest(_ core.Params) (*core.Request, error) {
	req := core.NewRequest(http.MethodGet, "/fapi/v2/account")
	req.SetRequireAuth(true)
	req.SetWeight(5)
	return req, nil
}

func (p *Protocol) buildGetPriceRequest(params core.Params) (*core.Request, error) {
	symbol, err := getRequiredStringParam(params, "symbol")
	if err != nil {
		return nil, err
	}

	req := core.NewRequest(http.MethodGet, "/fapi/v1/ticker/price")
	req.SetQuery("symbol", FormatSymbol(symbol))
	return req, nil
}

func (p *Protocol) buildPlaceOrderRequest(params core.Params) (*core.Request, error) {
	symbol, err := getRequiredStringParam(params, "symbol")
	if err != nil {
		return nil, err
	}
	side, err := getRequiredStringParam(params, "side")
	if err != nil {
		return nil, err
	}
	orderType, err := getRequiredStringParam(params, "type")
	if err != nil {
		return nil, err
	}
	quantity, err := getRequiredStringParam(params, "quantity")
	if err != nil {
		return nil, err
	}

	req := core.NewRequest(http.MethodPost, "/fapi/v1/order")
	req.SetQuery("symbol", FormatSymbol(symbol))
	req.SetQuery("side", strings.ToUpper(side))
	req.SetQuery("type", strings.ToUpper(orderType))
	req.SetQuery("quantity", quantity)
	req.SetRequireAuth(true)

	if price, ok := params["price"].(string); ok && price != "" {
		req.SetQuery("price", price)
	}

	// Limit orders require an explicit time in force on futures.
	if strings.EqualFold(orderType, "LIMIT") {
		tif := "GTC"
		if v, ok := params["time_in_force"].(string); ok && v != "" {
			tif = strings.ToUpper(v)
		}
		req.SetQuery("timeInForce", tif)
	}

	if clientOrderID, ok := params["client_order_id"].(string); ok && clientOrderID != "" {
		req.SetQuery("newClientOrderId", clientOrderID)
	}

	return req, nil
}

func (p *Protocol) buildCancelOrderRequest(params core.Params) (*core.Request, error) {
	symbol, err := getRequiredStringParam(params, "symbol")
	if err != nil {
		return nil, err
	}
	orderID, err := getRequiredStringParam(params, "order_id")
	if err != nil {
		return nil, err
	}

	req := core.NewRequest(http.MethodDelete, "/fapi/v1/order")
	req.SetQuery("symbol", FormatSymbol(symbol))
	req.SetQuery("orderId", orderID)
	req.SetRequireAuth(true)

	return req, nil
}

func (p *Protocol) buildGetOrderRequest(params core.Params) (*core.Request, error) {
	symbol, err := getRequiredStringParam(params, "symbol")
	if err != nil {
		return nil, err
	}
	orderID, err := getRequiredStringParam(params, "order_id")
	if err != nil {
		return nil, err
	}

	req := core.NewRequest(http.MethodGet, "/fapi/v1/order")
	req.SetQuery("symbol", FormatSymbol(symbol))
	req.SetQuery("orderId", orderID)
	req.SetRequireAuth(true)
	req.SetWeight(2)

	return req, nil
}

func (p *Protocol) buildGetOpenOrdersRequest(params core.Params) (*core.Request, error) {
	req := core.NewRequest(http.MethodGet, "/fapi/v1/openOrders")
	req.SetRequireAuth(true)

	if symbol, ok := params["symbol"].(string); ok && symbol != "" {
		req.SetQuery("symbol", FormatSymbol(symbol))
		req.SetWeight(1)
	} else {
		// Unfiltered open-order queries are weighed much heavier.
		req.SetWeight(40)
	}

	return req, nil
}

// FormatSymbol normalizes user input to the exchange's symbol format:
// uppercase with no pair separator ("btc/usdt" becomes "BTCUSDT").
func FormatSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}

func signHMAC(message, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

func getRequiredStringParam(params core.Params, key string) (string, error) {
	val, ok := params[key]
	if !ok {
		return "", fmt.Errorf("missing required parameter: %s", key)
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s must be a string", key)
	}

	if str == "" {
		return "", fmt.Errorf("parameter %s cannot be empty", key)
	}

	return str, nil
}

type binanceAPIError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// mapBinanceErrorCode classifies a futures API error code. Codes that mean
// "the thing you referenced does not exist" become not-found; everything the
// exchange rejected on its own terms stays an exchange rejection with the
// code surfaced verbatim.
func mapBinanceErrorCode(code, statusCode int) core.ErrorKind {
	switch code {
	case -1121, -2011, -2013:
		// Invalid symbol, unknown order on cancel, order does not exist.
		return core.ErrKindNotFound
	case -1002, -1022, -2014, -2015:
		// Unauthorized, bad signature, bad key format, rejected key/IP.
		return core.ErrKindAuth
	case -1003, -1015:
		return core.ErrKindRateLimit
	case -2010, -2018, -2019, -2020, -2021, -2022:
		// Order rejected: insufficient balance/margin, unable to fill,
		// reduce-only rejection.
		return core.ErrKindExchange
	default:
		if code <= -1100 && code > -1200 {
			// Malformed parameters the local validator did not catch.
			return core.ErrKindExchange
		}
		if code <= -4000 {
			// Futures filter violations (price/lot/percent filters).
			return core.ErrKindExchange
		}
		return mapStatusCode(statusCode)
	}
}

func mapStatusCode(statusCode int) core.ErrorKind {
	switch {
	case statusCode >= 500:
		return core.ErrKindServer
	case statusCode == http.StatusTooManyRequests || statusCode == 418:
		return core.ErrKindRateLimit
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return core.ErrKindAuth
	case statusCode == http.StatusNotFound:
		return core.ErrKindNotFound
	case statusCode == http.StatusBadRequest:
		return core.ErrKindExchange
	default:
		return core.ErrKindUnknown
	}
}
