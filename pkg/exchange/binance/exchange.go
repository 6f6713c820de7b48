package binance

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/cockroachdb/apd/v3"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"nakula/internal/circuitbreaker"
	httpClient "nakula/internal/http"
	"nakula/internal/ratelimit"
	"nakula/pkg/core"
	"nakula/pkg/exchange"
)

// Client implements exchange.Client against the Binance USDⓈ-M futures API.
// Every operation issues one blocking remote call; the client holds no
// durable state beyond credentials and a memo of per-symbol trading rules.
type Client struct {
	config         *core.Config
	httpClient     *httpClient.Client
	rateLimiter    *ratelimit.Limiter
	circuitBreaker *circuitbreaker.Breaker
	logger         zerolog.Logger
	protocol       *Protocol

	symbolMu    sync.RWMutex
	symbolInfos map[string]core.SymbolInfo
}

// Option is a functional option for configuring the Client.
type Option func(*Options)

// Options holds constructor options for the Client.
type Options struct {
	Logger zerolog.Logger
}

// WithLogger returns an option that sets the logger for the client. Every
// facade call and its outcome is logged through it.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// New creates a Client with the given configuration and options. It
// initializes the HTTP transport, rate limiter, and circuit breaker from
// the config.
func New(config *core.Config, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	options := &Options{
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(options)
	}

	protocol := NewProtocol()

	hc, err := httpClient.NewClient(&httpClient.Config{
		BaseURL:      protocol.BaseURL(config.Sandbox),
		Timeout:      config.Timeout,
		MaxRetries:   config.MaxRetries,
		RetryWaitMin: config.RetryWaitMin,
		RetryWaitMax: config.RetryWaitMax,
	}, options.Logger)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	var rl *ratelimit.Limiter
	if config.RateLimitRequests > 0 {
		rl = ratelimit.New(config.RateLimitRequests, config.RateLimitPeriod)
	}

	var cb *circuitbreaker.Breaker
	if config.CircuitBreakerEnabled {
		cb = circuitbreaker.New(circuitbreaker.Config{
			FailThreshold:    config.CircuitBreakerFailThreshold,
			SuccessThreshold: config.CircuitBreakerSuccessThreshold,
			Timeout:          config.CircuitBreakerTimeout,
		})
	}

	return &Client{
		config:         config,
		httpClient:     hc,
		rateLimiter:    rl,
		circuitBreaker: cb,
		logger:         options.Logger,
		protocol:       protocol,
		symbolInfos:    make(map[string]core.SymbolInfo),
	}, nil
}

// Name returns the exchange identifier.
func (c *Client) Name() string {
	return c.protocol.Name()
}

// Close releases the HTTP transport.
func (c *Client) Close() error {
	if c.httpClient != nil {
		return c.httpClient.Close()
	}
	return nil
}

// Ping verifies connectivity to the exchange.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.execute(ctx, core.OpPing, core.Params{})
	c.logOutcome(core.OpPing, err, func(e *zerolog.Event) {})
	return err
}

// GetAccountSnapshot fetches current wallet, margin, and PnL figures.
// The snapshot is recreated on every call; nothing is cached.
func (c *Client) GetAccountSnapshot(ctx context.Context) (*core.AccountSnapshot, error) {
	result, err := c.execute(ctx, core.OpGetAccount, core.Params{})
	c.logOutcome(core.OpGetAccount, err, func(e *zerolog.Event) {})
	if err != nil {
		return nil, err
	}

	snapshot, ok := result.(*core.AccountSnapshot)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	return snapshot, nil
}

// GetPrice fetches the latest price for a symbol. An unknown symbol yields
// a not-found error.
func (c *Client) GetPrice(ctx context.Context, symbol string) (*core.PriceQuote, error) {
	result, err := c.execute(ctx, core.OpGetPrice, core.Params{"symbol": symbol})
	c.logOutcome(core.OpGetPrice, err, func(e *zerolog.Event) {
		e.Str("symbol", FormatSymbol(symbol))
	})
	if err != nil {
		return nil, err
	}

	quote, ok := result.(*core.PriceQuote)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	return quote, nil
}

// GetSymbolInfo fetches the trading rules for a symbol. Rules are memoized
// per symbol after the first exchange-info call; filters are effectively
// static for the process lifetime.
func (c *Client) GetSymbolInfo(ctx context.Context, symbol string) (*core.SymbolInfo, error) {
	key := FormatSymbol(symbol)

	c.symbolMu.RLock()
	info, ok := c.symbolInfos[key]
	c.symbolMu.RUnlock()
	if ok {
		return &info, nil
	}

	result, err := c.execute(ctx, core.OpGetExchangeInfo, core.Params{})
	c.logOutcome(core.OpGetExchangeInfo, err, func(e *zerolog.Event) {
		e.Str("symbol", key)
	})
	if err != nil {
		return nil, err
	}

	infos, ok := result.(map[string]core.SymbolInfo)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}

	c.symbolMu.Lock()
	c.symbolInfos = infos
	c.symbolMu.Unlock()

	info, ok = infos[key]
	if !ok {
		return nil, core.NewClientError(core.ErrKindNotFound, 0,
			fmt.Sprintf("symbol %s not found on exchange", key))
	}
	return &info, nil
}

// PlaceOrder validates the request locally, adjusts the quantity to the
// symbol's lot-size rules, and submits it. Local validation failures make
// no network call. The request is sent exactly once; retrying a placement
// would create a duplicate order.
func (c *Client) PlaceOrder(ctx context.Context, req *exchange.OrderRequest) (*core.Order, error) {
	if err := req.Validate(); err != nil {
		c.logOutcome(core.OpPlaceOrder, err, func(e *zerolog.Event) {
			e.Str("symbol", req.Symbol)
		})
		return nil, err
	}

	info, err := c.GetSymbolInfo(ctx, req.Symbol)
	if err != nil {
		return nil, err
	}

	quantity, err := quantizeQuantity(&req.Quantity, info)
	if err != nil {
		c.logOutcome(core.OpPlaceOrder, err, func(e *zerolog.Event) {
			e.Str("symbol", req.Symbol)
		})
		return nil, err
	}

	params := core.Params{
		"symbol":   req.Symbol,
		"side":     req.Side.String(),
		"type":     req.Type.String(),
		"quantity": quantity,
	}
	if req.Type == core.TypeLimit {
		params["price"] = req.Price.Text('f')
		params["time_in_force"] = req.TimeInForce.String()
	}
	if req.ClientOrderID != "" {
		params["client_order_id"] = req.ClientOrderID
	}

	result, err := c.execute(ctx, core.OpPlaceOrder, params)
	c.logOutcome(core.OpPlaceOrder, err, func(e *zerolog.Event) {
		e.Str("symbol", FormatSymbol(req.Symbol)).
			Str("side", req.Side.String()).
			Str("type", req.Type.String()).
			Str("quantity", quantity)
	})
	if err != nil {
		return nil, err
	}

	order, ok := result.(*core.Order)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	return order, nil
}

// ListOpenOrders fetches open orders, optionally filtered by symbol.
// No open orders yields an empty slice, not an error.
func (c *Client) ListOpenOrders(ctx context.Context, symbol string) ([]core.Order, error) {
	params := core.Params{}
	if symbol != "" {
		params["symbol"] = symbol
	}

	result, err := c.execute(ctx, core.OpGetOpenOrders, params)
	c.logOutcome(core.OpGetOpenOrders, err, func(e *zerolog.Event) {
		e.Str("symbol", FormatSymbol(symbol))
	})
	if err != nil {
		return nil, err
	}

	orders, ok := result.([]core.Order)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	return orders, nil
}

// CancelOrder cancels an order by its exchange-assigned ID. An order that
// no longer exists yields a not-found error, which callers must treat as an
// expected outcome.
func (c *Client) CancelOrder(ctx context.Context, symbol, orderID string) (*core.Order, error) {
	result, err := c.execute(ctx, core.OpCancelOrder, core.Params{
		"symbol":   symbol,
		"order_id": orderID,
	})
	c.logOutcome(core.OpCancelOrder, err, func(e *zerolog.Event) {
		e.Str("symbol", FormatSymbol(symbol)).Str("order_id", orderID)
	})
	if err != nil {
		return nil, err
	}

	order, ok := result.(*core.Order)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	return order, nil
}

// GetOrder fetches the current state of an order by its exchange ID.
func (c *Client) GetOrder(ctx context.Context, symbol, orderID string) (*core.Order, error) {
	result, err := c.execute(ctx, core.OpGetOrder, core.Params{
		"symbol":   symbol,
		"order_id": orderID,
	})
	c.logOutcome(core.OpGetOrder, err, func(e *zerolog.Event) {
		e.Str("symbol", FormatSymbol(symbol)).Str("order_id", orderID)
	})
	if err != nil {
		return nil, err
	}

	order, ok := result.(*core.Order)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	return order, nil
}

// execute runs one operation end to end: build, pace, send, parse.
func (c *Client) execute(ctx context.Context, op core.Operation, params core.Params) (any, error) {
	req, err := c.protocol.BuildRequest(op, params)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.send(ctx, op, req)
	if err != nil {
		return nil, err
	}

	return c.protocol.ParseResponse(op, resp)
}

func (c *Client) send(ctx context.Context, op core.Operation, req *core.Request) (*resty.Response, error) {
	if err := c.wait(ctx, op); err != nil {
		return nil, mapTransportError(err)
	}

	if c.circuitBreaker != nil && !c.circuitBreaker.Allow() {
		return nil, core.NewClientError(core.ErrKindNetwork, 0, "circuit breaker is open")
	}

	var resp *resty.Response
	var err error
	if req.RequireAuth {
		resp, err = c.doSignedRequest(ctx, op, req)
	} else {
		resp, err = c.doRequest(ctx, op, req)
	}

	if c.circuitBreaker != nil {
		c.circuitBreaker.Record(err == nil && resp != nil && resp.StatusCode() < 500)
	}

	if err != nil {
		return nil, mapTransportError(err)
	}

	return resp, nil
}

// wait blocks until the rate limiter admits the call. Mutating operations
// draw from the dedicated order bucket.
func (c *Client) wait(ctx context.Context, op core.Operation) error {
	if c.rateLimiter == nil {
		return nil
	}
	if op.Mutating() {
		return c.rateLimiter.WaitBucket(ctx, ratelimit.BucketOrders)
	}
	return c.rateLimiter.Wait(ctx)
}

func (c *Client) doRequest(ctx context.Context, op core.Operation, req *core.Request) (*resty.Response, error) {
	opts := c.buildRequestOptions(op, req)

	switch req.Method {
	case http.MethodGet:
		return c.httpClient.Get(ctx, req.Path, opts...)
	case http.MethodPost:
		return c.httpClient.Post(ctx, req.Path, nil, opts...)
	case http.MethodDelete:
		return c.httpClient.Delete(ctx, req.Path, opts...)
	default:
		return nil, fmt.Errorf("unsupported method: %s", req.Method)
	}
}

func (c *Client) doSignedRequest(ctx context.Context, op core.Operation, req *core.Request) (*resty.Response, error) {
	if c.config.Credentials == nil {
		return nil, core.ErrNoCredentials
	}

	restyReq := c.httpClient.Request().SetContext(ctx)

	for k, v := range req.Headers {
		restyReq.SetHeader(k, v)
	}
	for k, v := range req.Query {
		restyReq.SetQueryParam(k, fmt.Sprint(v))
	}

	if err := c.protocol.SignRequest(restyReq, *c.config.Credentials); err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	// Signed mutations go out exactly once; repeating a placement would
	// create a duplicate order.
	if op.Mutating() {
		restyReq.SetRetryCount(0)
	}

	switch req.Method {
	case http.MethodGet:
		return restyReq.Get(req.Path)
	case http.MethodPost:
		return restyReq.Post(req.Path)
	case http.MethodDelete:
		return restyReq.Delete(req.Path)
	default:
		return nil, fmt.Errorf("unsupported method: %s", req.Method)
	}
}

func (c *Client) buildRequestOptions(op core.Operation, req *core.Request) []httpClient.RequestOption {
	var opts []httpClient.RequestOption

	for k, v := range req.Headers {
		opts = append(opts, httpClient.WithHeader(k, v))
	}
	for k, v := range req.Query {
		opts = append(opts, httpClient.WithQueryParam(k, fmt.Sprint(v)))
	}
	if op.Mutating() {
		opts = append(opts, httpClient.WithNoRetry())
	}

	return opts
}

func (c *Client) logOutcome(op core.Operation, err error, fields func(*zerolog.Event)) {
	if err != nil {
		e := c.logger.Error().Str("op", op.String()).Err(err)
		fields(e)
		e.Msg("operation failed")
		return
	}
	e := c.logger.Info().Str("op", op.String())
	fields(e)
	e.Msg("operation succeeded")
}

// decCtx is the arithmetic context for quantity adjustment. Division needs
// an explicit precision; 34 digits matches IEEE decimal128.
var decCtx = apd.BaseContext.WithPrecision(34)

// quantizeQuantity floors the requested quantity to the symbol's step size
// and renders it with the accepted precision. Quantities below the
// exchange minimum are rejected locally.
func quantizeQuantity(qty *apd.Decimal, info *core.SymbolInfo) (string, error) {
	if info.StepSize.IsZero() {
		return qty.Text('f'), nil
	}

	var steps, adjusted apd.Decimal
	if _, err := decCtx.QuoInteger(&steps, qty, &info.StepSize); err != nil {
		return "", fmt.Errorf("quantize quantity: %w", err)
	}
	if _, err := decCtx.Mul(&adjusted, &steps, &info.StepSize); err != nil {
		return "", fmt.Errorf("quantize quantity: %w", err)
	}

	if adjusted.Cmp(&info.MinQty) < 0 {
		return "", core.NewValidationError(
			"quantity %s is below the minimum %s for %s",
			qty.Text('f'), info.MinQty.Text('f'), info.Symbol)
	}

	if _, err := decCtx.Quantize(&adjusted, &adjusted, -int32(info.QuantityPrecision)); err != nil {
		return "", fmt.Errorf("quantize quantity: %w", err)
	}

	return adjusted.Text('f'), nil
}

// mapTransportError classifies a transport-level failure as timeout or
// network so callers can apply the right retry policy.
func mapTransportError(err error) error {
	var ce *core.ClientError
	if errors.As(err, &ce) {
		return err
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return core.NewClientError(core.ErrKindTimeout, 0, err.Error())
	case errors.As(err, &netErr) && netErr.Timeout():
		return core.NewClientError(core.ErrKindTimeout, 0, err.Error())
	default:
		return core.NewClientError(core.ErrKindNetwork, 0, err.Error())
	}
}
