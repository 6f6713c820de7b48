// Package exchange defines the narrow trading surface the rest of the
// application programs against. The underlying HTTP client can be swapped
// without touching CLI or web callers.
package exchange

import (
	"context"

	"github.com/cockroachdb/apd/v3"

	"nakula/pkg/core"
)

// Client is the facade over the remote futures exchange. Every operation is
// stateless and issues exactly one blocking remote call. Read operations are
// idempotent; PlaceOrder is not and must never be auto-retried.
type Client interface {
	// Name returns the exchange identifier.
	Name() string

	// Ping verifies connectivity to the exchange.
	Ping(ctx context.Context) error

	// GetAccountSnapshot fetches current wallet, margin, and PnL figures.
	GetAccountSnapshot(ctx context.Context) (*core.AccountSnapshot, error)

	// GetPrice fetches the latest price for a symbol. Unknown symbols
	// yield a not-found error.
	GetPrice(ctx context.Context, symbol string) (*core.PriceQuote, error)

	// GetSymbolInfo fetches the trading rules for a symbol. Results are
	// memoized per symbol; exchange filters are effectively static.
	GetSymbolInfo(ctx context.Context, symbol string) (*core.SymbolInfo, error)

	// PlaceOrder validates the request locally, then submits it. A local
	// validation failure reaches no network. Placement creates a real
	// order on the exchange and is irreversible once filled.
	PlaceOrder(ctx context.Context, req *OrderRequest) (*core.Order, error)

	// ListOpenOrders fetches open orders, optionally filtered by symbol.
	// An empty slice is a valid result, not an error.
	ListOpenOrders(ctx context.Context, symbol string) ([]core.Order, error)

	// CancelOrder cancels an order by its exchange-assigned ID. A not-found
	// error means the order was already filled or canceled; callers must
	// treat that as an expected outcome.
	CancelOrder(ctx context.Context, symbol, orderID string) (*core.Order, error)

	// GetOrder fetches the current state of an order by its exchange ID.
	GetOrder(ctx context.Context, symbol, orderID string) (*core.Order, error)

	// Close releases resources held by the client.
	Close() error
}

// OrderRequest contains the parameters required to place a new order.
type OrderRequest struct {
	Symbol        string
	Side          core.OrderSide
	Type          core.OrderType
	Quantity      apd.Decimal
	Price         apd.Decimal
	TimeInForce   core.TimeInForce
	ClientOrderID string
}

// Validate enforces the local request invariants before any network call:
// symbol present, positive quantity, and a positive price for limit orders.
// Market orders ignore any supplied price; Validate strips it so the wire
// request never carries one.
func (r *OrderRequest) Validate() error {
	if r.Symbol == "" {
		return core.NewValidationError("symbol is required")
	}
	if r.Side != core.SideBuy && r.Side != core.SideSell {
		return core.NewValidationError("invalid order side")
	}
	if r.Type != core.TypeMarket && r.Type != core.TypeLimit {
		return core.NewValidationError("invalid order type")
	}
	if r.Quantity.IsZero() || r.Quantity.Negative {
		return core.NewValidationError("quantity must be positive")
	}
	switch r.Type {
	case core.TypeLimit:
		if r.Price.IsZero() || r.Price.Negative {
			return core.NewValidationError("price must be positive for limit orders")
		}
	case core.TypeMarket:
		// Market orders carry no price on the wire.
		r.Price = apd.Decimal{}
	}
	return nil
}
