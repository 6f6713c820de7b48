package core

import (
	"time"

	"github.com/cockroachdb/apd/v3"
)

// OrderSide represents the direction of an order (buy or sell).
type OrderSide int

const (
	// SideBuy indicates an order to purchase the contract.
	SideBuy OrderSide = iota
	// SideSell indicates an order to sell the contract.
	SideSell
)

// String returns the string representation of the order side ("BUY" or "SELL").
func (s OrderSide) String() string {
	return [...]string{"BUY", "SELL"}[s]
}

// MarshalJSON implements json.Marshaler for OrderSide.
func (s OrderSide) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderSide.
// It accepts both uppercase and lowercase formats.
func (s *OrderSide) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"BUY"`, `"buy"`:
		*s = SideBuy
	case `"SELL"`, `"sell"`:
		*s = SideSell
	}
	return nil
}

// ParseOrderSide converts a side string to an OrderSide.
// It accepts any casing and returns false for unrecognized values.
func ParseOrderSide(s string) (OrderSide, bool) {
	switch s {
	case "BUY", "buy", "Buy":
		return SideBuy, true
	case "SELL", "sell", "Sell":
		return SideSell, true
	}
	return SideBuy, false
}

// OrderType represents how an order is executed.
type OrderType int

const (
	// TypeMarket executes immediately at the best available price.
	TypeMarket OrderType = iota
	// TypeLimit executes at a specified price or better.
	TypeLimit
)

// String returns the string representation of the order type.
func (t OrderType) String() string {
	return [...]string{"MARKET", "LIMIT"}[t]
}

// MarshalJSON implements json.Marshaler for OrderType.
func (t OrderType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderType.
// It accepts both uppercase and lowercase formats.
func (t *OrderType) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"MARKET"`, `"market"`:
		*t = TypeMarket
	case `"LIMIT"`, `"limit"`:
		*t = TypeLimit
	}
	return nil
}

// ParseOrderType converts a type string to an OrderType.
// It accepts any casing and returns false for unrecognized values.
func ParseOrderType(s string) (OrderType, bool) {
	switch s {
	case "MARKET", "market", "Market":
		return TypeMarket, true
	case "LIMIT", "limit", "Limit":
		return TypeLimit, true
	}
	return TypeMarket, false
}

// OrderStatus represents the current state of an order as reported by the
// exchange. Orders are never constructed locally except as request echoes.
type OrderStatus int

const (
	// StatusNew indicates the order has been accepted by the exchange.
	StatusNew OrderStatus = iota
	// StatusPartiallyFilled indicates the order has been partially filled.
	StatusPartiallyFilled
	// StatusFilled indicates the order has been completely filled.
	StatusFilled
	// StatusCanceled indicates the order has been canceled.
	StatusCanceled
	// StatusRejected indicates the order was rejected by the exchange.
	StatusRejected
	// StatusExpired indicates the order has expired.
	StatusExpired
)

// String returns the string representation of the order status.
func (s OrderStatus) String() string {
	return [...]string{"NEW", "PARTIALLY_FILLED", "FILLED", "CANCELED", "REJECTED", "EXPIRED"}[s]
}

// IsTerminal returns true if the order is in a terminal state.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusFilled || s == StatusCanceled || s == StatusRejected || s == StatusExpired
}

// MarshalJSON implements json.Marshaler for OrderStatus.
func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderStatus.
func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"NEW"`, `"new"`:
		*s = StatusNew
	case `"PARTIALLY_FILLED"`, `"partially_filled"`:
		*s = StatusPartiallyFilled
	case `"FILLED"`, `"filled"`:
		*s = StatusFilled
	case `"CANCELED"`, `"canceled"`:
		*s = StatusCanceled
	case `"REJECTED"`, `"rejected"`:
		*s = StatusRejected
	case `"EXPIRED"`, `"expired"`:
		*s = StatusExpired
	}
	return nil
}

// TimeInForce defines how long an order remains active.
type TimeInForce int

const (
	// GTC (Good Till Canceled) keeps the order active until filled or canceled.
	GTC TimeInForce = iota
	// IOC (Immediate Or Cancel) requires immediate execution; the unfilled
	// portion is canceled.
	IOC
	// FOK (Fill Or Kill) requires complete immediate execution or cancellation.
	FOK
)

// String returns the string representation of time in force.
func (t TimeInForce) String() string {
	return [...]string{"GTC", "IOC", "FOK"}[t]
}

// MarshalJSON implements json.Marshaler for TimeInForce.
func (t TimeInForce) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for TimeInForce.
func (t *TimeInForce) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"GTC"`, `"gtc"`:
		*t = GTC
	case `"IOC"`, `"ioc"`:
		*t = IOC
	case `"FOK"`, `"fok"`:
		*t = FOK
	}
	return nil
}

// PriceQuote is the current mark for a single symbol. It is ephemeral and
// fetched per request.
type PriceQuote struct {
	// Symbol is the contract identifier (e.g., "BTCUSDT").
	Symbol string `json:"symbol"`
	// Price is the latest traded price.
	Price apd.Decimal `json:"price"`
	// Timestamp is when the quote was produced.
	Timestamp time.Time `json:"timestamp"`
}

// AssetBalance is the wallet balance of one margin asset.
type AssetBalance struct {
	// Asset is the currency symbol (e.g., "USDT").
	Asset string `json:"asset"`
	// WalletBalance is the asset's wallet balance.
	WalletBalance apd.Decimal `json:"wallet_balance"`
	// UnrealizedPnL is the unrealized profit and loss attributed to the asset.
	UnrealizedPnL apd.Decimal `json:"unrealized_pnl"`
}

// AccountSnapshot is a read-only projection of futures account state at a
// point in time. It is recreated on every query and never mutated locally.
type AccountSnapshot struct {
	// WalletBalance is the total wallet balance across margin assets.
	WalletBalance apd.Decimal `json:"wallet_balance"`
	// MarginBalance is the exchange-reported collateral value.
	MarginBalance apd.Decimal `json:"margin_balance"`
	// AvailableBalance is the balance available for new positions.
	AvailableBalance apd.Decimal `json:"available_balance"`
	// UnrealizedPnL is the total unrealized profit and loss on open positions.
	UnrealizedPnL apd.Decimal `json:"unrealized_pnl"`
	// Assets holds per-asset balances with a non-zero wallet balance.
	Assets []AssetBalance `json:"assets"`
	// Timestamp is when the snapshot was taken.
	Timestamp time.Time `json:"timestamp"`
}

// Order represents an exchange order as reported by the exchange.
type Order struct {
	// ID is the exchange-assigned order identifier.
	ID string `json:"id"`
	// ClientOrderID is the client-assigned order identifier.
	ClientOrderID string `json:"client_order_id"`
	// Symbol is the contract for this order.
	Symbol string `json:"symbol"`
	// Side indicates whether this is a buy or sell order.
	Side OrderSide `json:"side"`
	// Type defines how the order executes.
	Type OrderType `json:"type"`
	// Price is the limit price, zero for market orders.
	Price apd.Decimal `json:"price"`
	// Quantity is the total order quantity.
	Quantity apd.Decimal `json:"quantity"`
	// FilledQuantity is the amount that has been executed.
	FilledQuantity apd.Decimal `json:"filled_quantity"`
	// Status is the current state of the order.
	Status OrderStatus `json:"status"`
	// TimeInForce defines how long the order remains active.
	TimeInForce TimeInForce `json:"time_in_force"`
	// CreatedAt is when the order was accepted by the exchange.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the order was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// SymbolInfo carries the exchange trading rules for one contract.
type SymbolInfo struct {
	// Symbol is the contract identifier.
	Symbol string `json:"symbol"`
	// PricePrecision is the number of decimal places accepted for prices.
	PricePrecision int `json:"price_precision"`
	// QuantityPrecision is the number of decimal places accepted for quantities.
	QuantityPrecision int `json:"quantity_precision"`
	// MinQty is the minimum order quantity from the LOT_SIZE filter.
	MinQty apd.Decimal `json:"min_qty"`
	// StepSize is the quantity increment from the LOT_SIZE filter.
	StepSize apd.Decimal `json:"step_size"`
	// TickSize is the price increment from the PRICE_FILTER filter.
	TickSize apd.Decimal `json:"tick_size"`
}
