package core

// Operation represents a type of action the facade can perform against the
// exchange.
type Operation int

const (
	// OpPing checks connectivity to the exchange.
	OpPing Operation = iota
	// OpGetAccount retrieves the futures account snapshot.
	OpGetAccount
	// OpGetPrice retrieves the latest price for a symbol.
	OpGetPrice
	// OpGetExchangeInfo retrieves trading rules for all symbols.
	OpGetExchangeInfo
	// OpPlaceOrder submits a new order to the exchange.
	OpPlaceOrder
	// OpCancelOrder cancels an existing order.
	OpCancelOrder
	// OpGetOrder retrieves details of a specific order.
	OpGetOrder
	// OpGetOpenOrders retrieves all open orders.
	OpGetOpenOrders
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	return [...]string{
		"PING",
		"GET_ACCOUNT",
		"GET_PRICE",
		"GET_EXCHANGE_INFO",
		"PLACE_ORDER",
		"CANCEL_ORDER",
		"GET_ORDER",
		"GET_OPEN_ORDERS",
	}[o]
}

// Mutating reports whether the operation changes exchange state. Mutating
// operations are never retried by the transport; repeating a placement
// creates a second order.
func (o Operation) Mutating() bool {
	return o == OpPlaceOrder || o == OpCancelOrder
}
