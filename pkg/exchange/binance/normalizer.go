package binance

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"

	"nakula/pkg/core"
)

// futuresAccount is the raw /fapi/v2/account response.
type futuresAccount struct {
	TotalWalletBalance    apd.Decimal          `json:"totalWalletBalance"`
	TotalMarginBalance    apd.Decimal          `json:"totalMarginBalance"`
	TotalUnrealizedProfit apd.Decimal          `json:"totalUnrealizedProfit"`
	AvailableBalance      apd.Decimal          `json:"availableBalance"`
	Assets                []futuresAssetDetail `json:"assets"`
}

// futuresAssetDetail is one margin asset inside the account response.
type futuresAssetDetail struct {
	Asset            string      `json:"asset"`
	WalletBalance    apd.Decimal `json:"walletBalance"`
	UnrealizedProfit apd.Decimal `json:"unrealizedProfit"`
}

// futuresPriceTicker is the raw /fapi/v1/ticker/price response.
type futuresPriceTicker struct {
	Symbol string      `json:"symbol"`
	Price  apd.Decimal `json:"price"`
	Time   int64       `json:"time"`
}

// futuresOrder is the raw order payload shared by place, cancel, query, and
// open-order responses.
type futuresOrder struct {
	OrderID       int64       `json:"orderId"`
	ClientOrderID string      `json:"clientOrderId"`
	Symbol        string      `json:"symbol"`
	Side          string      `json:"side"`
	Type          string      `json:"type"`
	Status        string      `json:"status"`
	Price         apd.Decimal `json:"price"`
	OrigQty       apd.Decimal `json:"origQty"`
	ExecutedQty   apd.Decimal `json:"executedQty"`
	TimeInForce   string      `json:"timeInForce"`
	Time          int64       `json:"time"`
	UpdateTime    int64       `json:"updateTime"`
}

// futuresExchangeInfo is the raw /fapi/v1/exchangeInfo response, reduced to
// the fields the client consumes.
type futuresExchangeInfo struct {
	Symbols []futuresSymbol `json:"symbols"`
}

type futuresSymbol struct {
	Symbol            string          `json:"symbol"`
	Status            string          `json:"status"`
	PricePrecision    int             `json:"pricePrecision"`
	QuantityPrecision int             `json:"quantityPrecision"`
	Filters           []futuresFilter `json:"filters"`
}

type futuresFilter struct {
	FilterType string `json:"filterType"`
	MinQty     string `json:"minQty"`
	StepSize   string `json:"stepSize"`
	TickSize   string `json:"tickSize"`
}

// Normalizer converts raw futures payloads to canonical core types.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer instance.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizeAccount converts a raw account response to an AccountSnapshot.
// Assets with a zero wallet balance are dropped, matching what a trader
// wants to see.
func (n *Normalizer) NormalizeAccount(data *futuresAccount) *core.AccountSnapshot {
	snapshot := &core.AccountSnapshot{
		WalletBalance:    data.TotalWalletBalance,
		MarginBalance:    data.TotalMarginBalance,
		AvailableBalance: data.AvailableBalance,
		UnrealizedPnL:    data.TotalUnrealizedProfit,
		Timestamp:        time.Now(),
	}

	for _, a := range data.Assets {
		if a.WalletBalance.IsZero() {
			continue
		}
		snapshot.Assets = append(snapshot.Assets, core.AssetBalance{
			Asset:         a.Asset,
			WalletBalance: a.WalletBalance,
			UnrealizedPnL: a.UnrealizedProfit,
		})
	}

	return snapshot
}

// NormalizePriceQuote converts a raw price ticker to a PriceQuote.
func (n *Normalizer) NormalizePriceQuote(data *futuresPriceTicker) *core.PriceQuote {
	quote := &core.PriceQuote{
		Symbol: data.Symbol,
		Price:  data.Price,
	}
	if data.Time > 0 {
		quote.Timestamp = time.UnixMilli(data.Time)
	} else {
		quote.Timestamp = time.Now()
	}
	return quote
}

// NormalizeOrder converts a raw order payload to a canonical Order.
func (n *Normalizer) NormalizeOrder(data *futuresOrder) *core.Order {
	order := &core.Order{
		ID:             strconv.FormatInt(data.OrderID, 10),
		ClientOrderID:  data.ClientOrderID,
		Symbol:         data.Symbol,
		Side:           parseOrderSide(data.Side),
		Type:           parseOrderType(data.Type),
		Status:         parseOrderStatus(data.Status),
		TimeInForce:    parseTimeInForce(data.TimeInForce),
		Price:          data.Price,
		Quantity:       data.OrigQty,
		FilledQuantity: data.ExecutedQty,
	}

	if data.Time > 0 {
		order.CreatedAt = time.UnixMilli(data.Time)
	}
	if data.UpdateTime > 0 {
		order.UpdatedAt = time.UnixMilli(data.UpdateTime)
	}

	return order
}

// NormalizeOrders converts multiple raw orders to canonical Orders.
// The result is never nil; no open orders yields an empty slice.
func (n *Normalizer) NormalizeOrders(data []futuresOrder) []core.Order {
	orders := make([]core.Order, 0, len(data))
	for i := range data {
		orders = append(orders, *n.NormalizeOrder(&data[i]))
	}
	return orders
}

// NormalizeSymbolInfos extracts trading rules for every tradable symbol.
func (n *Normalizer) NormalizeSymbolInfos(data *futuresExchangeInfo) (map[string]core.SymbolInfo, error) {
	infos := make(map[string]core.SymbolInfo, len(data.Symbols))

	for _, s := range data.Symbols {
		info := core.SymbolInfo{
			Symbol:            s.Symbol,
			PricePrecision:    s.PricePrecision,
			QuantityPrecision: s.QuantityPrecision,
		}

		for _, f := range s.Filters {
			switch f.FilterType {
			case "LOT_SIZE":
				if err := parseDecimal(&info.MinQty, f.MinQty); err != nil {
					return nil, fmt.Errorf("parse minQty for %s: %w", s.Symbol, err)
				}
				if err := parseDecimal(&info.StepSize, f.StepSize); err != nil {
					return nil, fmt.Errorf("parse stepSize for %s: %w", s.Symbol, err)
				}
			case "PRICE_FILTER":
				if err := parseDecimal(&info.TickSize, f.TickSize); err != nil {
					return nil, fmt.Errorf("parse tickSize for %s: %w", s.Symbol, err)
				}
			}
		}

		infos[s.Symbol] = info
	}

	return infos, nil
}

func parseDecimal(dest *apd.Decimal, s string) error {
	if s == "" {
		*dest = apd.Decimal{}
		return nil
	}

	_, _, err := apd.BaseContext.SetString(dest, s)
	if err != nil {
		return fmt.Errorf("set decimal from string: %w", err)
	}

	return nil
}

func parseOrderSide(s string) core.OrderSide {
	if s == "SELL" {
		return core.SideSell
	}
	return core.SideBuy
}

func parseOrderType(s string) core.OrderType {
	if s == "LIMIT" {
		return core.TypeLimit
	}
	return core.TypeMarket
}

func parseOrderStatus(s string) core.OrderStatus {
	switch s {
	case "NEW":
		return core.StatusNew
	case "PARTIALLY_FILLED":
		return core.StatusPartiallyFilled
	case "FILLED":
		return core.StatusFilled
	case "CANCELED":
		return core.StatusCanceled
	case "REJECTED":
		return core.StatusRejected
	case "EXPIRED":
		return core.StatusExpired
	default:
		return core.StatusNew
	}
}

func parseTimeInForce(s string) core.TimeInForce {
	switch s {
	case "IOC":
		return core.IOC
	case "FOK":
		return core.FOK
	default:
		return core.GTC
	}
}
