package binance

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nakula/pkg/core"
)

const accountFixture = `{
	"totalWalletBalance": "15000.00000000",
	"totalMarginBalance": "15012.50000000",
	"totalUnrealizedProfit": "12.50000000",
	"availableBalance": "14500.00000000",
	"assets": [
		{"asset": "USDT", "walletBalance": "15000.00000000", "unrealizedProfit": "12.50000000"},
		{"asset": "BNB", "walletBalance": "0.00000000", "unrealizedProfit": "0.00000000"}
	]
}`

func TestNormalizer_NormalizeAccount(t *testing.T) {
	var data futuresAccount
	require.NoError(t, sonic.Unmarshal([]byte(accountFixture), &data))

	snapshot := NewNormalizer().NormalizeAccount(&data)

	assert.Equal(t, "15000.00000000", snapshot.WalletBalance.String())
	assert.Equal(t, "15012.50000000", snapshot.MarginBalance.String())
	assert.Equal(t, "14500.00000000", snapshot.AvailableBalance.String())
	assert.Equal(t, "12.50000000", snapshot.UnrealizedPnL.String())
	assert.False(t, snapshot.Timestamp.IsZero())

	// The zero-balance BNB entry is dropped.
	require.Len(t, snapshot.Assets, 1)
	assert.Equal(t, "USDT", snapshot.Assets[0].Asset)
}

func TestNormalizer_NormalizePriceQuote(t *testing.T) {
	var data futuresPriceTicker
	require.NoError(t, sonic.Unmarshal(
		[]byte(`{"symbol": "BTCUSDT", "price": "64250.10", "time": 1718000000000}`), &data))

	quote := NewNormalizer().NormalizePriceQuote(&data)

	assert.Equal(t, "BTCUSDT", quote.Symbol)
	assert.Equal(t, "64250.10", quote.Price.String())
	assert.Equal(t, time.UnixMilli(1718000000000), quote.Timestamp)
}

func TestNormalizer_NormalizePriceQuote_NoTime(t *testing.T) {
	var data futuresPriceTicker
	require.NoError(t, sonic.Unmarshal(
		[]byte(`{"symbol": "BTCUSDT", "price": "64250.10"}`), &data))

	quote := NewNormalizer().NormalizePriceQuote(&data)
	assert.False(t, quote.Timestamp.IsZero())
}

const orderFixture = `{
	"orderId": 4077043125,
	"clientOrderId": "terminal-1",
	"symbol": "BTCUSDT",
	"side": "SELL",
	"type": "LIMIT",
	"status": "PARTIALLY_FILLED",
	"price": "65000.00",
	"origQty": "0.010",
	"executedQty": "0.004",
	"timeInForce": "IOC",
	"time": 1718000000000,
	"updateTime": 1718000060000
}`

func TestNormalizer_NormalizeOrder(t *testing.T) {
	var data futuresOrder
	require.NoError(t, sonic.Unmarshal([]byte(orderFixture), &data))

	order := NewNormalizer().NormalizeOrder(&data)

	assert.Equal(t, "4077043125", order.ID)
	assert.Equal(t, "terminal-1", order.ClientOrderID)
	assert.Equal(t, "BTCUSDT", order.Symbol)
	assert.Equal(t, core.SideSell, order.Side)
	assert.Equal(t, core.TypeLimit, order.Type)
	assert.Equal(t, core.StatusPartiallyFilled, order.Status)
	assert.Equal(t, core.IOC, order.TimeInForce)
	assert.Equal(t, "65000.00", order.Price.String())
	assert.Equal(t, "0.010", order.Quantity.String())
	assert.Equal(t, "0.004", order.FilledQuantity.String())
	assert.Equal(t, time.UnixMilli(1718000000000), order.CreatedAt)
	assert.Equal(t, time.UnixMilli(1718000060000), order.UpdatedAt)
}

func TestNormalizer_NormalizeOrders_Empty(t *testing.T) {
	orders := NewNormalizer().NormalizeOrders(nil)

	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

const exchangeInfoFixture = `{
	"symbols": [
		{
			"symbol": "BTCUSDT",
			"status": "TRADING",
			"pricePrecision": 2,
			"quantityPrecision": 3,
			"filters": [
				{"filterType": "PRICE_FILTER", "tickSize": "0.10"},
				{"filterType": "LOT_SIZE", "minQty": "0.001", "stepSize": "0.001"},
				{"filterType": "MARKET_LOT_SIZE", "minQty": "0.001", "stepSize": "0.001"}
			]
		},
		{
			"symbol": "ETHUSDT",
			"status": "TRADING",
			"pricePrecision": 2,
			"quantityPrecision": 3,
			"filters": []
		}
	]
}`

func TestNormalizer_NormalizeSymbolInfos(t *testing.T) {
	var data futuresExchangeInfo
	require.NoError(t, sonic.Unmarshal([]byte(exchangeInfoFixture), &data))

	infos, err := NewNormalizer().NormalizeSymbolInfos(&data)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	btc := infos["BTCUSDT"]
	assert.Equal(t, 2, btc.PricePrecision)
	assert.Equal(t, 3, btc.QuantityPrecision)
	assert.Equal(t, "0.001", btc.MinQty.String())
	assert.Equal(t, "0.001", btc.StepSize.String())
	assert.Equal(t, "0.10", btc.TickSize.String())

	// Missing filters leave zero-valued rules rather than failing.
	eth := infos["ETHUSDT"]
	assert.True(t, eth.MinQty.IsZero())
	assert.True(t, eth.StepSize.IsZero())
}

func TestParseOrderStatus_Unknown(t *testing.T) {
	assert.Equal(t, core.StatusNew, parseOrderStatus("PENDING_WHATEVER"))
}
