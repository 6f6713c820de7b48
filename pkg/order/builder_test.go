package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nakula/pkg/core"
)

func TestBuilder_MarketBuy(t *testing.T) {
	req, err := NewBuilder("BTCUSDT").
		Buy().
		Market().
		Quantity("0.001").
		Build()

	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", req.Symbol)
	assert.Equal(t, core.SideBuy, req.Side)
	assert.Equal(t, core.TypeMarket, req.Type)
	assert.Equal(t, "0.001", req.Quantity.String())
	assert.True(t, req.Price.IsZero())
}

func TestBuilder_LimitSell(t *testing.T) {
	req, err := NewBuilder("ETHUSDT").
		Sell().
		Limit().
		Price("3500.50").
		Quantity("0.25").
		IOC().
		ClientOrderID("terminal-42").
		Build()

	require.NoError(t, err)
	assert.Equal(t, core.SideSell, req.Side)
	assert.Equal(t, core.TypeLimit, req.Type)
	assert.Equal(t, "3500.50", req.Price.String())
	assert.Equal(t, "0.25", req.Quantity.String())
	assert.Equal(t, core.IOC, req.TimeInForce)
	assert.Equal(t, "terminal-42", req.ClientOrderID)
}

func TestBuilder_DefaultTimeInForce(t *testing.T) {
	req, err := NewBuilder("BTCUSDT").
		Buy().
		Limit().
		Price("50000").
		Quantity("0.001").
		Build()

	require.NoError(t, err)
	assert.Equal(t, core.GTC, req.TimeInForce)
}

func TestBuilder_ParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func() (any, error)
	}{
		{
			name: "bad price",
			build: func() (any, error) {
				return NewBuilder("BTCUSDT").Buy().Limit().
					Price("not-a-number").Quantity("1").Build()
			},
		},
		{
			name: "bad quantity",
			build: func() (any, error) {
				return NewBuilder("BTCUSDT").Buy().Market().
					Quantity("1.2.3").Build()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			assert.Error(t, err)
		})
	}
}

func TestBuilder_FirstErrorWins(t *testing.T) {
	_, err := NewBuilder("BTCUSDT").
		Buy().
		Limit().
		Price("bogus").
		Quantity("also-bogus").
		Build()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse price")
}

func TestBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder *Builder
		wantErr string
	}{
		{
			name:    "missing symbol",
			builder: NewBuilder("").Buy().Market().Quantity("1"),
			wantErr: "symbol is required",
		},
		{
			name:    "missing quantity",
			builder: NewBuilder("BTCUSDT").Buy().Market(),
			wantErr: "quantity must be positive",
		},
		{
			name:    "limit without price",
			builder: NewBuilder("BTCUSDT").Sell().Limit().Quantity("1"),
			wantErr: "price must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			require.Error(t, err)
			assert.True(t, core.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
