package trade

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func validRequest() Request {
	return Request{
		Symbol:    "AAPL",
		Direction: Buy,
		Quantity:  d("100"),
		OrderType: Market,
		Price:     d("10"),
	}
}

func TestRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr error
		errMsg  string
	}{
		{name: "valid market", mutate: func(r *Request) {}},
		{name: "missing symbol", mutate: func(r *Request) { r.Symbol = "  " }, wantErr: ErrMissingSymbol},
		{name: "unknown direction", mutate: func(r *Request) { r.Direction = "HOLD" }, errMsg: "unknown direction"},
		{name: "unknown order type", mutate: func(r *Request) { r.OrderType = "ICEBERG" }, errMsg: "unknown order type"},
		{name: "zero quantity", mutate: func(r *Request) { r.Quantity = decimal.Zero }, wantErr: ErrBadQuantity},
		{name: "negative quantity", mutate: func(r *Request) { r.Quantity = d("-5") }, wantErr: ErrBadQuantity},
		{name: "zero price", mutate: func(r *Request) { r.Price = decimal.Zero }, wantErr: ErrBadPrice},
		{name: "stop loss without stop", mutate: func(r *Request) { r.OrderType = StopLoss }, wantErr: ErrMissingStopPrice},
		{name: "trailing stop without stop", mutate: func(r *Request) { r.OrderType = TrailingStop }, wantErr: ErrMissingStopPrice},
		{
			name:    "stop limit with zero stop",
			mutate:  func(r *Request) { r.OrderType = StopLimit; r.StopPrice = dp("0") },
			wantErr: ErrBadStopPrice,
		},
		{
			name:   "stop limit with stop",
			mutate: func(r *Request) { r.OrderType = StopLimit; r.StopPrice = dp("9.5") },
		},
		{name: "limit ignores stop", mutate: func(r *Request) { r.OrderType = Limit }},
		{name: "negative commission", mutate: func(r *Request) { r.Commission = d("-1") }, wantErr: ErrNegativeCommission},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := validRequest()
			tt.mutate(&r)
			err := r.Validate()
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequestCashDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dir  Direction
		want string
	}{
		{Buy, "-1002"},
		{BuyToCover, "-1002"},
		{Sell, "998"},
		{SellShort, "998"},
	}

	for _, tt := range tests {
		r := validRequest()
		r.Direction = tt.dir
		r.Commission = d("2")
		assert.True(t, d(tt.want).Equal(r.CashDelta()), "%s: got %s", tt.dir, r.CashDelta())
	}
}

func TestSignedQuantity(t *testing.T) {
	t.Parallel()

	r := validRequest()
	assert.True(t, r.SignedQuantity().Equal(d("100")))

	r.Direction = SellShort
	assert.True(t, r.SignedQuantity().Equal(d("-100")))
}

func TestFill(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	r := validRequest()
	r.OrderType = StopLoss
	r.StopPrice = dp("9")

	tr := Fill("T1", "S1", r, d("12.5"), at)

	assert.Equal(t, "T1", tr.ID)
	assert.Equal(t, "S1", tr.StrategyID)
	assert.Equal(t, Filled, tr.Status)
	assert.True(t, tr.FilledQuantity.Equal(d("100")))
	assert.True(t, tr.FillPrice.Equal(d("10")))
	assert.True(t, tr.Notional().Equal(d("1000")))
	assert.True(t, tr.RealizedPnL.Equal(d("12.5")))
	assert.Equal(t, at, tr.FilledAt)
	assert.Equal(t, at, tr.CreatedAt)

	// The trade keeps its own copy of the stop price.
	*r.StopPrice = d("1")
	require.NotNil(t, tr.StopPrice)
	assert.True(t, tr.StopPrice.Equal(d("9")))
}

func TestParseEnums(t *testing.T) {
	t.Parallel()

	dir, err := ParseDirection(" sell_short ")
	require.NoError(t, err)
	assert.Equal(t, SellShort, dir)

	_, err = ParseDirection("hold")
	assert.Error(t, err)

	ot, err := ParseOrderType("trailing_stop")
	require.NoError(t, err)
	assert.Equal(t, TrailingStop, ot)
	assert.True(t, ot.RequiresStop())

	_, err = ParseOrderType("")
	assert.Error(t, err)

	assert.True(t, Filled.Terminal())
	assert.False(t, Pending.Terminal())
	assert.Len(t, Directions(), 4)
	assert.Len(t, OrderTypes(), 5)
}
