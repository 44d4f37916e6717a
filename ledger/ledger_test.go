package ledger

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/rustyeddy/tradeorg/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day1 = time.Date(2024, 3, 4, 14, 0, 0, 0, time.UTC)

func mkTrade(id, sym string, dir trade.Direction, qty, price, comm string, at time.Time) *trade.Trade {
	r := trade.Request{
		Symbol:     sym,
		Direction:  dir,
		Quantity:   decimal.RequireFromString(qty),
		OrderType:  trade.Market,
		Price:      decimal.RequireFromString(price),
		Commission: decimal.RequireFromString(comm),
	}
	return trade.Fill(id, "S1", r, decimal.Zero, at)
}

func seeded(t *testing.T) *Index {
	t.Helper()
	ix := New("Momentum", "Strategy", day1)
	require.NoError(t, ix.Record(mkTrade("t1", "AAPL", trade.Buy, "10", "150", "1", day1)))
	require.NoError(t, ix.Record(mkTrade("t2", "MSFT", trade.SellShort, "5", "300", "1", day1.Add(time.Hour))))
	require.NoError(t, ix.Record(mkTrade("t3", "AAPL", trade.Sell, "4", "160", "0.5", day1.AddDate(0, 0, 1))))
	return ix
}

func TestRecordRejectsDuplicatesAndNil(t *testing.T) {
	ix := seeded(t)

	err := ix.Record(mkTrade("t1", "AAPL", trade.Buy, "1", "1", "0", day1))
	assert.ErrorIs(t, err, ErrDuplicateTrade)
	assert.ErrorIs(t, ix.Record(nil), ErrInvalidTrade)
	assert.ErrorIs(t, ix.Record(&trade.Trade{}), ErrInvalidTrade)
	assert.Equal(t, 3, ix.Count())
}

func TestTradesPreserveRecordingOrder(t *testing.T) {
	ix := seeded(t)

	var ids []string
	for _, tr := range ix.Trades() {
		ids = append(ids, tr.ID)
	}
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids)

	got, ok := ix.Get("t2")
	require.True(t, ok)
	assert.Equal(t, "MSFT", got.Symbol)
	assert.False(t, ix.Has("nope"))
}

func TestSecondaryIndices(t *testing.T) {
	ix := seeded(t)

	assert.Len(t, ix.BySymbol("AAPL"), 2)
	assert.Len(t, ix.BySymbol("MSFT"), 1)
	assert.NotNil(t, ix.BySymbol("TSLA"))
	assert.Empty(t, ix.BySymbol("TSLA"))

	assert.Len(t, ix.ByStatus(trade.Filled), 3)
	assert.Empty(t, ix.ByStatus(trade.Cancelled))
	assert.Len(t, ix.Filled(), 3)
	assert.Empty(t, ix.Pending())

	assert.Len(t, ix.ByDirection(trade.SellShort), 1)
	assert.Empty(t, ix.ByDirection(trade.BuyToCover))

	assert.Len(t, ix.ByDate(day1), 2)
	assert.Len(t, ix.ByDate(day1.AddDate(0, 0, 1)), 1)
	assert.Equal(t, map[string]int{"2024-03-04": 2, "2024-03-05": 1}, ix.ActivityByDate())
}

func TestPendingIncludesSubmitted(t *testing.T) {
	ix := New("acct", "Account", day1)
	p := mkTrade("p1", "AAPL", trade.Buy, "1", "10", "0", day1)
	p.Status = trade.Pending
	s := mkTrade("s1", "AAPL", trade.Buy, "1", "10", "0", day1)
	s.Status = trade.Submitted
	require.NoError(t, ix.Record(p))
	require.NoError(t, ix.Record(s))

	assert.Len(t, ix.Pending(), 2)
	assert.Equal(t, 0, ix.FilledCount())
	assert.True(t, ix.TotalVolume().IsZero(), "only filled trades add volume")
}

func TestByDateRangeInclusive(t *testing.T) {
	ix := seeded(t)

	assert.Len(t, ix.ByDateRange(day1, day1), 1)
	assert.Len(t, ix.ByDateRange(day1, day1.Add(time.Hour)), 2)
	assert.Len(t, ix.ByDateRange(day1.Add(-time.Hour), day1.AddDate(0, 0, 2)), 3)
	assert.Empty(t, ix.ByDateRange(day1.AddDate(0, 0, 5), day1.AddDate(0, 0, 6)))
}

func TestByDateRangeTrimsBoundaryDays(t *testing.T) {
	ix := seeded(t)
	require.NoError(t, ix.Record(mkTrade("t4", "MSFT", trade.BuyToCover, "5", "290", "0", day1.AddDate(0, 0, 1).Add(3*time.Hour))))
	require.NoError(t, ix.Record(mkTrade("t0", "AAPL", trade.Buy, "1", "140", "0", day1.Add(-2*time.Hour))))

	ids := func(ts []*trade.Trade) []string {
		out := []string{}
		for _, tr := range ts {
			out = append(out, tr.ID)
		}
		return out
	}

	// t0 sits on day1 before the lower bound, t4 on day2 after the upper one.
	got := ix.ByDateRange(day1.Add(-time.Hour), day1.AddDate(0, 0, 1).Add(time.Hour))
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids(got))

	got = ix.ByDateRange(day1.Add(-12*time.Hour), day1.AddDate(0, 0, 3))
	assert.Equal(t, []string{"t1", "t2", "t0", "t3", "t4"}, ids(got), "day by day, recording order within a day")

	assert.Empty(t, ix.ByDateRange(day1.AddDate(0, 0, 1), day1))
}

func TestExportIsConsistentUnderConcurrentRecord(t *testing.T) {
	ix := New("Fund", "Fund", day1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			_ = ix.Record(mkTrade(fmt.Sprintf("t%03d", i), "AAPL", trade.Buy, "1", "10", "1", day1))
		}
	}()

	for {
		snap := ix.Export()
		assert.Equal(t, snap.TotalTrades, snap.FilledTrades)
		assert.InDelta(t, float64(snap.TotalTrades)*10, snap.TotalVolume, 1e-9)
		assert.InDelta(t, float64(snap.TotalTrades), snap.TotalCommission, 1e-9)
		assert.Equal(t, snap.TotalTrades, snap.TradeDirections["BUY"])
		select {
		case <-done:
			assert.Equal(t, 500, ix.Export().TotalTrades)
			return
		default:
		}
	}
}

func TestAggregates(t *testing.T) {
	ix := seeded(t)

	// 10*150 + 5*300 + 4*160
	assert.True(t, decimal.RequireFromString("3640").Equal(ix.TotalVolume()), ix.TotalVolume().String())
	assert.True(t, decimal.RequireFromString("2140").Equal(ix.VolumeBySymbol("AAPL")))
	assert.True(t, ix.VolumeBySymbol("TSLA").IsZero())
	assert.True(t, decimal.RequireFromString("2.5").Equal(ix.TotalCommission()))

	dc := ix.DirectionCounts()
	assert.Equal(t, Directions{Buy: 1, Sell: 1, SellShort: 1}, dc)
	assert.Equal(t, 2, dc.TotalLong())
	assert.Equal(t, 1, dc.TotalShort())
	assert.Equal(t, []string{"AAPL", "MSFT"}, ix.Symbols())
}

func TestExport(t *testing.T) {
	ix := seeded(t)
	snap := ix.Export()

	assert.Equal(t, "Momentum", snap.OwnerName)
	assert.Equal(t, "Strategy", snap.OwnerType)
	assert.Equal(t, 3, snap.TotalTrades)
	assert.Equal(t, 3, snap.FilledTrades)
	assert.Equal(t, []string{"AAPL", "MSFT"}, snap.SymbolsTraded)
	assert.InDelta(t, 3640.0, snap.TotalVolume, 1e-9)
	assert.InDelta(t, 2.5, snap.TotalCommission, 1e-9)
	assert.Equal(t, map[string]int{"BUY": 1, "SELL": 1, "SELL_SHORT": 1, "BUY_TO_COVER": 0}, snap.TradeDirections)

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, k := range []string{"owner_name", "owner_type", "created_at", "total_trades", "filled_trades",
		"symbols_traded", "total_volume", "total_commission", "trade_directions", "activity_by_date"} {
		assert.Contains(t, m, k)
	}
}

func TestEmptyIndexExport(t *testing.T) {
	snap := New("Fund A", "Fund", day1).Export()
	assert.Equal(t, 0, snap.TotalTrades)
	assert.Empty(t, snap.SymbolsTraded)
	assert.Zero(t, snap.TotalVolume)
	assert.Empty(t, snap.ActivityByDate)
}
