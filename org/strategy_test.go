package org

import (
	"testing"

	"github.com/rustyeddy/tradeorg/rules"
	"github.com/rustyeddy/tradeorg/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategyReadModel(t *testing.T) {
	f := newFixture(t)
	ctx := testContext(t)

	_, err := f.st.PlaceTrade(ctx, req("AAPL", trade.Buy, "100", "150"))
	require.NoError(t, err)
	_, err = f.st.PlaceTrade(ctx, req("MSFT", trade.SellShort, "10", "300"))
	require.NoError(t, err)

	prices := map[string]decimal.Decimal{"AAPL": d("160"), "MSFT": d("290")}
	assertDec(t, "38000", f.st.Cash())
	assertDec(t, "1100", f.st.UnrealizedPnL(prices))
	assertDec(t, "13100", f.st.MarketValue(prices))
	assertDec(t, "51100", f.st.Equity(prices))

	partial := map[string]decimal.Decimal{"AAPL": d("160")}
	assertDec(t, "1000", f.st.UnrealizedPnL(partial), "unpriced symbols are skipped")

	open := f.st.OpenPositions()
	require.Len(t, open, 2)
	assert.Equal(t, "AAPL", open[0].Symbol)
	assert.Equal(t, "MSFT", open[1].Symbol)

	_, ok := f.st.Position("TSLA")
	assert.False(t, ok)

	_, err = f.st.PlaceTrade(ctx, req("AAPL", trade.Sell, "100", "160"))
	require.NoError(t, err)
	assert.Len(t, f.st.OpenPositions(), 1)
	assert.Len(t, f.st.Positions(), 2)
	assert.Len(t, f.st.Trades(), 3)
	assertDec(t, "1000", f.st.RealizedPnL())
}

func TestPositionCopiesAreIndependent(t *testing.T) {
	f := newFixture(t)
	_, err := f.st.PlaceTrade(testContext(t), req("AAPL", trade.Buy, "10", "150"))
	require.NoError(t, err)

	p, _ := f.st.Position("AAPL")
	p.Quantity = d("999")
	p.OpeningTrades = nil

	again, _ := f.st.Position("AAPL")
	assertDec(t, "10", again.Quantity)
	assert.Len(t, again.OpeningTrades, 1)
}

func TestEffectiveRules(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.pf.UpdateRules(func(r *rules.Rules) { r.MaxPositionSizePct = d("20") }))
	require.NoError(t, f.fund.UpdateRules(func(r *rules.Rules) {
		r.MaxPositionSizePct = d("10")
		r.AllowShortSelling = false
	}))

	chain := f.st.Chain()
	require.Len(t, chain, 2)
	assert.Equal(t, rules.LevelPortfolio, chain[0].Level)
	assert.Equal(t, rules.LevelFund, chain[1].Level)
	assertDec(t, "100000", chain[0].Reference)
	assertDec(t, "500000", chain[1].Reference)

	chain[0].Rules.RestrictSymbols("AAPL")
	assert.False(t, f.pf.Rules().Restricted("AAPL"), "chain rules are copies")

	eff := f.st.EffectiveRules()
	assertDec(t, "10", eff.MaxPositionSizePct)
	assert.False(t, f.st.CanShort())
	assertDec(t, "5000", f.st.MaxPositionValue())

	solo, err := f.reg.NewStrategy("X1", "Solo", d("1000"), nil)
	require.NoError(t, err)
	assert.True(t, solo.CanShort())
	assertDec(t, "1000", solo.MaxPositionValue())
}
