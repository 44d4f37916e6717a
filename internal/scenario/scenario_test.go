package scenario

import (
	"context"
	"testing"

	"github.com/rustyeddy/tradeorg/config"
	"github.com/rustyeddy/tradeorg/journal"
	"github.com/rustyeddy/tradeorg/org"
	"github.com/rustyeddy/tradeorg/rules"
	"github.com/rustyeddy/tradeorg/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestBuildDefault(t *testing.T) {
	sc, err := Build(config.Default(), zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, "ACC-001", sc.Account.ID())
	require.Len(t, sc.Account.Funds(), 1)
	fund := sc.Account.Funds()[0]
	assert.True(t, fund.Rules().Restricted("GME"))
	assert.True(t, fund.Rules().MaxPositionSizePct.Equal(decimal.NewFromInt(20)))

	income, err := fund.Portfolio("PF-INCOME")
	require.NoError(t, err)
	assert.False(t, income.Rules().AllowShortSelling)

	assert.Len(t, sc.Strategies(), 3)
	ledgers := sc.Ledgers()
	require.Len(t, ledgers, 7)
	assert.Equal(t, org.KindAccount, ledgers[0].Kind)
	assert.Equal(t, 3, ledgers[3].Depth)
}

func TestRunDefaultOrders(t *testing.T) {
	cfg := config.Default()
	mem := journal.NewMemory()
	sc, err := Build(cfg, zaptest.NewLogger(t), org.WithJournal(mem))
	require.NoError(t, err)

	results, err := sc.Run(testContext(t), cfg.Orders)
	require.NoError(t, err)
	require.Len(t, results, len(cfg.Orders))

	sum := Summarize(results)
	assert.Equal(t, 5, sum.Orders)
	assert.Equal(t, 4, sum.Filled)
	assert.Equal(t, 1, sum.Rejected)
	assert.Equal(t, map[string]int{"compliance": 1}, sum.ByKind)

	var ce *org.ComplianceError
	require.ErrorAs(t, results[4].Err, &ce)
	assert.Equal(t, rules.LevelPortfolio, ce.Level)
	assert.Equal(t, "PF-INCOME", ce.NodeID)

	require.Len(t, results[2].Trades, 1)
	assert.Equal(t, trade.SellShort, results[2].Trades[0].Direction, "SELL on flat routes to a short")
	assert.True(t, results[1].Trades[0].RealizedPnL.Equal(decimal.NewFromInt(500)))

	assert.Equal(t, 4, sc.Account.Ledger().Count())
	assert.Len(t, mem.Trades(), 4)
}

func TestBuildAllocationError(t *testing.T) {
	cfg := config.Default()
	cfg.Funds[0].Portfolios[0].Strategies[0].Balance = decimal.NewFromInt(175_000)

	_, err := Build(cfg, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, org.ErrInsufficientFunds)
	assert.Contains(t, err.Error(), "strategy ST-MEANREV")
}

func TestRunUnknownStrategyStops(t *testing.T) {
	sc, err := Build(config.Default(), nil)
	require.NoError(t, err)

	orders := []config.OrderConfig{{Strategy: "NOPE", Symbol: "AAPL", Direction: "BUY", Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(1)}}
	_, err = sc.Run(testContext(t), orders)
	assert.ErrorIs(t, err, org.ErrNotFound)
}

func TestRunCancelled(t *testing.T) {
	cfg := config.Default()
	sc, err := Build(cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(testContext(t))
	cancel()
	results, err := sc.Run(ctx, cfg.Orders)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	assert.Equal(t, 0, sc.Account.Ledger().Count())
}

func TestConversions(t *testing.T) {
	stop := decimal.NewFromInt(95)
	o := config.OrderConfig{
		Strategy:  "S1",
		Symbol:    "AAPL",
		Direction: "sell",
		Quantity:  decimal.NewFromInt(5),
		OrderType: "stop_loss",
		Price:     decimal.NewFromInt(94),
		StopPrice: &stop,
	}
	req, err := ToRequest(o)
	require.NoError(t, err)
	assert.Equal(t, trade.Sell, req.Direction)
	assert.Equal(t, trade.StopLoss, req.OrderType)
	assert.NoError(t, req.Validate())

	o.Direction, o.Action, o.OrderType = "", "buy", ""
	or, err := ToOrder(o)
	require.NoError(t, err)
	assert.Equal(t, org.ActionBuy, or.Action)
	assert.Equal(t, trade.Market, or.OrderType)

	o.Action = "hold"
	_, err = ToOrder(o)
	assert.ErrorIs(t, err, org.ErrContract)
	assert.Equal(t, "contract", org.ErrorKind(err))
}
