package org

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rustyeddy/tradeorg/position"
	"github.com/rustyeddy/tradeorg/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var t0 = time.Date(2024, 6, 3, 14, 30, 0, 0, time.UTC)

func seqIDs() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("T%05d", n.Add(1)) }
}

func newRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	base := []Option{
		WithLogger(zaptest.NewLogger(t)),
		WithClock(func() time.Time { return t0 }),
		WithIDs(seqIDs()),
	}
	return NewRegistry(append(base, opts...)...)
}

// fixture is a fully linked chain plus a sibling strategy under the same
// portfolio:
//
//	Account A1 1,000,000
//	  Fund F1 500,000
//	    Portfolio P1 100,000
//	      Strategy S1 50,000
//	      Strategy S2 20,000
type fixture struct {
	reg  *Registry
	acct *Account
	fund *Fund
	pf   *Portfolio
	st   *Strategy
	sib  *Strategy
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	reg := newRegistry(t, opts...)

	acct, err := reg.NewAccount("A1", "Main Account", d("1000000"), nil)
	require.NoError(t, err)
	fund, err := acct.CreateFund("F1", "Growth Fund", d("500000"))
	require.NoError(t, err)
	pf, err := fund.CreatePortfolio("P1", "Tech", d("100000"))
	require.NoError(t, err)
	st, err := pf.CreateStrategy("S1", "Momentum", d("50000"))
	require.NoError(t, err)
	sib, err := pf.CreateStrategy("S2", "Mean Reversion", d("20000"))
	require.NoError(t, err)

	return &fixture{reg: reg, acct: acct, fund: fund, pf: pf, st: st, sib: sib}
}

func req(sym string, dir trade.Direction, qty, price string) trade.Request {
	return trade.Request{
		Symbol:    sym,
		Direction: dir,
		Quantity:  d(qty),
		OrderType: trade.Market,
		Price:     d(price),
	}
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s got %s %v", want, got, msgAndArgs)
}

// state is everything a rejected trade must leave untouched.
type state struct {
	cash      decimal.Decimal
	positions map[string]position.Position
	trades    int
	ledgers   [4]int
}

func (f *fixture) snapshot() state {
	return state{
		cash:      f.st.Cash(),
		positions: f.st.Positions(),
		trades:    len(f.st.Trades()),
		ledgers: [4]int{
			f.st.Ledger().Count(),
			f.pf.Ledger().Count(),
			f.fund.Ledger().Count(),
			f.acct.Ledger().Count(),
		},
	}
}

func (f *fixture) assertUnchanged(t *testing.T, before state) {
	t.Helper()
	after := f.snapshot()
	assert.True(t, before.cash.Equal(after.cash), "cash changed: %s -> %s", before.cash, after.cash)
	assert.Equal(t, before.positions, after.positions)
	assert.Equal(t, before.trades, after.trades)
	assert.Equal(t, before.ledgers, after.ledgers)
}
