package org

import (
	"context"
	"sort"

	"github.com/rustyeddy/tradeorg/position"
	"github.com/rustyeddy/tradeorg/rules"
	"github.com/rustyeddy/tradeorg/trade"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Strategy trades. It owns its cash, positions and the canonical trade
// records; rules come from its linked portfolio and fund.
type Strategy struct{ handle }

// PlaceTrade validates req against the contract, the portfolio rules, the
// fund rules and the strategy's cash, in that order. On success the trade
// is filled at req.Price, booked into the position and recorded in this
// strategy's ledger and every linked ancestor's. On any error nothing
// changes.
func (s *Strategy) PlaceTrade(ctx context.Context, req trade.Request) (*trade.Trade, error) {
	out, err := s.r.execute(ctx, s.key, "place trade", func(*node) ([]trade.Request, error) {
		return []trade.Request{req}, nil
	})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// Portfolio returns the parent portfolio, if linked.
func (s *Strategy) Portfolio() (*Portfolio, bool) {
	p := s.Parent()
	if p.Link != Linked {
		return nil, false
	}
	return &Portfolio{ruled{handle{s.r, p.Key}}}, true
}

// Cash is the strategy's trading cash: its balance adjusted by every fill.
func (s *Strategy) Cash() (c decimal.Decimal) {
	_ = s.with(func(n *node) error { c = n.cash; return nil })
	return c
}

// Position returns a copy of the position in symbol. ok is false when the
// symbol was never traded; a closed position is returned flat.
func (s *Strategy) Position(symbol string) (p position.Position, ok bool) {
	_ = s.with(func(n *node) error {
		var pos *position.Position
		if pos, ok = n.positions[symbol]; ok {
			p = pos.Clone()
		}
		return nil
	})
	return p, ok
}

// Positions returns copies of every position, flat ones included.
func (s *Strategy) Positions() map[string]position.Position {
	out := make(map[string]position.Position)
	_ = s.with(func(n *node) error {
		for sym, p := range n.positions {
			out[sym] = p.Clone()
		}
		return nil
	})
	return out
}

// OpenPositions returns the non-flat positions sorted by symbol.
func (s *Strategy) OpenPositions() []position.Position {
	var out []position.Position
	for _, p := range s.Positions() {
		if !p.IsFlat() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Trades returns the strategy's filled trades in fill order.
func (s *Strategy) Trades() (out []*trade.Trade) {
	_ = s.with(func(n *node) error {
		out = append([]*trade.Trade(nil), n.trades...)
		return nil
	})
	return out
}

func (s *Strategy) RealizedPnL() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range s.Positions() {
		sum = sum.Add(p.RealizedPnL)
	}
	return sum
}

// UnrealizedPnL marks every position with a price in prices. Symbols
// without a price are skipped.
func (s *Strategy) UnrealizedPnL(prices map[string]decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for sym, p := range s.Positions() {
		if px, ok := prices[sym]; ok {
			sum = sum.Add(p.UnrealizedPnL(px))
		}
	}
	return sum
}

// MarketValue is the signed value of every priced position. Shorts count
// negative.
func (s *Strategy) MarketValue(prices map[string]decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for sym, p := range s.Positions() {
		if px, ok := prices[sym]; ok {
			sum = sum.Add(p.MarketValue(px))
		}
	}
	return sum
}

// Equity is cash plus market value.
func (s *Strategy) Equity(prices map[string]decimal.Decimal) decimal.Decimal {
	return s.Cash().Add(s.MarketValue(prices))
}

// Chain returns the rule stages a trade from this strategy passes through,
// nearest ancestor first. A standalone strategy has none.
func (s *Strategy) Chain() (c rules.Chain) {
	_ = s.with(func(n *node) error {
		for _, st := range chainLocked(s.r.lineageLocked(n)) {
			st.Rules = st.Rules.Clone()
			c = append(c, st)
		}
		return nil
	})
	return c
}

// EffectiveRules is the most restrictive combination of every rule set in
// the chain.
func (s *Strategy) EffectiveRules() *rules.Rules {
	return s.Chain().Effective()
}

// CanShort reports whether a SELL_SHORT would pass the direction and
// short-selling checks at every level.
func (s *Strategy) CanShort() bool {
	eff := s.EffectiveRules()
	return eff.AllowShortSelling && eff.DirectionAllowed(trade.SellShort)
}

// MaxPositionValue is the strategy balance scaled by the effective
// position size limit.
func (s *Strategy) MaxPositionValue() decimal.Decimal {
	return s.Balance().Mul(s.EffectiveRules().MaxPositionSizePct).Div(hundred)
}
