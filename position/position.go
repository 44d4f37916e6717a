package position

import (
	"fmt"
	"time"

	"github.com/rustyeddy/tradeorg/trade"
	"github.com/shopspring/decimal"
)

// Position is a strategy's holding in one symbol. Quantity is signed:
// positive is long, negative is short, zero is flat. A flat position is
// kept rather than deleted so "closed" stays distinguishable from "never
// traded".
type Position struct {
	StrategyID string
	Symbol     string

	Quantity      decimal.Decimal
	AvgEntryPrice decimal.Decimal // cost basis of the open quantity
	RealizedPnL   decimal.Decimal

	OpeningTrades []*trade.Trade
	ClosingTrades []*trade.Trade

	OpenedAt time.Time
	ClosedAt time.Time
}

func New(strategyID, symbol string) *Position {
	return &Position{StrategyID: strategyID, Symbol: symbol}
}

func (p *Position) IsLong() bool  { return p.Quantity.IsPositive() }
func (p *Position) IsShort() bool { return p.Quantity.IsNegative() }
func (p *Position) IsFlat() bool  { return p.Quantity.IsZero() }

// Side is +1 long, -1 short, 0 flat.
func (p *Position) Side() int { return p.Quantity.Sign() }

// CostBasis is |quantity| * average entry price.
func (p *Position) CostBasis() decimal.Decimal {
	return p.Quantity.Abs().Mul(p.AvgEntryPrice)
}

// UnrealizedPnL marks the open quantity to price. The signed quantity makes
// the formula hold for shorts as well as longs.
func (p *Position) UnrealizedPnL(price decimal.Decimal) decimal.Decimal {
	return p.Quantity.Mul(price.Sub(p.AvgEntryPrice))
}

// MarketValue is signed; a short yields a negative value (a liability).
func (p *Position) MarketValue(price decimal.Decimal) decimal.Decimal {
	return p.Quantity.Mul(price)
}

// Preview returns the effect a fill would have without applying it.
func (p *Position) Preview(dir trade.Direction, qty, price decimal.Decimal) Effect {
	signed := qty
	if dir.Sign() < 0 {
		signed = qty.Neg()
	}
	return Project(p.Quantity, p.AvgEntryPrice, signed, price)
}

// Apply books a filled trade into the position using average cost basis and
// returns the effect it had.
func (p *Position) Apply(t *trade.Trade) Effect {
	e := Project(p.Quantity, p.AvgEntryPrice, t.SignedQuantity(), t.FillPrice)

	wasFlat := p.IsFlat()
	p.Quantity = e.Quantity
	p.AvgEntryPrice = e.AvgEntryPrice
	p.RealizedPnL = p.RealizedPnL.Add(e.Realized)

	if e.Closed.IsPositive() {
		p.ClosingTrades = append(p.ClosingTrades, t)
	}
	if e.Opened.IsPositive() {
		p.OpeningTrades = append(p.OpeningTrades, t)
	}

	switch {
	case wasFlat && !p.IsFlat():
		p.OpenedAt = t.FilledAt
		p.ClosedAt = time.Time{}
	case !wasFlat && p.IsFlat():
		p.ClosedAt = t.FilledAt
	case e.Flipped:
		p.OpenedAt = t.FilledAt
	}
	return e
}

// Clone returns a copy whose trade history slices are independent of p.
// The trades themselves are shared; they are immutable once filled.
func (p *Position) Clone() Position {
	c := *p
	c.OpeningTrades = append([]*trade.Trade(nil), p.OpeningTrades...)
	c.ClosingTrades = append([]*trade.Trade(nil), p.ClosingTrades...)
	return c
}

func (p *Position) String() string {
	side := "FLAT"
	switch {
	case p.IsLong():
		side = "LONG"
	case p.IsShort():
		side = "SHORT"
	}
	return fmt.Sprintf("Position(%s %s qty=%s avg=%s)", p.Symbol, side, p.Quantity, p.AvgEntryPrice.StringFixed(2))
}
