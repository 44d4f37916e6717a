package rules

import (
	"github.com/rustyeddy/tradeorg/trade"
	"github.com/shopspring/decimal"
)

// Level names the hierarchy level a stage's rules belong to.
type Level string

const (
	LevelPortfolio Level = "portfolio"
	LevelFund      Level = "fund"
)

// Stage is one rule evaluation in a chain: the rules of a single linked
// ancestor and the reference value its percentages are measured against.
type Stage struct {
	Level     Level
	NodeID    string
	Rules     *Rules
	Reference decimal.Decimal
}

// Chain is the ordered list of stages a trade must pass. A standalone
// strategy has an empty chain and is never constrained.
type Chain []Stage

// Validate runs every stage in order and returns the first denial. When
// every stage allows the trade it returns a zero Stage and an allowing
// Decision.
func (c Chain) Validate(req trade.Request, current decimal.Decimal) (Stage, Decision) {
	for _, s := range c {
		if d := Validate(s.Rules, req, s.Reference, current); !d.Allowed {
			return s, d
		}
	}
	return Stage{}, Decision{Allowed: true}
}

// Effective merges the rules of every stage into one most-restrictive set.
// An empty chain yields permissive rules.
func (c Chain) Effective() *Rules {
	out := New("effective")
	for _, s := range c {
		out = Merge(out, s.Rules)
	}
	return out
}
