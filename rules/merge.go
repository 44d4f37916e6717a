package rules

import (
	"github.com/rustyeddy/tradeorg/trade"
	"github.com/shopspring/decimal"
)

// Merge combines two rule sets keeping the more restrictive value of every
// constraint: flags are ANDed, percentage limits take the minimum, allowed
// sets and whitelists intersect, blacklists union. Neither input is modified.
func Merge(a, b *Rules) *Rules {
	out := a.Clone()
	out.Name = a.Name

	out.AllowShortSelling = a.AllowShortSelling && b.AllowShortSelling
	out.AllowMargin = a.AllowMargin && b.AllowMargin
	out.AllowOptions = a.AllowOptions && b.AllowOptions
	out.AllowFutures = a.AllowFutures && b.AllowFutures

	out.MaxPositionSizePct = decimal.Min(a.MaxPositionSizePct, b.MaxPositionSizePct)
	out.MaxSingleTradePct = decimal.Min(a.MaxSingleTradePct, b.MaxSingleTradePct)

	out.AllowedOrderTypes = map[trade.OrderType]struct{}{}
	for o := range a.AllowedOrderTypes {
		if b.OrderTypeAllowed(o) {
			out.AllowedOrderTypes[o] = struct{}{}
		}
	}
	out.AllowedDirections = map[trade.Direction]struct{}{}
	for d := range a.AllowedDirections {
		if b.DirectionAllowed(d) {
			out.AllowedDirections[d] = struct{}{}
		}
	}

	switch {
	case a.HasWhitelist() && b.HasWhitelist():
		out.AllowedSymbols = map[string]struct{}{}
		for s := range a.AllowedSymbols {
			if b.Whitelisted(s) {
				out.AllowedSymbols[s] = struct{}{}
			}
		}
		out.whitelisted = true
	case b.HasWhitelist():
		out.AllowedSymbols = copySet(b.AllowedSymbols)
		out.whitelisted = true
	case a.HasWhitelist():
		out.whitelisted = true
	}

	for s := range b.RestrictedSymbols {
		out.RestrictedSymbols[s] = struct{}{}
	}
	return out
}
