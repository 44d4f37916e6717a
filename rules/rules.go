package rules

import (
	"fmt"
	"sort"

	"github.com/rustyeddy/tradeorg/trade"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Rules are the compliance constraints configured on a fund or portfolio.
// Strategies and accounts carry none.
type Rules struct {
	Name string

	AllowedOrderTypes map[trade.OrderType]struct{}
	AllowedDirections map[trade.Direction]struct{}

	AllowShortSelling bool
	AllowMargin       bool
	AllowOptions      bool
	AllowFutures      bool

	// Size limits as a percentage of the reference value.
	MaxPositionSizePct decimal.Decimal
	MaxSingleTradePct  decimal.Decimal

	// AllowedSymbols is a whitelist; empty means every symbol is allowed
	// unless whitelisted is set. RestrictedSymbols always wins.
	AllowedSymbols    map[string]struct{}
	RestrictedSymbols map[string]struct{}

	// whitelisted keeps an emptied whitelist restrictive, e.g. after two
	// disjoint whitelists were merged.
	whitelisted bool
}

// New returns permissive rules: every order type and direction, shorts and
// margin on, options and futures off, 100% size limits, no symbol lists.
func New(name string) *Rules {
	r := &Rules{
		Name:               name,
		AllowedOrderTypes:  map[trade.OrderType]struct{}{},
		AllowedDirections:  map[trade.Direction]struct{}{},
		AllowShortSelling:  true,
		AllowMargin:        true,
		MaxPositionSizePct: hundred,
		MaxSingleTradePct:  hundred,
		AllowedSymbols:     map[string]struct{}{},
		RestrictedSymbols:  map[string]struct{}{},
	}
	for _, o := range trade.OrderTypes() {
		r.AllowedOrderTypes[o] = struct{}{}
	}
	for _, d := range trade.Directions() {
		r.AllowedDirections[d] = struct{}{}
	}
	return r
}

// AllowOrderTypes replaces the permitted order types.
func (r *Rules) AllowOrderTypes(types ...trade.OrderType) *Rules {
	r.AllowedOrderTypes = make(map[trade.OrderType]struct{}, len(types))
	for _, t := range types {
		r.AllowedOrderTypes[t] = struct{}{}
	}
	return r
}

// AllowDirections replaces the permitted directions.
func (r *Rules) AllowDirections(dirs ...trade.Direction) *Rules {
	r.AllowedDirections = make(map[trade.Direction]struct{}, len(dirs))
	for _, d := range dirs {
		r.AllowedDirections[d] = struct{}{}
	}
	return r
}

// AllowSymbols replaces the whitelist. Calling it with no symbols clears
// the whitelist.
func (r *Rules) AllowSymbols(symbols ...string) *Rules {
	r.AllowedSymbols = make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		r.AllowedSymbols[s] = struct{}{}
	}
	r.whitelisted = false
	return r
}

// RestrictSymbols adds symbols to the blacklist.
func (r *Rules) RestrictSymbols(symbols ...string) *Rules {
	if r.RestrictedSymbols == nil {
		r.RestrictedSymbols = make(map[string]struct{}, len(symbols))
	}
	for _, s := range symbols {
		r.RestrictedSymbols[s] = struct{}{}
	}
	return r
}

// Unrestrict removes symbols from the blacklist.
func (r *Rules) Unrestrict(symbols ...string) *Rules {
	for _, s := range symbols {
		delete(r.RestrictedSymbols, s)
	}
	return r
}

func (r *Rules) OrderTypeAllowed(o trade.OrderType) bool {
	_, ok := r.AllowedOrderTypes[o]
	return ok
}

func (r *Rules) DirectionAllowed(d trade.Direction) bool {
	_, ok := r.AllowedDirections[d]
	return ok
}

// HasWhitelist reports whether the whitelist restricts symbols.
func (r *Rules) HasWhitelist() bool {
	return len(r.AllowedSymbols) > 0 || r.whitelisted
}

func (r *Rules) Whitelisted(symbol string) bool {
	_, ok := r.AllowedSymbols[symbol]
	return ok
}

func (r *Rules) Restricted(symbol string) bool {
	_, ok := r.RestrictedSymbols[symbol]
	return ok
}

// Clone returns a deep copy.
func (r *Rules) Clone() *Rules {
	c := *r
	c.AllowedOrderTypes = make(map[trade.OrderType]struct{}, len(r.AllowedOrderTypes))
	for k := range r.AllowedOrderTypes {
		c.AllowedOrderTypes[k] = struct{}{}
	}
	c.AllowedDirections = make(map[trade.Direction]struct{}, len(r.AllowedDirections))
	for k := range r.AllowedDirections {
		c.AllowedDirections[k] = struct{}{}
	}
	c.AllowedSymbols = copySet(r.AllowedSymbols)
	c.RestrictedSymbols = copySet(r.RestrictedSymbols)
	return &c
}

// SortedAllowedSymbols and SortedRestrictedSymbols are for display.
func (r *Rules) SortedAllowedSymbols() []string    { return sortedKeys(r.AllowedSymbols) }
func (r *Rules) SortedRestrictedSymbols() []string { return sortedKeys(r.RestrictedSymbols) }

func (r *Rules) String() string {
	return fmt.Sprintf("Rules(%q types=%d shorts=%t maxPos=%s%% maxTrade=%s%%)",
		r.Name, len(r.AllowedOrderTypes), r.AllowShortSelling,
		r.MaxPositionSizePct, r.MaxSingleTradePct)
}

func copySet(in map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}

func sortedKeys(in map[string]struct{}) []string {
	out := make([]string, 0, len(in))
	for k := range in {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
