package config

import (
	"fmt"

	"github.com/rustyeddy/tradeorg/rules"
	"github.com/rustyeddy/tradeorg/trade"
	"github.com/shopspring/decimal"
)

// RulesConfig overrides the permissive defaults of a fund or portfolio.
// Unset fields keep the default.
type RulesConfig struct {
	AllowedOrderTypes  []string         `json:"allowed_order_types,omitempty" yaml:"allowed_order_types,omitempty"`
	AllowedDirections  []string         `json:"allowed_directions,omitempty" yaml:"allowed_directions,omitempty"`
	AllowShortSelling  *bool            `json:"allow_short_selling,omitempty" yaml:"allow_short_selling,omitempty"`
	AllowMargin        *bool            `json:"allow_margin,omitempty" yaml:"allow_margin,omitempty"`
	AllowOptions       *bool            `json:"allow_options,omitempty" yaml:"allow_options,omitempty"`
	AllowFutures       *bool            `json:"allow_futures,omitempty" yaml:"allow_futures,omitempty"`
	MaxPositionSizePct *decimal.Decimal `json:"max_position_size_pct,omitempty" yaml:"max_position_size_pct,omitempty"`
	MaxSingleTradePct  *decimal.Decimal `json:"max_single_trade_pct,omitempty" yaml:"max_single_trade_pct,omitempty"`
	AllowedSymbols     []string         `json:"allowed_symbols,omitempty" yaml:"allowed_symbols,omitempty"`
	RestrictedSymbols  []string         `json:"restricted_symbols,omitempty" yaml:"restricted_symbols,omitempty"`
}

// Apply writes the configured overrides onto r. A nil receiver leaves r
// untouched.
func (rc *RulesConfig) Apply(r *rules.Rules) error {
	if rc == nil {
		return nil
	}

	if len(rc.AllowedOrderTypes) > 0 {
		types := make([]trade.OrderType, 0, len(rc.AllowedOrderTypes))
		for _, s := range rc.AllowedOrderTypes {
			o, err := trade.ParseOrderType(s)
			if err != nil {
				return fmt.Errorf("allowed_order_types: %w", err)
			}
			types = append(types, o)
		}
		r.AllowOrderTypes(types...)
	}
	if len(rc.AllowedDirections) > 0 {
		dirs := make([]trade.Direction, 0, len(rc.AllowedDirections))
		for _, s := range rc.AllowedDirections {
			d, err := trade.ParseDirection(s)
			if err != nil {
				return fmt.Errorf("allowed_directions: %w", err)
			}
			dirs = append(dirs, d)
		}
		r.AllowDirections(dirs...)
	}

	setBool(&r.AllowShortSelling, rc.AllowShortSelling)
	setBool(&r.AllowMargin, rc.AllowMargin)
	setBool(&r.AllowOptions, rc.AllowOptions)
	setBool(&r.AllowFutures, rc.AllowFutures)

	if rc.MaxPositionSizePct != nil {
		r.MaxPositionSizePct = *rc.MaxPositionSizePct
	}
	if rc.MaxSingleTradePct != nil {
		r.MaxSingleTradePct = *rc.MaxSingleTradePct
	}
	if len(rc.AllowedSymbols) > 0 {
		r.AllowSymbols(rc.AllowedSymbols...)
	}
	if len(rc.RestrictedSymbols) > 0 {
		r.RestrictSymbols(rc.RestrictedSymbols...)
	}
	return nil
}

func (rc *RulesConfig) validate() error {
	if rc == nil {
		return nil
	}
	if err := rc.Apply(rules.New("check")); err != nil {
		return err
	}
	for name, pct := range map[string]*decimal.Decimal{
		"max_position_size_pct": rc.MaxPositionSizePct,
		"max_single_trade_pct":  rc.MaxSingleTradePct,
	} {
		if pct != nil && pct.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
