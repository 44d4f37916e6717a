package config

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/tradeorg/trade"
)

// Validate checks structure and references. Capital allocation limits are
// enforced when the organization is built, not here.
func (c *Config) Validate() error {
	if c.Account.ID == "" {
		return fmt.Errorf("account.id is required")
	}
	if c.Account.Name == "" {
		return fmt.Errorf("account.name is required")
	}
	if !c.Account.Balance.IsPositive() {
		return fmt.Errorf("account.balance must be positive")
	}

	ids := map[string]struct{}{}
	unique := func(kind, id string) error {
		if id == "" {
			return fmt.Errorf("%s id is required", kind)
		}
		k := kind + ":" + id
		if _, dup := ids[k]; dup {
			return fmt.Errorf("duplicate %s id %q", kind, id)
		}
		ids[k] = struct{}{}
		return nil
	}

	for i, f := range c.Funds {
		if err := unique("fund", f.ID); err != nil {
			return fmt.Errorf("funds[%d]: %w", i, err)
		}
		if f.Balance.IsNegative() {
			return fmt.Errorf("fund %s: balance must not be negative", f.ID)
		}
		if err := f.Rules.validate(); err != nil {
			return fmt.Errorf("fund %s rules: %w", f.ID, err)
		}
		for j, p := range f.Portfolios {
			if err := unique("portfolio", p.ID); err != nil {
				return fmt.Errorf("fund %s portfolios[%d]: %w", f.ID, j, err)
			}
			if p.Balance.IsNegative() {
				return fmt.Errorf("portfolio %s: balance must not be negative", p.ID)
			}
			if err := p.Rules.validate(); err != nil {
				return fmt.Errorf("portfolio %s rules: %w", p.ID, err)
			}
			for k, s := range p.Strategies {
				if err := unique("strategy", s.ID); err != nil {
					return fmt.Errorf("portfolio %s strategies[%d]: %w", p.ID, k, err)
				}
				if s.Balance.IsNegative() {
					return fmt.Errorf("strategy %s: balance must not be negative", s.ID)
				}
			}
		}
	}

	for i, o := range c.Orders {
		if err := o.validate(ids); err != nil {
			return fmt.Errorf("orders[%d]: %w", i, err)
		}
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" {
			return fmt.Errorf("journal.trades_file required for csv type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none' or 'csv'")
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format must be 'console' or 'json'")
	}
	return nil
}

// validate checks an order's shape. Whether the trade is allowed is for
// the organization to decide at replay.
func (o OrderConfig) validate(ids map[string]struct{}) error {
	if _, ok := ids["strategy:"+o.Strategy]; !ok {
		return fmt.Errorf("unknown strategy %q", o.Strategy)
	}
	if o.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	switch {
	case o.Direction != "" && o.Action != "":
		return fmt.Errorf("set direction or action, not both")
	case o.Direction != "":
		if _, err := trade.ParseDirection(o.Direction); err != nil {
			return err
		}
	case o.Action != "":
		switch strings.ToUpper(strings.TrimSpace(o.Action)) {
		case "BUY", "SELL":
		default:
			return fmt.Errorf("action must be BUY or SELL, got %q", o.Action)
		}
	default:
		return fmt.Errorf("direction or action is required")
	}
	if o.OrderType != "" {
		if _, err := trade.ParseOrderType(o.OrderType); err != nil {
			return err
		}
	}
	if !o.Quantity.IsPositive() {
		return fmt.Errorf("quantity must be positive")
	}
	if !o.Price.IsPositive() {
		return fmt.Errorf("price must be positive")
	}
	return nil
}
