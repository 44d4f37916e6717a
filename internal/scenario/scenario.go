// Package scenario builds an organization from configuration and replays
// configured orders through it.
package scenario

import (
	"context"
	"errors"
	"fmt"

	"github.com/rustyeddy/tradeorg/config"
	"github.com/rustyeddy/tradeorg/ledger"
	"github.com/rustyeddy/tradeorg/org"
	"github.com/rustyeddy/tradeorg/rules"
	"github.com/rustyeddy/tradeorg/trade"
	"go.uber.org/zap"
)

type Scenario struct {
	Registry *org.Registry
	Account  *org.Account

	log *zap.Logger
}

// Build creates the account, funds, portfolios and strategies described by
// cfg, in file order, and applies each level's rule overrides. Allocation
// errors surface here.
func Build(cfg *config.Config, log *zap.Logger, opts ...org.Option) (*Scenario, error) {
	if log == nil {
		log = zap.NewNop()
	}
	reg := org.NewRegistry(append([]org.Option{org.WithLogger(log)}, opts...)...)

	acct, err := reg.NewAccount(cfg.Account.ID, cfg.Account.Name, cfg.Account.Balance, nil)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", cfg.Account.ID, err)
	}

	for _, fc := range cfg.Funds {
		fund, err := acct.CreateFund(fc.ID, fc.Name, fc.Balance)
		if err != nil {
			return nil, fmt.Errorf("fund %s: %w", fc.ID, err)
		}
		if err := applyRules(fund.UpdateRules, fc.Rules); err != nil {
			return nil, fmt.Errorf("fund %s rules: %w", fc.ID, err)
		}

		for _, pc := range fc.Portfolios {
			pf, err := fund.CreatePortfolio(pc.ID, pc.Name, pc.Balance)
			if err != nil {
				return nil, fmt.Errorf("portfolio %s: %w", pc.ID, err)
			}
			if err := applyRules(pf.UpdateRules, pc.Rules); err != nil {
				return nil, fmt.Errorf("portfolio %s rules: %w", pc.ID, err)
			}

			for _, sc := range pc.Strategies {
				if _, err := pf.CreateStrategy(sc.ID, sc.Name, sc.Balance); err != nil {
					return nil, fmt.Errorf("strategy %s: %w", sc.ID, err)
				}
			}
		}
	}

	return &Scenario{Registry: reg, Account: acct, log: log}, nil
}

func applyRules(update func(func(*rules.Rules)) error, rc *config.RulesConfig) error {
	var applyErr error
	if err := update(func(r *rules.Rules) { applyErr = rc.Apply(r) }); err != nil {
		return err
	}
	return applyErr
}

// Result is the outcome of one replayed order. Err is set for rejections.
type Result struct {
	Index  int
	Order  config.OrderConfig
	Trades []*trade.Trade
	Err    error
}

// Run replays orders in sequence. Rejected orders are normal outcomes and
// are reported in their Result; Run itself only fails on cancellation or an
// order naming a strategy that does not exist.
func (s *Scenario) Run(ctx context.Context, orders []config.OrderConfig) ([]Result, error) {
	results := make([]Result, 0, len(orders))

	for i, o := range orders {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		st, err := s.Registry.Strategy(o.Strategy)
		if err != nil {
			return results, fmt.Errorf("orders[%d]: %w", i, err)
		}

		res := Result{Index: i, Order: o}
		res.Trades, res.Err = Place(ctx, st, o)
		if res.Err != nil && errors.Is(res.Err, context.Canceled) {
			return results, res.Err
		}
		results = append(results, res)
	}

	s.log.Info("scenario replayed", zap.Int("orders", len(orders)))
	return results, nil
}

// Place sends one configured order: a directional trade when Direction is
// set, otherwise a routed BUY/SELL action.
func Place(ctx context.Context, st *org.Strategy, o config.OrderConfig) ([]*trade.Trade, error) {
	if o.Direction != "" {
		req, err := ToRequest(o)
		if err != nil {
			return nil, err
		}
		t, err := st.PlaceTrade(ctx, req)
		if err != nil {
			return nil, err
		}
		return []*trade.Trade{t}, nil
	}

	or, err := ToOrder(o)
	if err != nil {
		return nil, err
	}
	return st.SubmitOrder(ctx, or)
}

func orderType(s string) (trade.OrderType, error) {
	if s == "" {
		return trade.Market, nil
	}
	return trade.ParseOrderType(s)
}

func ToRequest(o config.OrderConfig) (trade.Request, error) {
	dir, err := trade.ParseDirection(o.Direction)
	if err != nil {
		return trade.Request{}, &org.ContractError{Op: "parse order", Err: err}
	}
	ot, err := orderType(o.OrderType)
	if err != nil {
		return trade.Request{}, &org.ContractError{Op: "parse order", Err: err}
	}
	return trade.Request{
		Symbol:     o.Symbol,
		Direction:  dir,
		Quantity:   o.Quantity,
		OrderType:  ot,
		Price:      o.Price,
		StopPrice:  o.StopPrice,
		Commission: o.Commission,
	}, nil
}

func ToOrder(o config.OrderConfig) (org.OrderRequest, error) {
	a, err := org.ParseAction(o.Action)
	if err != nil {
		return org.OrderRequest{}, &org.ContractError{Op: "parse order", Err: err}
	}
	ot, err := orderType(o.OrderType)
	if err != nil {
		return org.OrderRequest{}, &org.ContractError{Op: "parse order", Err: err}
	}
	return org.OrderRequest{
		Symbol:     o.Symbol,
		Action:     a,
		Quantity:   o.Quantity,
		OrderType:  ot,
		Price:      o.Price,
		StopPrice:  o.StopPrice,
		Commission: o.Commission,
	}, nil
}

// Summary counts replay outcomes.
type Summary struct {
	Orders   int
	Filled   int // trades, so a routed order may count twice
	Rejected int
	ByKind   map[string]int
}

func Summarize(results []Result) Summary {
	s := Summary{Orders: len(results), ByKind: map[string]int{}}
	for _, r := range results {
		if r.Err == nil {
			s.Filled += len(r.Trades)
			continue
		}
		s.Rejected++
		s.ByKind[org.ErrorKind(r.Err)]++
	}
	return s
}

// NodeLedger pairs a node with its ledger.
type NodeLedger struct {
	Kind   org.Kind
	ID     string
	Name   string
	Depth  int
	Ledger *ledger.Index
}

// Ledgers walks the hierarchy depth first from the account.
func (s *Scenario) Ledgers() []NodeLedger {
	out := []NodeLedger{{org.KindAccount, s.Account.ID(), s.Account.Name(), 0, s.Account.Ledger()}}
	for _, f := range s.Account.Funds() {
		out = append(out, NodeLedger{org.KindFund, f.ID(), f.Name(), 1, f.Ledger()})
		for _, p := range f.Portfolios() {
			out = append(out, NodeLedger{org.KindPortfolio, p.ID(), p.Name(), 2, p.Ledger()})
			for _, st := range p.Strategies() {
				out = append(out, NodeLedger{org.KindStrategy, st.ID(), st.Name(), 3, st.Ledger()})
			}
		}
	}
	return out
}

// Strategies lists every linked strategy depth first.
func (s *Scenario) Strategies() []*org.Strategy {
	var out []*org.Strategy
	for _, f := range s.Account.Funds() {
		for _, p := range f.Portfolios() {
			out = append(out, p.Strategies()...)
		}
	}
	return out
}
