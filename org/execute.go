package org

import (
	"context"
	"fmt"

	"github.com/rustyeddy/tradeorg/ledger"
	"github.com/rustyeddy/tradeorg/position"
	"github.com/rustyeddy/tradeorg/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// leg is an accepted request waiting to be filled.
type leg struct {
	req      trade.Request
	id       string
	realized decimal.Decimal
}

// exposure is a position's quantity and cost basis while legs are planned.
type exposure struct {
	qty, avg decimal.Decimal
}

// execute fills the requests produced by build as one unit. Every request
// passes the contract check, the rule chain and the cash check against the
// state the earlier requests would leave before anything is mutated; the
// first failure rejects them all.
//
// The registry lock is held from validation through the ledger cascade so
// trades in sibling strategies cannot interleave on shared ancestors.
func (r *Registry) execute(ctx context.Context, key Key, op string, build func(s *node) ([]trade.Request, error)) ([]*trade.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.getLocked(key)
	if err != nil {
		return nil, err
	}

	reqs, err := build(s)
	if err != nil {
		return nil, r.reject(key, trade.Request{}, err)
	}
	for _, req := range reqs {
		if err := req.Validate(); err != nil {
			return nil, r.reject(key, req, contractErr(op, err))
		}
	}

	lineage := r.lineageLocked(s)
	chain := chainLocked(lineage)

	cash := s.cash
	held := make(map[string]exposure)
	issued := make(map[string]struct{})
	legs := make([]leg, 0, len(reqs))

	for _, req := range reqs {
		cur, ok := held[req.Symbol]
		if !ok {
			if p, found := s.positions[req.Symbol]; found {
				cur = exposure{p.Quantity, p.AvgEntryPrice}
			}
		}

		if stage, d := chain.Validate(req, cur.qty); !d.Allowed {
			return nil, r.reject(key, req, &ComplianceError{
				Level:  stage.Level,
				NodeID: stage.NodeID,
				Code:   d.Code(),
				Reason: d.Reason(),
			})
		}

		delta := req.CashDelta()
		if cash.Add(delta).IsNegative() {
			return nil, r.reject(key, req, &InsufficientFundsError{
				NodeID:    s.key.ID,
				Required:  delta.Neg(),
				Available: cash,
			})
		}
		cash = cash.Add(delta)

		e := position.Project(cur.qty, cur.avg, req.SignedQuantity(), req.Price)
		held[req.Symbol] = exposure{e.Quantity, e.AvgEntryPrice}

		tradeID := r.newID()
		if _, dup := issued[tradeID]; dup || recordedAnywhere(lineage, tradeID) {
			return nil, r.reject(key, req, fmt.Errorf("%s: trade id %s: %w", op, tradeID, ledger.ErrDuplicateTrade))
		}
		issued[tradeID] = struct{}{}

		legs = append(legs, leg{req: req, id: tradeID, realized: e.Realized})
	}

	return r.commitLocked(s, lineage, legs), nil
}

func recordedAnywhere(lineage []*node, tradeID string) bool {
	for _, n := range lineage {
		if n.ledger.Has(tradeID) {
			return true
		}
	}
	return false
}

// commitLocked applies accepted legs. Nothing in here can fail: every
// check already ran in execute.
func (r *Registry) commitLocked(s *node, lineage []*node, legs []leg) []*trade.Trade {
	now := r.now()
	out := make([]*trade.Trade, 0, len(legs))

	for _, l := range legs {
		s.cash = s.cash.Add(l.req.CashDelta())
		t := trade.Fill(l.id, s.key.ID, l.req, l.realized, now)

		pos, ok := s.positions[t.Symbol]
		if !ok {
			pos = position.New(s.key.ID, t.Symbol)
			s.positions[t.Symbol] = pos
		}
		pos.Apply(t)
		s.trades = append(s.trades, t)

		for _, n := range lineage {
			if err := n.ledger.Record(t); err != nil {
				r.log.DPanic("ledger cascade failed", zap.Stringer("node", n.key), zap.Error(err))
			}
		}

		r.metrics.TradesFilled.WithLabelValues(string(t.Direction)).Inc()
		r.metrics.Volume.Add(t.Notional().InexactFloat64())
		r.metrics.Commission.Add(t.Commission.InexactFloat64())
		r.log.Info("trade filled",
			zap.String("trade_id", t.ID),
			zap.String("strategy", s.key.ID),
			zap.String("symbol", t.Symbol),
			zap.String("direction", string(t.Direction)),
			zap.Stringer("qty", t.FilledQuantity),
			zap.Stringer("price", t.FillPrice),
			zap.Stringer("realized_pnl", t.RealizedPnL),
			zap.Int("ledgers", len(lineage)))

		if r.events != nil {
			r.events.add(Event{
				At:         now,
				Type:       EventFilled,
				StrategyID: s.key.ID,
				Symbol:     t.Symbol,
				Direction:  t.Direction,
				Quantity:   t.FilledQuantity,
				Price:      t.FillPrice,
				TradeID:    t.ID,
			})
		}

		if err := r.journal.RecordTrade(t); err != nil {
			r.log.Error("journal record failed", zap.String("trade_id", t.ID), zap.Error(err))
		}
		out = append(out, t)
	}
	return out
}

func (r *Registry) reject(strategy Key, req trade.Request, err error) error {
	kind := ErrorKind(err)
	r.metrics.TradesRejected.WithLabelValues(kind).Inc()
	r.log.Warn("trade rejected",
		zap.String("strategy", strategy.ID),
		zap.String("symbol", req.Symbol),
		zap.String("direction", string(req.Direction)),
		zap.Stringer("qty", req.Quantity),
		zap.String("kind", kind),
		zap.Error(err))

	if r.events != nil {
		r.events.add(Event{
			At:         r.now(),
			Type:       EventRejected,
			StrategyID: strategy.ID,
			Symbol:     req.Symbol,
			Direction:  req.Direction,
			Quantity:   req.Quantity,
			Price:      req.Price,
			Kind:       kind,
			Reason:     err.Error(),
		})
	}
	return err
}
