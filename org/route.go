package org

import (
	"context"
	"fmt"
	"strings"

	"github.com/rustyeddy/tradeorg/trade"
	"github.com/shopspring/decimal"
)

// Action is a position-agnostic order side. SubmitOrder resolves it into
// directional trades against the strategy's current position.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

func ParseAction(s string) (Action, error) {
	a := Action(strings.ToUpper(strings.TrimSpace(s)))
	if a != ActionBuy && a != ActionSell {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

type OrderRequest struct {
	Symbol     string
	Action     Action
	Quantity   decimal.Decimal
	OrderType  trade.OrderType
	Price      decimal.Decimal
	StopPrice  *decimal.Decimal
	Commission decimal.Decimal
}

// Route splits o into directional requests given the signed quantity
// currently held:
//
//	BUY  while short: BUY_TO_COVER up to the short, BUY the rest
//	BUY  otherwise:   BUY
//	SELL while long:  SELL up to the long, SELL_SHORT the rest
//	SELL otherwise:   SELL_SHORT
//
// Commission is charged on the first request only.
func Route(held decimal.Decimal, o OrderRequest) ([]trade.Request, error) {
	if o.Action != ActionBuy && o.Action != ActionSell {
		return nil, fmt.Errorf("unknown action %q", o.Action)
	}
	if !o.Quantity.IsPositive() {
		return nil, trade.ErrBadQuantity
	}

	base := trade.Request{
		Symbol:    o.Symbol,
		OrderType: o.OrderType,
		Price:     o.Price,
		StopPrice: o.StopPrice,
	}
	mk := func(dir trade.Direction, qty decimal.Decimal) trade.Request {
		r := base
		r.Direction = dir
		r.Quantity = qty
		return r
	}

	var out []trade.Request
	switch {
	case o.Action == ActionBuy && held.IsNegative():
		cover := decimal.Min(o.Quantity, held.Abs())
		out = append(out, mk(trade.BuyToCover, cover))
		if rest := o.Quantity.Sub(cover); rest.IsPositive() {
			out = append(out, mk(trade.Buy, rest))
		}
	case o.Action == ActionBuy:
		out = append(out, mk(trade.Buy, o.Quantity))
	case held.IsPositive():
		closing := decimal.Min(o.Quantity, held)
		out = append(out, mk(trade.Sell, closing))
		if rest := o.Quantity.Sub(closing); rest.IsPositive() {
			out = append(out, mk(trade.SellShort, rest))
		}
	default:
		out = append(out, mk(trade.SellShort, o.Quantity))
	}

	out[0].Commission = o.Commission
	return out, nil
}

// SubmitOrder routes o against the current position and fills every
// resulting trade, or none of them.
func (s *Strategy) SubmitOrder(ctx context.Context, o OrderRequest) ([]*trade.Trade, error) {
	const op = "submit order"
	return s.r.execute(ctx, s.key, op, func(n *node) ([]trade.Request, error) {
		held := decimal.Zero
		if p, ok := n.positions[o.Symbol]; ok {
			held = p.Quantity
		}
		reqs, err := Route(held, o)
		if err != nil {
			return nil, contractErr(op, err)
		}
		return reqs, nil
	})
}
