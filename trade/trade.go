package trade

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Request is a caller's proposed trade, before any rule evaluation.
type Request struct {
	Symbol    string
	Direction Direction
	Quantity  decimal.Decimal
	OrderType OrderType

	// Price is the fill price used by the simulator. It is required for
	// every order type, including MARKET.
	Price decimal.Decimal

	// StopPrice is only meaningful for stop order types; nil means none.
	StopPrice *decimal.Decimal

	// Commission defaults to zero.
	Commission decimal.Decimal
}

var (
	ErrMissingSymbol      = errors.New("symbol is required")
	ErrBadQuantity        = errors.New("quantity must be positive")
	ErrBadPrice           = errors.New("price must be positive")
	ErrMissingStopPrice   = errors.New("stop price is required for stop orders")
	ErrBadStopPrice       = errors.New("stop price must be positive")
	ErrNegativeCommission = errors.New("commission must not be negative")
)

// Validate checks the request's call contract. It does not consult any
// compliance rules.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return ErrMissingSymbol
	}
	if !r.Direction.Valid() {
		return fmt.Errorf("unknown direction %q", r.Direction)
	}
	if !r.OrderType.Valid() {
		return fmt.Errorf("unknown order type %q", r.OrderType)
	}
	if !r.Quantity.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrBadQuantity, r.Quantity)
	}
	if !r.Price.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrBadPrice, r.Price)
	}
	if r.OrderType.RequiresStop() {
		if r.StopPrice == nil {
			return fmt.Errorf("%w: %s", ErrMissingStopPrice, r.OrderType)
		}
		if !r.StopPrice.IsPositive() {
			return fmt.Errorf("%w: got %s", ErrBadStopPrice, *r.StopPrice)
		}
	}
	if r.Commission.IsNegative() {
		return fmt.Errorf("%w: got %s", ErrNegativeCommission, r.Commission)
	}
	return nil
}

// Notional is quantity * price, excluding commission.
func (r Request) Notional() decimal.Decimal {
	return r.Quantity.Mul(r.Price)
}

// SignedQuantity is the quantity with the direction's sign applied.
func (r Request) SignedQuantity() decimal.Decimal {
	if r.Direction.Sign() < 0 {
		return r.Quantity.Neg()
	}
	return r.Quantity
}

// CashDelta is the change to strategy cash when the request fills: buys
// debit notional plus commission, sells credit notional minus commission.
func (r Request) CashDelta() decimal.Decimal {
	n := r.Notional()
	if r.Direction.ConsumesCash() {
		return n.Add(r.Commission).Neg()
	}
	return n.Sub(r.Commission)
}

// Trade is an executed order. Once filled it is shared by reference across
// every ledger in the strategy's chain and must not be modified.
type Trade struct {
	ID         string
	StrategyID string

	Symbol    string
	Direction Direction
	Quantity  decimal.Decimal
	OrderType OrderType
	Price     decimal.Decimal
	StopPrice *decimal.Decimal

	Status         Status
	FillPrice      decimal.Decimal
	FilledQuantity decimal.Decimal
	Commission     decimal.Decimal

	// RealizedPnL is the profit or loss locked in by this fill. Zero for
	// opening fills.
	RealizedPnL decimal.Decimal

	CreatedAt   time.Time
	SubmittedAt time.Time
	FilledAt    time.Time
}

// Fill builds a completely filled trade from an accepted request.
func Fill(id, strategyID string, r Request, realized decimal.Decimal, at time.Time) *Trade {
	var stop *decimal.Decimal
	if r.StopPrice != nil {
		s := *r.StopPrice
		stop = &s
	}
	return &Trade{
		ID:             id,
		StrategyID:     strategyID,
		Symbol:         r.Symbol,
		Direction:      r.Direction,
		Quantity:       r.Quantity,
		OrderType:      r.OrderType,
		Price:          r.Price,
		StopPrice:      stop,
		Status:         Filled,
		FillPrice:      r.Price,
		FilledQuantity: r.Quantity,
		Commission:     r.Commission,
		RealizedPnL:    realized,
		CreatedAt:      at,
		SubmittedAt:    at,
		FilledAt:       at,
	}
}

// Notional is filled quantity * fill price.
func (t *Trade) Notional() decimal.Decimal {
	return t.FilledQuantity.Mul(t.FillPrice)
}

// SignedQuantity is the filled quantity carrying the direction's sign.
func (t *Trade) SignedQuantity() decimal.Decimal {
	if t.Direction.Sign() < 0 {
		return t.FilledQuantity.Neg()
	}
	return t.FilledQuantity
}

func (t *Trade) String() string {
	return fmt.Sprintf("Trade(%s %s %s %s@%s %s)",
		t.ID, t.Symbol, t.Direction, t.FilledQuantity, t.FillPrice, t.Status)
}
