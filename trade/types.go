package trade

import (
	"fmt"
	"strings"
)

// Direction is the side of a trade relative to the position it touches.
type Direction string

const (
	Buy        Direction = "BUY"
	Sell       Direction = "SELL"
	SellShort  Direction = "SELL_SHORT"
	BuyToCover Direction = "BUY_TO_COVER"
)

// Directions returns every recognized direction in a stable order.
func Directions() []Direction {
	return []Direction{Buy, Sell, SellShort, BuyToCover}
}

func (d Direction) Valid() bool {
	switch d {
	case Buy, Sell, SellShort, BuyToCover:
		return true
	}
	return false
}

// Sign is +1 for directions that add units (BUY, BUY_TO_COVER) and -1 for
// directions that remove them (SELL, SELL_SHORT). Unknown directions are 0.
func (d Direction) Sign() int {
	switch d {
	case Buy, BuyToCover:
		return 1
	case Sell, SellShort:
		return -1
	}
	return 0
}

// ConsumesCash reports whether the direction pays cash out at fill.
func (d Direction) ConsumesCash() bool {
	return d.Sign() > 0
}

func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown direction %q", s)
	}
	return d, nil
}

// OrderType is the execution style requested for a trade.
type OrderType string

const (
	Market       OrderType = "MARKET"
	Limit        OrderType = "LIMIT"
	StopLoss     OrderType = "STOP_LOSS"
	StopLimit    OrderType = "STOP_LIMIT"
	TrailingStop OrderType = "TRAILING_STOP"
)

// OrderTypes returns every recognized order type in a stable order.
func OrderTypes() []OrderType {
	return []OrderType{Market, Limit, StopLoss, StopLimit, TrailingStop}
}

func (o OrderType) Valid() bool {
	switch o {
	case Market, Limit, StopLoss, StopLimit, TrailingStop:
		return true
	}
	return false
}

// RequiresStop reports whether the order type needs a stop trigger price.
func (o OrderType) RequiresStop() bool {
	switch o {
	case StopLoss, StopLimit, TrailingStop:
		return true
	}
	return false
}

func ParseOrderType(s string) (OrderType, error) {
	o := OrderType(strings.ToUpper(strings.TrimSpace(s)))
	if !o.Valid() {
		return "", fmt.Errorf("unknown order type %q", s)
	}
	return o, nil
}

// Status tracks an order through its lifecycle. The simulator moves every
// accepted order straight to Filled.
type Status string

const (
	Pending         Status = "PENDING"
	Submitted       Status = "SUBMITTED"
	Filled          Status = "FILLED"
	PartiallyFilled Status = "PARTIALLY_FILLED"
	Cancelled       Status = "CANCELLED"
	Rejected        Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case Pending, Submitted, Filled, PartiallyFilled, Cancelled, Rejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	switch s {
	case Filled, Cancelled, Rejected:
		return true
	}
	return false
}
