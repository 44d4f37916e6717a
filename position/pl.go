package position

import "github.com/shopspring/decimal"

// Effect is the outcome of booking one fill against a position.
type Effect struct {
	Quantity      decimal.Decimal // signed quantity after the fill
	AvgEntryPrice decimal.Decimal // cost basis after the fill
	Realized      decimal.Decimal // P&L locked in by the closing part

	Opened decimal.Decimal // units that opened or added exposure
	Closed decimal.Decimal // units that reduced existing exposure

	// Flipped is set when a single fill closed one side and opened the
	// other.
	Flipped bool
}

// Project computes the average-cost effect of a signed fill of size fill
// at price against a position holding qty at avg. It is pure.
//
// A fill on the same side as the position (or on a flat position) opens:
// the average becomes the quantity weighted mean of old and new cost.
// A fill on the other side closes up to |qty| units, realizing
// closed * (price - avg) * side, and leaves the average unchanged. Any
// excess beyond the open quantity opens the opposite side at price.
func Project(qty, avg, fill, price decimal.Decimal) Effect {
	if fill.IsZero() {
		return Effect{Quantity: qty, AvgEntryPrice: avg}
	}

	size := fill.Abs()

	if qty.IsZero() || qty.Sign() == fill.Sign() {
		held := qty.Abs()
		cost := held.Mul(avg).Add(size.Mul(price))
		return Effect{
			Quantity:      qty.Add(fill),
			AvgEntryPrice: cost.Div(held.Add(size)),
			Opened:        size,
		}
	}

	closed := decimal.Min(size, qty.Abs())
	side := decimal.NewFromInt(int64(qty.Sign()))
	e := Effect{
		Quantity:      qty.Add(fill),
		AvgEntryPrice: avg,
		Realized:      closed.Mul(price.Sub(avg)).Mul(side),
		Closed:        closed,
	}

	if excess := size.Sub(closed); excess.IsPositive() {
		e.AvgEntryPrice = price
		e.Opened = excess
		e.Flipped = true
	} else if e.Quantity.IsZero() {
		e.AvgEntryPrice = decimal.Zero
	}
	return e
}
