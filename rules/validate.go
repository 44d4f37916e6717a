package rules

import (
	"fmt"

	"github.com/rustyeddy/tradeorg/trade"
	"github.com/shopspring/decimal"
)

// Violation codes carried by a denied Decision.
const (
	CodeOrderType     = "ORDER_TYPE_NOT_PERMITTED"
	CodeDirection     = "DIRECTION_NOT_PERMITTED"
	CodeShortSelling  = "SHORT_SELLING_DISABLED"
	CodeNotWhitelised = "SYMBOL_NOT_ALLOWED"
	CodeRestricted    = "SYMBOL_RESTRICTED"
	CodeTradeSize     = "TRADE_TOO_LARGE"
	CodePositionSize  = "POSITION_TOO_LARGE"
)

type Violation struct {
	Code string
	Msg  string
}

type Decision struct {
	Allowed   bool
	Violation *Violation

	// Percentages of the reference value, filled in when the size checks ran.
	TradePct    decimal.Decimal
	PositionPct decimal.Decimal
}

// Reason is the human readable denial reason, or "OK".
func (d Decision) Reason() string {
	if d.Violation == nil {
		return "OK"
	}
	return d.Violation.Msg
}

func (d Decision) Code() string {
	if d.Violation == nil {
		return ""
	}
	return d.Violation.Code
}

func deny(d Decision, code, msg string) Decision {
	d.Allowed = false
	d.Violation = &Violation{Code: code, Msg: msg}
	return d
}

// Opens reports the direction that opens the exposure req adds to a
// position holding current: SellShort when the short side grows, Buy when
// the long side grows, and "" when the fill only reduces the position.
// A SELL larger than the long, or a SELL on a flat position, opens as
// SellShort.
func Opens(req trade.Request, current decimal.Decimal) trade.Direction {
	projected := current.Add(req.SignedQuantity())
	switch {
	case projected.IsNegative() && projected.LessThan(decimal.Min(current, decimal.Zero)):
		return trade.SellShort
	case projected.IsPositive() && projected.GreaterThan(decimal.Max(current, decimal.Zero)):
		return trade.Buy
	}
	return ""
}

// Validate evaluates a proposed trade against r. Checks run in a fixed order
// and stop at the first failure:
//
//	order type, direction, short selling, whitelist, blacklist,
//	single trade size, projected position size.
//
// reference is the value percentages are measured against; when it is not
// positive the size checks are skipped. current is the strategy's signed
// position quantity in the symbol (zero when flat or never traded). The
// direction and short selling checks also apply to the side a fill opens,
// so a SELL past a long is held to the same rules as a SELL_SHORT.
func Validate(r *Rules, req trade.Request, reference, current decimal.Decimal) Decision {
	d := Decision{Allowed: true}

	if !r.OrderTypeAllowed(req.OrderType) {
		return deny(d, CodeOrderType, fmt.Sprintf("order type %s not permitted", req.OrderType))
	}
	if !r.DirectionAllowed(req.Direction) {
		return deny(d, CodeDirection, fmt.Sprintf("direction %s not permitted", req.Direction))
	}
	opens := Opens(req, current)
	if opens != "" && opens != req.Direction && !r.DirectionAllowed(opens) {
		return deny(d, CodeDirection, fmt.Sprintf("%s would open a position as %s, which is not permitted",
			req.Direction, opens))
	}
	if (req.Direction == trade.SellShort || opens == trade.SellShort) && !r.AllowShortSelling {
		return deny(d, CodeShortSelling, "short selling not permitted")
	}
	if r.HasWhitelist() && !r.Whitelisted(req.Symbol) {
		return deny(d, CodeNotWhitelised, fmt.Sprintf("symbol %s not in allowed list", req.Symbol))
	}
	if r.Restricted(req.Symbol) {
		return deny(d, CodeRestricted, fmt.Sprintf("symbol %s is restricted", req.Symbol))
	}

	if !reference.IsPositive() {
		return d
	}

	d.TradePct = pctOf(req.Notional(), reference)
	if d.TradePct.GreaterThan(r.MaxSingleTradePct) {
		return deny(d, CodeTradeSize, fmt.Sprintf("trade size %s%% exceeds max single trade limit %s%%",
			d.TradePct.StringFixed(1), r.MaxSingleTradePct))
	}

	projected := current.Add(req.SignedQuantity())
	d.PositionPct = pctOf(projected.Abs().Mul(req.Price), reference)
	if d.PositionPct.GreaterThan(r.MaxPositionSizePct) {
		return deny(d, CodePositionSize, fmt.Sprintf("resulting position size %s%% exceeds max position limit %s%%",
			d.PositionPct.StringFixed(1), r.MaxPositionSizePct))
	}

	return d
}

func pctOf(value, reference decimal.Decimal) decimal.Decimal {
	return value.Mul(hundred).Div(reference)
}
