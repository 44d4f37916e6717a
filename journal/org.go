package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tradeorg/trade"
)

// FormatTradeOrg renders a trade as an Org-mode entry. Facts go in the
// PROPERTIES drawer; Thesis/Execution/Review are left for the operator.
func FormatTradeOrg(t *trade.Trade) string {
	heading := fmt.Sprintf("** Trade: %s %s (%s)", t.Direction, t.Symbol, shortID(t.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":TRADE_ID: %s\n", t.ID)
	fmt.Fprintf(&b, ":ID: %s\n", t.ID)
	fmt.Fprintf(&b, ":STRATEGY: %s\n", t.StrategyID)
	fmt.Fprintf(&b, ":SYMBOL: %s\n", t.Symbol)
	fmt.Fprintf(&b, ":DIRECTION: %s\n", t.Direction)
	fmt.Fprintf(&b, ":ORDER_TYPE: %s\n", t.OrderType)
	fmt.Fprintf(&b, ":QUANTITY: %s\n", t.FilledQuantity)
	fmt.Fprintf(&b, ":FILL_PRICE: %s\n", t.FillPrice.StringFixed(4))
	if t.StopPrice != nil {
		fmt.Fprintf(&b, ":STOP_PRICE: %s\n", t.StopPrice.StringFixed(4))
	}
	fmt.Fprintf(&b, ":COMMISSION: %s\n", t.Commission.StringFixed(2))
	fmt.Fprintf(&b, ":REALIZED_PNL: %s\n", t.RealizedPnL.StringFixed(2))
	fmt.Fprintf(&b, ":FILLED_AT: %s\n", t.FilledAt.UTC().Format(time.RFC3339))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []*trade.Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
