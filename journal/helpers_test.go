package journal

import (
	"time"

	"github.com/rustyeddy/tradeorg/trade"
	"github.com/shopspring/decimal"
)

func sample(id, sym string, dir trade.Direction, qty, price, realized string) *trade.Trade {
	r := trade.Request{
		Symbol:     sym,
		Direction:  dir,
		Quantity:   decimal.RequireFromString(qty),
		OrderType:  trade.Market,
		Price:      decimal.RequireFromString(price),
		Commission: decimal.RequireFromString("1.5"),
	}
	at := time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)
	return trade.Fill(id, "S-momentum", r, decimal.RequireFromString(realized), at)
}
