package ledger

import (
	"sort"
	"time"

	"github.com/rustyeddy/tradeorg/trade"
	"github.com/shopspring/decimal"
)

// Every query returns a fresh slice or map; an absent key yields an empty
// result, never an error.

// Trades returns every trade in the order it was recorded.
func (ix *Index) Trades() []*trade.Trade {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]*trade.Trade, len(ix.entries))
	for i, e := range ix.entries {
		out[i] = e.Trade
	}
	return out
}

func (ix *Index) Entries() []Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]Entry(nil), ix.entries...)
}

// Get returns a single trade by ID.
func (ix *Index) Get(tradeID string) (*trade.Trade, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	t, ok := ix.byID[tradeID]
	return t, ok
}

func (ix *Index) Has(tradeID string) bool {
	_, ok := ix.Get(tradeID)
	return ok
}

func (ix *Index) BySymbol(symbol string) []*trade.Trade {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return clone(ix.bySymbol[symbol])
}

func (ix *Index) ByStatus(status trade.Status) []*trade.Trade {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return clone(ix.byStatus[status])
}

func (ix *Index) ByDirection(dir trade.Direction) []*trade.Trade {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return clone(ix.byDirection[dir])
}

// ByDate returns the trades recorded on day's UTC calendar date.
func (ix *Index) ByDate(day time.Time) []*trade.Trade {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return clone(ix.byDate[DateKey(day)])
}

// ByDateRange returns trades recorded within [start, end], inclusive,
// day by day. Only the by-date buckets that overlap the range are read;
// the first and last day are trimmed to the exact bounds.
func (ix *Index) ByDateRange(start, end time.Time) []*trade.Trade {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := []*trade.Trade{}
	if end.Before(start) {
		return out
	}

	first, last := DateKey(start), DateKey(end)
	days := make([]string, 0, len(ix.byDate))
	for day := range ix.byDate {
		if day >= first && day <= last {
			days = append(days, day)
		}
	}
	sort.Strings(days)

	for _, day := range days {
		edge := day == first || day == last
		for _, t := range ix.byDate[day] {
			if edge {
				at := stamp(t)
				if at.Before(start) || at.After(end) {
					continue
				}
			}
			out = append(out, t)
		}
	}
	return out
}

func (ix *Index) Filled() []*trade.Trade {
	return ix.ByStatus(trade.Filled)
}

// Pending returns trades that are PENDING or SUBMITTED.
func (ix *Index) Pending() []*trade.Trade {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := clone(ix.byStatus[trade.Pending])
	return append(out, ix.byStatus[trade.Submitted]...)
}

func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

func (ix *Index) FilledCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.byStatus[trade.Filled])
}

// TotalVolume is the sum of filled quantity * fill price over filled trades.
func (ix *Index) TotalVolume() decimal.Decimal {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.volume
}

// VolumeBySymbol is TotalVolume restricted to one symbol.
func (ix *Index) VolumeBySymbol(symbol string) decimal.Decimal {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.volumeBySymbol[symbol]
}

func (ix *Index) TotalCommission() decimal.Decimal {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.commission
}

// Directions counts trades per direction.
type Directions struct {
	Buy        int `json:"BUY"`
	Sell       int `json:"SELL"`
	SellShort  int `json:"SELL_SHORT"`
	BuyToCover int `json:"BUY_TO_COVER"`
}

// TotalLong counts BUY and SELL trades.
func (d Directions) TotalLong() int { return d.Buy + d.Sell }

// TotalShort counts SELL_SHORT and BUY_TO_COVER trades.
func (d Directions) TotalShort() int { return d.SellShort + d.BuyToCover }

func (d Directions) Map() map[string]int {
	return map[string]int{
		string(trade.Buy):        d.Buy,
		string(trade.Sell):       d.Sell,
		string(trade.SellShort):  d.SellShort,
		string(trade.BuyToCover): d.BuyToCover,
	}
}

func (ix *Index) DirectionCounts() Directions {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.directionCountsLocked()
}

func (ix *Index) directionCountsLocked() Directions {
	return Directions{
		Buy:        len(ix.byDirection[trade.Buy]),
		Sell:       len(ix.byDirection[trade.Sell]),
		SellShort:  len(ix.byDirection[trade.SellShort]),
		BuyToCover: len(ix.byDirection[trade.BuyToCover]),
	}
}

// Symbols returns the distinct symbols traded, sorted.
func (ix *Index) Symbols() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.symbolsLocked()
}

func (ix *Index) symbolsLocked() []string {
	out := make([]string, 0, len(ix.bySymbol))
	for s := range ix.bySymbol {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ActivityByDate counts trades per UTC calendar date.
func (ix *Index) ActivityByDate() map[string]int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.activityLocked()
}

func (ix *Index) activityLocked() map[string]int {
	out := make(map[string]int, len(ix.byDate))
	for day, ts := range ix.byDate {
		out[day] = len(ts)
	}
	return out
}

func clone(in []*trade.Trade) []*trade.Trade {
	return append([]*trade.Trade{}, in...)
}
