// Package ledger implements the per-node trade index. Every node in an
// organization owns one; a filled trade is recorded in the originating
// strategy's index and then in each ancestor's, always as the same
// *trade.Trade.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/tradeorg/trade"
	"github.com/shopspring/decimal"
)

// DateLayout is the key format of the by-date index.
const DateLayout = "2006-01-02"

var (
	// ErrInvalidTrade is returned for a nil trade or one without an ID.
	ErrInvalidTrade = errors.New("invalid trade")

	// ErrDuplicateTrade is returned when a trade ID is already recorded.
	// The index is append-only.
	ErrDuplicateTrade = errors.New("duplicate trade: ledger is append-only")
)

// Entry is a recorded trade and the time this index recorded it.
type Entry struct {
	Trade      *trade.Trade
	RecordedAt time.Time
}

// Index is an append-only, multi-indexed trade store. All secondary indices
// and aggregates are maintained in Record, so every query is a pure read.
type Index struct {
	mu sync.RWMutex

	ownerName string
	ownerType string
	createdAt time.Time

	entries     []Entry
	byID        map[string]*trade.Trade
	bySymbol    map[string][]*trade.Trade
	byStatus    map[trade.Status][]*trade.Trade
	byDirection map[trade.Direction][]*trade.Trade
	byDate      map[string][]*trade.Trade

	volume         decimal.Decimal
	volumeBySymbol map[string]decimal.Decimal
	commission     decimal.Decimal
}

func New(ownerName, ownerType string, createdAt time.Time) *Index {
	return &Index{
		ownerName:      ownerName,
		ownerType:      ownerType,
		createdAt:      createdAt,
		byID:           make(map[string]*trade.Trade),
		bySymbol:       make(map[string][]*trade.Trade),
		byStatus:       make(map[trade.Status][]*trade.Trade),
		byDirection:    make(map[trade.Direction][]*trade.Trade),
		byDate:         make(map[string][]*trade.Trade),
		volumeBySymbol: make(map[string]decimal.Decimal),
	}
}

// Record appends t and updates every index. The entry's recorded time is
// the trade's fill time.
func (ix *Index) Record(t *trade.Trade) error {
	if t == nil || t.ID == "" {
		return ErrInvalidTrade
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, exists := ix.byID[t.ID]; exists {
		return fmt.Errorf("record %s: %w", t.ID, ErrDuplicateTrade)
	}

	at := stamp(t)
	ix.entries = append(ix.entries, Entry{Trade: t, RecordedAt: at})
	ix.byID[t.ID] = t
	ix.bySymbol[t.Symbol] = append(ix.bySymbol[t.Symbol], t)
	ix.byStatus[t.Status] = append(ix.byStatus[t.Status], t)
	ix.byDirection[t.Direction] = append(ix.byDirection[t.Direction], t)

	day := DateKey(at)
	ix.byDate[day] = append(ix.byDate[day], t)

	if t.Status == trade.Filled {
		n := t.Notional()
		ix.volume = ix.volume.Add(n)
		ix.volumeBySymbol[t.Symbol] = ix.volumeBySymbol[t.Symbol].Add(n)
		ix.commission = ix.commission.Add(t.Commission)
	}
	return nil
}

// DateKey normalizes a timestamp to its UTC calendar date.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

func stamp(t *trade.Trade) time.Time {
	if !t.FilledAt.IsZero() {
		return t.FilledAt
	}
	return t.CreatedAt
}

func (ix *Index) OwnerName() string    { return ix.ownerName }
func (ix *Index) OwnerType() string    { return ix.ownerType }
func (ix *Index) CreatedAt() time.Time { return ix.createdAt }

func (ix *Index) String() string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return fmt.Sprintf("Ledger(%s: %s, trades=%d, symbols=%d)",
		ix.ownerType, ix.ownerName, len(ix.entries), len(ix.bySymbol))
}
