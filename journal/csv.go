package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rustyeddy/tradeorg/trade"
)

// Header is the first row of every trades CSV file.
var Header = []string{
	"trade_id", "strategy_id", "symbol", "direction", "order_type",
	"quantity", "price", "stop_price", "fill_price", "filled_quantity",
	"commission", "realized_pnl", "status", "filled_at",
}

type CSVJournal struct {
	mu     sync.Mutex
	w      *csv.Writer
	f      *os.File
	closed bool
}

// NewCSV creates (or truncates) path and writes the header row.
func NewCSV(path string) (*CSVJournal, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, err
	}

	return &CSVJournal{w: w, f: f}, nil
}

func (j *CSVJournal) RecordTrade(t *trade.Trade) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrClosed
	}
	if err := j.w.Write(Row(t)); err != nil {
		return fmt.Errorf("csv journal: %w", err)
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSVJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true

	j.w.Flush()
	if err := j.w.Error(); err != nil {
		j.f.Close()
		return err
	}
	return j.f.Close()
}

// Row renders t in Header order. Decimals keep their exact representation.
func Row(t *trade.Trade) []string {
	stop := ""
	if t.StopPrice != nil {
		stop = t.StopPrice.String()
	}
	return []string{
		t.ID,
		t.StrategyID,
		t.Symbol,
		string(t.Direction),
		string(t.OrderType),
		t.Quantity.String(),
		t.Price.String(),
		stop,
		t.FillPrice.String(),
		t.FilledQuantity.String(),
		t.Commission.String(),
		t.RealizedPnL.String(),
		string(t.Status),
		t.FilledAt.UTC().Format(time.RFC3339),
	}
}
