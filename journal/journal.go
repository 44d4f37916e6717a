// Package journal provides sinks that receive every filled trade.
package journal

import (
	"errors"
	"sync"

	"github.com/rustyeddy/tradeorg/trade"
)

// ErrClosed is returned when recording into a closed journal.
var ErrClosed = errors.New("journal closed")

// Journal receives filled trades after they have been recorded in the
// ledgers. A journal error never undoes a fill.
type Journal interface {
	RecordTrade(t *trade.Trade) error
	Close() error
}

// Nop discards every trade.
type Nop struct{}

func (Nop) RecordTrade(*trade.Trade) error { return nil }
func (Nop) Close() error                   { return nil }

// Memory keeps trades in process, in the order received.
type Memory struct {
	mu     sync.Mutex
	trades []*trade.Trade
	closed bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) RecordTrade(t *trade.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.trades = append(m.trades, t)
	return nil
}

func (m *Memory) Trades() []*trade.Trade {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*trade.Trade(nil), m.trades...)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
