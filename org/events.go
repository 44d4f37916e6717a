package org

import (
	"sync"
	"time"

	"github.com/rustyeddy/tradeorg/trade"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventFilled   EventType = "TRADE_FILLED"
	EventRejected EventType = "TRADE_REJECTED"
)

// Event is one entry in the execution audit trail. TradeID is set for
// fills; Kind and Reason for rejections.
type Event struct {
	At         time.Time
	Type       EventType
	StrategyID string
	Symbol     string
	Direction  trade.Direction
	Quantity   decimal.Decimal
	Price      decimal.Decimal

	TradeID string
	Kind    string
	Reason  string
}

// EventLog is an in-memory audit trail of fills and rejections, in the
// order they happened. Unlike the ledgers it also keeps rejected trades.
type EventLog struct {
	mu     sync.Mutex
	events []Event
}

func NewEventLog() *EventLog {
	return &EventLog{}
}

func (l *EventLog) add(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

// Events returns a copy of the trail, limited to the given types when any
// are named.
func (l *EventLog) Events(types ...EventType) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := []Event{}
	for _, e := range l.events {
		if len(types) == 0 || hasType(types, e.Type) {
			out = append(out, e)
		}
	}
	return out
}

func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func (l *EventLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

func hasType(types []EventType, t EventType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}
