// Package org models a trading organization as a hierarchy of accounts,
// funds, portfolios and strategies. Nodes live in a Registry arena; parents
// hold child keys and children hold an optional parent key. The Registry
// owns capital allocation and serializes trade execution across the whole
// hierarchy.
package org

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/tradeorg/id"
	"github.com/rustyeddy/tradeorg/journal"
	"github.com/rustyeddy/tradeorg/ledger"
	"github.com/rustyeddy/tradeorg/position"
	"github.com/rustyeddy/tradeorg/rules"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	errEmptyID       = errors.New("id is required")
	errEmptyName     = errors.New("name is required")
	errNegativeFunds = errors.New("balance must not be negative")
)

type Registry struct {
	mu    sync.Mutex
	nodes map[Key]*node

	log     *zap.Logger
	metrics *Metrics
	now     func() time.Time
	newID   func() string
	journal journal.Journal
	events  *EventLog
}

type Option func(*Registry)

func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Registry) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithClock sets the time source for node creation and fills.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDs sets the trade ID source.
func WithIDs(next func() string) Option {
	return func(r *Registry) {
		if next != nil {
			r.newID = next
		}
	}
}

// WithJournal sends every filled trade to j once it is in the ledgers.
func WithJournal(j journal.Journal) Option {
	return func(r *Registry) {
		if j != nil {
			r.journal = j
		}
	}
}

// WithEventLog records every fill and rejection in l.
func WithEventLog(l *EventLog) Option {
	return func(r *Registry) { r.events = l }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		nodes:   make(map[Key]*node),
		log:     zap.NewNop(),
		now:     time.Now,
		journal: journal.Nop{},
	}
	for _, o := range opts {
		o(r)
	}
	if r.metrics == nil {
		r.metrics = NewMetrics(nil)
	}
	if r.newID == nil {
		r.newID = id.NewGenerator(r.now).New
	}
	return r
}

// NewAccount creates a root account holding balance.
func (r *Registry) NewAccount(accountID, name string, balance decimal.Decimal, provider any) (*Account, error) {
	n, err := r.create(nil, KindAccount, accountID, name, balance, provider)
	if err != nil {
		return nil, err
	}
	return &Account{handle{r, n.key}}, nil
}

// NewFund creates a fund with no parent account.
func (r *Registry) NewFund(fundID, name string, balance decimal.Decimal, provider any) (*Fund, error) {
	n, err := r.create(nil, KindFund, fundID, name, balance, provider)
	if err != nil {
		return nil, err
	}
	return &Fund{ruled{handle{r, n.key}}}, nil
}

// NewPortfolio creates a portfolio with no parent fund. Its strategies are
// checked against its own rules only.
func (r *Registry) NewPortfolio(portfolioID, name string, balance decimal.Decimal, provider any) (*Portfolio, error) {
	n, err := r.create(nil, KindPortfolio, portfolioID, name, balance, provider)
	if err != nil {
		return nil, err
	}
	return &Portfolio{ruled{handle{r, n.key}}}, nil
}

// NewStrategy creates a strategy with no parent portfolio. It trades
// without any rule checks.
func (r *Registry) NewStrategy(strategyID, name string, balance decimal.Decimal, provider any) (*Strategy, error) {
	n, err := r.create(nil, KindStrategy, strategyID, name, balance, provider)
	if err != nil {
		return nil, err
	}
	return &Strategy{handle{r, n.key}}, nil
}

func (r *Registry) Account(accountID string) (*Account, error) {
	h, err := r.lookup(KindAccount, accountID)
	if err != nil {
		return nil, err
	}
	return &Account{h}, nil
}

func (r *Registry) Fund(fundID string) (*Fund, error) {
	h, err := r.lookup(KindFund, fundID)
	if err != nil {
		return nil, err
	}
	return &Fund{ruled{h}}, nil
}

func (r *Registry) Portfolio(portfolioID string) (*Portfolio, error) {
	h, err := r.lookup(KindPortfolio, portfolioID)
	if err != nil {
		return nil, err
	}
	return &Portfolio{ruled{h}}, nil
}

func (r *Registry) Strategy(strategyID string) (*Strategy, error) {
	h, err := r.lookup(KindStrategy, strategyID)
	if err != nil {
		return nil, err
	}
	return &Strategy{h}, nil
}

func (r *Registry) lookup(kind Kind, nodeID string) (handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, err := r.getLocked(Key{kind, nodeID})
	if err != nil {
		return handle{}, err
	}
	return handle{r, n.key}, nil
}

func (r *Registry) getLocked(k Key) (*node, error) {
	n, ok := r.nodes[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, k)
	}
	return n, nil
}

// parentLocked returns n's parent, or nil unless n is linked.
func (r *Registry) parentLocked(n *node) *node {
	if n.parent.Link != Linked {
		return nil
	}
	return r.nodes[n.parent.Key]
}

// committedLocked is the capital n has granted to its current children.
func (r *Registry) committedLocked(n *node) decimal.Decimal {
	sum := decimal.Zero
	for _, k := range n.children {
		if c, ok := r.nodes[k]; ok {
			sum = sum.Add(c.balance)
		}
	}
	return sum
}

func (r *Registry) unallocatedLocked(n *node) decimal.Decimal {
	return n.balance.Sub(r.committedLocked(n))
}

// create validates and inserts a node. A non-nil parent must have room
// for balance in its unallocated capital.
func (r *Registry) create(parent *Key, kind Kind, nodeID, name string, balance decimal.Decimal, provider any) (*node, error) {
	op := "create " + string(kind)
	switch {
	case nodeID == "":
		return nil, contractErr(op, errEmptyID)
	case name == "":
		return nil, contractErr(op, errEmptyName)
	case balance.IsNegative():
		return nil, contractErr(op, errNegativeFunds)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := Key{kind, nodeID}
	if _, exists := r.nodes[key]; exists {
		return nil, contractErr(op, fmt.Errorf("%w: %s", ErrExists, key))
	}

	n := &node{
		key:       key,
		name:      name,
		balance:   balance,
		createdAt: r.now(),
		provider:  provider,
	}

	if parent != nil {
		p, err := r.getLocked(*parent)
		if err != nil {
			return nil, err
		}
		if avail := r.unallocatedLocked(p); balance.GreaterThan(avail) {
			err := &InsufficientFundsError{NodeID: p.key.ID, Required: balance, Available: avail}
			r.log.Warn("allocation rejected",
				zap.Stringer("parent", p.key),
				zap.Stringer("child", key),
				zap.Error(err))
			return nil, err
		}
		n.parent = Parent{Link: Linked, Key: p.key}
		n.provider = p.provider
		p.children = append(p.children, key)
	}

	n.ledger = ledger.New(name, string(kind), n.createdAt)
	switch kind {
	case KindFund, KindPortfolio:
		n.rules = rules.New(name + " " + string(kind) + " Rules")
	case KindStrategy:
		n.cash = balance
		n.positions = make(map[string]*position.Position)
	}

	r.nodes[key] = n
	r.metrics.Allocations.WithLabelValues(string(kind)).Inc()
	r.log.Debug("node created",
		zap.Stringer("node", key),
		zap.String("name", name),
		zap.Stringer("balance", balance),
		zap.Stringer("link", n.parent.Link))
	return n, nil
}

// lineageLocked returns n followed by each linked ancestor, bottom-up.
func (r *Registry) lineageLocked(n *node) []*node {
	out := []*node{n}
	for p := r.parentLocked(n); p != nil; p = r.parentLocked(p) {
		out = append(out, p)
	}
	return out
}

// chainLocked builds the rule chain for trades placed by n: one stage per
// ancestor that carries rules, nearest first. Each stage measures sizes
// against its own node's balance.
func chainLocked(lineage []*node) rules.Chain {
	var c rules.Chain
	for _, a := range lineage[1:] {
		if a.rules == nil {
			continue
		}
		level := rules.LevelFund
		if a.key.Kind == KindPortfolio {
			level = rules.LevelPortfolio
		}
		c = append(c, rules.Stage{
			Level:     level,
			NodeID:    a.key.ID,
			Rules:     a.rules,
			Reference: a.balance,
		})
	}
	return c
}
