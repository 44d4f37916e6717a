package org

import (
	"fmt"
	"time"

	"github.com/rustyeddy/tradeorg/ledger"
	"github.com/rustyeddy/tradeorg/rules"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// handle is the shared part of Account, Fund, Portfolio and Strategy. It
// holds only the node key; state lives in the Registry.
type handle struct {
	r   *Registry
	key Key
}

// with runs fn on the node under the registry lock.
func (h handle) with(fn func(n *node) error) error {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	n, err := h.r.getLocked(h.key)
	if err != nil {
		return err
	}
	return fn(n)
}

func (h handle) ID() string { return h.key.ID }
func (h handle) Kind() Kind { return h.key.Kind }
func (h handle) Key() Key   { return h.key }

func (h handle) Name() (name string) {
	_ = h.with(func(n *node) error { name = n.name; return nil })
	return name
}

// Balance is the capital granted to this node.
func (h handle) Balance() (b decimal.Decimal) {
	_ = h.with(func(n *node) error { b = n.balance; return nil })
	return b
}

// Allocated is the capital this node has granted to its children.
func (h handle) Allocated() (a decimal.Decimal) {
	_ = h.with(func(n *node) error { a = h.r.committedLocked(n); return nil })
	return a
}

// Unallocated is Balance minus Allocated.
func (h handle) Unallocated() (u decimal.Decimal) {
	_ = h.with(func(n *node) error { u = h.r.unallocatedLocked(n); return nil })
	return u
}

func (h handle) Parent() (p Parent) {
	_ = h.with(func(n *node) error { p = n.parent; return nil })
	return p
}

func (h handle) CreatedAt() (t time.Time) {
	_ = h.with(func(n *node) error { t = n.createdAt; return nil })
	return t
}

// DataProvider returns the caller's opaque provider, inherited from the
// parent when the node was created under one.
func (h handle) DataProvider() (p any) {
	_ = h.with(func(n *node) error { p = n.provider; return nil })
	return p
}

func (h handle) Ledger() (ix *ledger.Index) {
	_ = h.with(func(n *node) error { ix = n.ledger; return nil })
	return ix
}

func (h handle) Rename(name string) error {
	if name == "" {
		return contractErr("rename "+h.key.String(), errEmptyName)
	}
	return h.with(func(n *node) error {
		n.name = name
		return nil
	})
}

// UpdateBalance changes the capital granted to this node. An increase must
// fit in the parent's unallocated capital; the balance can never drop below
// what the node has granted its own children. A strategy's cash moves by
// the same delta and may not go negative.
func (h handle) UpdateBalance(balance decimal.Decimal) error {
	op := "update balance " + h.key.String()
	if balance.IsNegative() {
		return contractErr(op, errNegativeFunds)
	}

	return h.with(func(n *node) error {
		if committed := h.r.committedLocked(n); balance.LessThan(committed) {
			return &InsufficientFundsError{NodeID: n.key.ID, Required: committed, Available: balance}
		}

		delta := balance.Sub(n.balance)
		if p := h.r.parentLocked(n); p != nil && delta.IsPositive() {
			if avail := h.r.unallocatedLocked(p); delta.GreaterThan(avail) {
				return &InsufficientFundsError{NodeID: p.key.ID, Required: delta, Available: avail}
			}
		}
		if n.key.Kind == KindStrategy {
			cash := n.cash.Add(delta)
			if cash.IsNegative() {
				return &InsufficientFundsError{NodeID: n.key.ID, Required: delta.Neg(), Available: n.cash}
			}
			n.cash = cash
		}

		h.r.log.Debug("balance updated",
			zap.Stringer("node", n.key),
			zap.Stringer("from", n.balance),
			zap.Stringer("to", balance))
		n.balance = balance
		return nil
	})
}

func (h handle) childKeys() (keys []Key) {
	_ = h.with(func(n *node) error {
		keys = append([]Key(nil), n.children...)
		return nil
	})
	return keys
}

func (h handle) child(childID string) (handle, error) {
	k := Key{h.key.Kind.childKind(), childID}
	err := h.with(func(n *node) error {
		for _, c := range n.children {
			if c == k {
				return nil
			}
		}
		return fmt.Errorf("%w: %s has no child %s", ErrNotFound, h.key, k)
	})
	return handle{h.r, k}, err
}

func (h handle) create(childID, name string, balance decimal.Decimal) (handle, error) {
	n, err := h.r.create(&h.key, h.key.Kind.childKind(), childID, name, balance, nil)
	if err != nil {
		return handle{}, err
	}
	return handle{h.r, n.key}, nil
}

// remove detaches a child and releases its allocation. The child keeps its
// own state and subtree.
func (h handle) remove(childID string) error {
	k := Key{h.key.Kind.childKind(), childID}
	return h.with(func(n *node) error {
		if !n.removeChild(k) {
			return fmt.Errorf("%w: %s has no child %s", ErrNotFound, h.key, k)
		}
		if c, ok := h.r.nodes[k]; ok {
			c.parent = Parent{Link: Detached}
		}
		h.r.log.Debug("node detached", zap.Stringer("parent", n.key), zap.Stringer("child", k))
		return nil
	})
}

// ruled adds rule access for funds and portfolios.
type ruled struct{ handle }

// Rules returns the node's live rules. Mutate through UpdateRules when
// trades may be running concurrently.
func (h ruled) Rules() (r *rules.Rules) {
	_ = h.with(func(n *node) error { r = n.rules; return nil })
	return r
}

// UpdateRules runs fn on the node's rules under the registry lock.
func (h ruled) UpdateRules(fn func(*rules.Rules)) error {
	return h.with(func(n *node) error {
		fn(n.rules)
		return nil
	})
}

// SetRules replaces the node's rules.
func (h ruled) SetRules(r *rules.Rules) error {
	if r == nil {
		return contractErr("set rules "+h.key.String(), fmt.Errorf("rules are required"))
	}
	return h.with(func(n *node) error {
		n.rules = r
		return nil
	})
}
