package org

import (
	"time"

	"github.com/rustyeddy/tradeorg/ledger"
	"github.com/rustyeddy/tradeorg/position"
	"github.com/rustyeddy/tradeorg/rules"
	"github.com/rustyeddy/tradeorg/trade"
	"github.com/shopspring/decimal"
)

// Kind is the hierarchy level of a node.
type Kind string

const (
	KindAccount   Kind = "Account"
	KindFund      Kind = "Fund"
	KindPortfolio Kind = "Portfolio"
	KindStrategy  Kind = "Strategy"
)

// childKind is the kind a node of k owns. Strategies own nothing.
func (k Kind) childKind() Kind {
	switch k {
	case KindAccount:
		return KindFund
	case KindFund:
		return KindPortfolio
	case KindPortfolio:
		return KindStrategy
	}
	return ""
}

// Key identifies a node in a Registry. IDs are unique per kind.
type Key struct {
	Kind Kind
	ID   string
}

func (k Key) String() string { return string(k.Kind) + ":" + k.ID }

// Link is how a node relates to its parent.
type Link int

const (
	// Standalone nodes were created without a parent.
	Standalone Link = iota
	// Linked nodes have a parent that owns their allocation.
	Linked
	// Detached nodes were removed from their parent after creation.
	Detached
)

func (l Link) String() string {
	switch l {
	case Linked:
		return "linked"
	case Detached:
		return "detached"
	default:
		return "standalone"
	}
}

// Parent is a node's parent reference. Key is set only when Link is Linked.
type Parent struct {
	Link Link
	Key  Key
}

type node struct {
	key       Key
	name      string
	balance   decimal.Decimal
	parent    Parent
	children  []Key
	createdAt time.Time
	provider  any

	// funds and portfolios only
	rules *rules.Rules

	ledger *ledger.Index

	// strategies only
	cash      decimal.Decimal
	positions map[string]*position.Position
	trades    []*trade.Trade
}

func (n *node) removeChild(k Key) bool {
	for i, c := range n.children {
		if c == k {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return true
		}
	}
	return false
}
