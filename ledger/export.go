package ledger

import (
	"time"

	"github.com/rustyeddy/tradeorg/trade"
)

// Snapshot is the flat, serializable summary of an index.
type Snapshot struct {
	OwnerName       string         `json:"owner_name" yaml:"owner_name"`
	OwnerType       string         `json:"owner_type" yaml:"owner_type"`
	CreatedAt       time.Time      `json:"created_at" yaml:"created_at"`
	TotalTrades     int            `json:"total_trades" yaml:"total_trades"`
	FilledTrades    int            `json:"filled_trades" yaml:"filled_trades"`
	SymbolsTraded   []string       `json:"symbols_traded" yaml:"symbols_traded"`
	TotalVolume     float64        `json:"total_volume" yaml:"total_volume"`
	TotalCommission float64        `json:"total_commission" yaml:"total_commission"`
	TradeDirections map[string]int `json:"trade_directions" yaml:"trade_directions"`
	ActivityByDate  map[string]int `json:"activity_by_date" yaml:"activity_by_date"`
}

// Export builds a Snapshot under one read lock, so counts and totals
// always describe the same set of trades. Symbols are sorted so the
// snapshot does not depend on recording order.
func (ix *Index) Export() Snapshot {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return Snapshot{
		OwnerName:       ix.ownerName,
		OwnerType:       ix.ownerType,
		CreatedAt:       ix.createdAt,
		TotalTrades:     len(ix.entries),
		FilledTrades:    len(ix.byStatus[trade.Filled]),
		SymbolsTraded:   ix.symbolsLocked(),
		TotalVolume:     ix.volume.InexactFloat64(),
		TotalCommission: ix.commission.InexactFloat64(),
		TradeDirections: ix.directionCountsLocked().Map(),
		ActivityByDate:  ix.activityLocked(),
	}
}
