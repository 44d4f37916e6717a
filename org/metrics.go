package org

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tradeorg"

// Metrics are the registry's Prometheus instruments.
type Metrics struct {
	TradesFilled   *prometheus.CounterVec
	TradesRejected *prometheus.CounterVec
	Volume         prometheus.Counter
	Commission     prometheus.Counter
	Allocations    *prometheus.CounterVec
}

// NewMetrics builds the instruments and registers them on reg. A nil reg
// leaves them unregistered, which is what tests and embedded use want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TradesFilled: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "trades_filled_total",
			Help:      "Trades filled, by direction",
		}, []string{"direction"}),
		TradesRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "trades_rejected_total",
			Help:      "Trades rejected, by error kind",
		}, []string{"kind"}),
		Volume: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "notional_volume_total",
			Help:      "Filled notional volume",
		}),
		Commission: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "commission_total",
			Help:      "Commission charged on filled trades",
		}),
		Allocations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hierarchy",
			Name:      "allocations_total",
			Help:      "Capital allocations to new child nodes, by child kind",
		}, []string{"kind"}),
	}
}
