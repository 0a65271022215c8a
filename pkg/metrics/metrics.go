package metrics

import (
	"lender/core"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics engine counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	events     *prometheus.CounterVec
	period     prometheus.Gauge
	shortfall  prometheus.Gauge
	markets    prometheus.Gauge
}

// New registers the lender collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lender",
			Name:      "operations_total",
			Help:      "Operations by name, result and error kind.",
		}, []string{"op", "result", "kind"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lender",
			Name:      "events_total",
			Help:      "Committed ledger events by action.",
		}, []string{"action"}),
		period: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lender",
			Name:      "period",
			Help:      "Period of the last committed operation.",
		}),
		shortfall: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lender",
			Name:      "shortfall_accounts",
			Help:      "Accounts in shortfall at the last liquidity scan.",
		}),
		markets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lender",
			Name:      "markets",
			Help:      "Markets held by the ledger.",
		}),
	}

	reg.MustRegister(m.operations, m.events, m.period, m.shortfall, m.markets)
	return m
}

// ObserveOperation counts one finished operation
func (m *Metrics) ObserveOperation(op string, err error) {
	if m == nil {
		return
	}

	if err == nil {
		m.operations.WithLabelValues(op, "ok", "").Inc()
		return
	}

	result := "rejected"
	if core.IsFatal(err) {
		result = "failed"
	}

	m.operations.WithLabelValues(op, result, core.CodeOf(err).Kind().String()).Inc()
}

// ObserveCommit records the events and period of a committed change set
func (m *Metrics) ObserveCommit(cs *core.ChangeSet, markets int) {
	if m == nil {
		return
	}

	for _, event := range cs.Events {
		m.events.WithLabelValues(string(event.Action)).Inc()
	}

	m.period.Set(float64(cs.Period))
	m.markets.Set(float64(markets))
}

// SetShortfallAccounts result of a liquidity scan
func (m *Metrics) SetShortfallAccounts(n int) {
	if m == nil {
		return
	}

	m.shortfall.Set(float64(n))
}
