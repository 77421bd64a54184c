// Package bookmetrics provides Prometheus instrumentation for a Book,
// recorded by the pkg/orderbook façade after it releases the core
// spinlock so instrumentation never lengthens the critical section.
//
// Grounded on the teacher's internal/hft/metrics.BaselineMetrics.
package bookmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is one book's instrument set. Each Book with EnableMetrics
// creates its own, labeled by symbol so multiple books in a Registry
// don't collide in the default registerer.
type Metrics struct {
	SubmitLatency prometheus.Histogram
	TradeCount    prometheus.Counter
	TradeVolume   prometheus.Counter
	BookSize      prometheus.Gauge
	RejectCount   *prometheus.CounterVec
}

// New registers a fresh instrument set for symbol. Calling it twice for
// the same symbol against the default registerer panics, matching
// promauto's own behavior — callers should create one Metrics per
// symbol for the process lifetime.
func New(symbol string) *Metrics {
	constLabels := prometheus.Labels{"symbol": symbol}
	return &Metrics{
		SubmitLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:        "matchbook_submit_latency_nanoseconds",
			Help:        "Submit call latency in nanoseconds",
			Buckets:     []float64{100, 250, 500, 1000, 2500, 5000, 10000, 25000, 50000, 100000},
			ConstLabels: constLabels,
		}),
		TradeCount: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "matchbook_trades_total",
			Help:        "Total number of trades executed",
			ConstLabels: constLabels,
		}),
		TradeVolume: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "matchbook_trade_volume_total",
			Help:        "Total traded quantity",
			ConstLabels: constLabels,
		}),
		BookSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "matchbook_resting_orders",
			Help:        "Current number of resting orders",
			ConstLabels: constLabels,
		}),
		RejectCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "matchbook_rejects_total",
			Help:        "Total number of rejected submissions by reason",
			ConstLabels: constLabels,
		}, []string{"reason"}),
	}
}

// RecordSubmit records the outcome of one Submit call.
func (m *Metrics) RecordSubmit(latencyNs float64, tradeCount int, volume uint64, bookSize int) {
	m.SubmitLatency.Observe(latencyNs)
	if tradeCount > 0 {
		m.TradeCount.Add(float64(tradeCount))
		m.TradeVolume.Add(float64(volume))
	}
	m.BookSize.Set(float64(bookSize))
}

// RecordReject increments the reject counter for reason.
func (m *Metrics) RecordReject(reason string) {
	m.RejectCount.WithLabelValues(reason).Inc()
}
