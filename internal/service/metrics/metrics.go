package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	SignalDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quantdesk",
			Subsystem: "signal",
			Name:      "decisions_total",
			Help:      "Signal evaluations by decision",
		},
		[]string{"decision"},
	)

	BacktestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "quantdesk",
			Subsystem: "backtest",
			Name:      "duration_seconds",
			Help:      "Wall time of backtest runs",
			Buckets:   prometheus.DefBuckets,
		},
	)

	BacktestTrades = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "quantdesk",
			Subsystem: "backtest",
			Name:      "trades_per_run",
			Help:      "Completed trades per backtest run",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	Orders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quantdesk",
			Subsystem: "ledger",
			Name:      "orders_total",
			Help:      "Paper orders by side and status",
		},
		[]string{"side", "status"},
	)

	DataFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quantdesk",
			Subsystem: "marketdata",
			Name:      "fallbacks_total",
			Help:      "Synthetic-series fallbacks by ticker",
		},
		[]string{"ticker"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(SignalDecisions, BacktestDuration, BacktestTrades, Orders, DataFallbacks)
	})
}

// Recorder adapts the Prometheus collectors to the domain Metrics
// interface so core packages stay free of Prometheus types.
type Recorder struct{}

func NewRecorder() *Recorder {
	Register()
	return &Recorder{}
}

func (Recorder) RecordSignal(decision string) {
	SignalDecisions.WithLabelValues(decision).Inc()
}

func (Recorder) RecordBacktest(seconds float64, trades int) {
	BacktestDuration.Observe(seconds)
	BacktestTrades.Observe(float64(trades))
}

func (Recorder) RecordOrder(side, status string) {
	Orders.WithLabelValues(side, status).Inc()
}

func (Recorder) RecordFallback(ticker string) {
	DataFallbacks.WithLabelValues(ticker).Inc()
}
