package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Yield router metrics collector

var (
	// Singleton collector
	collector     *Collector
	collectorOnce sync.Once
)

// Collector holds all router metrics
type Collector struct {
	// Harvest metrics
	HarvestsTotal    *prometheus.CounterVec
	HarvestProfit    *prometheus.CounterVec
	HarvestLoss      *prometheus.CounterVec
	DebtOutstanding  *prometheus.GaugeVec
	EstimatedAssets  *prometheus.GaugeVec
	EmergencyExiting *prometheus.GaugeVec

	// Withdraw metrics
	WithdrawalsTotal  *prometheus.CounterVec
	WithdrawShortfall *prometheus.CounterVec

	// Lifecycle metrics
	StrategiesTotal *prometheus.CounterVec
	SweepsTotal     *prometheus.CounterVec

	// Trigger metrics
	TriggerEvaluations *prometheus.CounterVec

	// Keeper bot metrics
	BotSubmissions   *prometheus.CounterVec
	BotLoopLatency   *prometheus.HistogramVec
	BotScheduledSize prometheus.Gauge

	// System metrics
	BlockHeight prometheus.Gauge
}

// GetCollector returns the singleton metrics collector
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = newCollector(prometheus.DefaultRegisterer)
	})
	return collector
}

// NewCollector creates a collector registered on reg.
// Tests use a fresh registry to avoid duplicate registration.
func NewCollector(reg prometheus.Registerer) *Collector {
	return newCollector(reg)
}

func newCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{}

	// Harvest metrics
	c.HarvestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "router",
			Subsystem: "harvest",
			Name:      "total",
			Help:      "Total number of harvests",
		},
		[]string{"strategy", "state"},
	)

	c.HarvestProfit = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "router",
			Subsystem: "harvest",
			Name:      "profit",
			Help:      "Profit reported to the outer vault in base units",
		},
		[]string{"strategy"},
	)

	c.HarvestLoss = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "router",
			Subsystem: "harvest",
			Name:      "loss",
			Help:      "Loss reported to the outer vault in base units",
		},
		[]string{"strategy"},
	)

	c.DebtOutstanding = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "router",
			Subsystem: "harvest",
			Name:      "debt_outstanding",
			Help:      "Debt outstanding after the last report",
		},
		[]string{"strategy"},
	)

	c.EstimatedAssets = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "router",
			Subsystem: "strategy",
			Name:      "estimated_total_assets",
			Help:      "Idle plus deployed assets of a strategy",
		},
		[]string{"strategy"},
	)

	c.EmergencyExiting = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "router",
			Subsystem: "strategy",
			Name:      "emergency_exit",
			Help:      "1 when the strategy is in emergency exit",
		},
		[]string{"strategy"},
	)

	// Withdraw metrics
	c.WithdrawalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "router",
			Subsystem: "withdraw",
			Name:      "total",
			Help:      "Total withdrawals requested by outer vaults",
		},
		[]string{"strategy"},
	)

	c.WithdrawShortfall = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "router",
			Subsystem: "withdraw",
			Name:      "shortfall",
			Help:      "Requested amount that could not be freed",
		},
		[]string{"strategy"},
	)

	// Lifecycle metrics
	c.StrategiesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "router",
			Subsystem: "strategy",
			Name:      "created_total",
			Help:      "Strategies created, by kind",
		},
		[]string{"kind"},
	)

	c.SweepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "router",
			Subsystem: "strategy",
			Name:      "sweeps_total",
			Help:      "Sweep attempts by outcome",
		},
		[]string{"outcome"},
	)

	// Trigger metrics
	c.TriggerEvaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "router",
			Subsystem: "trigger",
			Name:      "evaluations_total",
			Help:      "Trigger evaluations by kind and result",
		},
		[]string{"kind", "result"},
	)

	// Keeper bot metrics
	c.BotSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "router",
			Subsystem: "keeperbot",
			Name:      "submissions_total",
			Help:      "Transactions submitted by the keeper bot",
		},
		[]string{"action", "status"},
	)

	c.BotLoopLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "router",
			Subsystem: "keeperbot",
			Name:      "loop_latency_ms",
			Help:      "Keeper bot poll loop latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{},
	)

	c.BotScheduledSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "router",
			Subsystem: "keeperbot",
			Name:      "scheduled",
			Help:      "Strategies on the keeper bot schedule",
		},
	)

	// System metrics
	c.BlockHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "router",
			Subsystem: "system",
			Name:      "block_height",
			Help:      "Current block height",
		},
	)

	// Register all metrics
	c.registerAll(reg)

	return c
}

// registerAll registers all metrics with Prometheus
func (c *Collector) registerAll(reg prometheus.Registerer) {
	reg.MustRegister(
		c.HarvestsTotal,
		c.HarvestProfit,
		c.HarvestLoss,
		c.DebtOutstanding,
		c.EstimatedAssets,
		c.EmergencyExiting,
		c.WithdrawalsTotal,
		c.WithdrawShortfall,
		c.StrategiesTotal,
		c.SweepsTotal,
		c.TriggerEvaluations,
		c.BotSubmissions,
		c.BotLoopLatency,
		c.BotScheduledSize,
		c.BlockHeight,
	)
}

// ============ Recording Helpers ============

// RecordHarvest records a harvest report
func (c *Collector) RecordHarvest(strategy, state string, profit, loss, debtOutstanding float64) {
	c.HarvestsTotal.WithLabelValues(strategy, state).Inc()
	if profit > 0 {
		c.HarvestProfit.WithLabelValues(strategy).Add(profit)
	}
	if loss > 0 {
		c.HarvestLoss.WithLabelValues(strategy).Add(loss)
	}
	c.DebtOutstanding.WithLabelValues(strategy).Set(debtOutstanding)
}

// RecordWithdraw records an outer vault withdrawal and its shortfall
func (c *Collector) RecordWithdraw(strategy string, shortfall float64) {
	c.WithdrawalsTotal.WithLabelValues(strategy).Inc()
	if shortfall > 0 {
		c.WithdrawShortfall.WithLabelValues(strategy).Add(shortfall)
	}
}

// RecordStrategyCreated records a new original or clone
func (c *Collector) RecordStrategyCreated(kind string) {
	c.StrategiesTotal.WithLabelValues(kind).Inc()
}

// RecordSweep records a sweep outcome
func (c *Collector) RecordSweep(outcome string) {
	c.SweepsTotal.WithLabelValues(outcome).Inc()
}

// RecordTrigger records a trigger evaluation
func (c *Collector) RecordTrigger(kind string, result bool) {
	r := "false"
	if result {
		r = "true"
	}
	c.TriggerEvaluations.WithLabelValues(kind, r).Inc()
}

// RecordStrategyState updates per-strategy gauges
func (c *Collector) RecordStrategyState(strategy string, estimatedAssets float64, emergency bool) {
	c.EstimatedAssets.WithLabelValues(strategy).Set(estimatedAssets)
	v := 0.0
	if emergency {
		v = 1
	}
	c.EmergencyExiting.WithLabelValues(strategy).Set(v)
}

// RecordBotSubmission records a keeper bot transaction
func (c *Collector) RecordBotSubmission(action, status string) {
	c.BotSubmissions.WithLabelValues(action, status).Inc()
}

// RecordBotLoop records one keeper bot poll iteration
func (c *Collector) RecordBotLoop(latencyMs float64, scheduled int) {
	c.BotLoopLatency.WithLabelValues().Observe(latencyMs)
	c.BotScheduledSize.Set(float64(scheduled))
}

// UpdateSystemMetrics updates system-level metrics
func (c *Collector) UpdateSystemMetrics(blockHeight int64) {
	c.BlockHeight.Set(float64(blockHeight))
}

// ============ HTTP Handler ============

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for measuring latency
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ElapsedMs returns the elapsed time in milliseconds
func (t *Timer) ElapsedMs() float64 {
	return float64(time.Since(t.start).Microseconds()) / 1000.0
}
