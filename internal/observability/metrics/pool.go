package metrics

import (
	"sync"

	"tier0-lending/internal/domain/pool"

	"github.com/prometheus/client_golang/prometheus"
)

type PoolMetrics struct {
	operations  *prometheus.CounterVec
	liquidity   prometheus.Gauge
	outstanding prometheus.Gauge
	issued      prometheus.Gauge
	defaultRate prometheus.Gauge
	interest    prometheus.Gauge
	swept       prometheus.Counter
}

var (
	poolOnce     sync.Once
	poolRegistry *PoolMetrics
)

// Pool returns the process-wide metrics registered with the default registry.
func Pool() *PoolMetrics {
	poolOnce.Do(func() {
		poolRegistry = NewPool(prometheus.DefaultRegisterer)
	})
	return poolRegistry
}

// NewPool builds a metrics set registered with reg. Tests pass a fresh
// prometheus.NewRegistry().
func NewPool(reg prometheus.Registerer) *PoolMetrics {
	m := &PoolMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loanpool_operations_total",
			Help: "Pool operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		liquidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loanpool_liquidity_balance",
			Help: "Uncommitted pool liquidity in the asset's smallest unit.",
		}),
		outstanding: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loanpool_outstanding_principal",
			Help: "Principal currently lent out.",
		}),
		issued: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loanpool_loans_issued",
			Help: "Loans issued since the pool was created.",
		}),
		defaultRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loanpool_default_rate_bps",
			Help: "Defaulted principal over deployed principal, in basis points.",
		}),
		interest: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loanpool_interest_earned",
			Help: "Interest collected from repayments.",
		}),
		swept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loanpool_sweeper_defaults_total",
			Help: "Loans marked defaulted by the sweeper.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.liquidity, m.outstanding, m.issued, m.defaultRate, m.interest, m.swept)
	}
	return m
}

// ObserveOperation counts one call; outcome is "ok" or an error reason.
func (m *PoolMetrics) ObserveOperation(op, outcome string) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "ok"
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

func (m *PoolMetrics) ObserveStats(s *pool.Stats) {
	if m == nil || s == nil {
		return
	}
	m.liquidity.Set(float64(s.LiquidityBalance))
	m.outstanding.Set(float64(s.Outstanding()))
	m.issued.Set(float64(s.TotalLoansIssued))
	m.defaultRate.Set(float64(s.DefaultRateBps()))
	m.interest.Set(float64(s.InterestEarned))
}

func (m *PoolMetrics) ObserveSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.swept.Add(float64(n))
}
