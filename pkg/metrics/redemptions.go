package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RedemptionMetrics records outcomes of reward redemptions.
type RedemptionMetrics struct {
	total     *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	conflicts *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewRedemptionMetrics registers the redemption metrics on the provided registerer.
func NewRedemptionMetrics(reg prometheus.Registerer) *RedemptionMetrics {
	if reg == nil {
		return &RedemptionMetrics{}
	}
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "redemptions_total",
		Help: "Completed reward redemptions.",
	}, []string{"pool_kind", "payout_kind"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "draw_fallbacks_total",
		Help: "Draws that fell through the weight table and used the last option.",
	}, []string{"pool_kind"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "redemption_conflicts_total",
		Help: "Redemption attempts retried after a storage conflict.",
	}, []string{"pool_kind"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "redemption_duration_seconds",
		Help:    "Duration of the redeem transaction in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"pool_kind"})
	reg.MustRegister(total, fallbacks, conflicts, duration)
	return &RedemptionMetrics{
		total:     total,
		fallbacks: fallbacks,
		conflicts: conflicts,
		duration:  duration,
	}
}

// IncRedemption increments the completed redemption counter.
func (m *RedemptionMetrics) IncRedemption(poolKind, payoutKind string) {
	if m == nil || m.total == nil {
		return
	}
	m.total.WithLabelValues(normalizeLabel(poolKind), normalizeLabel(payoutKind)).Inc()
}

// IncFallback increments the draw fallback counter.
func (m *RedemptionMetrics) IncFallback(poolKind string) {
	if m == nil || m.fallbacks == nil {
		return
	}
	m.fallbacks.WithLabelValues(normalizeLabel(poolKind)).Inc()
}

// IncConflict increments the storage conflict retry counter.
func (m *RedemptionMetrics) IncConflict(poolKind string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(poolKind)).Inc()
}

// ObserveDuration records how long the redeem transaction took.
func (m *RedemptionMetrics) ObserveDuration(poolKind string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(poolKind)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
