package observability

import (
	"math"
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// LoyaltyMetrics mirrors the process-wide settlement accumulators so
// operators can watch the hook without querying state.
type LoyaltyMetrics struct {
	swaps      prometheus.Counter
	volume     prometheus.Counter
	rewards    prometheus.Counter
	badges     prometheus.Counter
	rejections *prometheus.CounterVec
}

var (
	loyaltyMetricsOnce sync.Once
	loyaltyRegistry    *LoyaltyMetrics
)

// Loyalty returns the lazily-initialised metrics registry used to record
// settlement activity.
func Loyalty() *LoyaltyMetrics {
	loyaltyMetricsOnce.Do(func() {
		loyaltyRegistry = &LoyaltyMetrics{
			swaps: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "dinehook",
				Subsystem: "loyalty",
				Name:      "swaps_settled_total",
				Help:      "Total swaps settled through the loyalty pipeline.",
			}),
			volume: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "dinehook",
				Subsystem: "loyalty",
				Name:      "volume_units_total",
				Help:      "Total value-side volume settled, in whole policy-currency units.",
			}),
			rewards: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "dinehook",
				Subsystem: "loyalty",
				Name:      "rewards_units_total",
				Help:      "Total reward tokens distributed, in whole token units.",
			}),
			badges: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "dinehook",
				Subsystem: "loyalty",
				Name:      "badges_issued_total",
				Help:      "Total VIP membership badges issued.",
			}),
			rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "dinehook",
				Subsystem: "loyalty",
				Name:      "rejections_total",
				Help:      "Swaps rejected by the constraint layer, segmented by reason.",
			}, []string{"reason"}),
		}
		prometheus.MustRegister(
			loyaltyRegistry.swaps,
			loyaltyRegistry.volume,
			loyaltyRegistry.rewards,
			loyaltyRegistry.badges,
			loyaltyRegistry.rejections,
		)
	})
	return loyaltyRegistry
}

// ObserveSettlement records a settled swap with its value-side amount and the
// rewards it distributed.
func (m *LoyaltyMetrics) ObserveSettlement(amount, rewards *big.Int, unit int64) {
	if m == nil {
		return
	}
	m.swaps.Inc()
	m.volume.Add(wholeUnits(amount, unit))
	m.rewards.Add(wholeUnits(rewards, unit))
}

// ObserveRejection records a constraint-layer rejection by reason.
func (m *LoyaltyMetrics) ObserveRejection(reason string) {
	if m == nil || reason == "" {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}

// ObserveBadge records a badge issuance request.
func (m *LoyaltyMetrics) ObserveBadge() {
	if m == nil {
		return
	}
	m.badges.Inc()
}

// wholeUnits converts a scaled big integer into float whole units for the
// counter. Precision loss here is acceptable; state remains the source of
// truth.
func wholeUnits(v *big.Int, unit int64) float64 {
	if v == nil || v.Sign() <= 0 || unit <= 0 {
		return 0
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v), big.NewFloat(float64(unit))).Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}
