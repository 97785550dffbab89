// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "splitgroup"

var (
	settleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "settle_duration_seconds",
		Help:      "Time spent computing a group's balances and settlement plan.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	settleErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settle_errors_total",
		Help:      "Balance computations that failed, by error kind.",
	}, []string{"kind"})

	suggestedPayments = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "suggested_payments",
		Help:      "Number of payments in computed settlement plans.",
		Buckets:   prometheus.LinearBuckets(0, 2, 10),
	})

	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "balance_cache_requests_total",
		Help:      "Balance cache lookups, by result (hit, miss, error).",
	}, []string{"result"})

	splits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "splits_total",
		Help:      "Expense splits computed, by split method.",
	}, []string{"method"})
)

// ObserveSettle records one completed settlement computation.
func ObserveSettle(start time.Time, payments int) {
	settleDuration.Observe(time.Since(start).Seconds())
	suggestedPayments.Observe(float64(payments))
}

// SettleFailed counts a failed settlement computation. kind is "input" or "inconsistent".
func SettleFailed(kind string) {
	settleErrors.WithLabelValues(kind).Inc()
}

// CacheHit, CacheMiss and CacheError count balance cache lookups.
func CacheHit()   { cacheRequests.WithLabelValues("hit").Inc() }
func CacheMiss()  { cacheRequests.WithLabelValues("miss").Inc() }
func CacheError() { cacheRequests.WithLabelValues("error").Inc() }

// SplitComputed counts one split by method.
func SplitComputed(method string) {
	splits.WithLabelValues(method).Inc()
}
