package savequeue

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are intentionally simple. queueDepth is *only* updated in the
// worker goroutine, guaranteeing a single writer and eliminating
// race/skew concerns.
var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardsync",
			Subsystem: "savequeue",
			Name:      "submissions_total",
			Help:      "Saves successfully accepted for execution.",
		},
		[]string{"lane"},
	)

	queueFullTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardsync",
			Subsystem: "savequeue",
			Name:      "queue_full_total",
			Help:      "Enqueue attempts that timed out (per-lane queue full).",
		},
		[]string{"lane"},
	)

	runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cardsync",
			Subsystem: "savequeue",
			Name:      "run_duration_seconds",
			Help:      "Save execution latency per attempt.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"lane"},
	)

	retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardsync",
			Subsystem: "savequeue",
			Name:      "retries_total",
			Help:      "Save attempts that failed and were retried.",
		},
		[]string{"lane"},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "cardsync",
			Subsystem: "savequeue",
			Name:      "queue_depth",
			Help:      "Current depth of each lane queue.",
		},
		[]string{"lane"},
	)
)

func labelFor(i int) string { return strconv.Itoa(i) }
