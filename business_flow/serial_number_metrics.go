package businessflow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const invalidPrefixLabel = "_invalid"

var (
	// Allocation attempts partitioned by prefix and outcome kind
	serialAllocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serial_allocations_total",
			Help: "Total number of serial number allocation attempts",
		},
		[]string{"prefix", "outcome"},
	)

	// Allocation latency in seconds partitioned by outcome kind
	serialAllocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "serial_allocation_duration_seconds",
			Help:    "Serial number allocation latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	// Last number handed out per prefix, as seen by this process
	serialLastAllocated = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "serial_last_allocated_number",
			Help: "Last serial number allocated by this instance per prefix",
		},
		[]string{"prefix"},
	)
)

// observeAllocation records the outcome of one allocation attempt
func observeAllocation(prefix string, number uint64, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
	}
	if KindOf(err) == KindInvalidFormat {
		prefix = invalidPrefixLabel
	}

	serialAllocationsTotal.WithLabelValues(prefix, outcome).Inc()
	serialAllocationDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	if err == nil {
		serialLastAllocated.WithLabelValues(prefix).Set(float64(number))
	}
}
