package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kitbox",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kitbox",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	ledgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kitbox",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger mutations by operation and result code.",
		},
		[]string{"op", "result"},
	)
)

// RegisterMetrics registers the collectors with the default registry. It is
// safe to call more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, ledgerOperations)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// RecordLedgerOperation counts one add, remove, or transfer. result is "ok"
// or the error code of the rejection.
func RecordLedgerOperation(op, result string) {
	RegisterMetrics()
	ledgerOperations.WithLabelValues(op, result).Inc()
}
