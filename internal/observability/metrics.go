package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreLatency records record store latency by backend and operation.
	StoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "psocial_store_latency_seconds",
		Help:    "Record store load/save latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "operation"})

	// StoreCorruptBlobs counts persisted blobs that failed to decode.
	StoreCorruptBlobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "psocial_store_corrupt_blobs_total",
		Help: "Total number of persisted aggregates that could not be decoded",
	}, []string{"backend"})

	// DomainOperations counts domain operations by service, operation and outcome.
	DomainOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "psocial_domain_operations_total",
		Help: "Total domain operations by service, operation and outcome",
	}, []string{"service", "operation", "outcome"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "psocial_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})
)

// TrackStore returns a function that records store latency when called (e.g. defer).
func TrackStore(backend, operation string) func() {
	start := time.Now()
	return func() {
		StoreLatency.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
	}
}

// RecordOperation counts one domain operation.
func RecordOperation(service, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	DomainOperations.WithLabelValues(service, operation, outcome).Inc()
}
