package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ytt_runs_total", Help: "Node executions by node and status"},
		[]string{"node", "status"},
	)
	itemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ytt_items_total", Help: "Processed items by node and outcome"},
		[]string{"node", "outcome"},
	)
	runDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "ytt_run_duration_seconds", Help: "Node execution durations", Buckets: prometheus.ExponentialBuckets(0.1, 2, 10)},
		[]string{"node"},
	)
	clientRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ytt_innertube_requests_total", Help: "Innertube requests by endpoint and HTTP status"},
		[]string{"endpoint", "code"},
	)
	clientRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "ytt_innertube_request_duration_seconds", Help: "Innertube request latencies"},
		[]string{"endpoint"},
	)
	archiveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ytt_archive_total", Help: "Transcript archive writes by outcome"},
		[]string{"outcome"},
	)
)

// Register registers every collector with reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(runsTotal, itemsTotal, runDuration, clientRequestsTotal, clientRequestDuration, archiveTotal)
}

func RecordRun(node, status string, dur time.Duration) {
	runsTotal.WithLabelValues(node, status).Inc()
	runDuration.WithLabelValues(node).Observe(dur.Seconds())
}

func RecordItems(node, outcome string, n int) {
	if n <= 0 {
		return
	}
	itemsTotal.WithLabelValues(node, outcome).Add(float64(n))
}

// ObserveClientRequest records one Innertube call. code is 0 when no response arrived.
func ObserveClientRequest(endpoint string, code int, dur time.Duration) {
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	clientRequestsTotal.WithLabelValues(endpoint, label).Inc()
	clientRequestDuration.WithLabelValues(endpoint).Observe(dur.Seconds())
}

func RecordArchive(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	archiveTotal.WithLabelValues(outcome).Inc()
}
