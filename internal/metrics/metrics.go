// Package metrics exposes Prometheus collectors for client activity against
// the crawl service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	submissionsTotal    *prometheus.CounterVec
	pollsTotal          *prometheus.CounterVec
	taskWaitSeconds     prometheus.Histogram
	mockRequestsTotal   *prometheus.CounterVec
	mockRequestDuration *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		submissionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawlclient_submissions_total",
				Help: "Total crawl job submissions, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		pollsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawlclient_polls_total",
				Help: "Total task status polls, labeled by reported status.",
			},
			[]string{"status"},
		)

		taskWaitSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crawlclient_task_wait_seconds",
				Help:    "Time from first poll to a terminal task status.",
				Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300},
			},
		)

		mockRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawlmock_http_requests_total",
				Help: "Total HTTP requests served by the mock service, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		mockRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crawlmock_http_request_duration_seconds",
				Help:    "Histogram of mock service request latencies, labeled by method and route.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSubmission counts one submission attempt by outcome
// ("immediate", "deferred", "rejected", ...).
func ObserveSubmission(outcome string) {
	submissionsTotal.WithLabelValues(outcome).Inc()
}

// ObservePoll counts one successful status poll by the status it reported.
func ObservePoll(status string) {
	if status == "" {
		status = "unknown"
	}
	pollsTotal.WithLabelValues(status).Inc()
}

// ObserveTaskWait records how long a task took to reach a terminal status.
func ObserveTaskWait(d time.Duration) {
	taskWaitSeconds.Observe(d.Seconds())
}

// ObserveMockRequest increments the mock service HTTP metrics.
func ObserveMockRequest(method, route string, code int, duration time.Duration) {
	mockRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	mockRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
