// Package metrics содержит Prometheus-метрики шлюза SAN.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry хранит коллекторы приложения.
	Registry = prometheus.NewRegistry()

	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "san_gateway",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of requests to the SAN API.",
		},
		[]string{"operation", "result"},
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "san_gateway",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Duration of requests to the SAN API.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"operation"},
	)

	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "san_gateway",
			Subsystem: "flow",
			Name:      "submissions_total",
			Help:      "Payment and join submissions by outcome.",
		},
		[]string{"action", "outcome"},
	)

	accountReplacements = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "san_gateway",
			Subsystem: "state",
			Name:      "account_replacements_total",
			Help:      "Number of held account snapshots replaced after a refetch.",
		},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "san_gateway",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Query cache lookups by result.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		upstreamRequests,
		upstreamDuration,
		submissions,
		accountReplacements,
		cacheLookups,
	)
}

// Handler отдаёт метрики в формате Prometheus. Сжатие выполняет middleware роутера.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{DisableCompression: true})
}

// ObserveUpstream учитывает запрос к удалённому API.
func ObserveUpstream(operation, result string, d time.Duration) {
	upstreamRequests.WithLabelValues(operation, result).Inc()
	upstreamDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordSubmission учитывает исход отправки платежа или вступления.
func RecordSubmission(action, outcome string) {
	submissions.WithLabelValues(action, outcome).Inc()
}

// RecordAccountReplacement учитывает замену снимка аккаунта.
func RecordAccountReplacement() {
	accountReplacements.Inc()
}

// RecordCacheLookup учитывает попадание или промах кэша.
func RecordCacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}
