// Package metrics expõe os coletores Prometheus do gateway (cache, cálculo e admissão).
// Os nomes são estáveis: dashboards e alertas dependem deles.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fibgateway"

var (
	// CacheLookupsTotal conta consultas ao ResultStore por resultado (hit|miss).
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total number of result cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	// ComputeDurationSeconds é a latência do cálculo por algoritmo.
	ComputeDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compute_duration_seconds",
			Help:      "Fibonacci computation duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 12), // 1µs a ~4s
		},
		[]string{"algorithm"},
	)

	// AdmissionTotal conta decisões do controle de admissão (allowed|denied).
	AdmissionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admission_decisions_total",
			Help:      "Total number of admission decisions by result.",
		},
		[]string{"result"},
	)

	// TokensChargedTotal soma os tokens cobrados de requisições admitidas.
	TokensChargedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_charged_total",
			Help:      "Total number of rate limit tokens charged.",
		},
	)

	// WarmupEntriesTotal conta entradas gravadas pelo aquecimento do cache.
	WarmupEntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warmup_entries_total",
			Help:      "Total number of cache entries written by warmup.",
		},
	)
)
