package infra

import (
	"context"

	"fibonacci-gateway/metrics"
	"fibonacci-gateway/middleware/ratelimit/domain"
)

// PrometheusStatsStore exporta as decisões como contadores Prometheus.
// Não usa a chave do cliente como label (cardinalidade).
type PrometheusStatsStore struct{}

func NewPrometheusStatsStore() PrometheusStatsStore { return PrometheusStatsStore{} }

func (PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	if ev.Allowed {
		metrics.AdmissionTotal.WithLabelValues("allowed").Inc()
		metrics.TokensChargedTotal.Add(float64(ev.Cost))
		return nil
	}
	metrics.AdmissionTotal.WithLabelValues("denied").Inc()
	return nil
}

// MultiStatsStore repassa o evento para vários stores e devolve o primeiro erro.
type MultiStatsStore []domain.StatsStore

func (m MultiStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
