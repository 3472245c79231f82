package infra

import (
	"context"
	"sync"

	"fibonacci-gateway/middleware/ratelimit/domain"
)

type Counters struct {
	Allowed int64
	Denied  int64

	// TokensCharged soma o custo das requisições admitidas.
	TokensCharged int64
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu    sync.Mutex
	total Counters
	byKey map[string]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byKey: make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total = count(s.total, ev)
	if s.trackKeys {
		key := string(ev.Key)
		s.byKey[key] = count(s.byKey[key], ev)
	}
	return nil
}

func count(c Counters, ev domain.StatsEvent) Counters {
	if ev.Allowed {
		c.Allowed++
		c.TokensCharged += int64(ev.Cost)
		return c
	}
	c.Denied++
	return c
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByKey() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return out
}
