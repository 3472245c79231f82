package infra

import (
	"context"
	"sync"
	"time"

	"fibonacci-gateway/middleware/ratelimit/domain"

	"golang.org/x/time/rate"
)

// Store é uma implementação de domain.BucketStore em memória, baseada em
// token-bucket (x/time/rate) com cache por chave e limpeza periódica.
//
// Serve para uma única instância (dev/testes). Para várias instâncias use
// RedisBucketStore.
type Store struct {
	mu           sync.Mutex
	entries      map[string]*storeEntry
	policy       domain.Policy
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

// storeEntry.mu cobre AllowN + TokensAt, assim Remaining reflete só a
// própria cobrança mesmo com requisições simultâneas do mesmo cliente.
type storeEntry struct {
	mu       sync.Mutex
	lim      *rate.Limiter
	lastSeen time.Time
}

type StoreOption func(*Store)

func WithIdleTTL(d time.Duration) StoreOption {
	return func(s *Store) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.cleanupEvery = d }
}

// NewStore cria o store. Por padrão um bucket ocioso por uma janela inteira
// é descartado: nesse ponto ele estaria cheio de qualquer forma.
func NewStore(policy domain.Policy, opts ...StoreOption) *Store {
	s := &Store{
		entries:      make(map[string]*storeEntry),
		policy:       policy,
		idleTTL:      policy.Window,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Policy() domain.Policy { return s.policy }
func (s *Store) CleanupEvery() time.Duration { return s.cleanupEvery }

// Take implementa domain.BucketStore.
func (s *Store) Take(_ context.Context, key domain.Key, cost int, now time.Time) (domain.Decision, error) {
	ent := s.entry(string(key), now)

	ent.mu.Lock()
	allowed := ent.lim.AllowN(now, cost)
	tokens := ent.lim.TokensAt(now)
	ent.mu.Unlock()

	dec := domain.Decision{
		Allowed:   allowed,
		Cost:      cost,
		Remaining: domain.FloorTokens(tokens),
	}
	if !allowed {
		dec.RetryAfter = s.policy.RetryAfter(cost, tokens)
	}
	return dec, nil
}

func (s *Store) entry(key string, now time.Time) *storeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent
	}

	ent := &storeEntry{
		lim:      rate.NewLimiter(rate.Limit(s.policy.TokensPerSecond()), s.policy.Capacity),
		lastSeen: now,
	}
	s.entries[key] = ent
	return ent
}

// Len retorna quantos buckets estão em memória.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) Cleanup() {
	s.cleanupAt(time.Now())
}

func (s *Store) cleanupAt(now time.Time) {
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa chaves inativas periodicamente.
// Pare cancelando o contexto.
func (s *Store) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context no janitor.
type DoneContext interface {
	Done() <-chan struct{}
}
