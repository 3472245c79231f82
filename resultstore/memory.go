package resultstore

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore implementa Store num LRU com expiração. Não é compartilhado
// entre instâncias; use para desenvolvimento local e testes.
type MemoryStore struct {
	// mu serializa PutIfAbsent (Contains + Add não é atômico no LRU)
	mu  sync.Mutex
	lru *expirable.LRU[string, string]
}

// NewMemoryStore cria o store com até size entradas; size <= 0 é ilimitado.
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{lru: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (s *MemoryStore) Get(_ context.Context, n *big.Int) (string, bool, error) {
	v, ok := s.lru.Get(Key(n))
	return v, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, n *big.Int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Add(Key(n), value)
	return nil
}

func (s *MemoryStore) PutIfAbsent(_ context.Context, n *big.Int, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lru.Contains(Key(n)) {
		return false, nil
	}
	s.lru.Add(Key(n), value)
	return true, nil
}

func (s *MemoryStore) Len() int { return s.lru.Len() }
