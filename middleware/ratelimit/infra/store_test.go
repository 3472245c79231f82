package infra

import (
	"context"
	"sync"
	"testing"
	"time"

	"fibonacci-gateway/middleware/ratelimit/domain"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestStore_NewBucketStartsFull(t *testing.T) {
	s := NewStore(domain.DefaultPolicy())

	dec, err := s.Take(context.Background(), "k", 1, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Allowed || dec.Remaining != 99 || dec.Cost != 1 {
		t.Fatalf("expected allowed with 99 remaining, got %+v", dec)
	}
}

func TestStore_ChargesCostFromSeededBucket(t *testing.T) {
	s := NewStore(domain.DefaultPolicy())
	ctx := context.Background()

	// deixa o bucket com 98 tokens
	if dec, _ := s.Take(ctx, "k", 2, t0); !dec.Allowed {
		t.Fatalf("expected seed take to be allowed")
	}

	dec, _ := s.Take(ctx, "k", 4, t0)
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	if dec.Remaining != 94 {
		t.Fatalf("expected 94 remaining, got %d", dec.Remaining)
	}
}

func TestStore_RejectDoesNotConsume(t *testing.T) {
	s := NewStore(domain.DefaultPolicy())
	ctx := context.Background()

	if dec, _ := s.Take(ctx, "k", 99, t0); !dec.Allowed {
		t.Fatalf("expected seed take to be allowed")
	}

	dec, _ := s.Take(ctx, "k", 4, t0)
	if dec.Allowed {
		t.Fatalf("expected rejection with 1 token and cost 4")
	}
	if dec.Remaining != 1 {
		t.Fatalf("expected tokens unchanged at 1, got %d", dec.Remaining)
	}
	if dec.RetryAfter != 2*time.Second {
		t.Fatalf("expected RetryAfter=2s for 3 missing tokens, got %s", dec.RetryAfter)
	}

	// o saldo continua 1: custo 1 ainda passa
	if dec, _ := s.Take(ctx, "k", 1, t0); !dec.Allowed || dec.Remaining != 0 {
		t.Fatalf("expected last token to be spendable, got %+v", dec)
	}
}

func TestStore_RefillsOverTime(t *testing.T) {
	s := NewStore(domain.DefaultPolicy())
	ctx := context.Background()

	_, _ = s.Take(ctx, "k", 100, t0)

	dec, _ := s.Take(ctx, "k", 1, t0.Add(30*time.Second))
	if !dec.Allowed {
		t.Fatalf("expected allowed after half window")
	}
	if dec.Remaining != 49 {
		t.Fatalf("expected 49 remaining (50 refilled - 1), got %d", dec.Remaining)
	}
}

func TestStore_KeysAreIndependent(t *testing.T) {
	s := NewStore(domain.DefaultPolicy())
	ctx := context.Background()

	_, _ = s.Take(ctx, "a", 100, t0)
	dec, _ := s.Take(ctx, "b", 1, t0)
	if !dec.Allowed || dec.Remaining != 99 {
		t.Fatalf("expected key b unaffected by key a, got %+v", dec)
	}
}

func TestStore_CostAboveCapacityIsRejected(t *testing.T) {
	s := NewStore(domain.DefaultPolicy())

	dec, _ := s.Take(context.Background(), "k", 101, t0)
	if dec.Allowed {
		t.Fatalf("expected rejection for cost above capacity")
	}
	if dec.Remaining != 100 {
		t.Fatalf("expected full bucket untouched, got %d", dec.Remaining)
	}
	if dec.RetryAfter != 0 {
		t.Fatalf("expected no RetryAfter for a cost that never fits, got %s", dec.RetryAfter)
	}
}

func TestStore_ConcurrentTakesNeverOvercharge(t *testing.T) {
	s := NewStore(domain.DefaultPolicy())
	ctx := context.Background()

	const callers = 150
	var (
		mu        sync.Mutex
		allowed   int
		remaining = map[int]bool{}
		wg        sync.WaitGroup
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dec, _ := s.Take(ctx, "k", 1, t0)
			if !dec.Allowed {
				return
			}
			mu.Lock()
			allowed++
			remaining[dec.Remaining] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if allowed != 100 {
		t.Fatalf("expected exactly 100 admitted out of %d, got %d", callers, allowed)
	}
	// cada admissão vê o próprio saldo: 99, 98, ..., 0 sem repetição
	if len(remaining) != 100 {
		t.Fatalf("expected 100 distinct remaining values, got %d", len(remaining))
	}
	if dec, _ := s.Take(ctx, "k", 1, t0); dec.Allowed || dec.Remaining != 0 {
		t.Fatalf("expected empty bucket, got %+v", dec)
	}
}

func TestStore_CleanupRemovesIdleEntries(t *testing.T) {
	s := NewStore(domain.DefaultPolicy(), WithCleanupEvery(0))
	ctx := context.Background()

	_, _ = s.Take(ctx, "k", 100, t0)
	s.cleanupAt(t0.Add(61 * time.Second))
	if s.Len() != 0 {
		t.Fatalf("expected idle bucket to be removed")
	}

	dec, _ := s.Take(ctx, "k", 1, t0.Add(61*time.Second))
	if dec.Remaining != 99 {
		t.Fatalf("expected recreated full bucket, got %+v", dec)
	}
}
