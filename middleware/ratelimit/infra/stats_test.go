package infra

import (
	"context"
	"testing"

	"fibonacci-gateway/middleware/ratelimit/domain"
)

func TestMemoryStatsStore_CountsDecisions(t *testing.T) {
	s := NewMemoryStatsStore(WithTrackKeys(true))
	ctx := context.Background()

	_ = s.Record(ctx, domain.StatsEvent{Key: "a", Allowed: true, Cost: 4})
	_ = s.Record(ctx, domain.StatsEvent{Key: "a", Allowed: false, Cost: 4})
	_ = s.Record(ctx, domain.StatsEvent{Key: "b", Allowed: true, Cost: 1})

	total := s.Total()
	if total.Allowed != 2 || total.Denied != 1 || total.TokensCharged != 5 {
		t.Fatalf("unexpected totals: %+v", total)
	}
	if got := s.ByKey()["a"]; got.Allowed != 1 || got.Denied != 1 {
		t.Fatalf("unexpected counters for key a: %+v", got)
	}
}

func TestMemoryStatsStore_DoesNotTrackKeysByDefault(t *testing.T) {
	s := NewMemoryStatsStore()
	_ = s.Record(context.Background(), domain.StatsEvent{Key: "a", Allowed: true, Cost: 1})
	if len(s.ByKey()) != 0 {
		t.Fatalf("expected no per-key counters")
	}
}

func TestRedisStatsStore_WritesCounters(t *testing.T) {
	mr, rdb := newRedis(t)
	s := NewRedisStatsStore(rdb, WithStatsPrefix("stats:"), WithStatsTrackKeys(true))
	ctx := context.Background()

	_ = s.Record(ctx, domain.StatsEvent{Key: "a", Allowed: true, Cost: 3, At: t0})
	if err := s.Record(ctx, domain.StatsEvent{Key: "a", Allowed: false, Cost: 3, At: t0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := mr.HGet("stats:total", "allowed"); got != "1" {
		t.Fatalf("expected allowed=1, got %q", got)
	}
	if got := mr.HGet("stats:total", "denied"); got != "1" {
		t.Fatalf("expected denied=1, got %q", got)
	}
	if got := mr.HGet("stats:total", "tokens"); got != "3" {
		t.Fatalf("expected tokens=3, got %q", got)
	}
	if got := mr.HGet("stats:minute:202601011200", "allowed"); got != "1" {
		t.Fatalf("expected minute bucket counter, got %q", got)
	}
	if got := mr.HGet("stats:key:a", "denied"); got != "1" {
		t.Fatalf("expected per-key counter, got %q", got)
	}
}

type failingStats struct{ err error }

func (f failingStats) Record(context.Context, domain.StatsEvent) error { return f.err }

func TestMultiStatsStore_FansOutAndReturnsFirstError(t *testing.T) {
	mem := NewMemoryStatsStore()
	boom := context.Canceled
	m := MultiStatsStore{failingStats{err: boom}, nil, mem, PrometheusStatsStore{}}

	err := m.Record(context.Background(), domain.StatsEvent{Key: "a", Allowed: true, Cost: 2})
	if err != boom {
		t.Fatalf("expected first error, got %v", err)
	}
	if mem.Total().Allowed != 1 {
		t.Fatalf("expected memory store to still receive the event")
	}
}

func TestChanPool_LimitsSlots(t *testing.T) {
	p := NewChanPool(1)

	release, ok := p.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected first acquire to succeed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := p.Acquire(ctx); ok {
		t.Fatalf("expected acquire to fail while pool is full")
	}

	release()
	if _, ok := p.Acquire(ctx); !ok {
		t.Fatalf("expected free slot to win over canceled ctx")
	}
}
