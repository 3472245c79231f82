package main

import (
	"testing"
	"time"
)

func TestReadConfig_Defaults(t *testing.T) {
	cfg, err := readConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend != "redis" || cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("unexpected backend defaults: %+v", cfg)
	}
	if cfg.RateCapacity != 100 || cfg.RateWindow != 60*time.Second {
		t.Fatalf("unexpected rate defaults: %+v", cfg)
	}
	if cfg.CacheTTL != 24*time.Hour || !cfg.WarmupEnabled {
		t.Fatalf("unexpected cache defaults: %+v", cfg)
	}
	if cfg.RateStatsPrefix != "ratelimit:stats" {
		t.Fatalf("unexpected stats prefix default: %q", cfg.RateStatsPrefix)
	}
}

func TestReadConfig_Overrides(t *testing.T) {
	t.Setenv("BACKEND", " Memory ")
	t.Setenv("RATE_CAPACITY", "10")
	t.Setenv("RATE_WINDOW", "5s")
	t.Setenv("COMPUTE_MAX", "4")

	cfg, err := readConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend != "memory" || cfg.RateCapacity != 10 || cfg.RateWindow != 5*time.Second || cfg.ComputeMax != 4 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestReadConfig_Validation(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":  {"BACKEND": "etcd"},
		"zero capacity":    {"RATE_CAPACITY": "0"},
		"negative compute": {"COMPUTE_MAX": "-1"},
		"stats need redis": {"BACKEND": "memory", "RATE_STATS_ENABLED": "true"},
		"bad duration":     {"RATE_WINDOW": "soon"},
		"empty redis addr": {"REDIS_ADDR": " "},
		"stats in buckets": {"RATE_STATS_PREFIX": "rate_limit:stats"},
		"stats is buckets": {"RATE_STATS_PREFIX": "rate_limit:"},
		"empty stats":      {"RATE_STATS_PREFIX": ":"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := readConfig(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := newLogger("console", "debug"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := newLogger("json", "loud"); err == nil {
		t.Fatalf("expected invalid level error")
	}
}
