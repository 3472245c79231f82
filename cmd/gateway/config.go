package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fibonacci-gateway/middleware/ratelimit/infra"

	"github.com/caarlos0/env/v11"
)

type config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	// Backend: "redis" (compartilhado, padrão) ou "memory" (uma instância só).
	Backend       string `env:"BACKEND" envDefault:"redis"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	RateCapacity  int           `env:"RATE_CAPACITY" envDefault:"100"`
	RateWindow    time.Duration `env:"RATE_WINDOW" envDefault:"60s"`
	RateKeyHeader string        `env:"RATE_KEY_HEADER"`
	TrustXFF      bool          `env:"TRUST_XFF" envDefault:"false"`

	CacheTTL        time.Duration `env:"CACHE_TTL" envDefault:"24h"`
	CacheMemorySize int           `env:"CACHE_MEMORY_SIZE" envDefault:"10000"`
	WarmupEnabled   bool          `env:"WARMUP_ENABLED" envDefault:"true"`

	// IMPORTANTE: 0 desliga o limite de cálculos simultâneos.
	ComputeMax            int           `env:"COMPUTE_MAX" envDefault:"0"`
	ComputeAcquireTimeout time.Duration `env:"COMPUTE_ACQUIRE_TIMEOUT" envDefault:"0s"`

	RateStatsEnabled   bool          `env:"RATE_STATS_ENABLED" envDefault:"false"`
	RateStatsPrefix    string        `env:"RATE_STATS_PREFIX" envDefault:"ratelimit:stats"`
	RateStatsTTL       time.Duration `env:"RATE_STATS_TTL" envDefault:"24h"`
	RateStatsBucket    string        `env:"RATE_STATS_BUCKET" envDefault:"minute"`
	RateStatsTrackKeys bool          `env:"RATE_STATS_TRACK_KEYS" envDefault:"false"`

	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
}

func readConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))

	switch cfg.Backend {
	case "redis":
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return config{}, errors.New("REDIS_ADDR is required when BACKEND=redis")
		}
	case "memory":
	default:
		return config{}, fmt.Errorf("BACKEND must be redis or memory, got %q", cfg.Backend)
	}

	if cfg.RateCapacity <= 0 {
		return config{}, errors.New("RATE_CAPACITY must be > 0")
	}
	if cfg.RateWindow <= 0 {
		return config{}, errors.New("RATE_WINDOW must be > 0")
	}
	if cfg.CacheTTL <= 0 {
		return config{}, errors.New("CACHE_TTL must be > 0")
	}
	if cfg.ComputeMax < 0 {
		return config{}, errors.New("COMPUTE_MAX must be >= 0")
	}
	if cfg.RateStatsEnabled && cfg.Backend != "redis" {
		return config{}, errors.New("RATE_STATS_ENABLED requires BACKEND=redis")
	}
	if strings.Trim(cfg.RateStatsPrefix, ": ") == "" {
		return config{}, errors.New("RATE_STATS_PREFIX must not be empty")
	}
	if infra.InBucketKeyspace(cfg.RateStatsPrefix) {
		return config{}, fmt.Errorf("RATE_STATS_PREFIX %q overlaps the rate limit buckets (%s:*)", cfg.RateStatsPrefix, infra.DefaultBucketPrefix)
	}
	return cfg, nil
}
