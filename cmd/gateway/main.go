package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fibonacci-gateway/backend"
	"fibonacci-gateway/httpapi"
	"fibonacci-gateway/middleware/ratelimit"
	"fibonacci-gateway/middleware/ratelimit/application"
	"fibonacci-gateway/middleware/ratelimit/domain"
	"fibonacci-gateway/middleware/ratelimit/infra"
	"fibonacci-gateway/pipeline"
	"fibonacci-gateway/resultstore"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := newLogger(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("gateway stopped", zap.Error(err))
	}
}

// deps agrupa o que depende do backend escolhido.
type deps struct {
	buckets domain.BucketStore
	results resultstore.Store
	stats   domain.StatsStore
	health  httpapi.HealthFunc
	close   func() error
}

func openDeps(ctx context.Context, cfg config, policy domain.Policy) (deps, error) {
	if cfg.Backend == "memory" {
		store := infra.NewStore(policy)
		store.StartJanitor(ctx)
		return deps{
			buckets: store,
			results: resultstore.NewMemoryStore(cfg.CacheMemorySize, cfg.CacheTTL),
			stats:   infra.NewPrometheusStatsStore(),
			close:   func() error { return nil },
		}, nil
	}

	be, err := backend.Open(ctx, backend.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return deps{}, err
	}

	stats := infra.MultiStatsStore{infra.NewPrometheusStatsStore()}
	if cfg.RateStatsEnabled {
		stats = append(stats, infra.NewRedisStatsStore(
			be.Client(),
			infra.WithStatsPrefix(cfg.RateStatsPrefix),
			infra.WithStatsTTL(cfg.RateStatsTTL),
			infra.WithStatsBucket(cfg.RateStatsBucket),
			infra.WithStatsTrackKeys(cfg.RateStatsTrackKeys),
		))
	}

	return deps{
		buckets: infra.NewRedisBucketStore(be.Client(), policy),
		results: resultstore.NewRedisStore(be.Client(), resultstore.WithRedisTTL(cfg.CacheTTL)),
		stats:   stats,
		health:  be.Ping,
		close:   be.Close,
	}, nil
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	policy := domain.Policy{Capacity: cfg.RateCapacity, Window: cfg.RateWindow}

	d, err := openDeps(ctx, cfg, policy)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.close(); err != nil {
			logger.Warn("backend close error", zap.Error(err))
		}
	}()

	// o cache quente precisa estar pronto antes do primeiro request
	if cfg.WarmupEnabled {
		if _, err := resultstore.NewWarmer(d.results, logger).Warm(ctx); err != nil {
			return err
		}
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if cfg.ComputeMax > 0 {
		opts = append(opts, pipeline.WithGate(application.ComputeGate{
			Pool:           infra.NewChanPool(cfg.ComputeMax),
			AcquireTimeout: cfg.ComputeAcquireTimeout,
		}))
	}
	p := pipeline.New(application.Service{Store: d.buckets, Stats: d.stats}, d.results, opts...)

	h := httpapi.NewHandler(p, httpapi.Options{
		KeyFn:  ratelimit.DefaultKeyFunc(cfg.RateKeyHeader, cfg.TrustXFF),
		Policy: policy,
		Logger: logger,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httpapi.NewRouter(h, d.health, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// sem WriteTimeout curto: F(n) grande pode levar segundos
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  90 * time.Second,
	}

	logger.Info("gateway listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("backend", cfg.Backend),
		zap.Int("rate_capacity", policy.Capacity),
		zap.Duration("rate_window", policy.Window),
		zap.String("rate_key_header", cfg.RateKeyHeader),
		zap.Bool("trust_xff", cfg.TrustXFF),
		zap.Int("compute_max", cfg.ComputeMax),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
