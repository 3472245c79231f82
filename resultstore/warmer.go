package resultstore

import (
	"context"
	"math/big"

	"fibonacci-gateway/fibonacci"
	"fibonacci-gateway/metrics"

	"go.uber.org/zap"
)

// WarmRange é o intervalo quente [0, WarmRange) pré-populado na subida.
const WarmRange = 100

// WarmReport resume uma execução do Warmer.
type WarmReport struct {
	Computed int // entradas calculadas e gravadas
	Skipped  int // entradas que já existiam
}

// Warmer pré-popula o cache para os índices [0, Limit). Entradas existentes
// nunca são sobrescritas, então rodar de novo é seguro.
type Warmer struct {
	Store  Store
	Limit  uint64
	Logger *zap.Logger
}

func NewWarmer(store Store, logger *zap.Logger) *Warmer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Warmer{Store: store, Limit: WarmRange, Logger: logger}
}

// Warm roda de forma síncrona; o serviço só deve aceitar tráfego depois dele.
func (w *Warmer) Warm(ctx context.Context) (WarmReport, error) {
	var rep WarmReport
	n := new(big.Int)

	for i := uint64(0); i < w.Limit; i++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		n.SetUint64(i)

		if _, ok, err := w.Store.Get(ctx, n); err != nil {
			return rep, err
		} else if ok {
			rep.Skipped++
			continue
		}

		stored, err := w.Store.PutIfAbsent(ctx, n, fibonacci.Iterative(i).String())
		if err != nil {
			return rep, err
		}
		if stored {
			rep.Computed++
			metrics.WarmupEntriesTotal.Inc()
		} else {
			rep.Skipped++
		}
	}

	w.Logger.Info("result cache warmed",
		zap.Uint64("limit", w.Limit),
		zap.Int("computed", rep.Computed),
		zap.Int("skipped", rep.Skipped),
	)
	return rep, nil
}
