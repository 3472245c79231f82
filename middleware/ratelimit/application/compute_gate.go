package application

import (
	"context"
	"time"

	"fibonacci-gateway/middleware/ratelimit/domain"
)

// ComputeGate concentra a regra de aquisição/liberação de vagas de cálculo com
// timeout, sem saber nada sobre HTTP.
type ComputeGate struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire tenta adquirir uma vaga.
// - Se `AcquireTimeout <= 0`, espera indefinidamente (até ctx cancelar).
// - Se `AcquireTimeout > 0`, espera até o timeout.
// Retorna (release, ok). Se ok=false, nenhuma vaga foi adquirida.
//
// O timeout vale só para a espera pela vaga; um cálculo já iniciado nunca é interrompido.
func (g ComputeGate) Acquire(ctx context.Context) (func(), bool) {
	if g.Pool == nil {
		return func() {}, true
	}

	if g.AcquireTimeout <= 0 {
		return g.Pool.Acquire(ctx)
	}

	acqCtx, cancel := context.WithTimeout(ctx, g.AcquireTimeout)
	defer cancel()
	return g.Pool.Acquire(acqCtx)
}
