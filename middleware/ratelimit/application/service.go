package application

import (
	"context"
	"math/big"
	"time"

	"fibonacci-gateway/middleware/ratelimit/domain"
)

var one = big.NewInt(1)

// Cost é o custo em tokens de pedir F(n): 1 + floor(log10(n+1)), ou seja, o
// número de dígitos decimais de n+1. Índice nulo ou negativo custa 1.
func Cost(n *big.Int) int {
	if n == nil || n.Sign() < 0 {
		return 1
	}
	return len(new(big.Int).Add(n, one).String())
}

// Service concentra a regra de aplicação do rate limit.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Store domain.BucketStore
	Stats domain.StatsStore
	// Now permite fixar o relógio em testes. Padrão: time.Now.
	Now func() time.Time
}

// Admit cobra o custo do índice pedido no bucket do cliente.
//
// Erro só é retornado quando o store falha; rejeição por cota vem como
// Decision.Allowed=false.
func (s Service) Admit(ctx context.Context, key domain.Key, n *big.Int) (domain.Decision, error) {
	cost := Cost(n)
	if s.Store == nil {
		return domain.Decision{Allowed: true, Cost: cost}, nil
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	dec, err := s.Store.Take(ctx, key, cost, now)
	if err != nil {
		return domain.Decision{}, err
	}

	if s.Stats != nil {
		_ = s.Stats.Record(ctx, domain.StatsEvent{
			Key:     key,
			Allowed: dec.Allowed,
			Cost:    cost,
			At:      now,
		})
	}
	return dec, nil
}
