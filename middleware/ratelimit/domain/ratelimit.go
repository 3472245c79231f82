package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"math"
	"time"
)

// Key identifica o cliente (ex: IP). É opaca para o domínio.
type Key string

// Policy descreve o bucket: Capacity tokens, reabastecidos linearmente ao
// longo de Window (bucket vazio volta a cheio após Window).
type Policy struct {
	Capacity int
	Window   time.Duration
}

func DefaultPolicy() Policy {
	return Policy{Capacity: 100, Window: 60 * time.Second}
}

// TokensPerSecond é a taxa de reabastecimento.
func (p Policy) TokensPerSecond() float64 {
	if p.Window <= 0 {
		return 0
	}
	return float64(p.Capacity) / p.Window.Seconds()
}

// RetryAfter estima quanto tempo falta para o saldo `tokens` cobrir `cost`,
// arredondado para cima em segundos inteiros. Custo acima da capacidade
// nunca é admitido, então não há recomendação (0).
func (p Policy) RetryAfter(cost int, tokens float64) time.Duration {
	rate := p.TokensPerSecond()
	missing := float64(cost) - tokens
	if cost > p.Capacity || missing <= 0 || rate <= 0 {
		return 0
	}
	return time.Duration(math.Ceil(missing/rate)) * time.Second
}

// Decision é o resultado de uma checagem de admissão.
type Decision struct {
	Allowed bool
	// Cost é o custo cobrado (ou que seria cobrado, se rejeitado).
	Cost int
	// Remaining é o piso dos tokens restantes após a decisão.
	Remaining int
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}

// BucketStore aplica atomicamente a transição do bucket de uma chave:
// cria cheio se não existir, reabastece pelo tempo decorrido, rejeita sem
// consumir se tokens < cost, senão consome e persiste.
//
// Erros indicam backend indisponível; nunca significam "rejeitado".
type BucketStore interface {
	Take(ctx context.Context, key Key, cost int, now time.Time) (Decision, error)
}

// FloorTokens converte o saldo fracionário para o valor exposto em headers.
func FloorTokens(tokens float64) int {
	if tokens <= 0 {
		return 0
	}
	return int(math.Floor(tokens))
}
