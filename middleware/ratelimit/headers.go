package ratelimit

import (
	"math"
	"net/http"

	"fibonacci-gateway/middleware/ratelimit/domain"
)

const (
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderCost       = "X-RateLimit-Cost"
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRetryAfter = "Retry-After"
)

// WriteDecision escreve os headers de contabilidade de cota. Vale para
// respostas de sucesso, 304 e 429.
func WriteDecision(h http.Header, dec domain.Decision) {
	h.Set(HeaderRemaining, formatInt(dec.Remaining))
	h.Set(HeaderCost, formatInt(dec.Cost))
	if !dec.Allowed && dec.RetryAfter > 0 {
		h.Set(HeaderRetryAfter, formatInt(int(math.Ceil(dec.RetryAfter.Seconds()))))
	}
}

// WritePolicy anuncia a capacidade do bucket.
func WritePolicy(h http.Header, p domain.Policy) {
	h.Set(HeaderLimit, formatInt(p.Capacity))
}
