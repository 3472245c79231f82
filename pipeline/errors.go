package pipeline

import (
	"errors"
	"fmt"

	"fibonacci-gateway/middleware/ratelimit/domain"
)

// InvalidInputMessage é a mensagem exposta ao cliente para índice inválido.
const InvalidInputMessage = "Input must be a non-negative integer."

var (
	ErrInvalidInput       = errors.New(InvalidInputMessage)
	ErrQuotaExceeded      = errors.New("rate limit exceeded")
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrBusy indica que não houve vaga de cálculo dentro do timeout.
	ErrBusy = errors.New("no compute slot available")
)

// QuotaError carrega a decisão de admissão que rejeitou a requisição.
type QuotaError struct {
	Decision domain.Decision
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s: cost %d, remaining %d", ErrQuotaExceeded, e.Decision.Cost, e.Decision.Remaining)
}

func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }
