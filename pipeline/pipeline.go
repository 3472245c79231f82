package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"fibonacci-gateway/fibonacci"
	"fibonacci-gateway/metrics"
	"fibonacci-gateway/middleware/ratelimit/domain"
	"fibonacci-gateway/resultstore"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PrecisionSafeThreshold é o menor índice cujo valor não é representado com
// exatidão por consumidores JSON de ponto flutuante. Abaixo dele o valor vai
// como número; a partir dele, como string.
const PrecisionSafeThreshold = 93

type Precision string

const (
	PrecisionInteger Precision = "integer"
	PrecisionString  Precision = "string"
)

var precisionLimit = big.NewInt(PrecisionSafeThreshold)

// PrecisionFor decide como F(n) é codificado no JSON.
func PrecisionFor(n *big.Int) Precision {
	if n.Cmp(precisionLimit) < 0 {
		return PrecisionInteger
	}
	return PrecisionString
}

// Admitter é o estágio de admissão (application.Service).
type Admitter interface {
	Admit(ctx context.Context, key domain.Key, n *big.Int) (domain.Decision, error)
}

// Gate limita cálculos simultâneos (application.ComputeGate).
type Gate interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}

// ComputeFunc calcula F(n). Padrão: fibonacci.Compute.
type ComputeFunc func(n *big.Int) (*big.Int, fibonacci.Algorithm)

type Request struct {
	// Client é a identidade opaca usada como chave do bucket.
	Client string
	Index  *big.Int
	// IfNoneMatch é o fingerprint que o cliente já tem, se houver.
	IfNoneMatch string
}

type Response struct {
	Index       *big.Int
	Value       string
	ETag        string
	Precision   Precision
	NotModified bool
	Cached      bool

	// Preenchidos apenas em cache miss.
	ComputeDuration time.Duration
	Algorithm       fibonacci.Algorithm

	Decision domain.Decision
}

// JSONValue devolve o valor já na variante de saída: json.Number ou string.
func (r Response) JSONValue() any {
	if r.Precision == PrecisionInteger {
		return json.Number(r.Value)
	}
	return r.Value
}

type Pipeline struct {
	admission Admitter
	store     resultstore.Store
	gate      Gate
	compute   ComputeFunc
	logger    *zap.Logger

	// inflight evita cálculos duplicados do mesmo n nesta instância.
	// Entre instâncias a duplicação é benigna: o resultado é determinístico.
	inflight singleflight.Group
}

type Option func(*Pipeline)

func WithGate(g Gate) Option { return func(p *Pipeline) { p.gate = g } }

func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

func WithComputeFunc(fn ComputeFunc) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.compute = fn
		}
	}
}

func New(admission Admitter, store resultstore.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		admission: admission,
		store:     store,
		compute:   fibonacci.Compute,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle executa a requisição. Erros possíveis: ErrInvalidInput, *QuotaError,
// ErrBackendUnavailable (fail-closed) e ErrBusy.
func (p *Pipeline) Handle(ctx context.Context, req Request) (Response, error) {
	n := req.Index
	if n == nil || n.Sign() < 0 {
		return Response{}, ErrInvalidInput
	}

	dec, err := p.admission.Admit(ctx, domain.Key(req.Client), n)
	if err != nil {
		p.logger.Error("admission backend failure", zap.String("client", req.Client), zap.Error(err))
		return Response{}, fmt.Errorf("%w: admission: %w", ErrBackendUnavailable, err)
	}
	if !dec.Allowed {
		return Response{Decision: dec}, &QuotaError{Decision: dec}
	}

	resp := Response{
		Index:     n,
		Precision: PrecisionFor(n),
		Decision:  dec,
	}

	value, ok, err := p.store.Get(ctx, n)
	if err != nil {
		p.logger.Error("result cache read failure", zap.Stringer("n", n), zap.Error(err))
		return Response{}, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	if ok {
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		resp.Cached = true
	} else {
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()

		res, err := p.computeOnce(ctx, n)
		if err != nil {
			return Response{}, err
		}
		if err := p.store.Put(ctx, n, res.value); err != nil {
			p.logger.Error("result cache write failure", zap.Stringer("n", n), zap.Error(err))
			return Response{}, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}

		value = res.value
		resp.ComputeDuration = res.duration
		resp.Algorithm = res.algorithm
		p.logger.Debug("fibonacci computed",
			zap.Stringer("n", n),
			zap.String("algorithm", string(res.algorithm)),
			zap.Duration("duration", res.duration),
			zap.Int("digits", len(res.value)),
		)
	}

	resp.Value = value
	resp.ETag = resultstore.ETag(value)
	resp.NotModified = resultstore.MatchesIfNoneMatch(req.IfNoneMatch, resp.ETag)
	return resp, nil
}

type computed struct {
	value     string
	algorithm fibonacci.Algorithm
	duration  time.Duration
}

func (p *Pipeline) computeOnce(ctx context.Context, n *big.Int) (computed, error) {
	v, err, _ := p.inflight.Do(n.String(), func() (any, error) {
		if p.gate != nil {
			release, ok := p.gate.Acquire(ctx)
			if !ok {
				return nil, ErrBusy
			}
			defer release()
		}

		start := time.Now()
		val, alg := p.compute(n)
		dur := time.Since(start)
		metrics.ComputeDurationSeconds.WithLabelValues(string(alg)).Observe(dur.Seconds())

		return computed{value: val.String(), algorithm: alg, duration: dur}, nil
	})
	if err != nil {
		return computed{}, err
	}
	return v.(computed), nil
}
