// Package httpapi expõe o pipeline em GET /v1/fib e traduz respostas e erros
// para status, headers e corpo JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"fibonacci-gateway/middleware/ratelimit"
	"fibonacci-gateway/middleware/ratelimit/domain"
	"fibonacci-gateway/pipeline"
	"fibonacci-gateway/resultstore"

	"go.uber.org/zap"
)

const (
	HeaderPrecision   = "X-Precision"
	HeaderCache       = "X-Cache"
	HeaderComputeTime = "X-Compute-Time-Us"
	HeaderAlgorithm   = "X-Fib-Algorithm"

	msgNotInteger  = "Query parameter n must be an integer."
	msgQuota       = "Rate limit exceeded."
	msgUnavailable = "Service temporarily unavailable."
	msgBusy        = "Server is busy, try again later."
	msgInternal    = "Internal server error."
)

// Service é o pipeline visto pelo handler.
type Service interface {
	Handle(ctx context.Context, req pipeline.Request) (pipeline.Response, error)
}

type Options struct {
	KeyFn  ratelimit.KeyFunc
	Policy domain.Policy
	Logger *zap.Logger
}

type Handler struct {
	svc    Service
	keyFn  ratelimit.KeyFunc
	policy domain.Policy
	logger *zap.Logger
}

func NewHandler(svc Service, opts Options) *Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = ratelimit.DefaultKeyFunc("", false)
	}
	if opts.Policy.Capacity == 0 {
		opts.Policy = domain.DefaultPolicy()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Handler{svc: svc, keyFn: opts.KeyFn, policy: opts.Policy, logger: opts.Logger}
}

type fibBody struct {
	N         json.Number `json:"n"`
	Fibonacci any         `json:"fibonacci"`
}

type errorBody struct {
	Detail string `json:"detail"`
}

// ServeFib atende GET /v1/fib?n=<int>.
func (h *Handler) ServeFib(w http.ResponseWriter, r *http.Request) {
	n, ok := parseIndex(r.URL.Query().Get("n"))
	if !ok {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: msgNotInteger})
		return
	}

	resp, err := h.svc.Handle(r.Context(), pipeline.Request{
		Client:      h.keyFn(r),
		Index:       n,
		IfNoneMatch: r.Header.Get("If-None-Match"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	hdr := w.Header()
	ratelimit.WriteDecision(hdr, resp.Decision)
	ratelimit.WritePolicy(hdr, h.policy)
	hdr.Set("ETag", resp.ETag)
	hdr.Set("Cache-Control", resultstore.CacheControl)
	hdr.Set(HeaderPrecision, string(resp.Precision))
	if resp.Cached {
		hdr.Set(HeaderCache, "HIT")
	} else {
		hdr.Set(HeaderCache, "MISS")
		hdr.Set(HeaderComputeTime, strconv.FormatInt(resp.ComputeDuration.Microseconds(), 10))
		hdr.Set(HeaderAlgorithm, string(resp.Algorithm))
	}

	if resp.NotModified {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, fibBody{
		N:         json.Number(resp.Index.String()),
		Fibonacci: resp.JSONValue(),
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var qe *pipeline.QuotaError
	switch {
	case errors.Is(err, pipeline.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: pipeline.InvalidInputMessage})
	case errors.As(err, &qe):
		ratelimit.WriteDecision(w.Header(), qe.Decision)
		ratelimit.WritePolicy(w.Header(), h.policy)
		writeJSON(w, http.StatusTooManyRequests, errorBody{Detail: msgQuota})
	case errors.Is(err, pipeline.ErrBusy):
		w.Header().Set(ratelimit.HeaderRetryAfter, "1")
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Detail: msgBusy})
	case errors.Is(err, pipeline.ErrBackendUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Detail: msgUnavailable})
	default:
		h.logger.Error("unexpected pipeline error",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorBody{Detail: msgInternal})
	}
}

// parseIndex aceita qualquer inteiro decimal (inclusive negativo, que o
// pipeline rejeita com 400). Vazio ou não numérico => false (422).
func parseIndex(raw string) (*big.Int, bool) {
	if raw == "" {
		return nil, false
	}
	n, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(body)
}
