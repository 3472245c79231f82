package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fibonacci-gateway/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// takeScript aplica a transição do bucket inteira dentro do Redis, então
// requisições concorrentes do mesmo cliente (em qualquer instância) não
// sobrescrevem o saldo umas das outras. last_refill nunca anda para trás:
// uma instância com relógio atrasado não recria tokens já contados.
//
// KEYS[1] = chave do bucket
// ARGV    = capacity, window (µs), cost, now (µs unix), ttl (ms)
// Retorno = {allowed (0|1), tokens (string)}
var takeScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local cost = tonumber(ARGV[3])
local now = tonumber(ARGV[4])

local tokens = capacity
local anchor = ARGV[4]
local state = redis.call('HMGET', KEYS[1], 'tokens', 'last_refill')
if state[1] and state[2] then
  tokens = tonumber(state[1])
  local last = tonumber(state[2])
  if last > now then
    anchor = state[2]
  end
  local elapsed = now - last
  if elapsed > 0 and window > 0 then
    tokens = tokens + (elapsed / window) * capacity
  end
  if tokens > capacity then
    tokens = capacity
  end
end

local allowed = 0
if tokens >= cost then
  tokens = tokens - cost
  allowed = 1
end

redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'last_refill', anchor)
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return {allowed, tostring(tokens)}
`)

// DefaultBucketPrefix é o namespace dos buckets (`rate_limit:{client}`).
// Nenhum outro componente deve escrever chaves dentro dele.
const DefaultBucketPrefix = "rate_limit"

// RedisBucketStore guarda os buckets em hashes `rate_limit:{client}` com os
// campos tokens e last_refill (µs unix). O registro expira após uma janela
// sem uso; nesse ponto o bucket estaria cheio de qualquer forma.
type RedisBucketStore struct {
	rdb    redis.Scripter
	policy domain.Policy
	prefix string
}

type RedisBucketOption func(*RedisBucketStore)

func WithBucketPrefix(prefix string) RedisBucketOption {
	return func(s *RedisBucketStore) { s.prefix = strings.Trim(prefix, ":") }
}

func NewRedisBucketStore(rdb redis.Scripter, policy domain.Policy, opts ...RedisBucketOption) *RedisBucketStore {
	s := &RedisBucketStore{
		rdb:    rdb,
		policy: policy,
		prefix: DefaultBucketPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisBucketStore) Policy() domain.Policy { return s.policy }

// BucketKey retorna a chave Redis do bucket de um cliente.
func (s *RedisBucketStore) BucketKey(key domain.Key) string {
	return s.prefix + ":" + string(key)
}

// Take implementa domain.BucketStore.
func (s *RedisBucketStore) Take(ctx context.Context, key domain.Key, cost int, now time.Time) (domain.Decision, error) {
	res, err := takeScript.Run(ctx, s.rdb, []string{s.BucketKey(key)},
		s.policy.Capacity,
		s.policy.Window.Microseconds(),
		cost,
		now.UnixMicro(),
		s.policy.Window.Milliseconds(),
	).Slice()
	if err != nil {
		return domain.Decision{}, fmt.Errorf("rate limit bucket %q: %w", key, err)
	}
	if len(res) != 2 {
		return domain.Decision{}, fmt.Errorf("rate limit bucket %q: unexpected script reply %v", key, res)
	}

	allowed, _ := res[0].(int64)
	raw, _ := res[1].(string)
	tokens, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("rate limit bucket %q: parse tokens %q: %w", key, raw, err)
	}

	dec := domain.Decision{
		Allowed:   allowed == 1,
		Cost:      cost,
		Remaining: domain.FloorTokens(tokens),
	}
	if !dec.Allowed {
		dec.RetryAfter = s.policy.RetryAfter(cost, tokens)
	}
	return dec, nil
}
