// Package resultstore guarda F(n) já calculados, como string decimal, num
// backend compartilhado com TTL, e deriva o fingerprint (ETag) do conteúdo.
//
// Os valores são funções puras de n: regravar uma entrada nunca muda o
// conteúdo, só renova o TTL. Por isso não há invalidação nem compare-and-swap.
//
// Implementações:
//
//   - RedisStore: chaves `fib:{n}` no Redis (várias instâncias)
//   - MemoryStore: LRU com expiração em memória (uma instância, dev/testes)
//
// Warmer pré-popula o intervalo quente [0, 100) na subida do serviço.
package resultstore
