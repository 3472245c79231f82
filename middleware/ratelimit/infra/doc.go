// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - RedisBucketStore: token bucket compartilhado entre instâncias (script Lua atômico)
//   - Store: token bucket por chave em memória usando golang.org/x/time/rate
//   - RedisStatsStore / MemoryStatsStore / PrometheusStatsStore: estatísticas de decisão
//   - ChanPool: semáforo simples para limitar cálculos concorrentes
package infra
