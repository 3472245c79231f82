// Package ratelimit é o adapter HTTP (net/http) do controle de admissão.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (custo, decisão allow/deny, vaga de cálculo) sem net/http
//   - infra: implementações concretas (bucket Redis/memória, stats, semáforo)
//   - ratelimit (este pacote): extração da chave do cliente + tradução da decisão para headers
//
// A cobrança de cota não é um middleware: ela é um estágio explícito do
// pipeline (pacote pipeline), executado antes do cache. Este pacote só fornece
// a chave do cliente e escreve os headers de cota na resposta.
//
// Variáveis de ambiente do binário gateway (cmd/gateway) controlam o comportamento,
// como RATE_CAPACITY, RATE_WINDOW, RATE_KEY_HEADER e TRUST_XFF.
package ratelimit
