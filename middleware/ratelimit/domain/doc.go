// Package domain define contratos e tipos de domínio do controle de admissão
// (token bucket ponderado por custo) e do limite de cálculos concorrentes.
//
// Este pacote não depende de net/http, Redis nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar regras de negócio
// de detalhes de infraestrutura.
package domain
