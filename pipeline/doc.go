// Package pipeline orquestra uma requisição de F(n) na ordem fixa:
//
//  1. valida o índice (nada é tocado se inválido)
//  2. controle de admissão (rejeitado => nenhum acesso a cache ou cálculo)
//  3. consulta o ResultStore
//  4. em miss: vaga de cálculo, FibEngine, grava no ResultStore
//  5. monta a resposta (valor, ETag, precisão, decisão de cota)
//
// O pacote não conhece HTTP; httpapi traduz Response/erros para status e headers.
package pipeline
