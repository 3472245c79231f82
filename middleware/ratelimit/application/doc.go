// Package application contém os casos de uso (regras de aplicação) do controle
// de admissão e do limite de cálculos concorrentes.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Admit(ctx, key, n) cobra Cost(n) tokens e retorna uma Decision.
package application
