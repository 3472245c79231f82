// Package fibonacci calcula o n-ésimo número de Fibonacci com precisão arbitrária.
//
// Dois algoritmos convivem:
//
//   - Iterative: recorrência linear do par (F(k), F(k+1)); simples e rápida para n pequeno
//   - FastDoubling: identidades F(2k) e F(2k+1), O(log n) multiplicações de big.Int
//
// Compute escolhe o algoritmo pelo limiar IterativeThreshold. O pacote não tem
// estado nem I/O e pode ser chamado concorrentemente.
package fibonacci
