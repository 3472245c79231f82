package fibonacci

import "math/big"

// IterativeThreshold é o maior índice cujo valor cabe num int64 (F(92)).
// Até ele usamos a recorrência linear; acima, fast doubling.
const IterativeThreshold = 92

// Algorithm identifica o caminho de cálculo usado por Compute.
type Algorithm string

const (
	AlgorithmIterative    Algorithm = "iterative"
	AlgorithmFastDoubling Algorithm = "fast-doubling"
)

// Compute retorna F(n) para n >= 0. O chamador garante que n não é negativo.
func Compute(n *big.Int) (*big.Int, Algorithm) {
	if n.IsUint64() && n.Uint64() <= IterativeThreshold {
		return Iterative(n.Uint64()), AlgorithmIterative
	}
	return FastDoubling(n), AlgorithmFastDoubling
}

// Iterative avança (a, b) = (F(k), F(k+1)) de k=0 até n-1. O(n) somas.
func Iterative(n uint64) *big.Int {
	if n == 0 {
		return new(big.Int)
	}
	a, b := big.NewInt(0), big.NewInt(1)
	for i := uint64(1); i < n; i++ {
		a.Add(a, b)
		a, b = b, a
	}
	return b
}

// FastDoubling percorre os bits de n do mais para o menos significativo
// mantendo (a, b) = (F(k), F(k+1)) para o prefixo k já consumido.
func FastDoubling(n *big.Int) *big.Int {
	a, b := big.NewInt(0), big.NewInt(1)
	c, d, t := new(big.Int), new(big.Int), new(big.Int)

	for i := n.BitLen() - 1; i >= 0; i-- {
		// c = a * (2b - a) => F(2k)
		t.Lsh(b, 1)
		t.Sub(t, a)
		c.Mul(a, t)
		// d = a² + b² => F(2k+1)
		d.Mul(a, a)
		t.Mul(b, b)
		d.Add(d, t)

		if n.Bit(i) == 1 {
			a.Set(d)
			b.Add(c, d)
		} else {
			a.Set(c)
			b.Set(d)
		}
	}
	return a
}
