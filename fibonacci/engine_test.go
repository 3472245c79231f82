package fibonacci

import (
	"math/big"
	"testing"
)

func TestIterativeAndFastDoubling_AgreeUpToThreshold(t *testing.T) {
	a, b := big.NewInt(0), big.NewInt(1)
	for n := uint64(0); n <= IterativeThreshold; n++ {
		it := Iterative(n)
		fd := FastDoubling(new(big.Int).SetUint64(n))
		if it.Cmp(a) != 0 {
			t.Fatalf("iterative F(%d)=%s, expected %s", n, it, a)
		}
		if fd.Cmp(a) != 0 {
			t.Fatalf("fast doubling F(%d)=%s, expected %s", n, fd, a)
		}
		a, b = b, new(big.Int).Add(a, b)
	}
}

func TestIterativeAndFastDoubling_AgreeAboveThreshold(t *testing.T) {
	for _, n := range []uint64{93, 99, 128, 500, 1001, 4096} {
		it := Iterative(n)
		fd := FastDoubling(new(big.Int).SetUint64(n))
		if it.Cmp(fd) != 0 {
			t.Fatalf("algorithms disagree at n=%d", n)
		}
	}
}

func TestCompute_KnownValues(t *testing.T) {
	cases := []struct {
		n    int64
		want string
		alg  Algorithm
	}{
		{0, "0", AlgorithmIterative},
		{1, "1", AlgorithmIterative},
		{2, "1", AlgorithmIterative},
		{10, "55", AlgorithmIterative},
		{50, "12586269025", AlgorithmIterative},
		{92, "7540113804746346429", AlgorithmIterative},
		{93, "12200160415121876738", AlgorithmFastDoubling},
		{100, "354224848179261915075", AlgorithmFastDoubling},
	}
	for _, tc := range cases {
		got, alg := Compute(big.NewInt(tc.n))
		if got.String() != tc.want {
			t.Fatalf("F(%d)=%s, expected %s", tc.n, got, tc.want)
		}
		if alg != tc.alg {
			t.Fatalf("F(%d) used %q, expected %q", tc.n, alg, tc.alg)
		}
	}
}

func TestCompute_F92FitsInt64(t *testing.T) {
	got, _ := Compute(big.NewInt(92))
	if !got.IsInt64() {
		t.Fatalf("expected F(92) to fit int64")
	}
	next, _ := Compute(big.NewInt(93))
	if next.IsInt64() {
		t.Fatalf("expected F(93) to overflow int64")
	}
}

func TestCompute_LargeIndex(t *testing.T) {
	got, alg := Compute(big.NewInt(100000))
	if alg != AlgorithmFastDoubling {
		t.Fatalf("expected fast doubling, got %q", alg)
	}
	if l := len(got.String()); l <= 20000 {
		t.Fatalf("expected more than 20000 digits, got %d", l)
	}
}

func BenchmarkFastDoubling100k(b *testing.B) {
	n := big.NewInt(100000)
	for i := 0; i < b.N; i++ {
		FastDoubling(n)
	}
}
