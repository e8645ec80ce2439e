package entropy

import "testing"

func TestSeededDeterministic(t *testing.T) {
	a, b := NewSeeded(42), NewSeeded(42)
	for i := 0; i < 100; i++ {
		if a.Float64() != b.Float64() || a.IntN(10) != b.IntN(10) || a.Int64() != b.Int64() {
			t.Fatalf("draw %d differs between equal seeds", i)
		}
	}
}

func TestUniformRange(t *testing.T) {
	src := NewSeeded(7)
	for i := 0; i < 1000; i++ {
		v := Uniform(src, -0.2, 0.2)
		if v < -0.2 || v >= 0.2 {
			t.Fatalf("Uniform out of range: %v", v)
		}
	}
	if Uniform(src, 0, 0) != 0 {
		t.Fatal("empty interval must yield its bound")
	}
}

func TestChoice(t *testing.T) {
	src := NewSeeded(3)
	items := []string{"a", "b", "c"}
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[Choice(src, items)] = true
	}
	if len(seen) != 3 {
		t.Fatalf("Choice only produced %v", seen)
	}
}

func TestCryptoSeedNonZero(t *testing.T) {
	for i := 0; i < 10; i++ {
		if CryptoSeed() <= 0 {
			t.Fatal("CryptoSeed must be positive")
		}
	}
}

func TestZeroSeedDeterministic(t *testing.T) {
	a, b := NewSeeded(0), NewSeeded(0)
	for i := 0; i < 20; i++ {
		if a.Int64() != b.Int64() {
			t.Fatalf("draw %d differs between two zero-seeded sources", i)
		}
	}
}

func TestWeightedIndex(t *testing.T) {
	src := NewSeeded(9)
	for i := 0; i < 200; i++ {
		if got := WeightedIndex(src, []float64{0, 3, 0, -1}); got != 1 {
			t.Fatalf("picked index %d, only index 1 has weight", got)
		}
	}

	counts := make([]int, 2)
	for i := 0; i < 4000; i++ {
		counts[WeightedIndex(src, []float64{1, 3})]++
	}
	// Expect about 1000 vs 3000.
	if counts[0] < 800 || counts[0] > 1200 {
		t.Fatalf("weight 1 of 4 picked %d/4000 times", counts[0])
	}

	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		seen[WeightedIndex(src, make([]float64, 3))] = true
	}
	if len(seen) != 3 {
		t.Fatalf("uniform fallback only produced %v", seen)
	}
}
