package utils

import (
	"testing"
)

func TestNewRandSource(t *testing.T) {
	// Test with seed
	rng1 := NewRandSource(12345)
	if rng1 == nil {
		t.Fatal("Expected RandSource to be created")
	}

	// Test with zero seed (should use current time)
	rng2 := NewRandSource(0)
	if rng2 == nil {
		t.Fatal("Expected RandSource to be created with zero seed")
	}
}

func TestRandSourceFloat64(t *testing.T) {
	rng := NewRandSource(12345)

	for i := 0; i < 100; i++ {
		val := rng.Float64()
		if val < 0 || val >= 1.0 {
			t.Errorf("Float64() returned value outside [0, 1): %f", val)
		}
	}
}

func TestRandSourceDeterminism(t *testing.T) {
	rng1 := NewRandSource(42)
	rng2 := NewRandSource(42)

	for i := 0; i < 50; i++ {
		if rng1.Float64() != rng2.Float64() {
			t.Fatal("Same seed should produce identical sequences")
		}
	}
}

func TestRandSourceUniformFloat64(t *testing.T) {
	rng := NewRandSource(12345)

	min, max := 2.5, 7.5
	for i := 0; i < 100; i++ {
		val := rng.UniformFloat64(min, max)
		if val < min || val >= max {
			t.Errorf("UniformFloat64(%f, %f) returned %f", min, max, val)
		}
	}
}

func TestRandSourceNormFloat64(t *testing.T) {
	rng := NewRandSource(12345)

	mean, stddev := 10.0, 2.0
	sum := 0.0
	n := 10000
	for i := 0; i < n; i++ {
		sum += rng.NormFloat64(mean, stddev)
	}
	sampleMean := sum / float64(n)

	if sampleMean < mean-0.2 || sampleMean > mean+0.2 {
		t.Errorf("Sample mean %f too far from %f", sampleMean, mean)
	}
}

func TestRandSourcePerm(t *testing.T) {
	rng := NewRandSource(7)

	perm := rng.Perm(10)
	if len(perm) != 10 {
		t.Fatalf("Perm(10) returned %d elements", len(perm))
	}

	seen := make(map[int]bool)
	for _, v := range perm {
		if v < 0 || v >= 10 {
			t.Errorf("Perm value out of range: %d", v)
		}
		if seen[v] {
			t.Errorf("Perm value repeated: %d", v)
		}
		seen[v] = true
	}
}

func TestRandSourceDistinctIndexes(t *testing.T) {
	rng := NewRandSource(7)

	for trial := 0; trial < 20; trial++ {
		idx := rng.DistinctIndexes(10, 3, 4)
		if len(idx) != 3 {
			t.Fatalf("Expected 3 indexes, got %d", len(idx))
		}
		seen := make(map[int]bool)
		for _, v := range idx {
			if v == 4 {
				t.Error("Excluded index was drawn")
			}
			if seen[v] {
				t.Errorf("Index repeated: %d", v)
			}
			seen[v] = true
		}
	}
}

func TestDistinctIndexesPanicsWhenTooFew(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic when k+1 > n")
		}
	}()
	rng := NewRandSource(7)
	rng.DistinctIndexes(3, 3, 0)
}

func TestDefaultSource(t *testing.T) {
	SetSeed(99)
	a := Float64()
	SetSeed(99)
	b := Float64()
	if a != b {
		t.Error("SetSeed should make the default source deterministic")
	}

	n := Intn(10)
	if n < 0 || n >= 10 {
		t.Errorf("Intn(10) returned %d", n)
	}
}
