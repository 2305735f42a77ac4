package random

import (
	"errors"
	"testing"
)

func TestIntRange(t *testing.T) {
	src := New(42)

	for i := 0; i < 1000; i++ {
		v, err := src.IntRange(-3, 3)
		if err != nil {
			t.Fatalf("IntRange(-3, 3) error: %v", err)
		}
		if v < -3 || v > 3 {
			t.Fatalf("IntRange(-3, 3) = %d, out of range", v)
		}
	}

	v, err := src.IntRange(5, 5)
	if err != nil || v != 5 {
		t.Errorf("IntRange(5, 5) = %d, %v; want 5, nil", v, err)
	}
}

func TestIntRangeInvalid(t *testing.T) {
	src := New(1)
	if _, err := src.IntRange(2, 1); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("IntRange(2, 1) error = %v, want ErrInvalidRange", err)
	}
	if _, err := src.FloatRange(2, 1); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("FloatRange(2, 1) error = %v, want ErrInvalidRange", err)
	}
}

func TestSameSeedSameStream(t *testing.T) {
	a := New(7)
	b := New(7)
	for i := 0; i < 100; i++ {
		if x, y := a.Intn(1000), b.Intn(1000); x != y {
			t.Fatalf("streams diverged at draw %d: %d != %d", i, x, y)
		}
	}
}

func TestDeriveDistinct(t *testing.T) {
	seen := make(map[uint64]int)
	for i := 0; i < 64; i++ {
		s := Derive(12345, i)
		if s == 0 {
			t.Fatalf("Derive returned zero seed for index %d", i)
		}
		if prev, ok := seen[s]; ok {
			t.Fatalf("Derive collision between index %d and %d", prev, i)
		}
		seen[s] = i
	}
}

func TestCoinIsRoughlyFair(t *testing.T) {
	src := New(99)
	heads := 0
	const draws = 20000
	for i := 0; i < draws; i++ {
		if src.Coin() {
			heads++
		}
	}
	ratio := float64(heads) / draws
	if ratio < 0.47 || ratio > 0.53 {
		t.Errorf("coin ratio = %.3f, want about 0.5", ratio)
	}
}

func TestNormInt(t *testing.T) {
	src := New(3)
	sum := 0
	const draws = 5000
	for i := 0; i < draws; i++ {
		sum += src.NormInt(125, 25)
	}
	mean := float64(sum) / draws
	if mean < 120 || mean > 130 {
		t.Errorf("NormInt mean = %.2f, want about 125", mean)
	}
}

func TestZeroSeedProducesIndependentStreams(t *testing.T) {
	a := New(0)
	b := New(0)
	same := true
	for i := 0; i < 16; i++ {
		if a.Intn(1<<30) != b.Intn(1<<30) {
			same = false
			break
		}
	}
	if same {
		t.Error("two unseeded streams produced identical output")
	}
}

func TestReseedRestartsStream(t *testing.T) {
	src := New(7)
	first := make([]int, 16)
	for i := range first {
		first[i] = src.Intn(1000)
	}

	src.Reseed(7)
	for i, want := range first {
		if got := src.Intn(1000); got != want {
			t.Fatalf("draw %d after Reseed = %d, want %d", i, got, want)
		}
	}
}

func TestBernoulli(t *testing.T) {
	src := New(5)
	hits := 0
	for i := 0; i < 10000; i++ {
		if src.Bernoulli(0) {
			t.Fatal("Bernoulli(0) returned true")
		}
		if !src.Bernoulli(1) {
			t.Fatal("Bernoulli(1) returned false")
		}
		if src.Bernoulli(0.25) {
			hits++
		}
	}
	if hits < 2200 || hits > 2800 {
		t.Errorf("Bernoulli(0.25) hit %d of 10000", hits)
	}
}
