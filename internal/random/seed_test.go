package random

import "testing"

func TestNewSeedVaries(t *testing.T) {
	a, err := NewSeed()
	if err != nil {
		t.Fatalf("new seed: %v", err)
	}
	b, err := NewSeed()
	if err != nil {
		t.Fatalf("new seed: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct seeds")
	}
}

func TestNewFixedSeedIsDeterministic(t *testing.T) {
	r1, s1, err := New(42)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	r2, _, _ := New(42)
	if s1 != 42 {
		t.Fatalf("expected seed 42, got %d", s1)
	}
	for i := 0; i < 10; i++ {
		if r1.Intn(1000) != r2.Intn(1000) {
			t.Fatal("same seed should give the same sequence")
		}
	}
}

func TestNewZeroSeedPicksOne(t *testing.T) {
	_, seed, err := New(0)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if seed == 0 {
		t.Fatal("expected a generated seed")
	}
}
