package sampler

import (
	"math/rand"
	"testing"
)

func TestNew_InvalidRange(t *testing.T) {
	if _, err := New(5, 5); err == nil {
		t.Error("expected error for empty range [5, 5)")
	}
	if _, err := New(8, 3); err == nil {
		t.Error("expected error for inverted range [8, 3)")
	}
}

func TestSample_Bounds(t *testing.T) {
	s, err := New(2, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 10000; i++ {
		v := s.Sample()
		if v < 2 || v >= 8 {
			t.Fatalf("sample %d outside [2, 8)", v)
		}
	}
}

func TestSample_CoversRange(t *testing.T) {
	s, err := NewWithSource(0, 5, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	seen := make(map[int]bool)
	for i := 0; i < 5000; i++ {
		seen[s.Sample()] = true
	}
	for v := 0; v < 5; v++ {
		if !seen[v] {
			t.Errorf("value %d never sampled", v)
		}
	}
}

func TestSample_SingleValueRange(t *testing.T) {
	s, err := New(4, 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 100; i++ {
		if v := s.Sample(); v != 4 {
			t.Fatalf("expected 4, got %d", v)
		}
	}
}

func TestSample_Deterministic(t *testing.T) {
	a, _ := NewWithSource(10, 100, rand.New(rand.NewSource(42)))
	b, _ := NewWithSource(10, 100, rand.New(rand.NewSource(42)))
	for i := 0; i < 200; i++ {
		if x, y := a.Sample(), b.Sample(); x != y {
			t.Fatalf("draw %d diverged: %d vs %d", i, x, y)
		}
	}
}
