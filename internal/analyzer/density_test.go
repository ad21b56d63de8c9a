package analyzer

import (
	"math"
	"testing"
)

func TestLogisticDensity_Bounds(t *testing.T) {
	for _, length := range []int{0, 1, 100, 2500, 10000, 1_000_000} {
		d := LogisticDensity(length)
		if d < 0 || d >= 1 {
			t.Errorf("LogisticDensity(%d) = %v, want in [0, 1)", length, d)
		}
	}
}

func TestLogisticDensity_Monotonic(t *testing.T) {
	prev := LogisticDensity(0)
	for length := 100; length <= 20000; length += 100 {
		d := LogisticDensity(length)
		if d < prev {
			t.Fatalf("LogisticDensity(%d) = %v < LogisticDensity(%d) = %v", length, d, length-100, prev)
		}
		prev = d
	}
}

func TestLogisticDensity_Midpoint(t *testing.T) {
	if d := LogisticDensity(densityMidpoint); math.Abs(d-0.5) > 1e-9 {
		t.Errorf("LogisticDensity(midpoint) = %v, want 0.5", d)
	}
}

func TestLogisticDensity_Deterministic(t *testing.T) {
	if LogisticDensity(1234) != LogisticDensity(1234) {
		t.Error("density must be deterministic for a given length")
	}
}
