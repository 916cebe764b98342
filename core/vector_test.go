package core

import (
	"math"
	"testing"
)

func TestCosineSelfSimilarity(t *testing.T) {
	v := []float32{0.3, -1.2, 4.5, 0.01}
	if got := Cosine(v, v); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Cosine(v, v) = %f, want 1.0", got)
	}
}

func TestCosineOrthogonal(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}
	if got := Cosine(a, b); got != 0 {
		t.Errorf("Cosine of orthogonal vectors = %f, want 0", got)
	}
}

func TestCosineOpposite(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-1, -2, -3}
	if got := Cosine(a, b); math.Abs(got+1.0) > 1e-9 {
		t.Errorf("Cosine of opposite vectors = %f, want -1.0", got)
	}
}

func TestCosineDegenerateInputs(t *testing.T) {
	v := []float32{1, 2, 3}
	zero := []float32{0, 0, 0}

	if got := Cosine(v, zero); got != 0 {
		t.Errorf("Cosine(v, zero) = %f, want 0", got)
	}
	if got := Cosine(zero, zero); got != 0 {
		t.Errorf("Cosine(zero, zero) = %f, want 0", got)
	}
	if got := Cosine(v, []float32{1, 2}); got != 0 {
		t.Errorf("Cosine with mismatched lengths = %f, want 0", got)
	}
	if got := Cosine(nil, nil); got != 0 {
		t.Errorf("Cosine(nil, nil) = %f, want 0", got)
	}
}

func TestCosineScaleInvariant(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5, 6}
	scaled := []float32{8, 10, 12}

	if got, want := Cosine(a, scaled), Cosine(a, b); math.Abs(got-want) > 1e-9 {
		t.Errorf("Cosine not scale invariant: %f vs %f", got, want)
	}
}
