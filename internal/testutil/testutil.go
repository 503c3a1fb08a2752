// Package testutil provides deterministic signals, synthetic logit curves
// and tolerance assertions shared by the package tests.
package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireStrictlyIncreasing fails t unless each element exceeds its
// predecessor.
func RequireStrictlyIncreasing(t *testing.T, data []float64) {
	t.Helper()
	for i := 1; i < len(data); i++ {
		if data[i] <= data[i-1] {
			t.Fatalf("index %d: %v not greater than %v", i, data[i], data[i-1])
		}
	}
}

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// LogitPeaks builds a flat logit curve of the given length with isolated
// single-frame peaks. Frames listed in peaks carry the high value, all
// others the low value.
func LogitPeaks(length int, peaks []int, high, low float64) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = low
	}
	for _, p := range peaks {
		if p >= 0 && p < length {
			out[p] = high
		}
	}
	return out
}

// PeriodicPeaks returns peak frame positions starting at offset and stepping
// period until length is reached.
func PeriodicPeaks(length, offset, period int) []int {
	var out []int
	for p := offset; p < length; p += period {
		out = append(out, p)
	}
	return out
}
