package melspec

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-beat/internal/testutil"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }},
		{"fft size one", func(c *Config) { c.FFTSize = 1 }},
		{"zero hop", func(c *Config) { c.HopSize = 0 }},
		{"zero mel bins", func(c *Config) { c.MelBins = 0 }},
		{"inverted frequency range", func(c *Config) { c.FreqMin = 5000; c.FreqMax = 100 }},
		{"zero amplitude floor", func(c *Config) { c.AmpFloor = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("New() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestFrameRate(t *testing.T) {
	e, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := e.FrameRate(); got != 50 {
		t.Fatalf("FrameRate() = %v, want 50", got)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	e, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	frames, err := e.Extract(nil)
	if err != nil {
		t.Fatalf("Extract(nil) error = %v", err)
	}
	if frames != nil {
		t.Fatalf("Extract(nil) = %d frames, want none", len(frames))
	}
}

func TestExtractFrameCount(t *testing.T) {
	cfg := DefaultConfig()
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		samples int
		frames  int
	}{
		// (n + 2*512 - 1024)/441 + 1 = n/441 + 1
		{22050, 51},
		{441, 2},
		{440, 1},
		{1, 1},
	}
	for _, tc := range tests {
		in := testutil.DeterministicSine(440, float64(cfg.SampleRate), 0.5, tc.samples)
		frames, err := e.Extract(in)
		if err != nil {
			t.Fatalf("Extract(%d samples) error = %v", tc.samples, err)
		}
		if len(frames) != tc.frames {
			t.Fatalf("Extract(%d samples) = %d frames, want %d", tc.samples, len(frames), tc.frames)
		}
		for i, row := range frames {
			if len(row) != cfg.MelBins {
				t.Fatalf("frame %d has %d bins, want %d", i, len(row), cfg.MelBins)
			}
			testutil.RequireFinite(t, row)
		}
	}
}

func TestExtractBitReproducible(t *testing.T) {
	in := testutil.DeterministicSine(880, 22050, 0.8, 22050)

	e1, _ := New(DefaultConfig())
	e2, _ := New(DefaultConfig())

	a, err := e1.Extract(in)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	b, err := e2.Extract(in)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	for f := range a {
		for m := range a[f] {
			if a[f][m] != b[f][m] {
				t.Fatalf("frame %d bin %d differs: %v vs %v", f, m, a[f][m], b[f][m])
			}
		}
	}
}

func TestExtractSilence(t *testing.T) {
	cfg := DefaultConfig()
	e, _ := New(cfg)

	frames, err := e.Extract(make([]float64, 22050))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := math.Log1p(cfg.LogMultiplier * cfg.AmpFloor)
	for f, row := range frames {
		for m, v := range row {
			if v != want {
				t.Fatalf("frame %d bin %d = %v, want floor %v", f, m, v, want)
			}
		}
	}
}

func TestToneLightsUpMatchingBand(t *testing.T) {
	// Energy from a pure tone should concentrate in the mel bands whose
	// triangles cover its frequency.
	cfg := DefaultConfig()
	e, _ := New(cfg)

	const freq = 1000.0
	in := testutil.DeterministicSine(freq, float64(cfg.SampleRate), 0.9, 22050)
	frames, err := e.Extract(in)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	mid := frames[len(frames)/2]

	best := 0
	for m, v := range mid {
		if v > mid[best] {
			best = m
		}
	}

	// Locate the band whose center is nearest the tone.
	wantBand := 0
	bestDiff := math.Inf(1)
	for m := range cfg.MelBins {
		mel := hzToMel(cfg.FreqMin) + (hzToMel(cfg.FreqMax)-hzToMel(cfg.FreqMin))*float64(m+1)/float64(cfg.MelBins+1)
		if diff := math.Abs(melToHz(mel) - freq); diff < bestDiff {
			bestDiff = diff
			wantBand = m
		}
	}

	if absInt(best-wantBand) > 2 {
		t.Fatalf("peak band = %d, want within 2 of %d", best, wantBand)
	}
}

func TestReflectIndex(t *testing.T) {
	tests := []struct {
		j, n, want int
	}{
		{0, 5, 0},
		{4, 5, 4},
		{-1, 5, 1},
		{-4, 5, 4},
		{5, 5, 3},
		{7, 5, 1},
		{8, 5, 0},
		{-3, 1, 0},
		{2, 1, 0},
	}
	for _, tc := range tests {
		if got := reflectIndex(tc.j, tc.n); got != tc.want {
			t.Fatalf("reflectIndex(%d, %d) = %d, want %d", tc.j, tc.n, got, tc.want)
		}
	}
}

func TestMelScaleRoundTrip(t *testing.T) {
	for _, hz := range []float64{30, 200, 999, 1000, 1001, 4000, 11000} {
		back := melToHz(hzToMel(hz))
		if math.Abs(back-hz) > 1e-6*hz {
			t.Fatalf("mel round trip %v -> %v", hz, back)
		}
	}
}

func TestFilterbankShapeAndSupport(t *testing.T) {
	cfg := DefaultConfig()
	bank := melFilterbank(cfg)

	if len(bank) != cfg.MelBins {
		t.Fatalf("bands = %d, want %d", len(bank), cfg.MelBins)
	}

	binHz := float64(cfg.SampleRate) / float64(cfg.FFTSize)
	for m, filter := range bank {
		if len(filter) != cfg.FFTSize/2+1 {
			t.Fatalf("band %d has %d bins", m, len(filter))
		}

		var sum float64
		for k, w := range filter {
			if w < 0 || w > 1 {
				t.Fatalf("band %d bin %d weight %v outside [0,1]", m, k, w)
			}
			hz := float64(k) * binHz
			if w > 0 && (hz < cfg.FreqMin-binHz || hz > cfg.FreqMax+binHz) {
				t.Fatalf("band %d bin %d (%.1f Hz) outside configured range", m, k, hz)
			}
			sum += w
		}
		if sum == 0 {
			t.Fatalf("band %d is empty", m)
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
