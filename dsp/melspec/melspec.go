package melspec

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// ErrInvalidConfig indicates an unusable extractor configuration.
var ErrInvalidConfig = errors.New("melspec: invalid configuration")

// Config holds the fixed STFT and filterbank parameters.
type Config struct {
	SampleRate    int     // samples per second of the mono input
	FFTSize       int     // analysis window and FFT length
	HopSize       int     // samples between successive frames
	MelBins       int     // number of mel bands
	FreqMin       float64 // lower filterbank edge in Hz
	FreqMax       float64 // upper filterbank edge in Hz
	LogMultiplier float64 // gain applied before log1p compression
	AmpFloor      float64 // floor applied to mel energy before compression
}

// DefaultConfig returns the frontend parameters the trained scoring model
// was fitted against: 22050 Hz, 1024-point FFT, 441-sample hop (50 frames
// per second), 128 mel bands over 30..11000 Hz.
func DefaultConfig() Config {
	return Config{
		SampleRate:    22050,
		FFTSize:       1024,
		HopSize:       441,
		MelBins:       128,
		FreqMin:       30,
		FreqMax:       11000,
		LogMultiplier: 1000,
		AmpFloor:      1e-10,
	}
}

func (c Config) validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.SampleRate)
	case c.FFTSize <= 1:
		return fmt.Errorf("%w: fft size %d", ErrInvalidConfig, c.FFTSize)
	case c.HopSize <= 0:
		return fmt.Errorf("%w: hop size %d", ErrInvalidConfig, c.HopSize)
	case c.MelBins <= 0:
		return fmt.Errorf("%w: mel bins %d", ErrInvalidConfig, c.MelBins)
	case c.FreqMin < 0 || c.FreqMax <= c.FreqMin:
		return fmt.Errorf("%w: frequency range %.1f..%.1f", ErrInvalidConfig, c.FreqMin, c.FreqMax)
	case c.AmpFloor <= 0:
		return fmt.Errorf("%w: amplitude floor %g", ErrInvalidConfig, c.AmpFloor)
	}

	return nil
}

// Extractor computes mel spectrogram frames. It owns its FFT plan and
// scratch buffers and is not safe for concurrent use.
type Extractor struct {
	cfg    Config
	window []float64
	bank   [][]float64 // [MelBins][FFTSize/2+1], mel-major
	plan   *algofft.Plan[complex128]

	fftIn  []complex128
	fftOut []complex128
	re     []float64
	im     []float64
	amp    []float64
}

// New creates an extractor for cfg.
func New(cfg Config) (*Extractor, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	plan, err := algofft.NewPlan64(cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("melspec: fft plan: %w", err)
	}

	bins := cfg.FFTSize/2 + 1

	return &Extractor{
		cfg:    cfg,
		window: hannPeriodic(cfg.FFTSize),
		bank:   melFilterbank(cfg),
		plan:   plan,
		fftIn:  make([]complex128, cfg.FFTSize),
		fftOut: make([]complex128, cfg.FFTSize),
		re:     make([]float64, bins),
		im:     make([]float64, bins),
		amp:    make([]float64, bins),
	}, nil
}

// Config returns the extractor configuration.
func (e *Extractor) Config() Config {
	return e.cfg
}

// FrameRate returns frames per second of the output matrix.
func (e *Extractor) FrameRate() float64 {
	return float64(e.cfg.SampleRate) / float64(e.cfg.HopSize)
}

// Extract computes the [frames][MelBins] log-mel matrix for mono.
//
// Empty input yields an empty matrix. The final partial frame policy follows
// the center convention: with FFTSize/2 reflected samples on each side every
// input sample is covered, and frame count is (len+2*pad-FFTSize)/hop + 1.
func (e *Extractor) Extract(mono []float64) ([][]float64, error) {
	n := len(mono)
	if n == 0 {
		return nil, nil
	}

	pad := e.cfg.FFTSize / 2
	padded := make([]float64, n+2*pad)

	for i := range padded {
		padded[i] = mono[reflectIndex(i-pad, n)]
	}

	frames := (len(padded)-e.cfg.FFTSize)/e.cfg.HopSize + 1
	if frames <= 0 {
		return nil, nil
	}

	norm := 1 / math.Sqrt(float64(e.cfg.FFTSize))
	out := make([][]float64, frames)

	for f := range frames {
		start := f * e.cfg.HopSize
		for j := range e.cfg.FFTSize {
			e.fftIn[j] = complex(padded[start+j]*e.window[j], 0)
		}

		if err := e.plan.Forward(e.fftOut, e.fftIn); err != nil {
			return nil, fmt.Errorf("melspec: fft frame %d: %w", f, err)
		}

		for k := range e.amp {
			e.re[k] = real(e.fftOut[k])
			e.im[k] = imag(e.fftOut[k])
		}

		vecmath.Magnitude(e.amp, e.re, e.im)

		row := make([]float64, e.cfg.MelBins)
		for m, filter := range e.bank {
			var energy float64
			for k, w := range filter {
				energy += e.amp[k] * w
			}

			energy *= norm
			row[m] = math.Log1p(e.cfg.LogMultiplier * math.Max(energy, e.cfg.AmpFloor))
		}

		out[f] = row
	}

	return out, nil
}

// reflectIndex maps a possibly out-of-range index into [0, n) by reflection
// without repeating the edge sample. A single-sample input degenerates to
// that sample.
func reflectIndex(j, n int) int {
	if n == 1 {
		return 0
	}

	period := 2 * (n - 1)

	j %= period
	if j < 0 {
		j += period
	}

	if j >= n {
		j = period - j
	}

	return j
}

// hannPeriodic returns the periodic (FFT framing) Hann window.
func hannPeriodic(size int) []float64 {
	w := make([]float64, size)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size)))
	}

	return w
}
