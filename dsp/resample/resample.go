package resample

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput indicates a malformed channel count or sample rate.
	ErrInvalidInput = errors.New("resample: invalid channel count or sample rate")
	// ErrResampling indicates a failure in the rate-conversion backend.
	ErrResampling = errors.New("resample: conversion failed")
)

type config struct {
	tapsPerPhase int
	cutoffScale  float64
	kaiserBeta   float64
	maxDen       int
}

func defaultConfig() config {
	return config{
		tapsPerPhase: 32,
		cutoffScale:  0.92,
		kaiserBeta:   7.5,
		maxDen:       4096,
	}
}

// Option configures the anti-aliasing filter design.
type Option func(*config)

// WithTapsPerPhase overrides taps per polyphase branch.
func WithTapsPerPhase(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.tapsPerPhase = n
		}
	}
}

// WithCutoffScale overrides normalized cutoff scaling in range (0, 1].
// 1.0 equals the theoretical anti-aliasing cutoff.
func WithCutoffScale(v float64) Option {
	return func(cfg *config) {
		if v > 0 && v <= 1 {
			cfg.cutoffScale = v
		}
	}
}

// WithKaiserBeta overrides the Kaiser window beta parameter.
func WithKaiserBeta(beta float64) Option {
	return func(cfg *config) {
		if beta >= 0 {
			cfg.kaiserBeta = beta
		}
	}
}

// Converter performs rational sample-rate conversion using a polyphase FIR.
//
// A Converter is stateless between calls: each Convert processes one complete
// recording. The pipeline is batch-oriented, so no streaming history is kept.
type Converter struct {
	up   int
	down int

	phases     [][]float64
	maxPhaseLn int
}

// NewConverter designs a converter for the rational approximation of
// outRate/inRate.
func NewConverter(inRate, outRate float64, opts ...Option) (*Converter, error) {
	if inRate <= 0 || outRate <= 0 || math.IsNaN(inRate) || math.IsNaN(outRate) {
		return nil, ErrInvalidInput
	}

	cfg := defaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	up, down := approximateRatio(outRate/inRate, cfg.maxDen)

	phases, maxPhaseLn, err := designPolyphaseFIR(up, down, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResampling, err)
	}

	return &Converter{
		up:         up,
		down:       down,
		phases:     phases,
		maxPhaseLn: maxPhaseLn,
	}, nil
}

// Ratio returns the reduced up/down conversion factors.
func (c *Converter) Ratio() (up, down int) {
	return c.up, c.down
}

// OutputLen returns the number of samples Convert produces for inputLen.
func (c *Converter) OutputLen(inputLen int) int {
	if inputLen <= 0 {
		return 0
	}

	count := 0
	phase := 0

	for i := 0; i < inputLen; {
		count++

		phase += c.down
		i += phase / c.up
		phase %= c.up
	}

	return count
}

// Convert resamples one complete recording.
//
// Samples outside the input are treated as zero, so the output length equals
// OutputLen(len(input)) deterministically; the small deviation from the ideal
// length ratio comes from the filter group delay.
func (c *Converter) Convert(input []float64) []float64 {
	if len(input) == 0 {
		return nil
	}

	out := make([]float64, 0, c.OutputLen(len(input)))

	phase := 0

	for i := 0; i < len(input); {
		taps := c.phases[phase]

		var y float64

		for k, coeff := range taps {
			idx := i - k
			if idx < 0 {
				break
			}

			y += coeff * input[idx]
		}

		out = append(out, y)

		phase += c.down
		i += phase / c.up
		phase %= c.up
	}

	return out
}

// Downmix averages interleaved PCM frames down to a single channel. When
// len(interleaved) is not a multiple of channels the trailing partial frame
// is dropped.
func Downmix(interleaved []float64, channels int) ([]float64, error) {
	if channels < 1 {
		return nil, ErrInvalidInput
	}

	if channels == 1 {
		mono := make([]float64, len(interleaved))
		copy(mono, interleaved)

		return mono, nil
	}

	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	inv := 1 / float64(channels)

	for i := range frames {
		var sum float64
		for ch := range channels {
			sum += interleaved[i*channels+ch]
		}

		mono[i] = sum * inv
	}

	return mono, nil
}

// Prepare mono-mixes interleaved PCM and converts it to outRate.
//
// When inRate already equals outRate the mono mix is returned unchanged.
func Prepare(interleaved []float64, channels int, inRate, outRate float64, opts ...Option) ([]float64, error) {
	if inRate <= 0 || outRate <= 0 {
		return nil, ErrInvalidInput
	}

	mono, err := Downmix(interleaved, channels)
	if err != nil {
		return nil, err
	}

	if inRate == outRate {
		return mono, nil
	}

	conv, err := NewConverter(inRate, outRate, opts...)
	if err != nil {
		return nil, err
	}

	return conv.Convert(mono), nil
}
