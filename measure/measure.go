// Package measure assigns 1-based in-measure ordinals to a decoded beat
// sequence, handling pickup (anacrusis) measures.
package measure

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDecodeInvariant indicates a downbeat with no matching beat. The decoder
// guarantees downbeats are a subset of beats, so tripping this check means a
// decoder defect, not bad input; it is fatal and returns no partial result.
var ErrDecodeInvariant = errors.New("measure: downbeat is not a beat")

// WarningCode classifies non-fatal numbering conditions.
type WarningCode int

const (
	// WarningAmbiguousPickup reports a pickup measure with at least as many
	// beats as the first full measure. Its true length is not estimated.
	WarningAmbiguousPickup WarningCode = iota + 1
	// WarningFewDownbeats reports fewer than two downbeats, leaving no
	// measure-length information to derive pickup ordinals from.
	WarningFewDownbeats
)

// Warning is a non-fatal numbering diagnostic. Warnings never abort
// processing; best-effort ordinals are still returned.
type Warning struct {
	Code    WarningCode
	Message string
}

func (w Warning) String() string {
	return w.Message
}

type config struct {
	tolerance float64
}

// Option configures numbering.
type Option func(*config)

// WithTolerance sets the absolute tolerance in seconds for matching a beat
// against a downbeat. The default of 1e-6 s suits decoder output, where
// downbeat times are exact copies of beat times.
func WithTolerance(seconds float64) Option {
	return func(cfg *config) {
		if seconds > 0 {
			cfg.tolerance = seconds
		}
	}
}

// Number assigns an ordinal to every beat: 1 exactly at downbeats, counting
// up in between. Both inputs must be ascending and downbeats must be a
// subset of beats within the tolerance.
//
// Number is pure: identical inputs always yield identical ordinals.
func Number(beats, downbeats []float64, opts ...Option) ([]int, []Warning, error) {
	cfg := config{tolerance: 1e-6}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := checkSubset(beats, downbeats, cfg.tolerance); err != nil {
		return nil, nil, err
	}

	if len(beats) == 0 {
		return nil, nil, nil
	}

	counter, warnings := initialCounter(beats, downbeats, cfg.tolerance)

	ordinals := make([]int, len(beats))
	next := 0

	for i, t := range beats {
		if next < len(downbeats) && abs(t-downbeats[next]) <= cfg.tolerance {
			counter = 1
			next++
		} else {
			counter++
		}

		ordinals[i] = counter
	}

	return ordinals, warnings, nil
}

// initialCounter derives the counter value preceding the first beat from the
// length of the first full measure and the number of pickup beats.
func initialCounter(beats, downbeats []float64, tolerance float64) (int, []Warning) {
	if len(downbeats) < 2 {
		return 1, []Warning{{
			Code:    WarningFewDownbeats,
			Message: "fewer than two downbeats detected; counting beats without pickup-measure information",
		}}
	}

	// The lower bound honors the matching tolerance, so a downbeat sitting
	// slightly above its beat still counts that beat as the measure start.
	i0 := sort.SearchFloat64s(beats, downbeats[0]-tolerance)
	i1 := sort.SearchFloat64s(beats, downbeats[1]-tolerance)

	beatsInFirstMeasure := i1 - i0
	pickupBeats := i0

	if pickupBeats < beatsInFirstMeasure {
		return beatsInFirstMeasure - pickupBeats, nil
	}

	return 1, []Warning{{
		Code: WarningAmbiguousPickup,
		Message: fmt.Sprintf("pickup measure has %d beats but the first full measure only %d; not estimating its length",
			pickupBeats, beatsInFirstMeasure),
	}}
}

// checkSubset verifies every downbeat has a beat within tolerance.
func checkSubset(beats, downbeats []float64, tolerance float64) error {
	for _, t := range downbeats {
		i := sort.SearchFloat64s(beats, t)

		matched := (i < len(beats) && abs(beats[i]-t) <= tolerance) ||
			(i > 0 && abs(beats[i-1]-t) <= tolerance)
		if !matched {
			return fmt.Errorf("%w: downbeat at %.6f s", ErrDecodeInvariant, t)
		}
	}

	return nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}

	return v
}
