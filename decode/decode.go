// Package decode turns per-frame beat and downbeat logits into discrete,
// strictly increasing beat times.
//
// Peak picking selects frames that are both a local maximum within a sliding
// window and above a minimum probability after sigmoid squashing. Runs of
// accepted frames closer than the merge width collapse to their mean frame,
// which enforces the refractory separation between emitted beats. Downbeat
// candidates are picked the same way and then snapped onto the nearest beat
// within the snap tolerance, so every emitted downbeat time is exactly equal
// to some beat time; candidates with no beat in range are dropped.
package decode

import (
	"errors"
	"math"
	"sort"
)

var (
	// ErrMismatchedLogits indicates the beat and downbeat sequences differ
	// in length.
	ErrMismatchedLogits = errors.New("decode: beat and downbeat logits differ in length")
	// ErrInvalidFrameRate indicates a non-positive frame rate.
	ErrInvalidFrameRate = errors.New("decode: frame rate must be > 0")
)

type config struct {
	minProb    float64
	peakWindow int
	mergeWidth int
	snapTol    float64
}

func defaultConfig() config {
	return config{
		minProb:    0.5,
		peakWindow: 7,
		mergeWidth: 1,
		snapTol:    0.12,
	}
}

// Option configures a [Decoder].
type Option func(*config)

// WithMinProbability sets the minimum squashed probability for an accepted
// peak, in (0, 1).
func WithMinProbability(p float64) Option {
	return func(cfg *config) {
		if p > 0 && p < 1 {
			cfg.minProb = p
		}
	}
}

// WithPeakWindow sets the local-maximum window in frames. The window spans
// frames/2 on each side of a candidate.
func WithPeakWindow(frames int) Option {
	return func(cfg *config) {
		if frames > 0 {
			cfg.peakWindow = frames
		}
	}
}

// WithMergeWidth sets the refractory merge width in frames: accepted frames
// at most this far apart fuse into one peak at their mean position.
func WithMergeWidth(frames int) Option {
	return func(cfg *config) {
		if frames >= 0 {
			cfg.mergeWidth = frames
		}
	}
}

// WithSnapTolerance sets the maximum distance in seconds for snapping a
// downbeat candidate onto a beat. Candidates further than this from every
// beat are discarded.
func WithSnapTolerance(seconds float64) Option {
	return func(cfg *config) {
		if seconds > 0 {
			cfg.snapTol = seconds
		}
	}
}

// Decoder converts logit curves to beat and downbeat times.
type Decoder struct {
	cfg config
}

// New creates a decoder. The zero option set matches the trained model's
// calibration: probability above 0.5, 7-frame peak window, 1-frame merge.
func New(opts ...Option) *Decoder {
	cfg := defaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Decoder{cfg: cfg}
}

// Decode picks beats and downbeats from the logit curves sampled at
// frameRate frames per second.
//
// Beat times are strictly increasing; downbeats are a subset of beats by
// construction. Empty results are valid for silent or non-rhythmic input.
func (d *Decoder) Decode(beatLogits, downbeatLogits []float64, frameRate float64) (beats, downbeats []float64, err error) {
	if len(beatLogits) != len(downbeatLogits) {
		return nil, nil, ErrMismatchedLogits
	}

	if frameRate <= 0 || math.IsNaN(frameRate) {
		return nil, nil, ErrInvalidFrameRate
	}

	beats = d.pickTimes(beatLogits, frameRate)

	candidates := d.pickTimes(downbeatLogits, frameRate)
	downbeats = d.snap(candidates, beats)

	return beats, downbeats, nil
}

// pickTimes runs peak picking on one logit curve and converts the surviving
// frames to seconds.
func (d *Decoder) pickTimes(logits []float64, frameRate float64) []float64 {
	peaks := d.pickFrames(logits)
	if len(peaks) == 0 {
		return nil
	}

	merged := mergePeaks(peaks, d.cfg.mergeWidth)

	times := make([]float64, 0, len(merged))
	for _, frame := range merged {
		t := float64(frame) / frameRate
		// Merging rounds to whole frames; never emit a non-increasing time.
		if n := len(times); n > 0 && t <= times[n-1] {
			continue
		}

		times = append(times, t)
	}

	return times
}

// pickFrames returns frames that hold the maximum of their window and squash
// above the probability threshold. Ties within a window resolve to the
// earliest frame because the comparison is strict against later neighbors.
func (d *Decoder) pickFrames(logits []float64) []int {
	half := d.cfg.peakWindow / 2
	minLogit := logit(d.cfg.minProb)

	var peaks []int

	for i, v := range logits {
		if v <= minLogit {
			continue
		}

		isPeak := true

		for k := max(0, i-half); k <= min(len(logits)-1, i+half); k++ {
			if k == i {
				continue
			}

			// Strictly greater earlier neighbor, or equal-or-greater later
			// neighbor, loses the tie.
			if logits[k] > v || (k < i && logits[k] == v) {
				isPeak = false

				break
			}
		}

		if isPeak {
			peaks = append(peaks, i)
		}
	}

	return peaks
}

// mergePeaks fuses runs of peaks separated by at most width frames into the
// rounded running mean of the run.
func mergePeaks(peaks []int, width int) []int {
	if len(peaks) == 0 {
		return nil
	}

	out := make([]int, 0, len(peaks))

	mean := float64(peaks[0])
	count := 1

	for _, p := range peaks[1:] {
		if float64(p)-mean <= float64(width) {
			count++
			mean += (float64(p) - mean) / float64(count)

			continue
		}

		out = append(out, int(math.Round(mean)))
		mean = float64(p)
		count = 1
	}

	return append(out, int(math.Round(mean)))
}

// snap moves each downbeat candidate onto the nearest beat within the snap
// tolerance and drops the rest. Duplicates from candidates snapping to the
// same beat collapse to one entry.
func (d *Decoder) snap(candidates, beats []float64) []float64 {
	if len(candidates) == 0 || len(beats) == 0 {
		return nil
	}

	out := make([]float64, 0, len(candidates))

	for _, t := range candidates {
		i := sort.SearchFloat64s(beats, t)

		best := -1
		bestDiff := math.Inf(1)

		for _, j := range []int{i - 1, i} {
			if j < 0 || j >= len(beats) {
				continue
			}

			if diff := math.Abs(beats[j] - t); diff < bestDiff {
				best = j
				bestDiff = diff
			}
		}

		if best < 0 || bestDiff > d.cfg.snapTol {
			continue
		}

		snapped := beats[best]
		if n := len(out); n > 0 && out[n-1] == snapped {
			continue
		}

		out = append(out, snapped)
	}

	return out
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
