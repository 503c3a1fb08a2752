package beat_test

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-beat/beat"
	"github.com/cwbudde/algo-beat/dsp/resample"
	"github.com/cwbudde/algo-beat/infer"
	"github.com/cwbudde/algo-beat/internal/testutil"
)

// peakScorer emits fixed logit peaks by frame index, ignoring content. Tests
// using it disable the inference border so chunk frames align with global
// frames.
func peakScorer(beatPeriod, beatOffset, downbeatPeriod int) infer.Scorer {
	return infer.ScorerFunc(func(frames [][]float64) (beatLogits, downbeatLogits []float64, err error) {
		n := len(frames)
		beatLogits = testutil.LogitPeaks(n, testutil.PeriodicPeaks(n, beatOffset, beatPeriod), 6, -6)
		downbeatLogits = testutil.LogitPeaks(n, testutil.PeriodicPeaks(n, beatOffset, downbeatPeriod), 6, -6)
		return beatLogits, downbeatLogits, nil
	})
}

func TestNewNilScorer(t *testing.T) {
	if _, err := beat.New(nil); !errors.Is(err, beat.ErrNilScorer) {
		t.Fatalf("New(nil) error = %v, want ErrNilScorer", err)
	}
}

func TestTrackInvalidInput(t *testing.T) {
	tracker, err := beat.New(peakScorer(25, 12, 100))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := tracker.Track([]float64{0.1}, 22050, 0); !errors.Is(err, resample.ErrInvalidInput) {
		t.Fatalf("channels=0 error = %v, want ErrInvalidInput", err)
	}

	if _, err := tracker.Track([]float64{0.1}, -1, 1); !errors.Is(err, resample.ErrInvalidInput) {
		t.Fatalf("rate=-1 error = %v, want ErrInvalidInput", err)
	}
}

func TestTrackEmptyAudio(t *testing.T) {
	tracker, err := beat.New(peakScorer(25, 12, 100))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := tracker.Track(nil, 22050, 1)
	if err != nil {
		t.Fatalf("Track(empty) error = %v", err)
	}
	if len(result.Beats) != 0 || len(result.Downbeats) != 0 {
		t.Fatalf("empty audio produced %d beats, %d downbeats", len(result.Beats), len(result.Downbeats))
	}
}

func TestTrackSilence(t *testing.T) {
	silent := infer.ScorerFunc(func(frames [][]float64) ([]float64, []float64, error) {
		low := testutil.LogitPeaks(len(frames), nil, 0, -9)
		return low, low, nil
	})

	tracker, err := beat.New(silent)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := tracker.Track(make([]float64, 44100), 22050, 1)
	if err != nil {
		t.Fatalf("Track(silence) error = %v", err)
	}
	if len(result.Beats) != 0 {
		t.Fatalf("silence produced %d beats", len(result.Beats))
	}
}

func TestTrackEndToEnd(t *testing.T) {
	// 10 s of stereo audio at the model rate. The scorer marks a beat every
	// 25 frames (0.5 s at 50 fps) starting at frame 12, downbeats every 100
	// frames, so measures have four beats and no pickup exists.
	const seconds = 10
	samples := testutil.DeterministicSine(440, 22050, 0.5, seconds*22050*2)

	tracker, err := beat.New(peakScorer(25, 12, 100),
		beat.WithInference(infer.WithBorder(0)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer tracker.Close()

	result, err := tracker.Track(samples, 22050, 2)
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}

	if len(result.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", result.Warnings)
	}

	if len(result.Beats) == 0 {
		t.Fatal("no beats detected")
	}

	times := make([]float64, len(result.Beats))
	for i, r := range result.Beats {
		times[i] = r.Time

		wantTime := (12 + 25*float64(i)) / 50
		if math.Abs(r.Time-wantTime) > 1e-9 {
			t.Fatalf("beat %d at %v s, want %v", i, r.Time, wantTime)
		}

		wantOrdinal := i%4 + 1
		if r.Ordinal != wantOrdinal {
			t.Fatalf("beat %d ordinal = %d, want %d", i, r.Ordinal, wantOrdinal)
		}
	}

	testutil.RequireStrictlyIncreasing(t, times)

	// Every downbeat must be one of the emitted beat times.
	for _, d := range result.Downbeats {
		i := 0
		for i < len(times) && times[i] != d {
			i++
		}
		if i == len(times) {
			t.Fatalf("downbeat %v missing from beats", d)
		}
	}
}

type closableScorer struct {
	infer.Scorer
	closed bool
}

func (c *closableScorer) Close() error {
	c.closed = true
	return nil
}

func TestCloseReleasesScorer(t *testing.T) {
	scorer := &closableScorer{Scorer: peakScorer(25, 12, 100)}

	tracker, err := beat.New(scorer)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := tracker.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !scorer.closed {
		t.Fatal("Close() did not release the scorer")
	}
}
