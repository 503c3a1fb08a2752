// Package click synthesizes an audible click track from numbered beat
// records for human monitoring: a short enveloped sine burst per beat, one
// octave higher at downbeats.
package click

import (
	"math"

	"github.com/cwbudde/algo-beat/beat"
)

const (
	beatDuration = 0.1  // seconds per click
	attackTime   = 0.01 // seconds of linear fade-in
	decayTime    = 0.05 // seconds of linear fade-out

	downbeatHz = 880.0
	beatHz     = 440.0
)

// Synthesize renders a mono click track at sampleRate. Clicks are mixed
// additively at their beat offsets; samples falling before time zero are
// discarded, and the result is peak normalized only when it would clip.
func Synthesize(records []beat.Record, sampleRate int) []float64 {
	if len(records) == 0 || sampleRate <= 0 {
		return nil
	}

	last := records[len(records)-1].Time
	total := int((last + beatDuration + decayTime) * float64(sampleRate))
	if total <= 0 {
		return nil
	}

	out := make([]float64, total)

	for _, r := range records {
		freq := beatHz
		if r.Ordinal == 1 {
			freq = downbeatHz
		}

		burst := sineBurst(freq, sampleRate)
		start := int(r.Time * float64(sampleRate))

		// Times may be negative in hand-written input; only the in-range
		// part of the burst is mixed.
		for i, v := range burst {
			j := start + i
			if j < 0 {
				continue
			}

			if j >= total {
				break
			}

			out[j] += v
		}
	}

	peak := 0.0
	for _, v := range out {
		peak = math.Max(peak, math.Abs(v))
	}

	if peak > 1 {
		for i := range out {
			out[i] /= peak
		}
	}

	return out
}

func sineBurst(freq float64, sampleRate int) []float64 {
	n := int(beatDuration * float64(sampleRate))
	attack := int(attackTime * float64(sampleRate))
	decay := int(decayTime * float64(sampleRate))

	out := make([]float64, n)
	for i := range out {
		amp := 1.0

		switch {
		case i < attack:
			amp = float64(i) / float64(attack)
		case i > n-decay:
			amp = float64(n-i) / float64(decay)
		}

		t := float64(i) / float64(sampleRate)
		out[i] = amp * math.Sin(2*math.Pi*freq*t)
	}

	return out
}
