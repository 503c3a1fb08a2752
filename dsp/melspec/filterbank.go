package melspec

import "math"

// Slaney mel scale: linear below 1 kHz, logarithmic above.
const (
	melLinearStep = 200.0 / 3.0
	melBreakHz    = 1000.0
)

func hzToMel(hz float64) float64 {
	mel := hz / melLinearStep
	if hz < melBreakHz {
		return mel
	}

	logStep := math.Log(6.4) / 27.0

	return melBreakHz/melLinearStep + math.Log(hz/melBreakHz)/logStep
}

func melToHz(mel float64) float64 {
	breakMel := melBreakHz / melLinearStep
	if mel < breakMel {
		return mel * melLinearStep
	}

	logStep := math.Log(6.4) / 27.0

	return melBreakHz * math.Exp(logStep*(mel-breakMel))
}

// melFilterbank builds MelBins triangular filters over the non-negative FFT
// bins, evaluated at each bin's center frequency. The result is mel-major:
// bank[m][k] weights FFT bin k in mel band m.
func melFilterbank(cfg Config) [][]float64 {
	bins := cfg.FFTSize/2 + 1

	melMin := hzToMel(cfg.FreqMin)
	melMax := hzToMel(cfg.FreqMax)

	// MelBins+2 evenly spaced points define the triangle edges.
	edges := make([]float64, cfg.MelBins+2)
	for i := range edges {
		mel := melMin + (melMax-melMin)*float64(i)/float64(cfg.MelBins+1)
		edges[i] = melToHz(mel)
	}

	binHz := float64(cfg.SampleRate) / float64(cfg.FFTSize)

	bank := make([][]float64, cfg.MelBins)
	for m := range bank {
		left := edges[m]
		center := edges[m+1]
		right := edges[m+2]

		filter := make([]float64, bins)
		for k := range filter {
			hz := float64(k) * binHz

			var rising, falling float64
			if center != left {
				rising = (hz - left) / (center - left)
			}

			if right != center {
				falling = (right - hz) / (right - center)
			}

			filter[k] = math.Max(0, math.Min(rising, falling))
		}

		bank[m] = filter
	}

	return bank
}
