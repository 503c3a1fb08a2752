// Package beat converts raw audio waveforms into time-ordered beat and
// downbeat events with measure-relative ordinal numbering.
//
// A [Tracker] owns an injected scoring model and runs the full batch
// pipeline: mono mix and resampling to the model rate, log-mel feature
// extraction, chunked scoring, probability-based peak-picking decode, and
// pickup-aware beat numbering.
//
//	scorer, err := infer.NewONNXScorer(modelPath, "")
//	// handle err
//	tracker, err := beat.New(scorer)
//	// handle err
//	defer tracker.Close()
//
//	result, err := tracker.Track(samples, 44100, 2)
package beat
