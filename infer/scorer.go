package infer

import "fmt"

// Scorer scores one feature chunk at batch size 1.
//
// Implementations receive a [frames][melBins] matrix and must return beat and
// downbeat logit slices of exactly len(frames) entries each. Scorers are
// shared across concurrent chunk calls and must be safe for concurrent reads.
type Scorer interface {
	Score(frames [][]float64) (beat, downbeat []float64, err error)
}

// ScorerFunc adapts a plain function as a [Scorer].
type ScorerFunc func(frames [][]float64) (beat, downbeat []float64, err error)

// Score implements [Scorer].
func (f ScorerFunc) Score(frames [][]float64) (beat, downbeat []float64, err error) {
	return f(frames)
}

// Error reports a scoring backend failure or output shape mismatch for one
// chunk. Hard failures are all-or-nothing; no partial logits are returned.
type Error struct {
	Chunk       int // chunk index in split order
	Frames      int // frames handed to the scorer
	BeatLen     int // beat logits returned, -1 when the backend failed
	DownbeatLen int // downbeat logits returned, -1 when the backend failed
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("infer: chunk %d (%d frames): %v", e.Chunk, e.Frames, e.Err)
	}

	return fmt.Sprintf("infer: chunk %d shape mismatch: %d frames, got %d beat / %d downbeat logits",
		e.Chunk, e.Frames, e.BeatLen, e.DownbeatLen)
}

func (e *Error) Unwrap() error {
	return e.Err
}
