package infer

import (
	"runtime"
	"sync"
)

// unscoredLogit fills output positions before stitching. It squashes to a
// probability of effectively zero, so an uncovered frame can never produce a
// spurious peak.
const unscoredLogit = -1000.0

type config struct {
	chunkSize int
	border    int
	workers   int
}

func defaultConfig() config {
	return config{
		chunkSize: 1500,
		border:    6,
		workers:   runtime.NumCPU(),
	}
}

// Option configures a [Processor].
type Option func(*config)

// WithChunkSize caps the number of frames handed to the scorer per call.
// Callers hitting backend resource limits may retry with a smaller size.
func WithChunkSize(frames int) Option {
	return func(cfg *config) {
		if frames > 0 {
			cfg.chunkSize = frames
		}
	}
}

// WithBorder overrides the number of frames discarded from each chunk edge
// when stitching.
func WithBorder(frames int) Option {
	return func(cfg *config) {
		if frames >= 0 {
			cfg.border = frames
		}
	}
}

// WithWorkers bounds concurrent scorer calls. One worker forces sequential
// scoring.
func WithWorkers(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.workers = n
		}
	}
}

// Processor invokes a [Scorer] over feature matrices of arbitrary length.
type Processor struct {
	scorer Scorer
	cfg    config
}

// NewProcessor wraps scorer with chunked invocation.
func NewProcessor(scorer Scorer, opts ...Option) *Processor {
	cfg := defaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.chunkSize <= 2*cfg.border {
		cfg.border = 0
	}

	return &Processor{scorer: scorer, cfg: cfg}
}

// chunk is one scorer invocation: frames plus the stitch start offset, which
// may be negative for the zero-padded first chunk.
type chunk struct {
	start  int
	frames [][]float64
}

// Run scores the full feature matrix and returns beat and downbeat logits of
// exactly len(frames) entries each.
//
// Chunks may be scored concurrently; results are stitched by chunk index, so
// output is deterministic regardless of completion order.
func (p *Processor) Run(frames [][]float64) (beat, downbeat []float64, err error) {
	total := len(frames)
	if total == 0 {
		return nil, nil, nil
	}

	chunks := p.split(frames)

	results := make([]struct{ beat, downbeat []float64 }, len(chunks))
	errs := make([]error, len(chunks))

	var wg sync.WaitGroup

	sem := make(chan struct{}, p.cfg.workers)

	for i := range chunks {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			b, d, err := p.scorer.Score(chunks[i].frames)
			if err != nil {
				errs[i] = &Error{Chunk: i, Frames: len(chunks[i].frames), BeatLen: -1, DownbeatLen: -1, Err: err}

				return
			}

			if len(b) != len(chunks[i].frames) || len(d) != len(chunks[i].frames) {
				errs[i] = &Error{Chunk: i, Frames: len(chunks[i].frames), BeatLen: len(b), DownbeatLen: len(d)}

				return
			}

			results[i].beat = b
			results[i].downbeat = d
		}(i)
	}

	wg.Wait()

	for _, e := range errs {
		if e != nil {
			return nil, nil, e
		}
	}

	beat = fill(total, unscoredLogit)
	downbeat = fill(total, unscoredLogit)

	// Keep-first overlap resolution: stitch in reverse so earlier chunks win.
	for i := len(chunks) - 1; i >= 0; i-- {
		p.stitch(beat, downbeat, chunks[i].start, results[i].beat, results[i].downbeat)
	}

	return beat, downbeat, nil
}

// split produces overlapping chunks stepping chunkSize-2*border frames, with
// the borders zero-padded at the sequence edges. The final start is pulled
// back so the last chunk is never a short stub.
func (p *Processor) split(frames [][]float64) []chunk {
	total := len(frames)
	border := p.cfg.border
	step := p.cfg.chunkSize - 2*border

	var starts []int
	for start := -border; start < total-border; start += step {
		starts = append(starts, start)
	}

	if total > step {
		starts[len(starts)-1] = total - (p.cfg.chunkSize - border)
	}

	bins := len(frames[0])
	chunks := make([]chunk, 0, len(starts))

	for _, start := range starts {
		lo := max(0, start)
		hi := min(start+p.cfg.chunkSize, total)

		leftPad := max(0, -start)
		rightPad := max(0, min(border, start+p.cfg.chunkSize-total))

		padded := make([][]float64, 0, leftPad+(hi-lo)+rightPad)
		for range leftPad {
			padded = append(padded, make([]float64, bins))
		}

		padded = append(padded, frames[lo:hi]...)

		for range rightPad {
			padded = append(padded, make([]float64, bins))
		}

		chunks = append(chunks, chunk{start: start, frames: padded})
	}

	return chunks
}

func (p *Processor) stitch(beat, downbeat []float64, start int, chunkBeat, chunkDownbeat []float64) {
	lo, hi := 0, len(chunkBeat)
	if hi >= 2*p.cfg.border {
		lo = p.cfg.border
		hi -= p.cfg.border
	}

	for j := lo; j < hi; j++ {
		target := start + j
		if target < 0 || target >= len(beat) {
			continue
		}

		beat[target] = chunkBeat[j]
		downbeat[target] = chunkDownbeat[j]
	}
}

func fill(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}

	return out
}
