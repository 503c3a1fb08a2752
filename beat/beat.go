package beat

import (
	"errors"
	"io"

	"github.com/cwbudde/algo-beat/decode"
	"github.com/cwbudde/algo-beat/dsp/melspec"
	"github.com/cwbudde/algo-beat/dsp/resample"
	"github.com/cwbudde/algo-beat/infer"
	"github.com/cwbudde/algo-beat/measure"
)

// ErrNilScorer indicates a Tracker created without a scoring model.
var ErrNilScorer = errors.New("beat: nil scorer")

// Record is one final beat event.
type Record struct {
	Time    float64 // seconds from the start of the recording
	Ordinal int     // 1-based position within its measure; 1 at downbeats
}

// Result is the outcome of one complete analysis.
type Result struct {
	Beats     []Record          // every detected beat, strictly increasing in time
	Downbeats []float64         // raw downbeat times, a subset of the beat times
	Warnings  []measure.Warning // non-fatal numbering diagnostics
}

type config struct {
	melCfg     melspec.Config
	inferOpts  []infer.Option
	decodeOpts []decode.Option
	tolerance  float64
}

// Option configures a [Tracker].
type Option func(*config)

// WithSpectrogram overrides the feature-extraction configuration. The
// default matches the trained model's frontend.
func WithSpectrogram(cfg melspec.Config) Option {
	return func(c *config) {
		c.melCfg = cfg
	}
}

// WithInference forwards options to the chunked inference processor.
func WithInference(opts ...infer.Option) Option {
	return func(c *config) {
		c.inferOpts = append(c.inferOpts, opts...)
	}
}

// WithDecode forwards options to the peak-picking decoder.
func WithDecode(opts ...decode.Option) Option {
	return func(c *config) {
		c.decodeOpts = append(c.decodeOpts, opts...)
	}
}

// WithNumberingTolerance sets the beat/downbeat matching tolerance in
// seconds used during measure numbering.
func WithNumberingTolerance(seconds float64) Option {
	return func(c *config) {
		if seconds > 0 {
			c.tolerance = seconds
		}
	}
}

// Tracker runs the analysis pipeline. It exclusively owns the injected
// scorer; Close releases it deterministically.
type Tracker struct {
	scorer    infer.Scorer
	extractor *melspec.Extractor
	processor *infer.Processor
	decoder   *decode.Decoder
	tolerance float64
}

// New creates a Tracker around scorer.
func New(scorer infer.Scorer, opts ...Option) (*Tracker, error) {
	if scorer == nil {
		return nil, ErrNilScorer
	}

	cfg := config{
		melCfg:    melspec.DefaultConfig(),
		tolerance: 1e-6,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	extractor, err := melspec.New(cfg.melCfg)
	if err != nil {
		return nil, err
	}

	return &Tracker{
		scorer:    scorer,
		extractor: extractor,
		processor: infer.NewProcessor(scorer, cfg.inferOpts...),
		decoder:   decode.New(cfg.decodeOpts...),
		tolerance: cfg.tolerance,
	}, nil
}

// Track analyzes one complete recording of interleaved PCM samples.
//
// Hard failures are all-or-nothing: no partial result is returned. Warnings
// never abort processing; best-effort numbering is still returned with them.
// Zero-length input yields an empty result, not an error.
func (t *Tracker) Track(samples []float64, sampleRate, channels int) (*Result, error) {
	mono, err := resample.Prepare(samples, channels,
		float64(sampleRate), float64(t.extractor.Config().SampleRate))
	if err != nil {
		return nil, err
	}

	frames, err := t.extractor.Extract(mono)
	if err != nil {
		return nil, err
	}

	beatLogits, downbeatLogits, err := t.processor.Run(frames)
	if err != nil {
		return nil, err
	}

	beats, downbeats, err := t.decoder.Decode(beatLogits, downbeatLogits, t.extractor.FrameRate())
	if err != nil {
		return nil, err
	}

	ordinals, warnings, err := measure.Number(beats, downbeats, measure.WithTolerance(t.tolerance))
	if err != nil {
		return nil, err
	}

	records := make([]Record, len(beats))
	for i, time := range beats {
		records[i] = Record{Time: time, Ordinal: ordinals[i]}
	}

	return &Result{Beats: records, Downbeats: downbeats, Warnings: warnings}, nil
}

// Close releases the scorer when it owns external resources.
func (t *Tracker) Close() error {
	if closer, ok := t.scorer.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
