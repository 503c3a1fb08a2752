//go:build onnx

package infer

import (
	"errors"
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// Tensor names baked into the exported beat/downbeat model.
const (
	onnxInputName          = "input_spectrogram"
	onnxBeatOutputName     = "beat"
	onnxDownbeatOutputName = "downbeat"
)

// ONNXScorer scores chunks through an ONNX Runtime session. It owns the
// session exclusively and releases it in Close.
//
// The session itself is safe for concurrent Run calls, so one ONNXScorer may
// be shared across parallel chunk workers.
type ONNXScorer struct {
	session *ort.DynamicAdvancedSession
}

// NewONNXScorer loads the model at modelPath. libraryPath optionally points
// at the ONNX Runtime shared library; when empty the platform default is
// used. The environment is initialized once per process.
func NewONNXScorer(modelPath, libraryPath string) (*ONNXScorer, error) {
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}

	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("infer: onnxruntime init: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{onnxInputName},
		[]string{onnxBeatOutputName, onnxDownbeatOutputName},
		nil)
	if err != nil {
		return nil, fmt.Errorf("infer: load model %s: %w", modelPath, err)
	}

	return &ONNXScorer{session: session}, nil
}

// Score implements [Scorer]. Input shape is [1, frames, melBins]; the model
// returns beat and downbeat logits of shape [1, frames] each.
func (s *ONNXScorer) Score(frames [][]float64) (beat, downbeat []float64, err error) {
	if len(frames) == 0 {
		return nil, nil, nil
	}

	bins := len(frames[0])
	data := make([]float32, len(frames)*bins)

	for i, row := range frames {
		if len(row) != bins {
			return nil, nil, fmt.Errorf("infer: ragged feature frame %d: %d bins, want %d", i, len(row), bins)
		}

		for j, v := range row {
			data[i*bins+j] = float32(v)
		}
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(len(frames)), int64(bins)), data)
	if err != nil {
		return nil, nil, fmt.Errorf("infer: input tensor: %w", err)
	}
	defer input.Destroy()

	beatOut, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(frames))))
	if err != nil {
		return nil, nil, fmt.Errorf("infer: beat tensor: %w", err)
	}
	defer beatOut.Destroy()

	downbeatOut, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(frames))))
	if err != nil {
		return nil, nil, fmt.Errorf("infer: downbeat tensor: %w", err)
	}
	defer downbeatOut.Destroy()

	err = s.session.Run([]ort.Value{input}, []ort.Value{beatOut, downbeatOut})
	if err != nil {
		return nil, nil, fmt.Errorf("infer: session run: %w", err)
	}

	return widen(beatOut.GetData()), widen(downbeatOut.GetData()), nil
}

// Close releases the session. The scorer must not be used afterwards.
func (s *ONNXScorer) Close() error {
	if s.session == nil {
		return errors.New("infer: scorer already closed")
	}

	err := s.session.Destroy()
	s.session = nil

	return err
}

func widen(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}

	return out
}
