//go:build !onnx

package main

import (
	"errors"

	"github.com/cwbudde/algo-beat/infer"
)

func newScorer(modelPath, ortLib string) (infer.Scorer, error) {
	return nil, errors.New("beattrack was built without ONNX support; rebuild with -tags onnx")
}
