//go:build onnx

package main

import "github.com/cwbudde/algo-beat/infer"

func newScorer(modelPath, ortLib string) (infer.Scorer, error) {
	return infer.NewONNXScorer(modelPath, ortLib)
}
