package main

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// loadWAV decodes a WAV file into interleaved float samples in [-1, 1].
func loadWAV(path string) (samples []float64, sampleRate, channels int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("not a valid WAV file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode %s: %w", path, err)
	}

	scale := float64(int(1) << (dec.BitDepth - 1))

	samples = make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / scale
	}

	return samples, buf.Format.SampleRate, buf.Format.NumChannels, nil
}
