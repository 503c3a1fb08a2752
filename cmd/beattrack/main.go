// Command beattrack analyzes an audio recording and writes the detected
// beats to a .beats file: one "time<TAB>ordinal" line per beat.
//
// Usage:
//
//	beattrack -model model.onnx [flags] input.wav output.beats
//
// The scoring model requires building with the onnx tag and a local ONNX
// Runtime shared library.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cwbudde/algo-beat/beat"
	"github.com/cwbudde/algo-beat/beatfile"
	"github.com/cwbudde/algo-beat/infer"
)

func main() {
	model := flag.String("model", "", "path to the beat/downbeat ONNX model")
	ortLib := flag.String("ort", "", "path to the ONNX Runtime shared library (optional)")
	chunk := flag.Int("chunk", 0, "override the inference chunk size in frames")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: beattrack -model model.onnx [flags] input.wav output.beats\n\n")
		fmt.Fprintf(os.Stderr, "Detects beats and downbeats in a WAV recording.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *model == "" || flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*model, *ortLib, flag.Arg(0), flag.Arg(1), *chunk); err != nil {
		log.Fatal(err)
	}
}

func run(model, ortLib, inPath, outPath string, chunk int) error {
	samples, rate, channels, err := loadWAV(inPath)
	if err != nil {
		return err
	}

	log.Printf("loaded %s: %d samples, %d Hz, %d channel(s)", inPath, len(samples)/channels, rate, channels)

	scorer, err := newScorer(model, ortLib)
	if err != nil {
		return err
	}

	var opts []beat.Option
	if chunk > 0 {
		opts = append(opts, beat.WithInference(infer.WithChunkSize(chunk)))
	}

	tracker, err := beat.New(scorer, opts...)
	if err != nil {
		return err
	}
	defer tracker.Close()

	result, err := tracker.Track(samples, rate, channels)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		log.Printf("warning: %s", w)
	}

	if err := beatfile.WriteFile(outPath, result.Beats); err != nil {
		return err
	}

	log.Printf("wrote %s: %d beats, %d downbeats", outPath, len(result.Beats), len(result.Downbeats))

	return nil
}
