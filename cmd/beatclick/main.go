// Command beatclick renders a .beats file as an audible click-track WAV for
// human monitoring: 880 Hz clicks at downbeats, 440 Hz elsewhere.
//
// Usage:
//
//	beatclick [-rate 44100] input.beats output.wav
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-beat/beatfile"
	"github.com/cwbudde/algo-beat/click"
)

func main() {
	rate := flag.Int("rate", 44100, "output sample rate in Hz")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: beatclick [-rate 44100] input.beats output.wav\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), flag.Arg(1), *rate); err != nil {
		log.Fatal(err)
	}
}

func run(inPath, outPath string, rate int) error {
	records, err := beatfile.ReadFile(inPath)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		return fmt.Errorf("no beats in %s", inPath)
	}

	samples := click.Synthesize(records, rate)

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}

	const bitDepth = 16

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: bitDepth,
	}
	for i, v := range samples {
		buf.Data[i] = int(v * float64(int(1)<<(bitDepth-1)-1))
	}

	enc := wav.NewEncoder(f, rate, bitDepth, 1, 1)
	if err := enc.Write(buf); err != nil {
		f.Close()

		return fmt.Errorf("encode %s: %w", outPath, err)
	}

	if err := enc.Close(); err != nil {
		f.Close()

		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	log.Printf("wrote %s: %d clicks over %.2f s", outPath, len(records), float64(len(samples))/float64(rate))

	return nil
}
