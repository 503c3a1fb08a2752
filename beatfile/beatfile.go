// Package beatfile reads and writes the .beats text format consumed by
// external reporting and monitoring tools: one line per beat with the time
// in seconds at fixed three-decimal precision and the in-measure ordinal,
// tab separated.
package beatfile

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-beat/beat"
)

// Write emits one "time\tordinal" line per record.
func Write(w io.Writer, records []beat.Record) error {
	bw := bufio.NewWriter(w)

	for _, r := range records {
		if _, err := fmt.Fprintf(bw, "%.3f\t%d\n", r.Time, r.Ordinal); err != nil {
			return fmt.Errorf("beatfile: write: %w", err)
		}
	}

	return bw.Flush()
}

// WriteFile writes records to path, replacing any existing file.
func WriteFile(path string, records []beat.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("beatfile: %w", err)
	}

	if err := Write(f, records); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}

// Read parses records until EOF. Blank lines are skipped; a malformed line
// is an error.
func Read(r io.Reader) ([]beat.Record, error) {
	var records []beat.Record

	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++
		text := scanner.Text()

		if len(text) == 0 {
			continue
		}

		var rec beat.Record
		if _, err := fmt.Sscanf(text, "%f\t%d", &rec.Time, &rec.Ordinal); err != nil {
			return nil, fmt.Errorf("beatfile: line %d: %w", line, err)
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("beatfile: read: %w", err)
	}

	return records, nil
}

// ReadFile reads records from path.
func ReadFile(path string) ([]beat.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("beatfile: %w", err)
	}
	defer f.Close()

	return Read(f)
}
