// Package combine concatenates read files.
package combine

import (
	"bufio"
	"errors"
	"fmt"
	"github.com/klauspost/pgzip"
	"io"
	"os"
	"strings"
)

// ErrIOFailure is returned when an input cannot be read or the output cannot be written.
var ErrIOFailure = errors.New("i/o failure")

// Files writes the contents of every input, in the order given, to output and returns
// the output path. An existing output is truncated. Files ending in .gz are decompressed
// on read and compressed on write. On failure the partial output is removed.
func Files(inputs []string, output string) (string, error) {
	for _, in := range inputs {
		if in == output {
			return "", fmt.Errorf("%w: %s is both input and output", ErrIOFailure, in)
		}
	}

	out, err := os.Create(output)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	err = writeAll(out, inputs, strings.HasSuffix(output, ".gz"))
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: %v", ErrIOFailure, cerr)
	}
	if err != nil {
		os.Remove(output)
		return "", err
	}
	return output, nil
}

func writeAll(out *os.File, inputs []string, gz bool) error {
	var w io.Writer
	bw := bufio.NewWriter(out)
	w = bw
	var gw *pgzip.Writer
	if gz {
		gw = pgzip.NewWriter(bw)
		w = gw
	}

	for _, in := range inputs {
		if err := appendFile(w, in); err != nil {
			return err
		}
	}

	if gw != nil {
		if err := gw.Close(); err != nil {
			return fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return nil
}

func appendFile(w io.Writer, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(name, ".gz") {
		gr, err := pgzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrIOFailure, name, err)
		}
		defer gr.Close()
		r = gr
	}

	if _, err = io.Copy(w, r); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrIOFailure, name, err)
	}
	return nil
}
