package reads

import (
	"errors"
	"fmt"
	"github.com/vertgenlab/gonomics/fileio"
	"io"
	"strings"
)

// ErrMalformed is returned for a FASTQ record that is cut short or does not have the
// four line layout.
var ErrMalformed = errors.New("malformed fastq record")

// Record is one FASTQ read. Name has the leading '@' removed.
type Record struct {
	Name string
	Seq  string
	Qual string
}

// Scanner reads FASTQ records one at a time without interpreting the bases, so any
// sequence letter Trimmomatic accepts is accepted here too.
type Scanner struct {
	path string
	in   *fileio.EasyReader
	line int
	rec  Record
	err  error
}

// Open checks f and opens it for scanning. Gzipped files are read transparently.
func Open(f File) (*Scanner, error) {
	if err := f.Check(); err != nil {
		return nil, err
	}
	return &Scanner{path: f.Path, in: fileio.EasyOpen(f.Path)}, nil
}

// Scan advances to the next record. It returns false at the end of the file or on
// the first error, which Err then reports.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	var lines [4]string
	for i := 0; i < len(lines); i++ {
		l, ok := s.next()
		if !ok {
			if i > 0 && s.err == nil {
				s.err = fmt.Errorf("%w: %s: record ending at line %d has %d of 4 lines", ErrMalformed, s.path, s.line, i)
			}
			return false
		}
		if i == 0 && l == "" {
			i--
			continue
		}
		lines[i] = l
	}
	switch {
	case !strings.HasPrefix(lines[0], "@"):
		s.err = fmt.Errorf("%w: %s line %d: header does not start with '@'", ErrMalformed, s.path, s.line-3)
	case !strings.HasPrefix(lines[2], "+"):
		s.err = fmt.Errorf("%w: %s line %d: expected '+' separator", ErrMalformed, s.path, s.line-1)
	case len(lines[1]) != len(lines[3]):
		s.err = fmt.Errorf("%w: %s line %d: %d bases but %d quality scores", ErrMalformed, s.path, s.line, len(lines[1]), len(lines[3]))
	}
	if s.err != nil {
		return false
	}
	s.rec = Record{Name: lines[0][1:], Seq: lines[1], Qual: lines[3]}
	return true
}

// next returns the next line without its line ending. A final line without a
// newline is returned as is.
func (s *Scanner) next() (string, bool) {
	l, err := s.in.BuffReader.ReadString('\n')
	if err != nil && err != io.EOF {
		s.err = fmt.Errorf("reading %s: %w", s.path, err)
		return "", false
	}
	if err == io.EOF && l == "" {
		return "", false
	}
	s.line++
	l = strings.TrimSuffix(l, "\n")
	return strings.TrimSuffix(l, "\r"), true
}

func (s *Scanner) Record() Record {
	return s.rec
}

func (s *Scanner) Err() error {
	return s.err
}

func (s *Scanner) Close() error {
	return s.in.Close()
}
