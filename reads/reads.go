// Package reads describes the read files passed between preprocessing stages.
package reads

import (
	"errors"
	"fmt"
	"github.com/metaprep/metaPrep/stats"
	"os"
	"path/filepath"
	"strings"
)

// ErrMissingReads is returned when a stage input does not exist or is empty.
var ErrMissingReads = errors.New("missing or empty read file")

// Role is the part a read file plays in a paired-end run.
type Role int

const (
	Forward Role = iota
	Reverse
	Single
	Unpaired
)

func (r Role) String() string {
	switch r {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	case Single:
		return "single"
	case Unpaired:
		return "unpaired"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// File is a FASTQ file on disk.
type File struct {
	Path string
	Role Role
}

// Check returns ErrMissingReads unless the file exists and is not empty.
func (f File) Check() error {
	info, err := os.Stat(f.Path)
	switch {
	case err != nil:
		return fmt.Errorf("%w: %s reads: %v", ErrMissingReads, f.Role, err)
	case info.IsDir():
		return fmt.Errorf("%w: %s reads: %s is a directory", ErrMissingReads, f.Role, f.Path)
	case info.Size() == 0:
		return fmt.Errorf("%w: %s reads: %s is empty", ErrMissingReads, f.Role, f.Path)
	}
	return nil
}

// Pair is a forward and reverse read file from the same library.
type Pair struct {
	Fwd File
	Rev File
}

func NewPair(r1, r2 string) Pair {
	return Pair{Fwd: File{Path: r1, Role: Forward}, Rev: File{Path: r2, Role: Reverse}}
}

func (p Pair) Check() error {
	if err := p.Fwd.Check(); err != nil {
		return err
	}
	return p.Rev.Check()
}

// Sample is the name shared by both files of the pair.
func (p Pair) Sample() string {
	return SampleName(p.Fwd.Path, p.Rev.Path)
}

// StageResult is what a stage leaves on disk. Exactly one of Pair and Single is set.
// Singletons is nil when unpaired reads were discarded.
type StageResult struct {
	Pair       *Pair
	Single     *File
	Singletons *File
	Stats      stats.Record
	Log        string
}

// Name strips the directory and every extension from path: dir/s_R1.trimmed.fastq -> s_R1.
func Name(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

// SampleName derives the sample name from a pair of read files by dropping the
// read-number suffix: sample_R1.fastq, sample_R2.fastq -> sample.
func SampleName(r1, r2 string) string {
	a, b := Name(r1), Name(r2)
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	if n == len(a) && n == len(b) {
		return a
	}
	p := a[:n]
	if l := len(p); l >= 2 && (p[l-1] == 'R' || p[l-1] == 'r') && isSeparator(p[l-2]) {
		p = p[:l-1]
	}
	p = strings.TrimRightFunc(p, func(r rune) bool { return r < 128 && isSeparator(byte(r)) })
	if p == "" {
		return a
	}
	return p
}

func isSeparator(c byte) bool {
	return c == '_' || c == '-' || c == '.'
}

func Output(dir, name, suffix string) string {
	return filepath.Join(dir, name+suffix)
}
