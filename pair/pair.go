// Package pair checks that forward and reverse read files describe the same fragments.
package pair

import (
	"errors"
	"fmt"
	"github.com/metaprep/metaPrep/reads"
	"strings"
)

// ErrPairMismatch is returned when the two files of a pair disagree.
var ErrPairMismatch = errors.New("forward and reverse reads do not match")

type Counts struct {
	Fwd int
	Rev int
}

// Verify walks both files of p in step and returns ErrPairMismatch if they hold a
// different number of reads or if the read names at the same position differ. A
// record that is cut short is reported as reads.ErrMalformed.
func Verify(p reads.Pair) (Counts, error) {
	var c Counts
	if err := p.Check(); err != nil {
		return c, err
	}
	fwd, err := reads.Open(p.Fwd)
	if err != nil {
		return c, err
	}
	defer fwd.Close()
	rev, err := reads.Open(p.Rev)
	if err != nil {
		return c, err
	}
	defer rev.Close()

	var mismatch string
	for {
		fok, rok := fwd.Scan(), rev.Scan()
		if fok {
			c.Fwd++
		}
		if rok {
			c.Rev++
		}
		if !fok || !rok {
			break
		}
		f, r := fwd.Record(), rev.Record()
		if mismatch == "" && baseName(f.Name) != baseName(r.Name) {
			mismatch = fmt.Sprintf("read %d is %s in %s but %s in %s", c.Fwd, f.Name, p.Fwd.Path, r.Name, p.Rev.Path)
		}
	}
	for fwd.Scan() {
		c.Fwd++
	}
	for rev.Scan() {
		c.Rev++
	}
	if err = fwd.Err(); err != nil {
		return c, err
	}
	if err = rev.Err(); err != nil {
		return c, err
	}

	switch {
	case c.Fwd != c.Rev:
		return c, fmt.Errorf("%w: %s has %d reads, %s has %d", ErrPairMismatch, p.Fwd.Path, c.Fwd, p.Rev.Path, c.Rev)
	case mismatch != "":
		return c, fmt.Errorf("%w: %s", ErrPairMismatch, mismatch)
	}
	return c, nil
}

// baseName drops the comment and any /1 or /2 mate suffix from a read name.
func baseName(name string) string {
	name = strings.TrimPrefix(name, "@")
	if i := strings.IndexAny(name, " \t"); i >= 0 {
		name = name[:i]
	}
	if strings.HasSuffix(name, "/1") || strings.HasSuffix(name, "/2") {
		name = name[:len(name)-2]
	}
	return name
}
