// Package merge joins overlapping read pairs into single longer reads with FLASH.
package merge

import (
	"context"
	"errors"
	"fmt"
	"github.com/metaprep/metaPrep/config"
	"github.com/metaprep/metaPrep/reads"
	"github.com/metaprep/metaPrep/runner"
	"github.com/metaprep/metaPrep/stats"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// Suffixes FLASH appends to the output prefix.
const (
	ExtendedSuffix    = ".extendedFrags.fastq"
	NotCombinedSuffix = ".notCombined.fastq"
	HistSuffix        = ".hist"
	HistogramSuffix   = ".histogram"
	LogSuffix         = ".flash.log"
)

// Flash is a FLASH run over one read pair.
type Flash struct {
	Tool       runner.Command
	Threads    int
	MinOverlap int
	MaxOverlap int
	Dir        string
	Prefix     string
}

// Args returns the command line arguments for merging in.
func (f Flash) Args(in reads.Pair) []string {
	return []string{
		"-m", strconv.Itoa(f.MinOverlap),
		"-M", strconv.Itoa(f.MaxOverlap),
		"--interleaved-output",
		"-o", f.Prefix,
		"-d", f.Dir,
		"-t", strconv.Itoa(f.Threads),
		in.Fwd.Path, in.Rev.Path,
	}
}

func (f Flash) path(suffix string) string {
	return filepath.Join(f.Dir, f.Prefix+suffix)
}

func (f Flash) Extended() string { return f.path(ExtendedSuffix) }

func (f Flash) NotCombined() string { return f.path(NotCombinedSuffix) }

func (f Flash) Histograms() []string {
	return []string{f.path(HistSuffix), f.path(HistogramSuffix)}
}

type Result struct {
	Extended    reads.File
	NotCombined reads.File
	Stats       stats.Record
	Log         string
}

// Labels read the FLASH summary:
//
//	[FLASH]     Total pairs:      1000
//	[FLASH]     Combined pairs:   800
//	[FLASH]     Uncombined pairs: 200
var Labels = []stats.Label{
	{Field: stats.TotalPairs, Text: "Total pairs:"},
	{Field: stats.CombinedPairs, Text: "Combined pairs:"},
	{Field: stats.UncombinedPairs, Text: "Uncombined pairs:"},
}

// Run merges in. The FLASH output is copied to the log file and the summary counts
// are scraped from it. Failed runs leave no output files behind.
func (f Flash) Run(ctx context.Context, r runner.Runner, in reads.Pair) (Result, error) {
	var ans Result
	if err := f.check(); err != nil {
		return ans, err
	}
	if err := in.Check(); err != nil {
		return ans, err
	}

	res, err := f.Tool.Run(ctx, r, f.Args(in)...)
	ans.Log = f.path(LogSuffix)
	if werr := os.WriteFile(ans.Log, []byte(res.Stdout), 0644); werr != nil {
		log.Printf("WARNING: could not write %s: %v\n", ans.Log, werr)
	}
	if err != nil {
		f.remove()
		return Result{}, fmt.Errorf("flash: %w", err)
	}

	ans.Stats, err = stats.ScrapeLabelled(res.Stdout, "flash", Labels...)
	if err != nil {
		f.remove()
		return Result{}, fmt.Errorf("flash: %w", err)
	}
	if ans.Stats.Get(stats.TotalPairs) != ans.Stats.Get(stats.CombinedPairs)+ans.Stats.Get(stats.UncombinedPairs) {
		log.Printf("WARNING: flash counts do not add up: %s\n", ans.Stats)
	}
	ans.Extended = reads.File{Path: f.Extended(), Role: reads.Single}
	ans.NotCombined = reads.File{Path: f.NotCombined(), Role: reads.Unpaired}
	return ans, nil
}

func (f Flash) check() error {
	switch {
	case len(f.Tool) == 0:
		return fmt.Errorf("%w: no merger command", config.ErrConfiguration)
	case f.Prefix == "":
		return fmt.Errorf("%w: flash output prefix is empty", config.ErrConfiguration)
	case f.Threads < 1:
		return fmt.Errorf("%w: flash needs at least one thread, got %d", config.ErrConfiguration, f.Threads)
	case f.MinOverlap < 1 || f.MaxOverlap < f.MinOverlap:
		return fmt.Errorf("%w: invalid flash overlap range %d-%d", config.ErrConfiguration, f.MinOverlap, f.MaxOverlap)
	}
	return nil
}

func (f Flash) remove() {
	for _, p := range append([]string{f.Extended(), f.NotCombined()}, f.Histograms()...) {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("WARNING: could not remove %s: %v\n", p, err)
		}
	}
}
