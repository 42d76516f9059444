// Package classify turns quality controlled reads into input for taxonomic classification:
// read pairs are merged, pooled with the leftover singletons and either collapsed to
// unique sequences or converted to FASTA.
package classify

import (
	"context"
	"errors"
	"fmt"
	"github.com/metaprep/metaPrep/collapse"
	"github.com/metaprep/metaPrep/combine"
	"github.com/metaprep/metaPrep/config"
	"github.com/metaprep/metaPrep/merge"
	"github.com/metaprep/metaPrep/reads"
	"github.com/metaprep/metaPrep/runner"
	"github.com/metaprep/metaPrep/stats"
	"github.com/vertgenlab/gonomics/fileio"
	"log"
	"os"
	"path/filepath"
)

// Output formats.
const (
	Fasta = "fasta"
	Fastq = "fastq"
)

// Suffixes appended to the sample name.
const (
	PoolSuffix   = ".pool_tmp.fastq"
	MergedSuffix = ".merged.fastq"
	FastaSuffix  = ".merged.fasta"
)

// Options configure one classify run.
type Options struct {
	Tools      config.Tools
	Threads    int
	OutputDir  string
	Phred      string
	MinOverlap int
	MaxOverlap int
	Singletons string // optional single end reads added to the pool
	Format     string
	Collapse   bool
	Keep       bool // keep merger output and the pool
}

func DefaultOptions() Options {
	return Options{
		Tools:      config.DefaultTools(),
		Threads:    1,
		OutputDir:  ".",
		Phred:      "phred33",
		MinOverlap: 10,
		MaxOverlap: 200,
		Format:     Fasta,
		Collapse:   true,
	}
}

// Validate reports invalid options as config.ErrConfiguration.
func (o Options) Validate() error {
	switch {
	case o.Threads < 1:
		return fmt.Errorf("%w: threads must be at least 1, got %d", config.ErrConfiguration, o.Threads)
	case o.OutputDir == "":
		return fmt.Errorf("%w: no output directory", config.ErrConfiguration)
	case o.Format != Fasta && o.Format != Fastq:
		return fmt.Errorf("%w: unknown output format %q", config.ErrConfiguration, o.Format)
	case o.Collapse && o.Format == Fastq:
		return fmt.Errorf("%w: collapsed output is always fasta", config.ErrConfiguration)
	case o.MinOverlap < 1 || o.MaxOverlap < o.MinOverlap:
		return fmt.Errorf("%w: invalid overlap range %d-%d", config.ErrConfiguration, o.MinOverlap, o.MaxOverlap)
	}
	return nil
}

type Result struct {
	Output   reads.File
	Merge    stats.Record
	Collapse stats.Record // empty unless duplicates were collapsed
	Logs     []string
}

// Run merges in, pools the merged reads with the pairs that could not be merged and
// the optional singletons, and writes the final file in the requested format.
func Run(ctx context.Context, r runner.Runner, o Options, in reads.Pair) (Result, error) {
	var ans Result
	if err := o.Validate(); err != nil {
		return ans, err
	}
	if err := os.MkdirAll(o.OutputDir, 0755); err != nil {
		return ans, fmt.Errorf("%w: %v", combine.ErrIOFailure, err)
	}
	sample := in.Sample()

	fl := merge.Flash{
		Tool:       runner.ParseCommand(o.Tools.Merger),
		Threads:    o.Threads,
		MinOverlap: o.MinOverlap,
		MaxOverlap: o.MaxOverlap,
		Dir:        o.OutputDir,
		Prefix:     sample,
	}
	log.Printf("Merging %s and %s\n", in.Fwd.Path, in.Rev.Path)
	merged, err := fl.Run(ctx, r, in)
	if err != nil {
		return ans, err
	}
	ans.Merge = merged.Stats
	ans.Logs = append(ans.Logs, merged.Log)
	temp := append([]string{merged.Extended.Path, merged.NotCombined.Path}, fl.Histograms()...)
	defer func() {
		if !o.Keep {
			remove(temp)
		}
	}()

	pool := []string{merged.Extended.Path, merged.NotCombined.Path}
	if o.Singletons != "" {
		single := reads.File{Path: o.Singletons, Role: reads.Single}
		if info, serr := os.Stat(single.Path); serr == nil && info.Mode().IsRegular() && info.Size() == 0 {
			log.Printf("WARNING: %s is empty, no singletons added\n", single.Path)
		} else if err = single.Check(); err != nil {
			return ans, err
		} else {
			pool = append(pool, single.Path)
		}
	}
	poolPath := reads.Output(o.OutputDir, sample, PoolSuffix)
	if o.Format == Fastq {
		poolPath = reads.Output(o.OutputDir, sample, MergedSuffix)
	}
	if _, err = combine.Files(pool, poolPath); err != nil {
		return ans, err
	}
	if err = ctx.Err(); err != nil {
		remove([]string{poolPath})
		return ans, fmt.Errorf("classify: %w", runner.ErrCancelled)
	}

	switch {
	case o.Format == Fastq:
		ans.Output = reads.File{Path: poolPath, Role: reads.Single}
		return ans, nil
	case o.Collapse:
		temp = append(temp, poolPath)
		out := reads.Output(o.OutputDir, sample, collapse.Suffix)
		log.Printf("Collapsing duplicates into %s\n", out)
		c := collapse.Collapser{Tool: runner.ParseCommand(o.Tools.Collapser), Phred: o.Phred}
		res, err := c.Run(ctx, r, reads.File{Path: poolPath, Role: reads.Single}, out)
		if err != nil {
			return ans, err
		}
		ans.Collapse = res.Stats
		ans.Output = *res.Single
	default:
		temp = append(temp, poolPath)
		out := reads.Output(o.OutputDir, sample, FastaSuffix)
		log.Printf("Converting %s to fasta\n", poolPath)
		n, err := ToFasta(poolPath, out)
		if err != nil {
			return ans, err
		}
		log.Printf("Wrote %d sequences to %s\n", n, out)
		ans.Output = reads.File{Path: out, Role: reads.Single}
	}
	return ans, nil
}

// ToFasta writes every read of a FASTQ file to a FASTA file, one sequence line per
// record, and returns the number of records written. Bases are copied unchanged.
func ToFasta(in, out string) (n int, err error) {
	sc, err := reads.Open(reads.File{Path: in, Role: reads.Single})
	if err != nil {
		return 0, err
	}
	defer sc.Close()
	if info, serr := os.Stat(filepath.Dir(out)); serr != nil || !info.IsDir() {
		return 0, fmt.Errorf("%w: cannot create %s", combine.ErrIOFailure, out)
	}
	w := fileio.EasyCreate(out)
	for sc.Scan() {
		rec := sc.Record()
		if _, err = fmt.Fprintf(w, ">%s\n%s\n", rec.Name, rec.Seq); err != nil {
			break
		}
		n++
	}
	if err == nil {
		err = sc.Err()
	}
	if cerr := w.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: %v", combine.ErrIOFailure, cerr)
	}
	if err != nil {
		remove([]string{out})
		if !errors.Is(err, reads.ErrMalformed) && !errors.Is(err, combine.ErrIOFailure) {
			err = fmt.Errorf("%w: %v", combine.ErrIOFailure, err)
		}
		return 0, err
	}
	return n, nil
}

func remove(files []string) {
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("WARNING: could not remove %s: %v\n", f, err)
		}
	}
}
