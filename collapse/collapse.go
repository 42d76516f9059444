// Package collapse removes duplicate sequences with fastx_collapser. The output is
// FASTA whose headers carry the rank and copy number of each unique sequence.
package collapse

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
	"strings"
)

// Suffix is appended to the sample name of the collapsed output.
const Suffix = ".collapsed.fasta"

// Collapser is a fastx_collapser run.
type Collapser struct {
	Tool  runner.Command
	Phred string
}

// QualityFlag translates a Trimmomatic quality encoding into the fastx toolkit flag.
func QualityFlag(phred string) (string, error) {
	if !strings.HasPrefix(phred, "phred") || len(phred) <= len("phred") {
		return "", fmt.Errorf("%w: unknown quality encoding %q", config.ErrConfiguration, phred)
	}
	return "-Q" + strings.TrimPrefix(phred, "phred"), nil
}

func (c Collapser) Args(in, out string) ([]string, error) {
	q, err := QualityFlag(c.Phred)
	if err != nil {
		return nil, err
	}
	return []string{q, "-v", "-i", in, "-o", out}, nil
}

// Run collapses in into out and reads the verbose summary from stdout. out is
// removed when the run fails.
func (c Collapser) Run(ctx context.Context, r runner.Runner, in reads.File, out string) (reads.StageResult, error) {
	var ans reads.StageResult
	if len(c.Tool) == 0 {
		return ans, fmt.Errorf("%w: no collapser command", config.ErrConfiguration)
	}
	args, err := c.Args(in.Path, out)
	if err != nil {
		return ans, err
	}
	if err = in.Check(); err != nil {
		return ans, err
	}

	res, err := c.Tool.Run(ctx, r, args...)
	if err != nil {
		remove(out)
		return ans, fmt.Errorf("fastx_collapser: %w", err)
	}
	ans.Stats, err = stats.Scrape(res.Stdout, stats.Collapser)
	if err != nil {
		remove(out)
		return ans, fmt.Errorf("fastx_collapser: %w", err)
	}
	if ans.Stats.Get(stats.InputReads) != ans.Stats.Get(stats.OutputReads) {
		log.Printf("WARNING: fastx_collapser lost reads: %s\n", ans.Stats)
	}
	ans.Single = &reads.File{Path: out, Role: reads.Single}
	return ans, nil
}

func remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARNING: could not remove %s: %v\n", path, err)
	}
}
