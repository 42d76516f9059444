// Package filter drops reads that are shorter than a minimum length.
package filter

import (
	"context"
	"github.com/metaprep/metaPrep/config"
	"github.com/metaprep/metaPrep/reads"
	"github.com/metaprep/metaPrep/runner"
	"github.com/metaprep/metaPrep/trimmomatic"
)

// Output file suffixes for paired filtering, appended to the read name of each input.
const (
	Suffix         = ".filtered.fastq"
	UnpairedSuffix = ".unpaired_after_filtering.fastq"
	PooledSuffix   = ".single_tmp.filtered.fastq"
)

// SingleSuffix is appended to the sample name for filtered singleton reads.
const SingleSuffix = ".single.filtered.fastq"

func Paired(ctx context.Context, r runner.Runner, cfg config.Config, in reads.Pair) (reads.StageResult, error) {
	return trimmomatic.RunPaired(ctx, r, cfg, in, trimmomatic.PairedStage{
		Name:     "filter",
		Paired:   Suffix,
		Unpaired: UnpairedSuffix,
		Pooled:   PooledSuffix,
		Steps:    []string{trimmomatic.MinLen(cfg.MinLength)},
	})
}

func Single(ctx context.Context, r runner.Runner, cfg config.Config, in reads.File, sample string) (reads.StageResult, error) {
	out := reads.Output(cfg.OutputDir, sample, SingleSuffix)
	return trimmomatic.RunSingle(ctx, r, cfg, in, out, "single", []string{trimmomatic.MinLen(cfg.MinLength)})
}
