// Package trim performs quality based trimming of paired end reads.
package trim

import (
	"context"
	"github.com/metaprep/metaPrep/config"
	"github.com/metaprep/metaPrep/reads"
	"github.com/metaprep/metaPrep/runner"
	"github.com/metaprep/metaPrep/trimmomatic"
)

// Output file suffixes, appended to the read name of each input.
const (
	Suffix         = ".trimmed.fastq"
	UnpairedSuffix = ".unpaired_after_trimming.fastq"
	PooledSuffix   = ".single_tmp.trimmed.fastq"
)

func Steps(cfg config.Config) []string {
	return []string{
		trimmomatic.Leading(cfg.Leading),
		trimmomatic.Trailing(cfg.Trailing),
		trimmomatic.SlidingWindow(cfg.SlidingWindow),
	}
}

func Trim(ctx context.Context, r runner.Runner, cfg config.Config, in reads.Pair) (reads.StageResult, error) {
	return trimmomatic.RunPaired(ctx, r, cfg, in, trimmomatic.PairedStage{
		Name:     "trim",
		Paired:   Suffix,
		Unpaired: UnpairedSuffix,
		Pooled:   PooledSuffix,
		Steps:    Steps(cfg),
	})
}
