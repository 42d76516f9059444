package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/metaprep/metaPrep/reads"
	"github.com/metaprep/metaPrep/report"
	"github.com/metaprep/metaPrep/trim"
	"github.com/vertgenlab/gonomics/exception"
)

func trimUsage(trimFlags *flag.FlagSet) {
	fmt.Print(
		"trim - quality trimming of paired end reads with LEADING, TRAILING and SLIDINGWINDOW\n\n" +
			"Usage:\n" +
			"  metaprep trim [options] -t 4 -o outdir sample_R1.fastq sample_R2.fastq\n\n" +
			"Options:\n")
	trimFlags.PrintDefaults()
}

func runTrim(ctx context.Context, args []string) error {
	var err error
	trimFlags := flag.NewFlagSet("trim", flag.ExitOnError)
	opts := addQcFlags(trimFlags)

	err = trimFlags.Parse(args)
	exception.PanicOnErr(err)
	trimFlags.Usage = func() { trimUsage(trimFlags) }

	files, err := positional(trimFlags, 2, 2, "R1 and R2 fastq files")
	if err != nil {
		return err
	}
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	if err = mkdir(cfg.OutputDir); err != nil {
		return err
	}
	res, err := trim.Trim(ctx, tools, cfg, reads.NewPair(files[0], files[1]))
	if err != nil {
		return err
	}
	report.Stage(stdout, "Trimming", res.Stats)
	var singles string
	if res.Singletons != nil {
		singles = res.Singletons.Path
	}
	report.Files(stdout, "Results", res.Pair.Fwd.Path, res.Pair.Rev.Path, singles)
	return nil
}
