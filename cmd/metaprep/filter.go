package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/metaprep/metaPrep/combine"
	"github.com/metaprep/metaPrep/filter"
	"github.com/metaprep/metaPrep/reads"
	"github.com/metaprep/metaPrep/report"
	"github.com/vertgenlab/gonomics/exception"
	"os"
)

func filterUsage(filterFlags *flag.FlagSet) {
	fmt.Print(
		"filter - drop reads below a minimum length\n\n" +
			"Usage:\n" +
			"  metaprep filter [options] -t 4 -o outdir sample_R1.fastq sample_R2.fastq\n" +
			"  metaprep filter [options] -t 4 -o outdir -s sample singles.fastq\n\n" +
			"Options:\n")
	filterFlags.PrintDefaults()
}

func runFilter(ctx context.Context, args []string) error {
	var err error
	filterFlags := flag.NewFlagSet("filter", flag.ExitOnError)
	opts := addQcFlags(filterFlags)
	sample := filterFlags.String("s", "", "Sample name for single end output. Defaults to the input name.")

	err = filterFlags.Parse(args)
	exception.PanicOnErr(err)
	filterFlags.Usage = func() { filterUsage(filterFlags) }

	files, err := positional(filterFlags, 1, 2, "one single end or two paired end fastq files")
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

	var res reads.StageResult
	if len(files) == 1 {
		name := *sample
		if name == "" {
			name = reads.Name(files[0])
		}
		res, err = filter.Single(ctx, tools, cfg, reads.File{Path: files[0], Role: reads.Single}, name)
		if err != nil {
			return err
		}
		report.Stage(stdout, "Length filtering", res.Stats)
		report.Files(stdout, "Results", res.Single.Path)
		return nil
	}

	res, err = filter.Paired(ctx, tools, cfg, reads.NewPair(files[0], files[1]))
	if err != nil {
		return err
	}
	report.Stage(stdout, "Length filtering", res.Stats)
	var singles string
	if res.Singletons != nil {
		singles = res.Singletons.Path
	}
	report.Files(stdout, "Results", res.Pair.Fwd.Path, res.Pair.Rev.Path, singles)
	return nil
}

func mkdir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %v", combine.ErrIOFailure, err)
	}
	return nil
}
