package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/metaprep/metaPrep/classify"
	"github.com/metaprep/metaPrep/config"
	"github.com/metaprep/metaPrep/reads"
	"github.com/metaprep/metaPrep/report"
	"github.com/vertgenlab/gonomics/exception"
)

func classifyUsage(classifyFlags *flag.FlagSet) {
	fmt.Print(
		"classify - merge read pairs with FLASH, pool them with the remaining single end reads\n" +
			"and remove duplicates with fastx_collapser. Collapsing replaces the read headers.\n\n" +
			"Usage:\n" +
			"  metaprep classify [options] -t 4 -o outdir [-s sample.single.filtered.fastq] sample_R1.filtered.fastq sample_R2.filtered.fastq\n\n" +
			"Options:\n")
	classifyFlags.PrintDefaults()
}

// mergeFlags are the options of the classify step that are not shared with qc.
type mergeFlags struct {
	format     *string
	noCollapse *bool
	minOverlap *int
	maxOverlap *int
}

func addMergeFlags(fs *flag.FlagSet) *mergeFlags {
	d := classify.DefaultOptions()
	return &mergeFlags{
		format:     fs.String("f", d.Format, "Output format when duplicates are kept: fasta or fastq."),
		noCollapse: fs.Bool("no_collapse", false, "Keep duplicate sequences."),
		minOverlap: fs.Int("min_overlap", d.MinOverlap, "Minimum overlap for FLASH to merge a pair."),
		maxOverlap: fs.Int("max_overlap", d.MaxOverlap, "Maximum overlap expected by FLASH."),
	}
}

func (f *mergeFlags) apply(o *classify.Options) {
	o.Format = *f.format
	o.Collapse = !*f.noCollapse
	o.MinOverlap = *f.minOverlap
	o.MaxOverlap = *f.maxOverlap
}

func runClassify(ctx context.Context, args []string) error {
	var err error
	classifyFlags := flag.NewFlagSet("classify", flag.ExitOnError)
	d := classify.DefaultOptions()
	threads := classifyFlags.Int("t", 0, "Number of threads used by FLASH. Required, at least 1.")
	output := classifyFlags.String("o", d.OutputDir, "Output directory.")
	singles := classifyFlags.String("s", "", "Single end reads remaining after quality control.")
	phred := classifyFlags.String("phred", d.Phred, "Quality encoding: phred33 or phred64.")
	keep := classifyFlags.Bool("keep", false, "Keep FLASH output and the pooled reads.")
	toolsConfig := classifyFlags.String("tools", "", "YAML file with the command lines of flash and fastx_collapser.")
	merge := addMergeFlags(classifyFlags)

	err = classifyFlags.Parse(args)
	exception.PanicOnErr(err)
	classifyFlags.Usage = func() { classifyUsage(classifyFlags) }

	files, err := positional(classifyFlags, 2, 2, "R1 and R2 fastq files")
	if err != nil {
		return err
	}
	o := d
	if *toolsConfig != "" {
		if o.Tools, err = config.LoadTools(*toolsConfig); err != nil {
			return err
		}
	}
	o.Threads = *threads
	o.OutputDir = *output
	o.Singletons = *singles
	o.Phred = *phred
	o.Keep = *keep
	merge.apply(&o)
	_, err = classifyInput(ctx, o, reads.NewPair(files[0], files[1]))
	return err
}

// classifyInput runs classify and prints its report.
func classifyInput(ctx context.Context, o classify.Options, in reads.Pair) (classify.Result, error) {
	res, err := classify.Run(ctx, tools, o, in)
	if err != nil {
		return res, err
	}
	report.Stage(stdout, "Merging", res.Merge)
	if len(res.Collapse.Names) > 0 {
		report.Stage(stdout, "Collapsing", res.Collapse)
	}
	report.Files(stdout, "Results", res.Output.Path)
	return res, nil
}
