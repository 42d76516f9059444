package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/metaprep/metaPrep/classify"
	"github.com/metaprep/metaPrep/reads"
	"github.com/vertgenlab/gonomics/exception"
	"log"
	"path/filepath"
)

// Subdirectories of the run output directory.
const (
	qcDir       = "quality_controlled"
	classifyDir = "classify_input"
)

func runAllUsage(runFlags *flag.FlagSet) {
	fmt.Print(
		"run - quality control followed by classify. Results are written to\n" +
			"<o>/" + qcDir + " and <o>/" + classifyDir + "\n\n" +
			"Usage:\n" +
			"  metaprep run [options] -t 4 -o outdir sample_R1.fastq sample_R2.fastq\n\n" +
			"Options:\n")
	runFlags.PrintDefaults()
}

func runAll(ctx context.Context, args []string) error {
	var err error
	runFlags := flag.NewFlagSet("run", flag.ExitOnError)
	opts := addQcFlags(runFlags)
	merge := addMergeFlags(runFlags)

	err = runFlags.Parse(args)
	exception.PanicOnErr(err)
	runFlags.Usage = func() { runAllUsage(runFlags) }

	files, err := positional(runFlags, 2, 2, "R1 and R2 fastq files")
	if err != nil {
		return err
	}
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	root := cfg.OutputDir
	cfg.OutputDir = filepath.Join(root, qcDir)

	o := classify.DefaultOptions()
	o.Tools = cfg.Tools
	o.Threads = cfg.Threads
	o.OutputDir = filepath.Join(root, classifyDir)
	o.Phred = cfg.Phred
	o.Keep = cfg.Keep
	merge.apply(&o)
	if err = o.Validate(); err != nil {
		return err
	}

	log.Println("Running quality control")
	rep, err := qualityControl(ctx, cfg, reads.NewPair(files[0], files[1]))
	if err != nil {
		return err
	}
	o.Singletons = rep.Singletons

	log.Println("Running assembly and dereplication")
	_, err = classifyInput(ctx, o, reads.NewPair(rep.Forward, rep.Reverse))
	return err
}
