package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/metaprep/metaPrep/config"
	"github.com/metaprep/metaPrep/pipeline"
	"github.com/metaprep/metaPrep/reads"
	"github.com/metaprep/metaPrep/readstat"
	"github.com/metaprep/metaPrep/report"
	"github.com/vertgenlab/gonomics/exception"
	"log"
)

func qcUsage(qcFlags *flag.FlagSet) {
	fmt.Print(
		"qc - quality trimming and length filtering of paired end reads\n\n" +
			"Usage:\n" +
			"  metaprep qc [options] -t 4 -o outdir sample_R1.fastq sample_R2.fastq\n\n" +
			"Options:\n")
	qcFlags.PrintDefaults()
}

func runQc(ctx context.Context, args []string) error {
	var err error
	qcFlagSet := flag.NewFlagSet("qc", flag.ExitOnError)
	opts := addQcFlags(qcFlagSet)
	readStats := qcFlagSet.Bool("readstats", false, "Print read length statistics of the final files.")

	err = qcFlagSet.Parse(args)
	exception.PanicOnErr(err)
	qcFlagSet.Usage = func() { qcUsage(qcFlagSet) }

	files, err := positional(qcFlagSet, 2, 2, "R1 and R2 fastq files")
	if err != nil {
		return err
	}
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	rep, err := qualityControl(ctx, cfg, reads.NewPair(files[0], files[1]))
	if err != nil {
		return err
	}
	if *readStats {
		printReadStats(rep.Forward, rep.Reverse, rep.Singletons)
	}
	return nil
}

// qualityControl runs the pipeline and prints its report.
func qualityControl(ctx context.Context, cfg config.Config, in reads.Pair) (pipeline.Report, error) {
	p := pipeline.New(cfg, tools)
	p.OnState = func(s pipeline.State) { log.Printf("Entering %s\n", s) }
	rep, err := p.Run(ctx, in)
	if err != nil {
		return rep, err
	}
	for _, st := range rep.Stages {
		report.Stage(stdout, st.Name, st.Stats)
	}
	report.Files(stdout, "Results", rep.Forward, rep.Reverse, rep.Singletons)
	return rep, nil
}

func printReadStats(files ...string) {
	var summaries []readstat.Summary
	for _, f := range files {
		if f == "" {
			continue
		}
		s, err := readstat.Summarize(f)
		if err != nil {
			log.Printf("WARNING: no read statistics for %s: %v\n", f, err)
			continue
		}
		summaries = append(summaries, s)
	}
	readstat.Write(stdout, summaries)
}
