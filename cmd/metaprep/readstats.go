package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/metaprep/metaPrep/config"
	"github.com/metaprep/metaPrep/reads"
	"github.com/metaprep/metaPrep/readstat"
	"github.com/metaprep/metaPrep/runner"
	"github.com/vertgenlab/gonomics/exception"
)

func readStatsUsage(readStatsFlags *flag.FlagSet) {
	fmt.Print(
		"readstats - read count, length distribution and GC content of fastq files\n\n" +
			"Usage:\n" +
			"  metaprep readstats [options] reads.fastq [reads2.fastq ...]\n\n" +
			"Options:\n")
	readStatsFlags.PrintDefaults()
}

func runReadStats(ctx context.Context, args []string) error {
	var err error
	readStatsFlags := flag.NewFlagSet("readstats", flag.ExitOnError)
	plotFile := readStatsFlags.String("plot", "", "Write a read length histogram to this image file (png, svg or pdf).")
	bins := readStatsFlags.Int("bins", 50, "Number of histogram bins in the image.")
	height := readStatsFlags.Int("height", 10, "Height of the terminal histogram in lines. 0 disables it.")

	err = readStatsFlags.Parse(args)
	exception.PanicOnErr(err)
	readStatsFlags.Usage = func() { readStatsUsage(readStatsFlags) }

	if readStatsFlags.NArg() == 0 {
		readStatsFlags.Usage()
		return fmt.Errorf("%w: at least one fastq file is required", config.ErrConfiguration)
	}
	var summaries []readstat.Summary
	for _, f := range readStatsFlags.Args() {
		if ctx.Err() != nil {
			return fmt.Errorf("readstats: %w", runner.ErrCancelled)
		}
		if err = (reads.File{Path: f, Role: reads.Single}).Check(); err != nil {
			return err
		}
		s, err := readstat.Summarize(f)
		if err != nil {
			return err
		}
		summaries = append(summaries, s)
	}
	readstat.Write(stdout, summaries)
	if *height > 0 {
		for _, s := range summaries {
			if g := readstat.Graph(s, *height); g != "" {
				fmt.Fprintf(stdout, "\n%s\n", g)
			}
		}
	}
	if *plotFile != "" {
		return readstat.SavePlot(*plotFile, summaries, *bins)
	}
	return nil
}
