package main

import (
	"flag"
	"fmt"
	"github.com/metaprep/metaPrep/config"
)

// qcFlags are the options shared by every command that runs Trimmomatic.
type qcFlags struct {
	threads     *int
	output      *string
	leading     *int
	trailing    *int
	window      *string
	minLength   *int
	noSingles   *bool
	phred       *string
	trimLog     *bool
	keep        *bool
	checkPairs  *bool
	toolsConfig *string
}

func addQcFlags(fs *flag.FlagSet) *qcFlags {
	d := config.Default()
	return &qcFlags{
		threads:     fs.Int("t", 0, "Number of threads used by the external tools. Required, at least 1."),
		output:      fs.String("o", "", "Output directory. Required."),
		leading:     fs.Int("leading", d.Leading, "Cut bases off the start of a read while below this quality."),
		trailing:    fs.Int("trailing", d.Trailing, "Cut bases off the end of a read while below this quality."),
		window:      fs.String("sliding_window", d.SlidingWindow.String(), "Sliding window trimming as <window>:<quality>, cutting once the average quality within the window falls below the threshold."),
		minLength:   fs.Int("minlength", d.MinLength, "Drop reads below this length."),
		noSingles:   fs.Bool("use_no_singletons", false, "Discard reads that lost their mate instead of length filtering them."),
		phred:       fs.String("phred", d.Phred, "Quality encoding: phred33 or phred64."),
		trimLog:     fs.Bool("trimlog", false, "Write the Trimmomatic per read trim log next to each stage log."),
		keep:        fs.Bool("keep", false, "Keep intermediate singleton pools."),
		checkPairs:  fs.Bool("check_pairs", d.CheckPairs, "Check that R1 and R2 hold the same reads before trimming."),
		toolsConfig: fs.String("tools", "", "YAML file with the command lines of trimmomatic, flash and fastx_collapser."),
	}
}

// config builds and validates the run configuration.
func (f *qcFlags) config() (config.Config, error) {
	cfg := config.Default()
	var err error
	if *f.toolsConfig != "" {
		if cfg.Tools, err = config.LoadTools(*f.toolsConfig); err != nil {
			return cfg, err
		}
	}
	if cfg.SlidingWindow, err = config.ParseSlidingWindow(*f.window); err != nil {
		return cfg, err
	}
	cfg.Threads = *f.threads
	cfg.OutputDir = *f.output
	cfg.Leading = *f.leading
	cfg.Trailing = *f.trailing
	cfg.MinLength = *f.minLength
	cfg.PoolSingletons = !*f.noSingles
	cfg.Phred = *f.phred
	cfg.TrimLog = *f.trimLog
	cfg.Keep = *f.keep
	cfg.CheckPairs = *f.checkPairs
	return cfg, cfg.Validate()
}

// positional checks the number of positional arguments.
func positional(fs *flag.FlagSet, min, max int, what string) ([]string, error) {
	args := fs.Args()
	if len(args) < min || len(args) > max {
		fs.Usage()
		return nil, fmt.Errorf("%w: expected %s, got %d arguments", config.ErrConfiguration, what, len(args))
	}
	return args, nil
}
