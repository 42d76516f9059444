package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/metaprep/metaPrep/config"
	"github.com/metaprep/metaPrep/relabel"
	"github.com/vertgenlab/gonomics/exception"
	"log"
)

func relabelUsage(relabelFlags *flag.FlagSet) {
	fmt.Print(
		"relabel - relabel fasta headers as <sample>_<n> for QIIME OTU picking\n\n" +
			"Usage:\n" +
			"  metaprep relabel [options] -s sample -o out.fasta in.fasta [in2.fasta ...]\n\n" +
			"Options:\n")
	relabelFlags.PrintDefaults()
}

func runRelabel(ctx context.Context, args []string) error {
	var err error
	relabelFlags := flag.NewFlagSet("relabel", flag.ExitOnError)
	output := relabelFlags.String("o", "", "Output fasta file.")
	sample := relabelFlags.String("s", "", "Sample name used in the new headers.")
	minLength := relabelFlags.Int("minlength", config.Default().MinLength, "Drop sequences below this length.")

	err = relabelFlags.Parse(args)
	exception.PanicOnErr(err)
	relabelFlags.Usage = func() { relabelUsage(relabelFlags) }

	if *output == "" || *sample == "" || relabelFlags.NArg() == 0 {
		relabelFlags.Usage()
		return fmt.Errorf("%w: must have -o, -s and at least one fasta input", config.ErrConfiguration)
	}
	c, err := relabel.Files(relabelFlags.Args(), *output, *sample, *minLength)
	if err != nil {
		return err
	}
	log.Printf("Wrote %d sequences to %s, dropped %d shorter than %d\n", c.Kept, *output, c.Dropped, *minLength)
	return nil
}
