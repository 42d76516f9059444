package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/metaprep/metaPrep/config"
	"github.com/metaprep/metaPrep/pfam2go"
	"github.com/vertgenlab/gonomics/exception"
	"log"
)

func pfam2GoUsage(pfamFlags *flag.FlagSet) {
	fmt.Print(
		"pfam2go - map GO terms onto Pfam domain hits\n\n" +
			"Usage:\n" +
			"  metaprep pfam2go -i hits.tbl -m pfam2go.txt -o annotation.tsv\n\n" +
			"Options:\n")
	pfamFlags.PrintDefaults()
}

func runPfam2Go(ctx context.Context, args []string) error {
	var err error
	pfamFlags := flag.NewFlagSet("pfam2go", flag.ExitOnError)
	input := pfamFlags.String("i", "", "Pfam hits in HMMER --tblout format.")
	mapping := pfamFlags.String("m", "", "Pfam to GO mapping file.")
	output := pfamFlags.String("o", "", "Output table.")

	err = pfamFlags.Parse(args)
	exception.PanicOnErr(err)
	pfamFlags.Usage = func() { pfam2GoUsage(pfamFlags) }

	if *input == "" || *mapping == "" || *output == "" {
		pfamFlags.Usage()
		return fmt.Errorf("%w: must have inputs for -i, -m and -o", config.ErrConfiguration)
	}

	log.Printf("Import Pfam2GO index from %s\n", *mapping)
	terms, err := pfam2go.ReadMapping(*mapping)
	if err != nil {
		return err
	}
	log.Printf("Loaded GO annotations for %d Pfam families\n", len(terms))

	log.Printf("Load pfam file: %s\n", *input)
	hits, err := pfam2go.ReadHits(*input)
	if err != nil {
		return err
	}
	lines, annotated, families := pfam2go.Annotate(hits, terms)
	log.Printf("Annotated %d/%d pfams\n", annotated, families)
	return pfam2go.WriteFile(*output, lines)
}
