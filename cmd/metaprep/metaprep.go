package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"github.com/metaprep/metaPrep/runner"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
)

const version string = "0.1.0"
const gonomicsVersion string = "1.0.1-0.20240426183757-e6c6ab634c20"

// cancelMessage is printed when the user interrupts a run.
const cancelMessage = "\nERROR 1 : Operation cancelled by User!"

type subcommand struct {
	name     string
	function func(ctx context.Context, args []string) error
	blurb    string
}

// SubCommands contains all valid subcommands.
// New subcommands can be added to metaprep by adding a new entry to this array.
var SubCommands = []*subcommand{
	{"qc", runQc, "quality control of paired end reads: trimming and length filtering"},
	{"trim", runTrim, "quality trimming of paired end reads"},
	{"filter", runFilter, "length filtering of paired or single end reads"},
	{"classify", runClassify, "merge pairs and remove duplicates to prepare classification input"},
	{"run", runAll, "quality control followed by classify"},
	{"readstats", runReadStats, "read counts and length distribution of fastq files"},
	{"pfam2go", runPfam2Go, "annotate pfam domain hits with GO terms"},
	{"relabel", runRelabel, "relabel fasta headers for OTU picking"},
}

// tools starts the external programs. Tests replace it with fakes.
var tools runner.Runner = runner.Exec{}

// stdout receives reports and tables.
var stdout io.Writer = os.Stdout

func usage() {
	s := new(strings.Builder)
	s.WriteString(
		"Program: metaprep (preprocessing of paired end Illumina reads for metagenomics)\n" +
			"Version: " + version + " (gonomics " + gonomicsVersion + ")\n" +
			"\nUsage:\tmetaprep <command> [options]\n\n" +
			"Commands:\n")

	// add subcommand text via tabwriter so the columns align
	w := tabwriter.NewWriter(s, 0, 8, 5, '\t', tabwriter.AlignRight)
	for i := range SubCommands {
		fmt.Fprintf(w, "\t%s\t%s\n", SubCommands[i].name, SubCommands[i].blurb)
	}
	w.Flush()
	fmt.Print(s.String())
}

// commandMap builds a map of possible subcommands keyed on the name of the subcommand
func commandMap() map[string]func(ctx context.Context, args []string) error {
	m := make(map[string]func(ctx context.Context, args []string) error)
	for i := range SubCommands {
		m[SubCommands[i].name] = SubCommands[i].function
	}
	return m
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flag.Usage = usage
	flag.Parse()

	// check if first argument is a valid subcommand
	command := commandMap()[flag.Arg(0)]

	// if no command is found, print the usage and return
	if command == nil {
		flag.Usage()
		return
	}

	// if command successfully found, pass in remaining arguments and execute
	if err := command(ctx, flag.Args()[1:]); err != nil {
		stop()
		errExit(errMessage(err))
	}
}

// errMessage is the line printed for a failed command.
func errMessage(err error) string {
	if errors.Is(err, runner.ErrCancelled) {
		return cancelMessage
	}
	return "ERROR: " + err.Error()
}

func errExit(err string) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
