// Package trimmomatic runs Trimmomatic in paired or single end mode and reads its summary.
package trimmomatic

import (
	"context"
	"errors"
	"fmt"
	"github.com/metaprep/metaPrep/combine"
	"github.com/metaprep/metaPrep/config"
	"github.com/metaprep/metaPrep/reads"
	"github.com/metaprep/metaPrep/runner"
	"github.com/metaprep/metaPrep/stats"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// Mode selects paired end (PE) or single end (SE) processing.
type Mode string

const (
	PE Mode = "PE"
	SE Mode = "SE"
)

// Leading cuts bases off the start of a read while below quality q.
func Leading(q int) string { return "LEADING:" + strconv.Itoa(q) }

func Trailing(q int) string { return "TRAILING:" + strconv.Itoa(q) }

// SlidingWindow cuts once the mean quality inside the window falls below its threshold.
func SlidingWindow(w config.Window) string { return "SLIDINGWINDOW:" + w.String() }

func MinLen(n int) string { return "MINLEN:" + strconv.Itoa(n) }

// Job is a single Trimmomatic invocation. Outputs are listed in the order
// Trimmomatic expects: for PE forward paired, forward unpaired, reverse paired, reverse unpaired.
type Job struct {
	Mode    Mode
	Threads int
	Phred   string
	TrimLog string
	Inputs  []string
	Outputs []string
	Steps   []string
}

func (j Job) Args() []string {
	args := []string{string(j.Mode), "-threads", strconv.Itoa(j.Threads), "-" + j.Phred}
	if j.TrimLog != "" {
		args = append(args, "-trimlog", j.TrimLog)
	}
	args = append(args, j.Inputs...)
	args = append(args, j.Outputs...)
	return append(args, j.Steps...)
}

func (j Job) layout() stats.Layout {
	if j.Mode == PE {
		return stats.TrimmomaticPE
	}
	return stats.TrimmomaticSE
}

func (j Job) check() error {
	want := map[Mode][2]int{PE: {2, 4}, SE: {1, 1}}
	n, ok := want[j.Mode]
	switch {
	case !ok:
		return fmt.Errorf("%w: unknown trimmomatic mode %q", config.ErrConfiguration, j.Mode)
	case len(j.Inputs) != n[0] || len(j.Outputs) != n[1]:
		return fmt.Errorf("%w: %s mode takes %d inputs and %d outputs", config.ErrConfiguration, j.Mode, n[0], n[1])
	}
	return nil
}

// Run executes j and scrapes the summary from stderr. The raw stderr is copied to report
// when report is not empty. On any failure the outputs of j are removed so no partial
// result is left behind.
func Run(ctx context.Context, r runner.Runner, tool runner.Command, j Job, report string) (stats.Record, error) {
	if err := j.check(); err != nil {
		return stats.Record{}, err
	}
	if f := clobbered(j.Inputs, append([]string{j.TrimLog, report}, j.Outputs...)...); f != "" {
		return stats.Record{}, fmt.Errorf("%w: %s is both input and output", config.ErrConfiguration, f)
	}

	res, err := tool.Run(ctx, r, j.Args()...)
	if report != "" {
		if werr := os.WriteFile(report, []byte(res.Stderr), 0644); werr != nil {
			log.Printf("WARNING: could not write %s: %v\n", report, werr)
		}
	}
	if err != nil {
		removeAll(j.Outputs)
		return stats.Record{}, fmt.Errorf("trimmomatic %s: %w", j.Mode, err)
	}

	rec, err := stats.Scrape(res.Stderr, j.layout())
	if err != nil {
		removeAll(j.Outputs)
		return stats.Record{}, fmt.Errorf("trimmomatic %s: %w", j.Mode, err)
	}
	if !rec.Balanced() {
		log.Printf("WARNING: trimmomatic %s counts do not add up: %s\n", j.Mode, rec)
	}
	return rec, nil
}

// PairedStage names the files of one paired end Trimmomatic stage. Suffixes are
// appended to the read name of each input.
type PairedStage struct {
	Name     string // used in log messages and the report file name
	Paired   string // e.g. ".trimmed.fastq"
	Unpaired string // e.g. ".unpaired_after_trimming.fastq"
	Pooled   string // pooled singletons, named after the forward reads
	Steps    []string
}

// RunPaired runs a paired end stage over in. Reads that lost their mate are pooled into
// one file when cfg.PoolSingletons is set and discarded otherwise.
func RunPaired(ctx context.Context, r runner.Runner, cfg config.Config, in reads.Pair, st PairedStage) (reads.StageResult, error) {
	var ans reads.StageResult
	if err := in.Check(); err != nil {
		return ans, err
	}
	n1, n2 := reads.Name(in.Fwd.Path), reads.Name(in.Rev.Path)
	if n1 == n2 {
		return ans, fmt.Errorf("%w: forward and reverse reads share the name %q", config.ErrConfiguration, n1)
	}

	dir := cfg.OutputDir
	fwd := reads.Output(dir, n1, st.Paired)
	fwdU := reads.Output(dir, n1, st.Unpaired)
	rev := reads.Output(dir, n2, st.Paired)
	revU := reads.Output(dir, n2, st.Unpaired)
	job := Job{
		Mode:    PE,
		Threads: cfg.Threads,
		Phred:   cfg.Phred,
		Inputs:  []string{in.Fwd.Path, in.Rev.Path},
		Outputs: []string{fwd, fwdU, rev, revU},
		Steps:   st.Steps,
	}
	if cfg.TrimLog {
		job.TrimLog = reads.Output(dir, n1, "."+st.Name+".trimlog")
	}
	ans.Log = reads.Output(dir, n1, "."+st.Name+".log")
	pooled := reads.Output(dir, n1, st.Pooled)
	if f := clobbered(job.Inputs, pooled); cfg.PoolSingletons && f != "" {
		return ans, fmt.Errorf("%w: %s is both input and output", config.ErrConfiguration, f)
	}

	rec, err := Run(ctx, r, runner.ParseCommand(cfg.Tools.Trimmer), job, ans.Log)
	if err != nil {
		return ans, err
	}
	ans.Stats = rec
	ans.Pair = &reads.Pair{
		Fwd: reads.File{Path: fwd, Role: reads.Forward},
		Rev: reads.File{Path: rev, Role: reads.Reverse},
	}

	if cfg.PoolSingletons {
		pooled, err := combine.Files([]string{fwdU, revU}, pooled)
		if err != nil {
			removeAll(job.Outputs)
			return reads.StageResult{}, fmt.Errorf("pooling %s singletons: %w", st.Name, err)
		}
		ans.Singletons = &reads.File{Path: pooled, Role: reads.Unpaired}
	}
	removeAll([]string{fwdU, revU})
	return ans, nil
}

// RunSingle runs a single end stage over in, writing the surviving reads to out.
func RunSingle(ctx context.Context, r runner.Runner, cfg config.Config, in reads.File, out, name string, steps []string) (reads.StageResult, error) {
	var ans reads.StageResult
	if err := in.Check(); err != nil {
		return ans, err
	}
	job := Job{
		Mode:    SE,
		Threads: cfg.Threads,
		Phred:   cfg.Phred,
		Inputs:  []string{in.Path},
		Outputs: []string{out},
		Steps:   steps,
	}
	n := reads.Name(out)
	if cfg.TrimLog {
		job.TrimLog = reads.Output(cfg.OutputDir, n, "."+name+".trimlog")
	}
	ans.Log = reads.Output(cfg.OutputDir, n, "."+name+".log")

	rec, err := Run(ctx, r, runner.ParseCommand(cfg.Tools.Trimmer), job, ans.Log)
	if err != nil {
		return ans, err
	}
	ans.Stats = rec
	ans.Single = &reads.File{Path: out, Role: reads.Single}
	return ans, nil
}

// clobbered returns the first of outputs that names the same file as one of inputs.
func clobbered(inputs []string, outputs ...string) string {
	for _, out := range outputs {
		if out == "" {
			continue
		}
		for _, in := range inputs {
			if samePath(in, out) {
				return out
			}
		}
	}
	return ""
}

func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, aerr := os.Stat(a)
	bi, berr := os.Stat(b)
	return aerr == nil && berr == nil && os.SameFile(ai, bi)
}

func removeAll(files []string) {
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("WARNING: could not remove %s: %v\n", f, err)
		}
	}
}
