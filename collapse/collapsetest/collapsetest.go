// Package collapsetest provides a stand-in for fastx_collapser that reads FASTQ or
// FASTA and writes one FASTA record per unique sequence, most frequent first.
package collapsetest

import (
	"bufio"
	"context"
	"fmt"
	"github.com/metaprep/metaPrep/runner"
	"os"
	"sort"
	"strings"
	"sync"
)

// Tool is a fake fastx_collapser.
type Tool struct {
	// Fail makes every run exit with status 1 after writing a partial output.
	Fail bool

	mu    sync.Mutex
	Calls [][]string
}

func (t *Tool) Runner() runner.Runner {
	return runner.Func(t.run)
}

func (t *Tool) run(ctx context.Context, name string, args ...string) (runner.Result, error) {
	t.mu.Lock()
	t.Calls = append(t.Calls, append([]string{name}, args...))
	t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return runner.Result{ExitCode: -1}, fmt.Errorf("fastx_collapser: %w", runner.ErrCancelled)
	}
	var in, out string
	for i := 0; i < len(args)-1; i++ {
		switch args[i] {
		case "-i":
			in = args[i+1]
		case "-o":
			out = args[i+1]
		}
	}
	if in == "" || out == "" {
		return runner.Result{ExitCode: 1}, fmt.Errorf("%w: bad usage", runner.ErrExecutionFailed)
	}
	if t.Fail {
		_ = os.WriteFile(out, []byte(">1-1\n"), 0644)
		return runner.Result{ExitCode: 1, Stderr: "fastx_collapser: Invalid input\n"}, fmt.Errorf("%w: fastx_collapser exited with status 1", runner.ErrExecutionFailed)
	}

	seqs, err := sequences(in)
	if err != nil {
		return runner.Result{ExitCode: 1}, fmt.Errorf("%w: %v", runner.ErrExecutionFailed, err)
	}
	counts := map[string]int{}
	var order []string
	for _, s := range seqs {
		if counts[s] == 0 {
			order = append(order, s)
		}
		counts[s]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })

	var b strings.Builder
	for i, s := range order {
		fmt.Fprintf(&b, ">%d-%d\n%s\n", i+1, counts[s], s)
	}
	if err = os.WriteFile(out, []byte(b.String()), 0644); err != nil {
		return runner.Result{ExitCode: 1}, fmt.Errorf("%w: %v", runner.ErrExecutionFailed, err)
	}
	summary := fmt.Sprintf("Input: %d sequences (representing %d reads)\nOutput: %d sequences (representing %d reads)\n",
		len(seqs), len(seqs), len(order), len(seqs))
	return runner.Result{Stdout: summary}, nil
}

// sequences returns the sequence lines of a FASTQ or FASTA file.
func sequences(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err = sc.Err(); err != nil || len(lines) == 0 {
		return nil, err
	}
	var ans []string
	if strings.HasPrefix(lines[0], ">") {
		for _, l := range lines {
			if !strings.HasPrefix(l, ">") {
				ans = append(ans, l)
			}
		}
		return ans, nil
	}
	for i := 1; i < len(lines); i += 4 {
		ans = append(ans, lines[i])
	}
	return ans, nil
}
