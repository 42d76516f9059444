// Package trimmomatictest provides a stand-in for the Trimmomatic executable that
// applies LEADING, TRAILING, SLIDINGWINDOW and MINLEN to small FASTQ files in process.
package trimmomatictest

import (
	"bufio"
	"context"
	"fmt"
	"github.com/metaprep/metaPrep/runner"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Tool is a fake Trimmomatic. The zero value behaves like a working installation.
type Tool struct {
	// BlockOn makes a run whose steps contain this prefix (e.g. "MINLEN") write a partial
	// first output and then wait for its context to be cancelled.
	BlockOn string
	// Started is closed when a blocking run has begun waiting.
	Started chan struct{}
	// FailOn makes a run whose steps contain this prefix exit with status 1.
	FailOn string
	// Silent suppresses the summary line while still exiting 0.
	Silent bool

	mu    sync.Mutex
	Calls [][]string
}

// Runner returns a runner.Runner that executes every command as Trimmomatic.
func (t *Tool) Runner() runner.Runner {
	return runner.Func(t.run)
}

type record struct {
	name, seq, plus, qual string
}

func (t *Tool) run(ctx context.Context, name string, args ...string) (runner.Result, error) {
	t.mu.Lock()
	t.Calls = append(t.Calls, append([]string{name}, args...))
	t.mu.Unlock()

	if len(args) < 4 {
		return runner.Result{ExitCode: 1, Stderr: "Usage: PE|SE ..."}, fmt.Errorf("%w: bad usage", runner.ErrExecutionFailed)
	}
	mode := args[0]
	rest := args[4:] // mode -threads N -phredXX
	if len(rest) > 1 && rest[0] == "-trimlog" {
		if err := os.WriteFile(rest[1], nil, 0644); err != nil {
			return runner.Result{ExitCode: 1}, fmt.Errorf("%w: %v", runner.ErrExecutionFailed, err)
		}
		rest = rest[2:]
	}

	nIn, nOut := 1, 1
	if mode == "PE" {
		nIn, nOut = 2, 4
	}
	if len(rest) < nIn+nOut {
		return runner.Result{ExitCode: 1}, fmt.Errorf("%w: missing files", runner.ErrExecutionFailed)
	}
	inputs, outputs, steps := rest[:nIn], rest[nIn:nIn+nOut], rest[nIn+nOut:]

	if t.FailOn != "" && hasStep(steps, t.FailOn) {
		return runner.Result{ExitCode: 1, Stderr: "Exception in thread \"main\" java.lang.RuntimeException\n"}, fmt.Errorf("%w: trimmomatic exited with status 1", runner.ErrExecutionFailed)
	}
	if t.BlockOn != "" && hasStep(steps, t.BlockOn) {
		_ = os.WriteFile(outputs[0], []byte("@partial\n"), 0644)
		if t.Started != nil {
			close(t.Started)
		}
		<-ctx.Done()
		return runner.Result{ExitCode: -1}, fmt.Errorf("trimmomatic: %w", runner.ErrCancelled)
	}

	var summary string
	var err error
	if mode == "PE" {
		summary, err = paired(inputs, outputs, steps)
	} else {
		summary, err = single(inputs[0], outputs[0], steps)
	}
	if err != nil {
		return runner.Result{ExitCode: 1, Stderr: err.Error()}, fmt.Errorf("%w: %v", runner.ErrExecutionFailed, err)
	}
	stderr := "Trimmomatic" + mode + ": Started with arguments: " + strings.Join(args, " ") + "\n"
	if !t.Silent {
		stderr += summary
	}
	stderr += "Trimmomatic" + mode + ": Completed successfully\n"
	return runner.Result{Stderr: stderr}, nil
}

func hasStep(steps []string, prefix string) bool {
	for _, s := range steps {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func paired(inputs, outputs, steps []string) (string, error) {
	fwd, err := readFastq(inputs[0])
	if err != nil {
		return "", err
	}
	rev, err := readFastq(inputs[1])
	if err != nil {
		return "", err
	}
	if len(fwd) != len(rev) {
		return "", fmt.Errorf("Error: Unexpected end of file in %s", inputs[1])
	}

	var fp, fu, rp, ru []record
	var both, fOnly, rOnly, dropped int
	for i := range fwd {
		f, fok := apply(fwd[i], steps)
		r, rok := apply(rev[i], steps)
		switch {
		case fok && rok:
			fp = append(fp, f)
			rp = append(rp, r)
			both++
		case fok:
			fu = append(fu, f)
			fOnly++
		case rok:
			ru = append(ru, r)
			rOnly++
		default:
			dropped++
		}
	}
	for i, recs := range [][]record{fp, fu, rp, ru} {
		if err = write(outputs[i], recs); err != nil {
			return "", err
		}
	}
	n := len(fwd)
	return fmt.Sprintf("Input Read Pairs: %d Both Surviving: %d (%s) Forward Only Surviving: %d (%s) Reverse Only Surviving: %d (%s) Dropped: %d (%s)\n",
		n, both, pct(both, n), fOnly, pct(fOnly, n), rOnly, pct(rOnly, n), dropped, pct(dropped, n)), nil
}

func single(input, output string, steps []string) (string, error) {
	in, err := readFastq(input)
	if err != nil {
		return "", err
	}
	var kept []record
	for _, r := range in {
		if t, ok := apply(r, steps); ok {
			kept = append(kept, t)
		}
	}
	if err = write(output, kept); err != nil {
		return "", err
	}
	n := len(in)
	return fmt.Sprintf("Input Reads: %d Surviving: %d (%s) Dropped: %d (%s)\n",
		n, len(kept), pct(len(kept), n), n-len(kept), pct(n-len(kept), n)), nil
}

func pct(a, b int) string {
	if b == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(a)*100/float64(b))
}

func apply(r record, steps []string) (record, bool) {
	for _, s := range steps {
		words := strings.Split(s, ":")
		vals := make([]int, len(words)-1)
		for i := range vals {
			vals[i], _ = strconv.Atoi(words[i+1])
		}
		switch words[0] {
		case "LEADING":
			i := 0
			for i < len(r.qual) && int(r.qual[i])-33 < vals[0] {
				i++
			}
			r.seq, r.qual = r.seq[i:], r.qual[i:]
		case "TRAILING":
			j := len(r.qual)
			for j > 0 && int(r.qual[j-1])-33 < vals[0] {
				j--
			}
			r.seq, r.qual = r.seq[:j], r.qual[:j]
		case "SLIDINGWINDOW":
			w, q := vals[0], vals[1]
			for i := 0; i+w <= len(r.qual); i++ {
				sum := 0
				for _, c := range r.qual[i : i+w] {
					sum += int(c) - 33
				}
				if sum < q*w {
					r.seq, r.qual = r.seq[:i], r.qual[:i]
					break
				}
			}
		case "MINLEN":
			if len(r.seq) < vals[0] {
				return r, false
			}
		}
	}
	return r, len(r.seq) > 0
}

// readFastq loads a FASTQ file as four-line records.
func readFastq(path string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ans []record
	var lines []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		lines = append(lines, s.Text())
		if len(lines) == 4 {
			ans = append(ans, record{lines[0], lines[1], lines[2], lines[3]})
			lines = lines[:0]
		}
	}
	if len(lines) != 0 {
		return nil, fmt.Errorf("Error: truncated record in %s", path)
	}
	return ans, s.Err()
}

// Count returns the number of FASTQ records in path, or -1 if it cannot be read.
func Count(path string) int {
	recs, err := readFastq(path)
	if err != nil {
		return -1
	}
	return len(recs)
}

func write(path string, recs []record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, r := range recs {
		fmt.Fprintf(w, "%s\n%s\n%s\n%s\n", r.name, r.seq, r.plus, r.qual)
	}
	if err = w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Shape describes one synthetic read.
type Shape struct {
	Len  int
	Qual byte // phred score applied to every base
}

// WriteReads writes a FASTQ file with one read per shape, named prefix_i.
func WriteReads(path, prefix string, shapes []Shape) error {
	recs := make([]record, len(shapes))
	bases := "ACGT"
	for i, s := range shapes {
		seq := make([]byte, s.Len)
		for j := range seq {
			seq[j] = bases[(i+j)%4]
		}
		recs[i] = record{
			name: fmt.Sprintf("@%s_%d", prefix, i),
			seq:  string(seq),
			plus: "+",
			qual: strings.Repeat(string(rune(s.Qual+33)), s.Len),
		}
	}
	return write(path, recs)
}

// Uniform returns n shapes of the given length and quality.
func Uniform(n, length int, qual byte) []Shape {
	ans := make([]Shape, n)
	for i := range ans {
		ans[i] = Shape{Len: length, Qual: qual}
	}
	return ans
}
