// Package mergetest provides a stand-in for the FLASH executable. Pairs whose forward
// read name ends in an even number are merged by joining the two sequences; the rest
// are written interleaved to the not-combined file.
package mergetest

import (
	"bufio"
	"context"
	"fmt"
	"github.com/metaprep/metaPrep/runner"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Tool is a fake FLASH. The zero value merges every even-numbered pair.
type Tool struct {
	// Fail makes every run exit with status 1.
	Fail bool
	// Silent drops the read combination statistics from stdout.
	Silent bool

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
		return runner.Result{ExitCode: -1}, fmt.Errorf("flash: %w", runner.ErrCancelled)
	}
	if t.Fail {
		return runner.Result{ExitCode: 1, Stderr: "[FLASH] ERROR: cannot read input\n"}, fmt.Errorf("%w: flash exited with status 1", runner.ErrExecutionFailed)
	}

	var prefix, dir string
	var files []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o":
			i++
			prefix = args[i]
		case "-d":
			i++
			dir = args[i]
		case "-m", "-M", "-t":
			i++
		case "--interleaved-output":
		default:
			files = append(files, args[i])
		}
	}
	if len(files) != 2 || prefix == "" {
		return runner.Result{ExitCode: 1}, fmt.Errorf("%w: bad usage", runner.ErrExecutionFailed)
	}

	fwd, err := read(files[0])
	if err != nil {
		return runner.Result{ExitCode: 1}, fmt.Errorf("%w: %v", runner.ErrExecutionFailed, err)
	}
	rev, err := read(files[1])
	if err != nil {
		return runner.Result{ExitCode: 1}, fmt.Errorf("%w: %v", runner.ErrExecutionFailed, err)
	}
	if len(fwd) != len(rev) {
		return runner.Result{ExitCode: 1}, fmt.Errorf("%w: unequal read counts", runner.ErrExecutionFailed)
	}

	var merged, rest [][4]string
	for i := range fwd {
		if even(fwd[i][0]) {
			f, r := fwd[i], rev[i]
			merged = append(merged, [4]string{f[0], f[1] + r[1], "+", f[3] + r[3]})
			continue
		}
		rest = append(rest, fwd[i], rev[i])
	}
	base := filepath.Join(dir, prefix)
	if err = write(base+".extendedFrags.fastq", merged); err == nil {
		err = write(base+".notCombined.fastq", rest)
	}
	if err == nil {
		err = os.WriteFile(base+".hist", []byte("0\t0\n"), 0644)
	}
	if err == nil {
		err = os.WriteFile(base+".histogram", []byte("0\t\n"), 0644)
	}
	if err != nil {
		return runner.Result{ExitCode: 1}, fmt.Errorf("%w: %v", runner.ErrExecutionFailed, err)
	}

	out := "[FLASH] Starting FLASH v1.2.11\n"
	if !t.Silent {
		total, combined := len(fwd), len(merged)
		out += fmt.Sprintf("[FLASH] Read combination statistics:\n"+
			"[FLASH]     Total pairs:      %d\n"+
			"[FLASH]     Combined pairs:   %d\n"+
			"[FLASH]     Uncombined pairs: %d\n", total, combined, total-combined)
	}
	out += "[FLASH] FLASH v1.2.11 complete!\n"
	return runner.Result{Stdout: out}, nil
}

func even(name string) bool {
	name = strings.Fields(name)[0]
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	n, err := strconv.Atoi(name[i:])
	return err == nil && n%2 == 0
}

func read(path string) ([][4]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ans [][4]string
	var rec [4]string
	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		rec[n%4] = sc.Text()
		n++
		if n%4 == 0 {
			ans = append(ans, rec)
		}
	}
	return ans, sc.Err()
}

func write(path string, recs [][4]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, r := range recs {
		fmt.Fprintf(w, "%s\n%s\n%s\n%s\n", r[0], r[1], r[2], r[3])
	}
	if err = w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
