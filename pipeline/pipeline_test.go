package pipeline

import (
	"context"
	"github.com/metaprep/metaPrep/config"
	"github.com/metaprep/metaPrep/pair"
	"github.com/metaprep/metaPrep/reads"
	"github.com/metaprep/metaPrep/runner"
	"github.com/metaprep/metaPrep/stats"
	"github.com/metaprep/metaPrep/trimmomatic/trimmomatictest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"
)

var (
	good  = trimmomatictest.Shape{Len: 200, Qual: 35}
	short = trimmomatictest.Shape{Len: 100, Qual: 35}
	bad   = trimmomatictest.Shape{Len: 200, Qual: 1} // removed entirely by LEADING:3
)

func repeat(s trimmomatictest.Shape, n int) []trimmomatictest.Shape {
	ans := make([]trimmomatictest.Shape, n)
	for i := range ans {
		ans[i] = s
	}
	return ans
}

func writePair(t *testing.T, fwd, rev []trimmomatictest.Shape) reads.Pair {
	dir := t.TempDir()
	r1 := filepath.Join(dir, "sample_R1.fastq")
	r2 := filepath.Join(dir, "sample_R2.fastq")
	require.NoError(t, trimmomatictest.WriteReads(r1, "p", fwd))
	require.NoError(t, trimmomatictest.WriteReads(r2, "p", rev))
	return reads.NewPair(r1, r2)
}

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.Threads = 4
	return cfg
}

func files(t *testing.T, dir string) []string {
	des, err := os.ReadDir(dir)
	require.NoError(t, err)
	var ans []string
	for _, de := range des {
		ans = append(ans, de.Name())
	}
	sort.Strings(ans)
	return ans
}

// singletonCase yields 10 forward only and 5 reverse only reads after trimming and
// 2 forward only and 1 reverse only read after length filtering. Three of the
// trimming singletons are too short to pass the singleton length filter.
func singletonCase(t *testing.T) reads.Pair {
	var fwd, rev []trimmomatictest.Shape
	add := func(f, r trimmomatictest.Shape, n int) {
		fwd = append(fwd, repeat(f, n)...)
		rev = append(rev, repeat(r, n)...)
	}
	add(good, bad, 7)
	add(short, bad, 3)
	add(bad, good, 5)
	add(good, short, 2)
	add(short, good, 1)
	add(good, good, 20)
	add(bad, bad, 4)
	return writePair(t, fwd, rev)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "init", Init.String())
	assert.Equal(t, "paired filtering", PairedFiltering.String())
	assert.Equal(t, "done", Done.String())
	assert.Equal(t, "State(42)", State(42).String())
}

func TestRunWithoutSingletons(t *testing.T) {
	cfg := testConfig(t)
	cfg.PoolSingletons = false
	tool := &trimmomatictest.Tool{}
	p := New(cfg, tool.Runner())
	var states []State
	p.OnState = func(s State) { states = append(states, s) }

	rep, err := p.Run(context.Background(), singletonCase(t))
	require.NoError(t, err)
	assert.Equal(t, []State{Init, Trimming, PairedFiltering, Cleanup, Done}, states)
	assert.Empty(t, rep.Singletons)
	assert.Equal(t, 20, trimmomatictest.Count(rep.Forward))
	assert.Equal(t, 20, trimmomatictest.Count(rep.Reverse))
	assert.Len(t, tool.Calls, 2)

	var fastqs []string
	for _, f := range files(t, cfg.OutputDir) {
		if strings.HasSuffix(f, ".fastq") {
			fastqs = append(fastqs, f)
		}
	}
	assert.Equal(t, []string{
		"sample_R1.filtered.fastq",
		"sample_R1.trimmed.fastq",
		"sample_R2.filtered.fastq",
		"sample_R2.trimmed.fastq",
	}, fastqs)
}

func TestRunWithSingletons(t *testing.T) {
	cfg := testConfig(t)
	tool := &trimmomatictest.Tool{}
	p := New(cfg, tool.Runner())
	var states []State
	p.OnState = func(s State) { states = append(states, s) }

	rep, err := p.Run(context.Background(), singletonCase(t))
	require.NoError(t, err)
	assert.Equal(t, []State{Init, Trimming, PairedFiltering, SingletonPooling, SingletonFiltering, Cleanup, Done}, states)
	assert.Equal(t, Done, p.State())

	require.Len(t, rep.Stages, 3)
	trimmed, filtered, single := rep.Stages[0].Stats, rep.Stages[1].Stats, rep.Stages[2].Stats
	assert.Equal(t, []int{42, 23, 10, 5, 4}, trimmed.Values)
	assert.Equal(t, []int{23, 20, 2, 1, 0}, filtered.Values)
	assert.Equal(t, []int{18, 15, 3}, single.Values)

	n := trimmomatictest.Count(rep.Singletons)
	assert.LessOrEqual(t, n, 18)
	assert.Equal(t, 15, n)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "sample.single.filtered.fastq"), rep.Singletons)
	assert.Equal(t, []string{
		"sample.single.filtered.fastq",
		"sample.single.log",
		"sample_R1.filter.log",
		"sample_R1.filtered.fastq",
		"sample_R1.trim.log",
		"sample_R1.trimmed.fastq",
		"sample_R2.filtered.fastq",
		"sample_R2.trimmed.fastq",
	}, files(t, cfg.OutputDir))
	assert.Len(t, rep.Logs, 3)
}

func TestRunKeep(t *testing.T) {
	cfg := testConfig(t)
	cfg.Keep = true
	_, err := New(cfg, (&trimmomatictest.Tool{}).Runner()).Run(context.Background(), singletonCase(t))
	require.NoError(t, err)
	out := files(t, cfg.OutputDir)
	assert.Contains(t, out, "sample_R1.single_tmp.trimmed.fastq")
	assert.Contains(t, out, "sample_R1.single_tmp.filtered.fastq")
	assert.Contains(t, out, "sample.single.fastq")
	assert.NotContains(t, out, "sample_R1.unpaired_after_trimming.fastq")
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	cfg.MinLength = 150
	cfg.TrimLog = true
	shapes := make([]trimmomatictest.Shape, 100)
	for i := range shapes {
		shapes[i] = trimmomatictest.Shape{Len: 100 + 2*i, Qual: 30}
	}
	in := writePair(t, shapes, shapes)
	tool := &trimmomatictest.Tool{}

	rep, err := New(cfg, tool.Runner()).Run(context.Background(), in)
	require.NoError(t, err)
	trimmed, filtered, single := rep.Stages[0].Stats, rep.Stages[1].Stats, rep.Stages[2].Stats
	assert.Equal(t, 100, trimmed.Get(stats.Input))
	assert.Equal(t, trimmed.Get(stats.BothSurviving), filtered.Get(stats.Input))
	assert.Equal(t, singles(trimmed)+singles(filtered), single.Get(stats.Input))
	assert.True(t, trimmed.Balanced())
	assert.True(t, filtered.Balanced())
	assert.True(t, single.Balanced())
	// lengths 100..298, so reads of 150 and more survive
	assert.Equal(t, 75, filtered.Get(stats.BothSurviving))
	assert.Equal(t, 75, trimmomatictest.Count(rep.Forward))

	require.Len(t, tool.Calls, 2)
	assert.Contains(t, tool.Calls[0], "-threads")
	assert.Contains(t, tool.Calls[0], "4")
	assert.Contains(t, tool.Calls[0], "-trimlog")
	assert.Equal(t, 0, trimmomatictest.Count(rep.Singletons))
}

func TestRunCancelledDuringFiltering(t *testing.T) {
	cfg := testConfig(t)
	tool := &trimmomatictest.Tool{BlockOn: "MINLEN", Started: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errs := make(chan error, 1)
	go func() {
		_, err := New(cfg, tool.Runner()).Run(ctx, singletonCase(t))
		errs <- err
	}()
	select {
	case <-tool.Started:
	case <-time.After(10 * time.Second):
		t.Fatal("filtering never started")
	}
	cancel()

	err := <-errs
	assert.ErrorIs(t, err, runner.ErrCancelled)
	out := files(t, cfg.OutputDir)
	assert.Contains(t, out, "sample_R1.trimmed.fastq")
	assert.Contains(t, out, "sample_R2.trimmed.fastq")
	assert.Contains(t, out, "sample_R1.single_tmp.trimmed.fastq")
	for _, f := range out {
		assert.NotContains(t, f, "filtered", f)
	}
}

func TestRunCancelledBeforeStart(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tool := &trimmomatictest.Tool{}
	ignoring := runner.Func(func(ctx context.Context, name string, args ...string) (runner.Result, error) {
		res, err := tool.Runner().Run(context.Background(), name, args...)
		return res, err
	})
	_, err := New(cfg, ignoring).Run(ctx, singletonCase(t))
	assert.ErrorIs(t, err, runner.ErrCancelled)
	assert.Len(t, tool.Calls, 1)
}

func TestRunStageFailure(t *testing.T) {
	cfg := testConfig(t)
	tool := &trimmomatictest.Tool{FailOn: "MINLEN"}
	p := New(cfg, tool.Runner())
	_, err := p.Run(context.Background(), singletonCase(t))
	assert.ErrorIs(t, err, runner.ErrExecutionFailed)
	assert.Equal(t, PairedFiltering, p.State())
	assert.NotContains(t, files(t, cfg.OutputDir), "sample_R1.filtered.fastq")
	assert.Contains(t, files(t, cfg.OutputDir), "sample_R1.trimmed.fastq")
}

func TestRunSilentTool(t *testing.T) {
	cfg := testConfig(t)
	_, err := New(cfg, (&trimmomatictest.Tool{Silent: true}).Runner()).Run(context.Background(), singletonCase(t))
	assert.ErrorIs(t, err, stats.ErrStatsParseFailed)
}

func TestRunPairMismatch(t *testing.T) {
	cfg := testConfig(t)
	tool := &trimmomatictest.Tool{}
	in := writePair(t, repeat(good, 5), repeat(good, 4))
	_, err := New(cfg, tool.Runner()).Run(context.Background(), in)
	assert.ErrorIs(t, err, pair.ErrPairMismatch)
	assert.Empty(t, tool.Calls)
}

func TestRunConfigurationError(t *testing.T) {
	cfg := testConfig(t)
	cfg.Threads = 0
	tool := &trimmomatictest.Tool{}
	_, err := New(cfg, tool.Runner()).Run(context.Background(), singletonCase(t))
	assert.ErrorIs(t, err, config.ErrConfiguration)
	assert.Empty(t, tool.Calls)
	assert.NoDirExists(t, cfg.OutputDir)
}

func TestRunMissingInput(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	_, err := New(cfg, (&trimmomatictest.Tool{}).Runner()).Run(context.Background(),
		reads.NewPair(filepath.Join(dir, "a_R1.fastq"), filepath.Join(dir, "a_R2.fastq")))
	assert.ErrorIs(t, err, reads.ErrMissingReads)
}
