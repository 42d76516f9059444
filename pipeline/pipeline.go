// Package pipeline runs the quality control stages in order: quality trimming,
// paired length filtering and, when singletons are kept, pooling and length
// filtering of the reads that lost their mate.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"github.com/metaprep/metaPrep/combine"
	"github.com/metaprep/metaPrep/config"
	"github.com/metaprep/metaPrep/filter"
	"github.com/metaprep/metaPrep/pair"
	"github.com/metaprep/metaPrep/reads"
	"github.com/metaprep/metaPrep/runner"
	"github.com/metaprep/metaPrep/stats"
	"github.com/metaprep/metaPrep/trim"
	"log"
	"os"
)

// PoolSuffix is appended to the sample name for the pooled singletons of both stages.
const PoolSuffix = ".single.fastq"

// State is the step a pipeline is in.
type State int

const (
	Init State = iota
	Trimming
	PairedFiltering
	SingletonPooling
	SingletonFiltering
	Cleanup
	Done
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case Trimming:
		return "trimming"
	case PairedFiltering:
		return "paired filtering"
	case SingletonPooling:
		return "singleton pooling"
	case SingletonFiltering:
		return "singleton filtering"
	case Cleanup:
		return "cleanup"
	case Done:
		return "done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// StageStats are the counts reported by one stage.
type StageStats struct {
	Name  string
	Stats stats.Record
}

// Report lists the final read files and the statistics of every stage that ran.
// Singletons is empty when unpaired reads were discarded.
type Report struct {
	Forward    string
	Reverse    string
	Singletons string
	Stages     []StageStats
	Logs       []string
}

// Pipeline holds everything needed for a quality control run.
type Pipeline struct {
	Config config.Config
	Runner runner.Runner
	// OnState is called on every state change when set.
	OnState func(State)

	state State
}

func New(cfg config.Config, r runner.Runner) *Pipeline {
	return &Pipeline{Config: cfg, Runner: r}
}

func (p *Pipeline) State() State {
	return p.state
}

func (p *Pipeline) enter(s State) {
	p.state = s
	if p.OnState != nil {
		p.OnState(s)
	}
}

// Run processes one read pair. The first failing stage aborts the run; its partial
// outputs are removed while the complete outputs of earlier stages stay on disk.
// Superseded singleton pools are removed after a successful run unless Config.Keep is set.
func (p *Pipeline) Run(ctx context.Context, in reads.Pair) (Report, error) {
	var ans Report
	cfg := p.Config
	p.enter(Init)
	if err := cfg.Validate(); err != nil {
		return ans, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return ans, fmt.Errorf("%w: %v", combine.ErrIOFailure, err)
	}
	if err := in.Check(); err != nil {
		return ans, err
	}
	if cfg.CheckPairs {
		c, err := pair.Verify(in)
		if err != nil {
			return ans, err
		}
		log.Printf("Found %d read pairs in %s and %s\n", c.Fwd, in.Fwd.Path, in.Rev.Path)
	}
	sample := in.Sample()

	p.enter(Trimming)
	log.Printf("Trimming %s and %s\n", in.Fwd.Path, in.Rev.Path)
	trimmed, err := trim.Trim(ctx, p.Runner, cfg, in)
	if err != nil {
		return ans, fmt.Errorf("trimming: %w", err)
	}
	ans.add("Trimming", trimmed)

	if err = cancelled(ctx); err != nil {
		return ans, err
	}
	p.enter(PairedFiltering)
	log.Printf("Length filtering %s and %s\n", trimmed.Pair.Fwd.Path, trimmed.Pair.Rev.Path)
	filtered, err := filter.Paired(ctx, p.Runner, cfg, *trimmed.Pair)
	if err != nil {
		return ans, fmt.Errorf("length filtering: %w", err)
	}
	ans.add("Length filtering", filtered)
	ans.Forward, ans.Reverse = filtered.Pair.Fwd.Path, filtered.Pair.Rev.Path
	if got, want := filtered.Stats.Get(stats.Input), trimmed.Stats.Get(stats.BothSurviving); got != want {
		log.Printf("WARNING: length filtering read %d pairs but trimming kept %d\n", got, want)
	}

	var pools []string
	if cfg.PoolSingletons {
		if err = cancelled(ctx); err != nil {
			return ans, err
		}
		p.enter(SingletonPooling)
		pools = []string{trimmed.Singletons.Path, filtered.Singletons.Path}
		pooled, err := combine.Files(pools, reads.Output(cfg.OutputDir, sample, PoolSuffix))
		if err != nil {
			return ans, fmt.Errorf("pooling singletons: %w", err)
		}
		pools = append(pools, pooled)

		if err = cancelled(ctx); err != nil {
			return ans, err
		}
		p.enter(SingletonFiltering)
		single, err := p.filterSingletons(ctx, reads.File{Path: pooled, Role: reads.Single}, sample)
		if err != nil {
			return ans, fmt.Errorf("singleton filtering: %w", err)
		}
		ans.add("Singleton filtering", single)
		ans.Singletons = single.Single.Path
		expected := singles(trimmed.Stats) + singles(filtered.Stats)
		if got := single.Stats.Get(stats.Input); got != expected {
			log.Printf("WARNING: singleton filtering read %d reads but %d were pooled\n", got, expected)
		}
	}

	p.enter(Cleanup)
	if !cfg.Keep {
		remove(pools)
	}
	p.enter(Done)
	return ans, nil
}

// filterSingletons length filters the pooled singletons. An empty pool yields an
// empty output without starting Trimmomatic, which refuses empty input.
func (p *Pipeline) filterSingletons(ctx context.Context, pooled reads.File, sample string) (reads.StageResult, error) {
	info, err := os.Stat(pooled.Path)
	if err != nil {
		return reads.StageResult{}, fmt.Errorf("%w: %v", combine.ErrIOFailure, err)
	}
	if info.Size() > 0 {
		return filter.Single(ctx, p.Runner, p.Config, pooled, sample)
	}
	out := reads.Output(p.Config.OutputDir, sample, filter.SingleSuffix)
	if err = os.WriteFile(out, nil, 0644); err != nil {
		return reads.StageResult{}, fmt.Errorf("%w: %v", combine.ErrIOFailure, err)
	}
	log.Printf("WARNING: no singletons left to filter, wrote empty %s\n", out)
	return reads.StageResult{
		Single: &reads.File{Path: out, Role: reads.Single},
		Stats: stats.Record{
			Layout: stats.TrimmomaticSE.Name,
			Names:  append([]string(nil), stats.TrimmomaticSE.Fields...),
			Values: make([]int, len(stats.TrimmomaticSE.Fields)),
		},
	}, nil
}

func (r *Report) add(name string, res reads.StageResult) {
	r.Stages = append(r.Stages, StageStats{Name: name, Stats: res.Stats})
	if res.Log != "" {
		r.Logs = append(r.Logs, res.Log)
	}
}

// singles is the number of reads a paired stage passed on without their mate.
func singles(r stats.Record) int {
	return r.Get(stats.ForwardOnly) + r.Get(stats.ReverseOnly)
}

func cancelled(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("pipeline: %w", runner.ErrCancelled)
	}
	return nil
}

func remove(files []string) {
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("WARNING: could not remove %s: %v\n", f, err)
		}
	}
}
