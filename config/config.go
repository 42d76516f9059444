// Package config holds the parameters of a preprocessing run.
package config

import (
	"errors"
	"fmt"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
	"os"
	"strconv"
	"strings"
)

// ErrConfiguration is returned for missing or invalid run parameters.
var ErrConfiguration = errors.New("configuration error")

// Default tool commands, resolved on $PATH.
const (
	DefaultTrimmer   = "trimmomatic"
	DefaultMerger    = "flash"
	DefaultCollapser = "fastx_collapser"
)

// Quality encodings understood by Trimmomatic.
var Phreds = []string{"phred33", "phred64"}

// Tools are the command lines used to start the external programs. Each may carry
// leading arguments, e.g. "java -Xmx8G -jar /opt/trimmomatic-0.32.jar".
type Tools struct {
	Trimmer   string `yaml:"trimmomatic"`
	Merger    string `yaml:"flash"`
	Collapser string `yaml:"fastx_collapser"`
}

// Window is a Trimmomatic sliding window: cut once the mean quality over Size bases drops below Quality.
type Window struct {
	Size    int
	Quality int
}

func (w Window) String() string {
	return fmt.Sprintf("%d:%d", w.Size, w.Quality)
}

// Config is fixed for the duration of one run.
type Config struct {
	Tools          Tools
	Threads        int
	OutputDir      string
	Leading        int
	Trailing       int
	SlidingWindow  Window
	MinLength      int
	PoolSingletons bool
	Phred          string
	TrimLog        bool // ask Trimmomatic for its per-read trim log
	Keep           bool // keep superseded intermediate files
	CheckPairs     bool // require equal read counts in R1 and R2 before trimming
}

func Default() Config {
	return Config{
		Tools:          DefaultTools(),
		Threads:        1,
		OutputDir:      ".",
		Leading:        3,
		Trailing:       3,
		SlidingWindow:  Window{Size: 4, Quality: 15},
		MinLength:      150,
		PoolSingletons: true,
		Phred:          "phred33",
		CheckPairs:     true,
	}
}

func DefaultTools() Tools {
	return Tools{Trimmer: DefaultTrimmer, Merger: DefaultMerger, Collapser: DefaultCollapser}
}

// Validate reports the first invalid parameter.
func (c Config) Validate() error {
	switch {
	case c.Threads < 1:
		return fmt.Errorf("%w: threads must be >= 1, got %d", ErrConfiguration, c.Threads)
	case c.OutputDir == "":
		return fmt.Errorf("%w: output directory is required", ErrConfiguration)
	case c.Leading < 0 || c.Trailing < 0:
		return fmt.Errorf("%w: leading and trailing quality must be >= 0", ErrConfiguration)
	case c.SlidingWindow.Size < 1 || c.SlidingWindow.Quality < 0:
		return fmt.Errorf("%w: invalid sliding window %s", ErrConfiguration, c.SlidingWindow)
	case c.MinLength < 0:
		return fmt.Errorf("%w: minlength must be >= 0", ErrConfiguration)
	case !slices.Contains(Phreds, c.Phred):
		return fmt.Errorf("%w: unknown quality encoding %q (want one of %s)", ErrConfiguration, c.Phred, strings.Join(Phreds, ", "))
	case strings.TrimSpace(c.Tools.Trimmer) == "":
		return fmt.Errorf("%w: no trimmomatic command", ErrConfiguration)
	}
	return nil
}

// ParseSlidingWindow parses "size:quality", e.g. "4:15".
func ParseSlidingWindow(s string) (Window, error) {
	var w Window
	words := strings.Split(s, ":")
	if len(words) != 2 {
		return w, fmt.Errorf("%w: sliding window must be <window>:<quality>, got %q", ErrConfiguration, s)
	}
	var err error
	if w.Size, err = strconv.Atoi(strings.TrimSpace(words[0])); err != nil {
		return w, fmt.Errorf("%w: sliding window size %q is not an integer", ErrConfiguration, words[0])
	}
	if w.Quality, err = strconv.Atoi(strings.TrimSpace(words[1])); err != nil {
		return w, fmt.Errorf("%w: sliding window quality %q is not an integer", ErrConfiguration, words[1])
	}
	if w.Size < 1 || w.Quality < 0 {
		return w, fmt.Errorf("%w: invalid sliding window %q", ErrConfiguration, s)
	}
	return w, nil
}

// LoadTools reads tool commands from a YAML file. Keys left out keep their default.
func LoadTools(path string) (Tools, error) {
	t := DefaultTools()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	var fromFile Tools
	if err = yaml.Unmarshal(data, &fromFile); err != nil {
		return t, fmt.Errorf("%w: %s: %v", ErrConfiguration, path, err)
	}
	if fromFile.Trimmer != "" {
		t.Trimmer = fromFile.Trimmer
	}
	if fromFile.Merger != "" {
		t.Merger = fromFile.Merger
	}
	if fromFile.Collapser != "" {
		t.Collapser = fromFile.Collapser
	}
	return t, nil
}
