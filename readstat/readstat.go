// Package readstat summarizes the reads in FASTQ files: how many there are, how long
// they are and their GC content.
package readstat

import (
	"fmt"
	"github.com/guptarohit/asciigraph"
	"github.com/metaprep/metaPrep/reads"
	"github.com/vertgenlab/gonomics/dna"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"io"
	"math"
	"os"
	"strings"
)

// Summary describes the reads of one file.
type Summary struct {
	File    string
	Reads   int
	Bases   int
	GC      int
	Lengths map[int]int // read length -> number of reads
}

// Summarize reads every record of a FASTQ file (optionally gzipped). An empty file
// gives an empty summary.
func Summarize(file string) (Summary, error) {
	s := Summary{File: file, Lengths: make(map[int]int)}
	if info, err := os.Stat(file); err == nil && info.Mode().IsRegular() && info.Size() == 0 {
		return s, nil
	}
	sc, err := reads.Open(reads.File{Path: file, Role: reads.Single})
	if err != nil {
		return s, err
	}
	defer sc.Close()
	for sc.Scan() {
		s.Add(dna.StringToBasesForced(sc.Record().Seq))
	}
	return s, sc.Err()
}

// Add records one read.
func (s *Summary) Add(seq []dna.Base) {
	s.Reads++
	s.Bases += len(seq)
	s.Lengths[len(seq)]++
	for _, b := range seq {
		switch b {
		case dna.G, dna.C, dna.LowerG, dna.LowerC:
			s.GC++
		}
	}
}

// weighted returns the distinct read lengths in ascending order and how often each occurs.
func (s Summary) weighted() (x, w []float64) {
	keys := make([]int, 0, len(s.Lengths))
	for k := range s.Lengths {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	x = make([]float64, len(keys))
	w = make([]float64, len(keys))
	for i, k := range keys {
		x[i] = float64(k)
		w[i] = float64(s.Lengths[k])
	}
	return x, w
}

func (s Summary) MeanLength() float64 {
	if s.Reads == 0 {
		return 0
	}
	x, w := s.weighted()
	return stat.Mean(x, w)
}

// StdDevLength is the sample standard deviation of read length.
func (s Summary) StdDevLength() float64 {
	if s.Reads < 2 {
		return 0
	}
	x, w := s.weighted()
	return stat.StdDev(x, w)
}

// Quantile returns the read length at quantile p in [0, 1].
func (s Summary) Quantile(p float64) float64 {
	if s.Reads == 0 {
		return 0
	}
	x, w := s.weighted()
	return stat.Quantile(p, stat.Empirical, x, w)
}

func (s Summary) MinLength() int {
	x, _ := s.weighted()
	if len(x) == 0 {
		return 0
	}
	return int(x[0])
}

func (s Summary) MaxLength() int {
	x, _ := s.weighted()
	if len(x) == 0 {
		return 0
	}
	return int(x[len(x)-1])
}

func (s Summary) GCFraction() float64 {
	if s.Bases == 0 {
		return 0
	}
	return float64(s.GC) / float64(s.Bases)
}

// Histogram bins the read lengths into at most bins equal width bins between the
// shortest and longest read and returns the count per bin.
func (s Summary) Histogram(bins int) []float64 {
	lo, hi := s.MinLength(), s.MaxLength()
	if s.Reads == 0 || bins < 1 {
		return nil
	}
	width := int(math.Ceil(float64(hi-lo+1) / float64(bins)))
	if width < 1 {
		width = 1
	}
	ans := make([]float64, (hi-lo)/width+1)
	for l, n := range s.Lengths {
		ans[(l-lo)/width] += float64(n)
	}
	return ans
}

func Write(w io.Writer, summaries []Summary) {
	fmt.Fprintf(w, "file\treads\tbases\tmeanLen\tsdLen\tminLen\tmedianLen\tmaxLen\tGC\n")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%.2f\t%d\t%.0f\t%d\t%.4f\n",
			s.File, s.Reads, s.Bases, s.MeanLength(), s.StdDevLength(), s.MinLength(), s.Quantile(0.5), s.MaxLength(), s.GCFraction())
	}
}

// Graph draws the read length histogram of s for a terminal.
func Graph(s Summary, height int) string {
	h := s.Histogram(70)
	if len(h) == 0 {
		return ""
	}
	if len(h) == 1 {
		h = append(h, h[0])
	}
	caption := fmt.Sprintf("%s: read length %d-%d bp", s.File, s.MinLength(), s.MaxLength())
	return asciigraph.Plot(h, asciigraph.Height(height), asciigraph.Precision(0), asciigraph.Caption(caption))
}

// SavePlot writes a read length histogram for every summary to file. The image
// format is chosen from the file extension (png, svg, pdf...).
func SavePlot(file string, summaries []Summary, bins int) error {
	p := plot.New()
	p.Title.Text = "Read length distribution"
	p.X.Label.Text = "read length (bp)"
	p.Y.Label.Text = "reads"

	var names []string
	for i, s := range summaries {
		if s.Reads == 0 {
			continue
		}
		x, w := s.weighted()
		xy := make(plotter.XYs, len(x))
		for j := range x {
			xy[j].X = x[j]
			xy[j].Y = w[j]
		}
		h, err := plotter.NewHistogram(xy, bins)
		if err != nil {
			return err
		}
		h.FillColor = nil
		h.LineStyle.Color = plotutil.Color(i)
		p.Add(h)
		p.Legend.Add(s.File, h)
		names = append(names, s.File)
	}
	if len(names) == 0 {
		return fmt.Errorf("no reads to plot in %s", strings.Join(fileNames(summaries), ", "))
	}
	return p.Save(8*vg.Inch, 5*vg.Inch, file)
}

func fileNames(summaries []Summary) []string {
	ans := make([]string, len(summaries))
	for i := range summaries {
		ans[i] = summaries[i].File
	}
	return ans
}
