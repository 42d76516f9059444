package readstat

import (
	"bytes"
	"github.com/metaprep/metaPrep/reads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vertgenlab/gonomics/dna"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newSummary(seqs ...string) Summary {
	s := Summary{File: "test", Lengths: make(map[int]int)}
	for _, seq := range seqs {
		s.Add(dna.StringToBases(seq))
	}
	return s
}

func TestSummaryStats(t *testing.T) {
	s := newSummary(strings.Repeat("A", 100), strings.Repeat("G", 100), strings.Repeat("C", 200), strings.Repeat("T", 200))
	assert.Equal(t, 4, s.Reads)
	assert.Equal(t, 600, s.Bases)
	assert.Equal(t, 300, s.GC)
	assert.InDelta(t, 0.5, s.GCFraction(), 1e-9)
	assert.InDelta(t, 150, s.MeanLength(), 1e-9)
	assert.InDelta(t, 57.735, s.StdDevLength(), 1e-3)
	assert.Equal(t, 100, s.MinLength())
	assert.Equal(t, 200, s.MaxLength())
	assert.Equal(t, 100.0, s.Quantile(0.5))
	assert.Equal(t, 200.0, s.Quantile(1))
}

func TestEmptySummary(t *testing.T) {
	s := newSummary()
	assert.Equal(t, 0.0, s.MeanLength())
	assert.Equal(t, 0.0, s.StdDevLength())
	assert.Equal(t, 0.0, s.Quantile(0.5))
	assert.Equal(t, 0.0, s.GCFraction())
	assert.Nil(t, s.Histogram(10))
	assert.Equal(t, "", Graph(s, 5))
}

func TestHistogram(t *testing.T) {
	s := newSummary("ACGT", "ACGT", "ACGTACGT", "ACGTACGTAC")
	// lengths 4..10 in 7 bins of width 1
	assert.Equal(t, []float64{2, 0, 0, 0, 1, 0, 1}, s.Histogram(7))
	// width 4: [4-7] [8-11]
	assert.Equal(t, []float64{2, 2}, s.Histogram(2))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	Write(&buf, []Summary{newSummary("ACGT", "GGCC")})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "file\treads"))
	assert.Equal(t, "test\t2\t8\t4.00\t0.00\t4\t4\t4\t0.7500", lines[1])
}

func TestGraph(t *testing.T) {
	s := newSummary("ACGT", "ACGTACGT", "ACGTACGT")
	g := Graph(s, 5)
	assert.Contains(t, g, "read length 4-8 bp")
}

func TestSummarizeAndPlot(t *testing.T) {
	dir := t.TempDir()
	fq := filepath.Join(dir, "reads.fastq")
	require.NoError(t, os.WriteFile(fq, []byte("@a\nACGTAC\n+\nIIIIII\n@b\nGGG\n+\nIII\n"), 0644))

	s, err := Summarize(fq)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Reads)
	assert.Equal(t, 9, s.Bases)
	assert.Equal(t, 6, s.GC)

	png := filepath.Join(dir, "lengths.png")
	require.NoError(t, SavePlot(png, []Summary{s}, 5))
	info, err := os.Stat(png)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)

	assert.Error(t, SavePlot(filepath.Join(dir, "empty.png"), []Summary{newSummary()}, 5))
}

func TestSummarizeMalformed(t *testing.T) {
	dir := t.TempDir()
	fq := filepath.Join(dir, "reads.fastq")
	require.NoError(t, os.WriteFile(fq, []byte("@a\nACGSRN\n+\nIIIIII\n@b\nGG"), 0644))
	_, err := Summarize(fq)
	assert.ErrorIs(t, err, reads.ErrMalformed)

	empty := filepath.Join(dir, "empty.fastq")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	s, err := Summarize(empty)
	require.NoError(t, err)
	assert.Zero(t, s.Reads)
}
