package report

import (
	"bytes"
	"github.com/fatih/color"
	"github.com/metaprep/metaPrep/stats"
	"github.com/stretchr/testify/assert"
	"strings"
	"testing"
)

func init() {
	color.NoColor = true
}

func TestComma(t *testing.T) {
	assert.Equal(t, "0", Comma(0))
	assert.Equal(t, "999", Comma(999))
	assert.Equal(t, "1,000", Comma(1000))
	assert.Equal(t, "1,400,909", Comma(1400909))
	assert.Equal(t, "-12,345", Comma(-12345))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Input Reads", Label(stats.Input))
	assert.Equal(t, "Filtered out", Label(stats.Dropped))
	assert.Equal(t, "Output sequences", Label(stats.OutputSequences))
}

func TestStage(t *testing.T) {
	var buf bytes.Buffer
	Stage(&buf, "Trimming", stats.Record{
		Names:  []string{stats.Input, stats.Surviving, stats.Dropped},
		Values: []int{1000, 750, 250},
	})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"Trimming",
		"  Input Reads:         1,000",
		"  Surviving:             750 -  75.00%",
		"  Filtered out:          250 -  25.00%",
	}, lines)
}

func TestStageZeroInput(t *testing.T) {
	var buf bytes.Buffer
	Stage(&buf, "Empty", stats.Record{Names: []string{stats.Input, stats.Surviving}, Values: []int{0, 0}})
	assert.Contains(t, buf.String(), "0.00%")
}

func TestFiles(t *testing.T) {
	var buf bytes.Buffer
	Files(&buf, "Results", "a.fastq", "", "b.fastq")
	assert.Equal(t, "Results\n  a.fastq\n  b.fastq\n", buf.String())
}
