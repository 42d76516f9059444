package stats

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

const trimmomaticPE = `TrimmomaticPE: Started with arguments: -threads 4 -phred33 in_R1.fastq in_R2.fastq
Multiple cores found: Using 4 threads
Input Read Pairs: 1400909 Both Surviving: 1072089 (76,53%) Forward Only Surviving: 178601 (12,75%) Reverse Only Surviving: 38126 (2,72%) Dropped: 112093 (8,00%)
TrimmomaticPE: Completed successfully
`

const trimmomaticSE = `TrimmomaticSE: Started with arguments: -threads 4 -phred33 single.fastq single.filtered.fastq MINLEN:150
Input Reads: 230 Surviving: 200 (86.96%) Dropped: 30 (13.04%)
TrimmomaticSE: Completed successfully
`

func TestDigitRuns(t *testing.T) {
	tests := []struct {
		text string
		want []int
	}{
		{"v0.32 has 12 reads, 7/3", []int{0, 32, 12, 7, 3}},
		{"no numbers here", nil},
		{"42", []int{42}},
		{"a1b2c", []int{1, 2}},
	}
	for _, test := range tests {
		got, err := DigitRuns(test.text)
		require.NoError(t, err)
		assert.Equal(t, test.want, got, test.text)
	}
}

func TestTokens(t *testing.T) {
	got, err := Tokens(trimmomaticPE)
	require.NoError(t, err)
	assert.Equal(t, []int{1400909, 1072089, 178601, 38126, 112093}, got[2:])
	got, err = Tokens("(76,53%) 5 x5 5x")
	require.NoError(t, err)
	assert.Equal(t, []int{5}, got)
}

func TestOverflow(t *testing.T) {
	huge := "99999999999999999999999"
	_, err := DigitRuns("reads: " + huge)
	assert.True(t, errors.Is(err, ErrStatsParseFailed))
	_, err = Tokens("Input Reads: " + huge)
	assert.True(t, errors.Is(err, ErrStatsParseFailed))

	text := "Input Reads: " + huge + " Surviving: 200 (86.96%) Dropped: 30 (13.04%)\n"
	_, err = Scrape(text, TrimmomaticSE)
	assert.True(t, errors.Is(err, ErrStatsParseFailed))

	text = "Input: 1000 sequences (representing " + huge + " reads)\nOutput: 990 sequences (representing 1000 reads)\n"
	_, err = Scrape(text, Collapser)
	assert.True(t, errors.Is(err, ErrStatsParseFailed))

	_, err = ScrapeLabelled("Total pairs: "+huge+"\n", "flash", Label{Field: TotalPairs, Text: "Total pairs:"})
	assert.True(t, errors.Is(err, ErrStatsParseFailed))

	_, err = Last("1 2 "+huge, 2)
	assert.True(t, errors.Is(err, ErrStatsParseFailed))
}

func TestLast(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want []int
		fail bool
	}{
		{name: "ExactlyN", text: "1 2 3", n: 3, want: []int{1, 2, 3}},
		{name: "MoreThanN", text: "version 0.32\n10 20 30", n: 2, want: []int{20, 30}},
		{name: "ZeroRequested", text: "", n: 0, want: nil},
		{name: "TooFew", text: "only 1", n: 2, fail: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Last(tc.text, tc.n)
			if tc.fail {
				assert.True(t, errors.Is(err, ErrStatsParseFailed))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestScrapeTrimmomaticPE(t *testing.T) {
	r, err := Scrape(trimmomaticPE, TrimmomaticPE)
	require.NoError(t, err)
	assert.Equal(t, 1400909, r.Get(Input))
	assert.Equal(t, 1072089, r.Get(BothSurviving))
	assert.Equal(t, 178601, r.Get(ForwardOnly))
	assert.Equal(t, 38126, r.Get(ReverseOnly))
	assert.Equal(t, 112093, r.Get(Dropped))
	assert.True(t, r.Balanced())
	assert.Equal(t, 76.53, r.Percent(BothSurviving))
}

func TestScrapeTrimmomaticSE(t *testing.T) {
	r, err := Scrape(trimmomaticSE, TrimmomaticSE)
	require.NoError(t, err)
	assert.Equal(t, []string{Input, Surviving, Dropped}, r.Names)
	assert.Equal(t, []int{230, 200, 30}, r.Values)
	assert.Equal(t, "input=230 surviving=200 dropped=30", r.String())
}

func TestScrapeFailsOnShortReport(t *testing.T) {
	// a tool that crashed before its summary must not yield zero counts
	_, err := Scrape("Exception in thread \"main\" java.lang.OutOfMemoryError", TrimmomaticPE)
	assert.True(t, errors.Is(err, ErrStatsParseFailed))

	_, err = Scrape("", TrimmomaticSE)
	assert.True(t, errors.Is(err, ErrStatsParseFailed))
}

func TestScrapeCollapser(t *testing.T) {
	r, err := Scrape("Input: 1000 sequences (representing 1000 reads)\nOutput: 800 sequences (representing 1000 reads)\n", Collapser)
	require.NoError(t, err)
	assert.Equal(t, 1000, r.Get(InputSequences))
	assert.Equal(t, 800, r.Get(OutputSequences))
	assert.Equal(t, 1000, r.Get(OutputReads))
}

func TestScrapeLabelled(t *testing.T) {
	report := "[FLASH] Read combination statistics:\n" +
		"[FLASH]     Total pairs:      1000\n" +
		"[FLASH]     Combined pairs:   800\n" +
		"[FLASH]     Uncombined pairs: 200\n" +
		"[FLASH]     Percent combined: 80.00%\n"
	r, err := ScrapeLabelled(report, "flash",
		Label{TotalPairs, "Total pairs:"},
		Label{CombinedPairs, "Combined pairs:"},
		Label{UncombinedPairs, "Uncombined pairs:"})
	require.NoError(t, err)
	assert.Equal(t, []int{1000, 800, 200}, r.Values)

	_, err = ScrapeLabelled("[FLASH] Total pairs: 10\n", "flash", Label{CombinedPairs, "Combined pairs:"})
	assert.True(t, errors.Is(err, ErrStatsParseFailed))

	_, err = ScrapeLabelled("Combined pairs: none\n", "flash", Label{CombinedPairs, "Combined pairs:"})
	assert.True(t, errors.Is(err, ErrStatsParseFailed))
}

func TestBalanced(t *testing.T) {
	r := Record{Names: []string{Input, Surviving, Dropped}, Values: []int{10, 7, 2}}
	assert.False(t, r.Balanced())
	assert.Equal(t, 0, r.Get("missing"))
	assert.False(t, r.Has("missing"))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(0, 0))
	assert.Equal(t, 0.0, Percent(5, 0))
	assert.Equal(t, 50.0, Percent(50, 100))
	assert.Equal(t, 33.33, Percent(1, 3))
}
