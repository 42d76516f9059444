// Package stats pulls read counts out of the text reports printed by external tools.
package stats

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ErrStatsParseFailed is returned when a report does not contain the numbers a layout expects.
var ErrStatsParseFailed = errors.New("could not parse tool statistics")

// Field names used by the predefined layouts.
const (
	Input         = "input"
	BothSurviving = "both_surviving"
	ForwardOnly   = "forward_only"
	ReverseOnly   = "reverse_only"
	Dropped       = "dropped"
	Surviving     = "surviving"

	InputSequences  = "input_sequences"
	InputReads      = "input_reads"
	OutputSequences = "output_sequences"
	OutputReads     = "output_reads"

	TotalPairs      = "total_pairs"
	CombinedPairs   = "combined_pairs"
	UncombinedPairs = "uncombined_pairs"
)

// Layout describes how to read the statistics of one tool version. The last
// len(Fields) numbers returned by Numbers are assigned to Fields in order.
type Layout struct {
	Name    string
	Fields  []string
	Numbers func(string) ([]int, error)
}

// Trimmomatic 0.3x prints its summary as the last numeric line on stderr, e.g.
// "Input Read Pairs: 1400909 Both Surviving: 1072089 (76,53%) ... Dropped: 112093 (8,00%)".
// Percentages are attached to parentheses so only whole tokens are counts.
var (
	TrimmomaticPE = Layout{
		Name:    "trimmomatic-0.3x PE",
		Fields:  []string{Input, BothSurviving, ForwardOnly, ReverseOnly, Dropped},
		Numbers: Tokens,
	}
	TrimmomaticSE = Layout{
		Name:    "trimmomatic-0.3x SE",
		Fields:  []string{Input, Surviving, Dropped},
		Numbers: Tokens,
	}
	// Collapser reads "Input: 1000 sequences (representing 1000 reads)" and the matching Output line.
	Collapser = Layout{
		Name:    "fastx_collapser-0.0.1x",
		Fields:  []string{InputSequences, InputReads, OutputSequences, OutputReads},
		Numbers: DigitRuns,
	}
)

// Record is an ordered set of named counts scraped from one report.
type Record struct {
	Layout string
	Names  []string
	Values []int
}

func (r Record) Get(name string) int {
	for i := range r.Names {
		if r.Names[i] == name {
			return r.Values[i]
		}
	}
	return 0
}

func (r Record) Has(name string) bool {
	for i := range r.Names {
		if r.Names[i] == name {
			return true
		}
	}
	return false
}

// Percent returns the named count as a percentage of the input count.
func (r Record) Percent(name string) float64 {
	return Percent(r.Get(name), r.Get(Input))
}

// Balanced reports whether every non-input field sums to the input count. Tool output
// is trusted as is, so an unbalanced record is only worth a warning.
func (r Record) Balanced() bool {
	if !r.Has(Input) {
		return true
	}
	var sum int
	for i := range r.Names {
		if r.Names[i] != Input {
			sum += r.Values[i]
		}
	}
	return sum == r.Get(Input)
}

func (r Record) String() string {
	s := new(strings.Builder)
	for i := range r.Names {
		if i > 0 {
			s.WriteByte(' ')
		}
		fmt.Fprintf(s, "%s=%d", r.Names[i], r.Values[i])
	}
	return s.String()
}

// Scrape maps the trailing numbers of text onto layout.Fields. Anchoring on the tail
// skips version strings and banners at the start of the output.
func Scrape(text string, layout Layout) (Record, error) {
	numbers := layout.Numbers
	if numbers == nil {
		numbers = DigitRuns
	}
	nums, err := numbers(text)
	if err != nil {
		return Record{}, fmt.Errorf("%s report: %w", layout.Name, err)
	}
	if len(nums) < len(layout.Fields) {
		return Record{}, fmt.Errorf("%w: %s report has %d numbers, need %d", ErrStatsParseFailed, layout.Name, len(nums), len(layout.Fields))
	}
	tail := nums[len(nums)-len(layout.Fields):]
	r := Record{
		Layout: layout.Name,
		Names:  append([]string(nil), layout.Fields...),
		Values: append([]int(nil), tail...),
	}
	return r, nil
}

func Last(text string, n int) ([]int, error) {
	nums, err := DigitRuns(text)
	if err != nil {
		return nil, err
	}
	if len(nums) < n {
		return nil, fmt.Errorf("%w: found %d numbers, need %d", ErrStatsParseFailed, len(nums), n)
	}
	return nums[len(nums)-n:], nil
}

// Label ties a field name to the text that precedes its value in a report.
type Label struct {
	Field string
	Text  string
}

// ScrapeLabelled reads "label: value" pairs, for tools that print one count per labelled
// line. Every label must be present; the first number after a label is used.
func ScrapeLabelled(text, name string, labels ...Label) (Record, error) {
	r := Record{Layout: name}
	for _, l := range labels {
		idx := strings.Index(text, l.Text)
		if idx < 0 {
			return Record{}, fmt.Errorf("%w: %s report has no %q", ErrStatsParseFailed, name, l.Text)
		}
		nums, err := DigitRuns(firstLine(text[idx+len(l.Text):]))
		if err != nil {
			return Record{}, fmt.Errorf("%s report: %w", name, err)
		}
		if len(nums) == 0 {
			return Record{}, fmt.Errorf("%w: %s report has no value for %q", ErrStatsParseFailed, name, l.Text)
		}
		r.Names = append(r.Names, l.Field)
		r.Values = append(r.Values, nums[0])
	}
	return r, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// DigitRuns returns every maximal run of ASCII digits in text, in order of appearance.
// A run too long to fit an int is an ErrStatsParseFailed.
func DigitRuns(text string) ([]int, error) {
	var ans []int
	start := -1
	for i := 0; i <= len(text); i++ {
		if i < len(text) && text[i] >= '0' && text[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			v, err := count(text[start:i])
			if err != nil {
				return nil, err
			}
			ans = append(ans, v)
			start = -1
		}
	}
	return ans, nil
}

// Tokens returns the whitespace separated fields of text that consist only of digits.
func Tokens(text string) ([]int, error) {
	var ans []int
	for _, f := range strings.FieldsFunc(text, unicode.IsSpace) {
		if !allDigits(f) {
			continue
		}
		v, err := count(f)
		if err != nil {
			return nil, err
		}
		ans = append(ans, v)
	}
	return ans, nil
}

func count(digits string) (int, error) {
	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %s does not fit a count", ErrStatsParseFailed, digits)
	}
	return v, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Percent returns part as a percentage of total rounded to two decimals.
// A zero total yields 0 rather than a division fault.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)*10000/float64(total)) / 100
}
