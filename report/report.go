// Package report prints stage statistics and result paths for people to read.
package report

import (
	"fmt"
	"github.com/fatih/color"
	"github.com/metaprep/metaPrep/stats"
	"github.com/vertgenlab/gonomics/numbers"
	"io"
	"strconv"
	"strings"
)

var labels = map[string]string{
	stats.Input:           "Input Reads",
	stats.BothSurviving:   "Both Surviving",
	stats.ForwardOnly:     "Forward only",
	stats.ReverseOnly:     "Reverse only",
	stats.Dropped:         "Filtered out",
	stats.Surviving:       "Surviving",
	stats.TotalPairs:      "Total pairs",
	stats.CombinedPairs:   "Combined pairs",
	stats.UncombinedPairs: "Uncombined pairs",
}

var (
	titleColor   = color.New(color.Bold)
	percentColor = color.New(color.FgHiGreen)
	droppedColor = color.New(color.FgHiMagenta)
)

// Label returns the display name of a statistics field.
func Label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	l := strings.ReplaceAll(field, "_", " ")
	return strings.ToUpper(l[:1]) + l[1:]
}

func Comma(n int) string {
	str := strconv.Itoa(n)
	neg := strings.HasPrefix(str, "-")
	str = strings.TrimPrefix(str, "-")
	result := ""
	count := 0
	for i := len(str) - 1; i >= 0; i-- {
		if count > 0 && count%3 == 0 {
			result = "," + result
		}
		result = string(str[i]) + result
		count++
	}
	if neg {
		return "-" + result
	}
	return result
}

// Stage writes the counts of one stage. Every count after the first is followed by
// its share of the first count, which is the stage input for all known layouts.
func Stage(w io.Writer, title string, r stats.Record) {
	titleColor.Fprintf(w, "%s\n", title)
	if len(r.Names) == 0 {
		return
	}
	width := 0
	for _, n := range r.Names {
		width = numbers.Max(width, len(Label(n)))
	}
	for i, n := range r.Names {
		fmt.Fprintf(w, "  %-*s %12s", width+1, Label(n)+":", Comma(r.Values[i]))
		if i == 0 {
			fmt.Fprintln(w)
			continue
		}
		c := percentColor
		if n == stats.Dropped {
			c = droppedColor
		}
		c.Fprintf(w, " - %6.2f%%\n", stats.Percent(r.Values[i], r.Values[0]))
	}
}

func Files(w io.Writer, title string, paths ...string) {
	titleColor.Fprintf(w, "%s\n", title)
	for _, p := range paths {
		if p != "" {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
}
