// Package relabel rewrites FASTA headers into the "<sample>_<n> <original>" form
// expected by QIIME OTU picking and drops sequences below a minimum length.
package relabel

import (
	"fmt"
	"github.com/metaprep/metaPrep/config"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fasta"
	"github.com/vertgenlab/gonomics/fileio"
	"strings"
)

// LineLength is the number of bases per sequence line in the output.
const LineLength = 60

// Counts reports how many sequences were written and how many were too short.
type Counts struct {
	Kept    int
	Dropped int
}

// Records relabels recs in place order, numbering the kept sequences from start.
func Records(recs []fasta.Fasta, sample string, minLength, start int) ([]fasta.Fasta, Counts) {
	var c Counts
	ans := make([]fasta.Fasta, 0, len(recs))
	for _, r := range recs {
		if len(r.Seq) < minLength {
			c.Dropped++
			continue
		}
		r.Name = Label(sample, start+c.Kept, r.Name)
		ans = append(ans, r)
		c.Kept++
	}
	return ans, c
}

func Label(sample string, n int, old string) string {
	old = strings.TrimSpace(old)
	if old == "" {
		return fmt.Sprintf("%s_%d", sample, n)
	}
	return fmt.Sprintf("%s_%d %s", sample, n, old)
}

// Files relabels every input in order into one output file. Numbering continues
// across inputs so each header is unique.
func Files(inputs []string, output, sample string, minLength int) (Counts, error) {
	var total Counts
	if sample == "" || strings.ContainsAny(sample, " \t_") {
		return total, fmt.Errorf("%w: invalid sample name %q, it must be non-empty without spaces or underscores", config.ErrConfiguration, sample)
	}
	out := fileio.EasyCreate(output)
	for _, in := range inputs {
		recs, c := Records(fasta.Read(in), sample, minLength, total.Kept)
		for _, r := range recs {
			fasta.WriteFasta(out, r, LineLength)
		}
		total.Kept += c.Kept
		total.Dropped += c.Dropped
	}
	err := out.Close()
	exception.PanicOnErr(err)
	return total, nil
}
