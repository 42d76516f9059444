// Package pfam2go annotates Pfam domain hits with Gene Ontology terms.
package pfam2go

import (
	"errors"
	"fmt"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fileio"
	"golang.org/x/exp/slices"
	"io"
	"strings"
)

// ErrMalformed is returned for a mapping or hit table line with too few columns.
var ErrMalformed = errors.New("malformed annotation file")

// Header is the first line of the annotation table.
const Header = "#pfam\ttarget_seq\tGO-ID\tGO-Desc\tGO-Tree\te-value\tscore"

// mappingHeaderLines precede the first GO mapping.
const mappingHeaderLines = 2

// Term is one GO annotation of a Pfam family.
type Term struct {
	ID   string
	Desc string
	Tree string
}

// Hit is one line of an HMMER table of Pfam domain hits.
type Hit struct {
	Pfam   string // accession without version, e.g. PF00001
	Target string
	EValue string
	Score  string
}

// ReadMapping reads a tab separated Pfam to GO table: Pfam ID, GO ID, description
// and ontology. The first two lines are a header. A family may map to several terms.
func ReadMapping(file string) (map[string][]Term, error) {
	in := fileio.EasyOpen(file)
	defer closeReader(in)
	ans := make(map[string][]Term)
	var line string
	var done bool
	for i := 0; i < mappingHeaderLines && !done; i++ {
		_, done = fileio.EasyNextLine(in)
	}
	for line, done = fileio.EasyNextLine(in); !done; line, done = fileio.EasyNextLine(in) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		words := strings.Split(line, "\t")
		if len(words) < 4 {
			return nil, fmt.Errorf("%w: %s: %q", ErrMalformed, file, line)
		}
		ans[words[0]] = append(ans[words[0]], Term{ID: words[1], Desc: words[2], Tree: words[3]})
	}
	return ans, nil
}

// ReadHits reads an HMMER --tblout table. Comment lines are skipped and the query
// accession is stripped of its version.
func ReadHits(file string) ([]Hit, error) {
	in := fileio.EasyOpen(file)
	defer closeReader(in)
	var ans []Hit
	var line string
	var done bool
	for line, done = fileio.EasyNextRealLine(in); !done; line, done = fileio.EasyNextRealLine(in) {
		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}
		if len(words) < 6 {
			return nil, fmt.Errorf("%w: %s: %q", ErrMalformed, file, line)
		}
		pfam, _, _ := strings.Cut(words[3], ".")
		ans = append(ans, Hit{Pfam: pfam, Target: words[0], EValue: words[4], Score: words[5]})
	}
	return ans, nil
}

// Row is one line of the annotation table.
type Row struct {
	Hit
	Term
}

func (r Row) String() string {
	return strings.Join([]string{r.Pfam, r.Target, r.ID, r.Desc, r.Tree, r.EValue, r.Score}, "\t")
}

// Annotate joins hits with the GO terms of their family and returns the table rows in
// sorted order. annotated counts the distinct families that had terms.
func Annotate(hits []Hit, mapping map[string][]Term) (lines []string, annotated, families int) {
	seen := make(map[string]bool)
	for _, h := range hits {
		terms, ok := mapping[h.Pfam]
		if !seen[h.Pfam] {
			seen[h.Pfam] = true
			families++
			if ok {
				annotated++
			}
		}
		for _, t := range terms {
			lines = append(lines, Row{Hit: h, Term: t}.String())
		}
	}
	slices.Sort(lines)
	return lines, annotated, families
}

func Write(w io.Writer, lines []string) error {
	if _, err := fmt.Fprintln(w, Header); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func WriteFile(file string, lines []string) error {
	out := fileio.EasyCreate(file)
	if err := Write(out, lines); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func closeReader(in *fileio.EasyReader) {
	err := in.Close()
	exception.PanicOnErr(err)
}
