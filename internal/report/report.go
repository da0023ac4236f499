// Package report prints the console summary of a compression run.
package report

import (
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/xxxsen/slimdeck/internal/media"
	"github.com/xxxsen/slimdeck/internal/rels"
)

// TopN is the number of entries listed in the largest media summary.
const TopN = 10

// KB renders a byte count as kilobytes (1000 bytes) with thousands
// separators and one decimal, e.g. 1,234.5. Halves round to even.
func KB(n int64) string {
	s := strconv.FormatFloat(float64(n)/1000.0, 'f', 1, 64)
	whole, frac, _ := strings.Cut(s, ".")
	sign := ""
	if strings.HasPrefix(whole, "-") {
		sign, whole = "-", whole[1:]
	}
	v, _ := strconv.ParseInt(whole, 10, 64)
	return sign + humanize.Comma(v) + "." + frac
}

// Printer writes report lines to an io.Writer.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Line formats the result line for one media file.
func Line(r media.Result) string {
	if r.FinalSize >= r.OriginalSize {
		return fmt.Sprintf("%16s: %8sKB", r.Name, KB(r.OriginalSize))
	}
	line := fmt.Sprintf("%16s: %8sKB compressed by %8sKB", r.Name, KB(r.OriginalSize), KB(r.Saved()))
	if !strings.EqualFold(r.TargetExt, r.Ext) {
		line += " and converted to " + r.TargetExt
	}
	return line
}

// File prints the result line for one media file.
func (p *Printer) File(r media.Result) {
	fmt.Fprintln(p.w, Line(r))
}

// Largest prints the TopN largest ledger entries with the descriptors that
// reference them.
func (p *Printer) Largest(l *media.Ledger, usage rels.Usage) {
	fmt.Fprintln(p.w, "Largest media after compression:")
	for _, r := range l.Largest(TopN) {
		fmt.Fprintf(p.w, "%16s: %8sKB in slide %s\n",
			path.Base(r.Key), KB(r.FinalSize), strings.Join(usage[r.Key], ", "))
	}
}

// Summary prints the overall size change and where the archive was written.
func (p *Printer) Summary(l *media.Ledger, output string) {
	original, final := l.Totals()
	fmt.Fprintf(p.w, "Media total: %sKB -> %sKB, written to %s\n", KB(original), KB(final), output)
}
