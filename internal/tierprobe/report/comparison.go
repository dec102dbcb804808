package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/armadaproject/tierprobe/internal/tierprobe/model"
)

// PrintComparison writes, per entry, the observed share of total next to the configured probability.
func PrintComparison(w io.Writer, entries []model.Entry, total int) error {
	tw := tabwriter.NewWriter(w, 1, 1, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "tier\tcount\tobserved\tconfigured\tdifference\t\n")
	for _, e := range entries {
		observed := ObservedRatio(e.Count, total)
		fmt.Fprintf(tw, "%s\t%d\t%.4f\t%s\t%+.4f\t\n",
			e.Label, e.Count, observed, model.FormatProbability(e.Probability), observed-e.Probability)
	}
	return tw.Flush()
}

// ObservedRatio is count/total, or zero when nothing was observed.
func ObservedRatio(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}
