package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/armadaproject/tierprobe/internal/tierprobe/model"
)

type Headers struct {
	Label string
	Count string
}

var DefaultHeaders = Headers{Label: "tier", Count: "count"}

// PrintHistogram writes entries as a right-aligned label column and a left-aligned count column,
// preceded by a dash line as long as the header and the header itself. Column widths are those of the
// widest label and count; an empty list gives zero widths.
func PrintHistogram(w io.Writer, entries []model.Entry, headers Headers) error {
	maxLabel, maxCount := 0, 0
	for _, e := range entries {
		if n := utf8.RuneCountInString(e.Label); n > maxLabel {
			maxLabel = n
		}
		if n := len(strconv.Itoa(e.Count)); n > maxCount {
			maxCount = n
		}
	}

	var sb strings.Builder
	header := fmt.Sprintf("%*s  %-*s", maxLabel, headers.Label, maxCount, headers.Count)
	sb.WriteString(strings.Repeat("-", utf8.RuneCountInString(header)))
	sb.WriteString("\n")
	sb.WriteString(header)
	sb.WriteString("\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "%*s  %-*d  \n", maxLabel, e.Label, maxCount, e.Count)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
