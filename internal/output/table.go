package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/schemalens/schemalens/internal/core"
)

// TableFormatter renders a run as an ASCII table.
type TableFormatter struct{}

// FormatRun renders the per-model rows plus a summary footer.
func (f *TableFormatter) FormatRun(run *core.RunResult) (string, error) {
	if run == nil {
		return "", nil
	}

	t := table.NewWriter()
	style := table.StyleRounded
	// The footer carries the summary line; keep its case as written.
	style.Format.Footer = text.FormatDefault
	t.SetStyle(style)
	t.AppendHeader(table.Row{"Model", "Sector", "Status", "Attempts", "Duration", "Notes"})

	for _, r := range run.Results {
		if r == nil {
			continue
		}
		attempts := ""
		if r.Attempts > 0 {
			attempts = fmt.Sprintf("%d", r.Attempts)
		}
		t.AppendRow(table.Row{
			r.Model,
			r.Sector,
			statusLabel(r.Status),
			attempts,
			formatDuration(r.Duration),
			r.Message,
		})
	}

	t.AppendFooter(table.Row{"", "", summaryLine(run), "", "", fmt.Sprintf("%d files written", len(run.Written))})

	return t.Render(), nil
}
