package output

import (
	"fmt"
	"strings"

	"github.com/schemalens/schemalens/internal/core"
)

// MarkdownFormatter renders a run as a Markdown table.
type MarkdownFormatter struct{}

// FormatRun renders the per-model rows plus a summary line.
func (f *MarkdownFormatter) FormatRun(run *core.RunResult) (string, error) {
	if run == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Schema generation (%s)\n\n", escapeMarkdownCell(run.Provider)))
	sb.WriteString("| Model | Sector | Status | Attempts | Notes |\n")
	sb.WriteString("|-------|--------|--------|----------|-------|\n")

	for _, r := range run.Results {
		if r == nil {
			continue
		}
		attempts := ""
		if r.Attempts > 0 {
			attempts = fmt.Sprintf("%d", r.Attempts)
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			escapeMarkdownCell(r.Model),
			escapeMarkdownCell(r.Sector),
			escapeMarkdownCell(statusLabel(r.Status)),
			attempts,
			escapeMarkdownCell(r.Message),
		))
	}

	sb.WriteString(fmt.Sprintf("\n**Summary**: %s", summaryLine(run)))
	if len(run.Written) > 0 {
		sb.WriteString(fmt.Sprintf(" (%d files written)", len(run.Written)))
	}
	sb.WriteString("\n")
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
