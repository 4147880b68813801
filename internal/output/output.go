// Package output renders generation run results for the terminal.
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/schemalens/schemalens/internal/core"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formatter renders a run result.
type Formatter interface {
	FormatRun(run *core.RunResult) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown):
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

func statusLabel(status core.Status) string {
	switch status {
	case core.StatusGenerated:
		return "✅ generated"
	case core.StatusCached:
		return "💾 cached"
	case core.StatusPlanned:
		return "📝 planned"
	case core.StatusFailed:
		return "❌ failed"
	default:
		return string(status)
	}
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return d.Round(time.Millisecond).String()
}

func summaryLine(run *core.RunResult) string {
	parts := []string{fmt.Sprintf("%d generated", run.Count(core.StatusGenerated))}
	if n := run.Count(core.StatusCached); n > 0 {
		parts = append(parts, fmt.Sprintf("%d cached", n))
	}
	if n := run.Count(core.StatusPlanned); n > 0 {
		parts = append(parts, fmt.Sprintf("%d planned", n))
	}
	if n := run.Count(core.StatusFailed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}
	return strings.Join(parts, ", ")
}
