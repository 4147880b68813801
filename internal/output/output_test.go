package output

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/schemalens/schemalens/internal/core"
)

func sampleRun() *core.RunResult {
	return &core.RunResult{
		RunID:    "run-1",
		Provider: "openai",
		Results: []*core.FileResult{
			{Model: "fct_orders", Sector: "finance", Status: core.StatusGenerated, Attempts: 2, Duration: 1200 * time.Millisecond},
			{Model: "dim_hosts", Sector: "ops", Status: core.StatusCached},
			{Model: "broken", Sector: "ops", Status: core.StatusFailed, Message: "provider unavailable"},
		},
		Written: []string{"models/finance/schema.yml"},
	}
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat(" JSON ")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func TestTableFormatter(t *testing.T) {
	rendered, err := (&TableFormatter{}).FormatRun(sampleRun())
	require.NoError(t, err)
	require.Contains(t, rendered, "fct_orders")
	require.Contains(t, rendered, "generated")
	require.Contains(t, rendered, "cached")
	require.Contains(t, rendered, "provider unavailable")
	require.Contains(t, rendered, "1 generated, 1 cached, 1 failed")
	require.Contains(t, rendered, "1 files written")
}

func TestJSONFormatter(t *testing.T) {
	rendered, err := (&JSONFormatter{Indent: true}).FormatRun(sampleRun())
	require.NoError(t, err)

	var decoded core.RunResult
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
	require.Equal(t, "run-1", decoded.RunID)
	require.Len(t, decoded.Results, 3)
	require.Equal(t, core.StatusFailed, decoded.Results[2].Status)
}

func TestMarkdownFormatter(t *testing.T) {
	run := sampleRun()
	run.Results[2].Message = "weird | pipe"

	rendered, err := (&MarkdownFormatter{}).FormatRun(run)
	require.NoError(t, err)
	require.Contains(t, rendered, "| Model | Sector | Status |")
	require.Contains(t, rendered, `weird \| pipe`)
	require.Contains(t, rendered, "**Summary**: 1 generated, 1 cached, 1 failed")
}

func TestFormattersHandleNilRun(t *testing.T) {
	for _, f := range []Formatter{&TableFormatter{}, &JSONFormatter{}, &MarkdownFormatter{}} {
		rendered, err := f.FormatRun(nil)
		require.NoError(t, err)
		require.Empty(t, rendered)
	}
}
