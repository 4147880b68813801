package output

import (
	"encoding/json"

	"github.com/schemalens/schemalens/internal/core"
)

// JSONFormatter renders a run as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatRun renders the full run result, suitable for piping into jq.
func (f *JSONFormatter) FormatRun(run *core.RunResult) (string, error) {
	if run == nil {
		return "", nil
	}

	var (
		data []byte
		err  error
	)
	if f.Indent {
		data, err = json.MarshalIndent(run, "", "  ")
	} else {
		data, err = json.Marshal(run)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
