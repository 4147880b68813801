// Package core holds the shared result types of a generation run.
package core

import "time"

// Status describes the outcome for one SQL model file.
type Status string

const (
	// StatusGenerated means the provider produced a fresh schema entry.
	StatusGenerated Status = "generated"
	// StatusCached means the entry was served from the response cache.
	StatusCached Status = "cached"
	// StatusPlanned means the model was discovered but not processed (dry run).
	StatusPlanned Status = "planned"
	// StatusFailed means processing failed; the run continues without it.
	StatusFailed Status = "failed"
)

// FileResult is the per-model outcome of a run.
type FileResult struct {
	Model    string        `json:"model"`
	Path     string        `json:"path"`
	Dir      string        `json:"dir"`
	Sector   string        `json:"sector,omitempty"`
	Provider string        `json:"provider,omitempty"`
	Status   Status        `json:"status"`
	Attempts int           `json:"attempts,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Message  string        `json:"message,omitempty"`
}

// RunResult summarizes a whole generation run.
type RunResult struct {
	RunID      string        `json:"run_id"`
	ModelsRoot string        `json:"models_root"`
	Provider   string        `json:"provider"`
	DryRun     bool          `json:"dry_run,omitempty"`
	Results    []*FileResult `json:"results"`
	Written    []string      `json:"written,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Count returns how many results carry the given status.
func (r *RunResult) Count(status Status) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, res := range r.Results {
		if res != nil && res.Status == status {
			n++
		}
	}
	return n
}
