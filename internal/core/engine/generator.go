// Package engine drives a generation run: it discovers SQL models, fans
// them out to a bounded worker pool, and assembles one schema.yml per model
// directory from the provider replies.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/schemalens/schemalens/internal/core"
	"github.com/schemalens/schemalens/internal/core/extract"
	"github.com/schemalens/schemalens/internal/core/schema"
	"github.com/schemalens/schemalens/internal/core/store"
	"github.com/schemalens/schemalens/internal/llm"
	"github.com/schemalens/schemalens/internal/llm/prompt"
)

// DefaultWorkers bounds the pool when no worker count is configured.
const DefaultWorkers = 4

// Describer executes one documentation request against a provider.
// *llm.Service satisfies it.
type Describer interface {
	Describe(ctx context.Context, req llm.DescribeRequest) (*llm.DescribeResult, error)
}

// ReplyCache stores raw provider replies between runs. *store.Store
// satisfies it; a nil cache disables caching.
type ReplyCache interface {
	GetReply(ctx context.Context, key store.CacheKey) (string, bool, error)
	SetReply(ctx context.Context, key store.CacheKey, reply string, ttl time.Duration) error
}

// Generator coordinates one run over a dbt project.
type Generator struct {
	Describer Describer
	Cache     ReplyCache
	CacheTTL  time.Duration

	// Provider and ProviderModel identify the active vendor for cache keys
	// and run reporting.
	Provider      string
	ProviderModel string

	// ProviderOverride is forwarded on every describe request so a run can
	// target a provider other than the configured default.
	ProviderOverride string

	Workers    int
	DryRun     bool
	StripTests bool

	Clock func() time.Time
}

// modelOutcome pairs the per-file report with the canonised entries that
// will land in that file's directory schema.yml.
type modelOutcome struct {
	result  *core.FileResult
	entries []schema.Model
}

// Run processes every selected model under the project's models/ tree and
// writes one schema.yml per directory. Per-model failures are recorded in
// the result and do not abort the run; only context cancellation does.
func (g *Generator) Run(ctx context.Context, projectPath string, selected map[string]struct{}) (*core.RunResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	modelsRoot, err := extract.FindModelsRoot(projectPath)
	if err != nil {
		return nil, err
	}

	files, err := extract.ListModelFiles(modelsRoot, selected)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no model files found under %s", modelsRoot)
	}

	run := &core.RunResult{
		RunID:      uuid.NewString(),
		ModelsRoot: modelsRoot,
		Provider:   g.Provider,
		DryRun:     g.DryRun,
		StartedAt:  g.now(),
	}

	outcomes := g.processAll(ctx, modelsRoot, files)

	for _, outcome := range outcomes {
		run.Results = append(run.Results, outcome.result)
	}

	if !g.DryRun {
		written, err := g.writeSchemaFiles(outcomes)
		run.Written = written
		if err != nil {
			run.FinishedAt = g.now()
			return run, err
		}
	}

	run.FinishedAt = g.now()
	if err := ctx.Err(); err != nil {
		return run, err
	}
	return run, nil
}

func (g *Generator) processAll(ctx context.Context, modelsRoot string, files []string) []*modelOutcome {
	outcomes := make([]*modelOutcome, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for idx := range jobs {
			if ctx.Err() != nil {
				return
			}
			outcomes[idx] = g.processModel(ctx, modelsRoot, files[idx])
		}
	}

	workers := g.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(files) {
		workers = len(files)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker()
	}

sendLoop:
	for i := range files {
		select {
		case <-ctx.Done():
			break sendLoop
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	// Jobs skipped after cancellation still get a report entry.
	for i, outcome := range outcomes {
		if outcome == nil {
			outcomes[i] = &modelOutcome{result: g.fileResult(modelsRoot, files[i], core.StatusFailed, "run canceled")}
		}
	}
	return outcomes
}

func (g *Generator) processModel(ctx context.Context, modelsRoot, path string) *modelOutcome {
	started := g.now()

	model, err := extract.ReadModelFile(modelsRoot, path)
	if err != nil {
		return &modelOutcome{result: g.fileResult(modelsRoot, path, core.StatusFailed, err.Error())}
	}

	result := g.fileResult(modelsRoot, path, core.StatusPlanned, "")
	result.Sector = model.Sector

	if g.DryRun {
		return &modelOutcome{result: result}
	}

	reply, status, attempts, err := g.fetchReply(ctx, model)
	result.Attempts = attempts
	result.Duration = g.now().Sub(started)
	if err != nil {
		result.Status = core.StatusFailed
		result.Message = err.Error()
		return &modelOutcome{result: result}
	}

	entries, err := g.postProcess(reply, model)
	if err != nil {
		result.Status = core.StatusFailed
		result.Message = err.Error()
		return &modelOutcome{result: result}
	}

	result.Status = status
	return &modelOutcome{result: result, entries: entries}
}

// fetchReply returns the raw YAML reply for one model, consulting the cache
// first and recording fresh replies back into it.
func (g *Generator) fetchReply(ctx context.Context, model *extract.ModelFile) (string, core.Status, int, error) {
	key := store.NewCacheKey(model.Name, g.Provider, g.ProviderModel, cacheInput(model))

	if g.Cache != nil {
		reply, hit, err := g.Cache.GetReply(ctx, key)
		if err == nil && hit {
			return reply, core.StatusCached, 0, nil
		}
		// A cache read failure falls through to the provider.
	}

	res, err := g.Describer.Describe(ctx, llm.DescribeRequest{
		ProviderOverride: g.ProviderOverride,
		Prompt: prompt.Data{
			ModelName:   model.Name,
			Sector:      model.Sector,
			SQL:         model.SQL,
			Columns:     model.Columns,
			ColumnHints: model.ColumnHints,
			Refs:        model.Refs,
			SourcesYAML: model.SourcesYAML,
		},
	})
	if err != nil {
		return "", core.StatusFailed, 0, err
	}

	if g.Cache != nil {
		_ = g.Cache.SetReply(ctx, key, res.YAML, g.CacheTTL)
	}
	return res.YAML, core.StatusGenerated, res.Attempts, nil
}

// postProcess turns a raw reply into canonised schema entries.
func (g *Generator) postProcess(reply string, model *extract.ModelFile) ([]schema.Model, error) {
	parsed, err := schema.Parse(schema.Sanitize(reply))
	if err != nil {
		return nil, err
	}

	entries := make([]schema.Model, 0, len(parsed))
	for _, m := range parsed {
		entries = append(entries, schema.Canonise(schema.Normalize(m), model.Name, g.StripTests))
	}
	return entries, nil
}

// writeSchemaFiles groups entries per model directory, merges them with any
// existing schema.yml, and writes the result. Directories are handled in
// sorted order so output is deterministic.
func (g *Generator) writeSchemaFiles(outcomes []*modelOutcome) ([]string, error) {
	byDir := map[string][]schema.Model{}
	for _, outcome := range outcomes {
		for _, entry := range outcome.entries {
			byDir[outcome.result.Dir] = schema.AddUnique(byDir[outcome.result.Dir], entry)
		}
	}

	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var written []string
	for _, dir := range dirs {
		target := filepath.Join(dir, "schema.yml")

		existing, err := os.ReadFile(target) // #nosec G304 -- path derived from scanned tree
		if err != nil && !os.IsNotExist(err) {
			return written, fmt.Errorf("read %s: %w", target, err)
		}

		merged, err := schema.Merge(existing, byDir[dir])
		if err != nil {
			return written, fmt.Errorf("merge %s: %w", target, err)
		}

		data, err := schema.Encode(merged)
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil { // #nosec G306 -- schema files are project sources
			return written, fmt.Errorf("write %s: %w", target, err)
		}
		written = append(written, target)
	}
	return written, nil
}

func (g *Generator) fileResult(modelsRoot, path string, status core.Status, message string) *core.FileResult {
	rel, err := filepath.Rel(modelsRoot, path)
	if err != nil {
		rel = path
	}
	name := filepath.Base(path)
	return &core.FileResult{
		Model:    name[:len(name)-len(filepath.Ext(name))],
		Path:     rel,
		Dir:      filepath.Dir(path),
		Provider: g.Provider,
		Status:   status,
		Message:  message,
	}
}

// cacheInput is the digest material for the reply cache: anything here that
// changes must produce a different cache key.
func cacheInput(model *extract.ModelFile) string {
	return model.SQL + "\x00" + model.SourcesYAML
}

func (g *Generator) now() time.Time {
	if g != nil && g.Clock != nil {
		return g.Clock()
	}
	return time.Now().UTC()
}
