// Package engine orchestrates one audit run: corpus load, parallel per-file
// index+match, then single-threaded classify, weight, and aggregate over the
// complete finding set.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/jacoblewisau/higlint/internal/classify"
	"github.com/jacoblewisau/higlint/internal/corpus"
	"github.com/jacoblewisau/higlint/internal/indexer"
	"github.com/jacoblewisau/higlint/internal/ir"
	"github.com/jacoblewisau/higlint/internal/reporting"
	"github.com/jacoblewisau/higlint/internal/rules"
	"github.com/jacoblewisau/higlint/internal/storage"
	"github.com/jacoblewisau/higlint/internal/weight"
)

// EngineError is fatal: unreadable root, missing corpus. Per-file problems
// are warnings, never this.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string { return fmt.Sprintf("engine: %s: %v", e.Op, e.Err) }
func (e *EngineError) Unwrap() error { return e.Err }

// Options configures one audit run.
type Options struct {
	Root       string
	CorpusPath string
	Profile    ir.Profile

	Extensions  []string
	Workers     int // 0 = GOMAXPROCS
	ReadTimeout time.Duration

	// DB enables the incremental file cache and stored waivers; nil runs
	// stateless.
	DB       *storage.DB
	UseCache bool

	Logger *slog.Logger
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

type fileResult struct {
	findings     []ir.Finding
	suppressions []indexer.Suppression
	warning      string
	canceled     bool
}

// Audit runs the full pipeline. The corpus is loaded once and shared
// read-only across workers; cancellation is checked between files, so a
// cancelled run returns the completed work with Truncated set instead of
// discarding it.
func Audit(ctx context.Context, opts Options) (ir.Run, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	run := ir.Run{
		ID:            "run-" + uuid.NewString(),
		StartedAt:     time.Now().UTC(),
		Root:          opts.Root,
		EngineVersion: ir.Version,
		Profile:       opts.Profile,
	}

	run.CorpusVersion = "builtin"
	if opts.CorpusPath != "" {
		cor, err := corpus.Load(opts.CorpusPath)
		if err != nil {
			return ir.Run{}, err // RuleCompileError: abort before any scanning
		}
		run.CorpusVersion = cor.Version
		logger.Debug("corpus loaded", "path", cor.Path, "version", cor.Version)
	}
	rs := rules.List()

	idxOpts := indexer.Options{Extensions: opts.Extensions, ReadTimeout: opts.ReadTimeout}
	files, warnings, err := indexer.ListFiles(opts.Root, idxOpts)
	if err != nil {
		return ir.Run{}, &EngineError{Op: "list files", Err: err}
	}
	run.Warnings = warnings

	cacheKey := run.CorpusVersion + "/" + ir.Version
	results := make([]fileResult, len(files))

	sem := semaphore.NewWeighted(int64(opts.workers()))
	var wg sync.WaitGroup
	truncated := false
	for i, path := range files {
		if err := sem.Acquire(ctx, 1); err != nil {
			truncated = true
			break
		}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = processFile(ctx, path, rs, idxOpts, opts, cacheKey, logger)
		}(i, path)
	}
	wg.Wait()

	var raw []ir.Finding
	suppressions := make(map[string][]indexer.Suppression)
	for i := range results {
		r := &results[i]
		if r.canceled {
			truncated = true
			continue
		}
		if r.warning != "" {
			run.Warnings = append(run.Warnings, r.warning)
			continue
		}
		raw = append(raw, r.findings...)
		if len(r.suppressions) > 0 {
			suppressions[files[i]] = r.suppressions
		}
	}

	var waivers []storage.Waiver
	if opts.DB != nil {
		waivers, err = opts.DB.ListWaivers(true)
		if err != nil {
			logger.Warn("waiver lookup failed; continuing without stored waivers", "err", err)
		}
	}

	classified := classify.Apply(raw, suppressions, waivers, logger)
	weighted, weights := weight.Apply(classified, opts.Profile)
	run.Findings = weighted
	run.Truncated = truncated
	run.Report = reporting.Aggregate(weighted, weights, truncated)
	return run, nil
}

// processFile indexes and matches one file, consulting the cache first. Any
// per-file failure becomes a warning on the run.
func processFile(ctx context.Context, path string, rs []rules.Rule, idxOpts indexer.Options, opts Options, cacheKey string, logger *slog.Logger) fileResult {
	data, err := indexer.ReadFile(ctx, path, idxOpts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// The run is being cancelled; not a per-file failure.
			return fileResult{canceled: true}
		}
		var ie *indexer.IndexError
		if errors.As(err, &ie) {
			return fileResult{warning: ie.Error()}
		}
		return fileResult{warning: err.Error()}
	}

	useCache := opts.UseCache && opts.DB != nil
	var sha string
	if useCache {
		sum := sha256.Sum256(data)
		sha = hex.EncodeToString(sum[:])
		if cf, ok, err := opts.DB.LookupFileCache(path, sha, cacheKey); err == nil && ok {
			return fileResult{findings: cf.Findings, suppressions: cf.Suppressions}
		} else if err != nil {
			logger.Warn("cache lookup failed", "file", path, "err", err)
		}
	}

	unit := indexer.Tokenize(path, data)
	findings := rules.EvaluateUnit(unit, rs)

	if useCache {
		cf := storage.CachedFile{Findings: findings, Suppressions: unit.Suppressions}
		if err := opts.DB.SaveFileCache(path, sha, cacheKey, cf); err != nil {
			logger.Warn("cache save failed", "file", path, "err", err)
		}
	}
	return fileResult{findings: findings, suppressions: unit.Suppressions}
}
