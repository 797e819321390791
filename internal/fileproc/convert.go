package fileproc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/panbanda/es6class/internal/cache"
	"github.com/panbanda/es6class/internal/output"
	"github.com/panbanda/es6class/pkg/models"
	"github.com/panbanda/es6class/pkg/rewrite"
)

// Options configures a Processor.
type Options struct {
	// DryRun computes results without writing files.
	DryRun bool
	// Diff attaches a unified diff to every changed result.
	Diff bool
	// Workers bounds parallelism; <= 0 means 2x NumCPU.
	Workers int
	Logger  *slog.Logger
}

// Processor converts files in place.
type Processor struct {
	rw    *rewrite.Rewriter
	cache *cache.Cache
	opts  Options
	log   *slog.Logger
}

// NewProcessor creates a processor. c may be nil.
func NewProcessor(rw *rewrite.Rewriter, c *cache.Cache, opts Options) *Processor {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Processor{rw: rw, cache: c, opts: opts, log: log}
}

// ConvertFile converts a single file. Files whose content is cached as
// needing no change are not parsed.
func (p *Processor) ConvertFile(ctx context.Context, path string) (models.FileResult, error) {
	result := models.FileResult{Path: path}

	src, err := os.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("read: %w", err)
	}

	key := cacheKey(path)
	hash := cache.HashBytes(src)
	if _, ok := p.cache.GetWithHash(key, hash); ok {
		p.log.Debug("cache hit", "path", path)
		result.Skipped = models.SkipCached
		return result, nil
	}

	res, err := p.rw.Rewrite(ctx, src, path)
	if err != nil {
		return result, err
	}

	result.Changed = res.Changed
	result.Skipped = res.Skipped
	result.Classes = res.Classes
	result.Diagnostics = res.Diagnostics
	p.log.Debug("converted", "path", path, "changed", res.Changed, "classes", len(res.Classes), "skipped", string(res.Skipped))

	if !res.Changed {
		// Diagnostics must be reported again on the next run.
		if len(res.Diagnostics) == 0 {
			if err := p.cache.SetWithHash(key, hash, []byte(res.Skipped)); err != nil {
				p.log.Warn("cache write failed", "path", path, "err", err)
			}
		}
		return result, nil
	}

	if p.opts.Diff {
		diff, err := output.UnifiedDiff(filepath.ToSlash(path), src, res.Source)
		if err != nil {
			return result, fmt.Errorf("diff: %w", err)
		}
		result.Diff = diff
	}

	if p.opts.DryRun {
		return result, nil
	}

	if err := WriteFileAtomic(path, res.Source); err != nil {
		return result, fmt.Errorf("write: %w", err)
	}
	result.Written = true
	if err := p.cache.Invalidate(key); err != nil {
		p.log.Warn("cache invalidate failed", "path", path, "err", err)
	}
	return result, nil
}

// Run converts files in parallel. Per-file failures are reported in the
// batch result and the returned errors; they never stop other files.
func (p *Processor) Run(ctx context.Context, files []string, onProgress ProgressFunc) (*models.BatchResult, *ProcessingErrors) {
	results, errs := MapFiles(ctx, files, p.opts.Workers, p.ConvertFile, onProgress)

	var failures []models.FileFailure
	for _, e := range errs.Sorted() {
		p.log.Debug("conversion failed", "path", e.Path, "err", e.Err)
		failures = append(failures, models.FileFailure{Path: e.Path, Error: e.Err.Error()})
	}
	return models.NewBatchResult(results, failures, p.opts.DryRun), errs
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// WriteFileAtomic replaces path with data through a temporary file in the
// same directory, keeping the original permissions. Readers see either the
// old or the new content.
func WriteFileAtomic(path string, data []byte) error {
	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
