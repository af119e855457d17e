// Package batch identifies many documents at once and groups duplicates.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/docid/internal/common"
	"github.com/joseph-ayodele/docid/internal/fingerprint"
	"github.com/joseph-ayodele/docid/internal/pipeline"
)

// Processor is the per-file operation run by the batch.
type Processor interface {
	Process(ctx context.Context, path string) (pipeline.Result, error)
	GenerateUniversal(ctx context.Context, path string) (pipeline.Result, error)
}

// Item is one processed file.
type Item struct {
	File   string          `json:"file"`
	Result pipeline.Result `json:"result"`
	Err    string          `json:"error,omitempty"`
}

// Report is the grouped outcome of a batch. Items keep input order.
type Report struct {
	Items        []Item              `json:"items"`
	Duplicates   map[string][]string `json:"duplicates"`     // id -> files, only groups of 2+
	SameTypeSize map[string][]string `json:"same_type_size"` // format/bucket -> files, only groups of 2+
	Failed       int                 `json:"failed"`
}

type Runner struct {
	proc      Processor
	logger    *slog.Logger
	workers   int
	timeout   time.Duration
	universal bool
}

type Option func(*Runner)

func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithTimeout bounds each file, not the whole batch.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithUniversal makes every file take the universal path.
func WithUniversal(on bool) Option {
	return func(r *Runner) { r.universal = on }
}

func NewRunner(proc Processor, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		proc:    proc,
		logger:  logger,
		workers: runtime.NumCPU(),
		timeout: 3 * time.Minute,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run processes every path. Per-file failures are collected into the
// returned error and counted in Report.Failed; they never stop the batch.
// Only a cancelled ctx aborts early.
func (r *Runner) Run(ctx context.Context, paths []string) (Report, error) {
	runID := uuid.NewString()
	ctx = common.WithLogger(common.WithRunID(ctx, runID), r.logger)

	items := make([]Item, len(paths))
	var (
		mu   sync.Mutex
		errs *multierror.Error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.one(gctx, p)
			items[i] = Item{File: p, Result: res}
			if err != nil {
				items[i].Err = err.Error()
				r.logger.Error("processing failed", "path", p, "error", err)
				mu.Lock()
				errs = multierror.Append(errs, common.WrapError(err, p))
				mu.Unlock()
				return nil
			}
			r.logger.Debug("processed file", "path", p, "id", res.ID.String())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	rep := Group(items)
	r.logger.Info("batch complete", "run_id", runID, "files", len(paths), "failed", rep.Failed, "duplicate_groups", len(rep.Duplicates))
	return rep, errs.ErrorOrNil()
}

func (r *Runner) one(ctx context.Context, path string) (pipeline.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if r.universal {
		return r.proc.GenerateUniversal(ctx, path)
	}
	return r.proc.Process(ctx, path)
}

// Group builds the duplicate maps from processed items. Failed items are
// counted but never grouped.
func Group(items []Item) Report {
	rep := Report{
		Items:        items,
		Duplicates:   map[string][]string{},
		SameTypeSize: map[string][]string{},
	}
	byID := map[string][]string{}
	byShape := map[string][]string{}
	for _, it := range items {
		if it.Err != "" {
			rep.Failed++
			continue
		}
		id := it.Result.ID.String()
		byID[id] = append(byID[id], it.File)
		key := ShapeKey(it.Result)
		byShape[key] = append(byShape[key], it.File)
	}
	keep := func(src, dst map[string][]string) {
		for k, files := range src {
			if len(files) > 1 {
				sort.Strings(files)
				dst[k] = files
			}
		}
	}
	keep(byID, rep.Duplicates)
	keep(byShape, rep.SameTypeSize)
	return rep
}

// ShapeKey is the (format, size bucket) grouping key, e.g. "pdf/12".
func ShapeKey(r pipeline.Result) string {
	return fmt.Sprintf("%s/%d", r.Format, fingerprint.SizeBucket(r.Size))
}
