package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/catalog"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/logger"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/models"
	"github.com/nahidhasan98/catalog-sync-webhook/internal/upstream"
)

// Operations recorded in failures
const (
	OpUpload = "upload"
	OpDelete = "delete"
)

// Source reads a changed file from the pushed repository
type Source interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Destination is the content API the catalog is written to
type Destination interface {
	Health(ctx context.Context) error
	Put(ctx context.Context, path string, body []byte, meta upstream.PutMeta) error
	Delete(ctx context.Context, path string) error
}

// Job is one resolved push ready for execution
type Job struct {
	Changes catalog.ChangeSet
	Batches []catalog.Batch

	// Meta returns the upload metadata of a path
	Meta func(path string) upstream.PutMeta
}

// Outcome is what an executed job did
type Outcome struct {
	Uploaded []string
	Deleted  []string
	Skipped  []string
	Failures []models.Failure
	Aborted  bool
}

// Err returns the first failure as an error, or nil
func (o *Outcome) Err() error {
	if len(o.Failures) == 0 {
		return nil
	}
	f := o.Failures[0]
	return fmt.Errorf("%s %s: %s", f.Operation, f.Path, f.Error)
}

// Executor runs upload batches strictly in order and deletions afterwards
type Executor struct {
	source         Source
	dest           Destination
	parallelism    int
	abortOnFailure bool
	log            *logger.Logger
}

// NewExecutor creates an executor running up to parallelism operations at once
func NewExecutor(source Source, dest Destination, parallelism int, abortOnFailure bool, log *logger.Logger) *Executor {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Executor{
		source:         source,
		dest:           dest,
		parallelism:    parallelism,
		abortOnFailure: abortOnFailure,
		log:            log,
	}
}

// pathResult is the result of one operation, kept by index so reports follow plan order
type pathResult struct {
	done    bool
	skipped bool
	err     error
}

// Execute applies the job. Batch k+1 starts only after every upload of batch k has
// finished. With abortOnFailure a failed upload cancels the rest of its batch and
// all later batches are skipped. Deletions run after the uploads either way.
func (e *Executor) Execute(ctx context.Context, job Job) *Outcome {
	out := &Outcome{}

	for i, batch := range job.Batches {
		if out.Aborted {
			out.Skipped = append(out.Skipped, batch.Paths...)
			continue
		}

		e.log.Debugf("Uploading batch %d/%d at depth %d (%d paths)", i+1, len(job.Batches), batch.Depth, len(batch.Paths))

		results := e.runBatch(ctx, batch.Paths, job)
		for j, r := range results {
			p := batch.Paths[j]
			switch {
			case r.done:
				out.Uploaded = append(out.Uploaded, p)
			case r.skipped:
				out.Skipped = append(out.Skipped, p)
			default:
				e.log.With("path", p).Error("Upload failed", r.err)
				out.Failures = append(out.Failures, models.Failure{Path: p, Operation: OpUpload, Error: r.err.Error()})
			}
		}

		if e.abortOnFailure && len(out.Failures) > 0 {
			out.Aborted = true
			e.log.Warnf("Aborting sync after batch at depth %d", batch.Depth)
		}
	}

	e.deleteAll(ctx, job.Changes.RemovedPaths(), out)

	return out
}

func (e *Executor) runBatch(ctx context.Context, paths []string, job Job) []pathResult {
	results := make([]pathResult, len(paths))

	var (
		g    *errgroup.Group
		gctx = ctx
	)
	if e.abortOnFailure {
		g, gctx = errgroup.WithContext(ctx)
	} else {
		g = &errgroup.Group{}
	}
	g.SetLimit(e.parallelism)

	for i, p := range paths {
		g.Go(func() error {
			if gctx.Err() != nil && ctx.Err() == nil {
				results[i] = pathResult{skipped: true}
				return nil
			}

			err := e.upload(gctx, p, job)
			switch {
			case err == nil:
				results[i] = pathResult{done: true}
			case errors.Is(err, context.Canceled) && gctx.Err() != nil && ctx.Err() == nil:
				// cancelled by a sibling failure
				results[i] = pathResult{skipped: true}
			default:
				results[i] = pathResult{err: err}
			}
			return err
		})
	}
	_ = g.Wait()

	return results
}

func (e *Executor) upload(ctx context.Context, path string, job Job) error {
	body, err := e.source.Fetch(ctx, path)
	if err != nil {
		return err
	}

	var meta upstream.PutMeta
	if job.Meta != nil {
		meta = job.Meta(path)
	}
	if _, ok := job.Changes.Modified[path]; ok {
		meta.Updated = true
	}

	return e.dest.Put(ctx, path, body, meta)
}

func (e *Executor) deleteAll(ctx context.Context, paths []string, out *Outcome) {
	if len(paths) == 0 {
		return
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(e.parallelism)

	done := make([]bool, len(paths))
	for i, p := range paths {
		g.Go(func() error {
			if err := e.dest.Delete(ctx, p); err != nil {
				e.log.With("path", p).Error("Delete failed", err)
				mu.Lock()
				out.Failures = append(out.Failures, models.Failure{Path: p, Operation: OpDelete, Error: err.Error()})
				mu.Unlock()
				return nil
			}
			done[i] = true
			return nil
		})
	}
	_ = g.Wait()

	for i, p := range paths {
		if done[i] {
			out.Deleted = append(out.Deleted, p)
		}
	}
}
