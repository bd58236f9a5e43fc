package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/desertthunder/ytmm/internal/catalog"
	"github.com/desertthunder/ytmm/internal/shared"
	"golang.org/x/time/rate"
)

// DefaultWorkers is the worker pool size when none is configured.
const DefaultWorkers = 4

// FetchError records one job's failure. Failures are collected and reported
// after the run; they never abort sibling jobs.
type FetchError struct {
	SourceID string
	Err      error
}

func (e FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.SourceID, e.Err)
}

func (e FetchError) Unwrap() error { return e.Err }

// Orchestrator runs fetch jobs under a bounded worker pool.
//
// All catalog mutations (slot overwrite, append, dirty flag) are serialized
// through a single mutex since workers complete out of order. Once submitted,
// jobs run to completion or failure; the context is only consulted between
// jobs, never to interrupt an in-flight fetch.
type Orchestrator struct {
	workers  int
	reporter Reporter
	limiter  *rate.Limiter

	mu sync.Mutex // guards store mutations and the error list
}

// Opts contains configuration options for creating an Orchestrator.
type Opts struct {
	Workers  int           // Pool size, DefaultWorkers when <= 0
	Reporter Reporter      // Progress sink, discarded when nil
	Limiter  *rate.Limiter // Optional pacing of job starts
}

// NewOrchestrator creates an Orchestrator with the provided options.
func NewOrchestrator(opts Opts) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Reporter == nil {
		opts.Reporter = nopReporter{}
	}
	return &Orchestrator{
		workers:  opts.Workers,
		reporter: opts.Reporter,
		limiter:  opts.Limiter,
	}
}

// aggregator tracks per-job completion fractions and computes the batch mean.
// Safe under concurrent event delivery.
type aggregator struct {
	mu        sync.Mutex
	fractions []float64
}

func newAggregator(n int) *aggregator {
	return &aggregator{fractions: make([]float64, n)}
}

// update records a job's fraction and returns the new aggregate.
func (a *aggregator) update(index int, fraction float64) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fractions[index] = fraction

	if len(a.fractions) == 0 {
		return 1
	}
	var sum float64
	for _, f := range a.fractions {
		sum += f
	}
	return sum / float64(len(a.fractions))
}

// Run executes the batch and returns the collected per-job failures.
//
// Jobs are handed to workers in submission order, though completion order
// across workers is not guaranteed. The catalog held by store is fully
// mutated by the time Run returns: every job has either installed its track
// (replace at Job.Index, or append when -1) or contributed a FetchError.
func (o *Orchestrator) Run(ctx context.Context, store *catalog.Store, jobs []Job, fetcher Fetcher) []FetchError {
	if len(jobs) == 0 {
		return nil
	}
	if fetcher == nil {
		errs := make([]FetchError, 0, len(jobs))
		for _, job := range jobs {
			errs = append(errs, FetchError{SourceID: job.SourceID, Err: shared.ErrNoFetcher})
		}
		return errs
	}

	agg := newAggregator(len(jobs))
	var errs []FetchError

	type queued struct {
		Job
		id    string
		index int
	}

	queue := make(chan queued, len(jobs))
	for i, job := range jobs {
		q := queued{Job: job, id: shared.GenerateID(), index: i}
		o.emit(agg, ProgressEvent{JobID: q.id, JobIndex: i, SourceID: job.SourceID, Phase: PhasePending}, 0)
		queue <- q
	}
	close(queue)

	var wg sync.WaitGroup
	for range o.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for q := range queue {
				if err := o.await(ctx); err != nil {
					o.fail(agg, q.id, q.index, q.SourceID, err, &errs)
					continue
				}
				o.runJob(ctx, store, q.Job, q.id, q.index, fetcher, agg, &errs)
			}
		}()
	}
	wg.Wait()

	return errs
}

// await applies the rate limiter before a job starts.
func (o *Orchestrator) await(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if o.limiter == nil {
		return nil
	}
	return o.limiter.Wait(ctx)
}

func (o *Orchestrator) runJob(ctx context.Context, store *catalog.Store, job Job, id string, index int, fetcher Fetcher, agg *aggregator, errs *[]FetchError) {
	o.emit(agg, ProgressEvent{JobID: id, JobIndex: index, SourceID: job.SourceID, Phase: PhaseActive}, 0)

	meta, err := fetcher.Fetch(ctx, job.SourceID, func(done, total int64) {
		ev := ProgressEvent{
			JobID:      id,
			JobIndex:   index,
			SourceID:   job.SourceID,
			Phase:      PhaseDownloading,
			BytesDone:  done,
			BytesTotal: total,
		}
		o.emit(agg, ev, ev.Fraction())
	})
	if err != nil {
		o.fail(agg, id, index, job.SourceID, err, errs)
		return
	}

	track := TrackFromMetadata(meta)

	// The fetcher leaves the file named by source id; move it to its
	// canonical name before the catalog learns about the track. Submissions
	// may be full URLs, so the extracted id is authoritative.
	fileID := track.ID
	if fileID == "" {
		fileID = job.SourceID
	}
	root := store.Catalog.Root
	from := filepath.Join(root, fileID+catalog.TrackFormat)
	to := filepath.Join(root, catalog.CanonicalName(track.Title)+catalog.TrackFormat)
	if err := os.Rename(from, to); err != nil {
		o.fail(agg, id, index, job.SourceID, fmt.Errorf("rename: %w", err), errs)
		return
	}

	o.mu.Lock()
	if job.Index >= 0 && job.Index < len(store.Catalog.Tracks) {
		store.Catalog.Tracks[job.Index] = track
	} else {
		store.Catalog.Tracks = append(store.Catalog.Tracks, track)
	}
	store.MarkDirty()
	o.mu.Unlock()

	o.emit(agg, ProgressEvent{JobID: id, JobIndex: index, SourceID: job.SourceID, Phase: PhaseFinished}, 1)
}

func (o *Orchestrator) fail(agg *aggregator, id string, index int, sourceID string, err error, errs *[]FetchError) {
	o.mu.Lock()
	*errs = append(*errs, FetchError{SourceID: sourceID, Err: err})
	o.mu.Unlock()
	o.emit(agg, ProgressEvent{JobID: id, JobIndex: index, SourceID: sourceID, Phase: PhaseFailed, Err: err}, 1)
}

// emit recomputes the aggregate for the event and delivers it.
func (o *Orchestrator) emit(agg *aggregator, ev ProgressEvent, fraction float64) {
	ev.Aggregate = agg.update(ev.JobIndex, fraction)
	o.reporter.Progress(ev)
}
