package correlogram

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Job is one correlogram of a batch. Unit2 == Unit1 with Auto set for an
// autocorrelogram; B is ignored in that case.
type Job struct {
	Unit1 int
	Unit2 int
	A     []int64
	B     []int64
	Auto  bool
}

// AutoJob builds an autocorrelogram job.
func AutoJob(unit int, train []int64) Job {
	return Job{Unit1: unit, Unit2: unit, A: train, Auto: true}
}

// CrossJob builds a cross-correlogram job.
func CrossJob(unit1, unit2 int, a, b []int64) Job {
	return Job{Unit1: unit1, Unit2: unit2, A: a, B: b}
}

// Batch computes independent correlograms in parallel.
type Batch struct {
	Params  Params
	Workers int // <= 0 means GOMAXPROCS
}

// Run computes every job and returns results index-aligned with jobs.
//
// Jobs share no mutable state; each worker writes only its own slot of the
// result slice. Cancellation is observed between jobs, never inside one
// histogram. The first failing job aborts the batch with a *UnitError
// naming its units.
func (b Batch) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	if err := b.Params.Validate(); err != nil {
		return nil, err
	}

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		i, job := i, job
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var (
				res Result
				err error
			)
			if job.Auto {
				res, err = Auto(job.A, b.Params)
			} else {
				res, err = Cross(job.A, job.B, b.Params)
			}
			if err != nil {
				return &UnitError{Unit1: job.Unit1, Unit2: job.Unit2, Err: err}
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Cancelled before any job failed: report the caller's context error.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
