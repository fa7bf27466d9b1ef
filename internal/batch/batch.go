// Package batch randomizes many cartridges concurrently. Each job loads its
// own image and builds its own generator.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/MJE43/gbwild/internal/engine"
	"github.com/MJE43/gbwild/internal/randomizer"
)

// Job is one input file and where to write its randomized copy.
type Job struct {
	Input  string
	Output string
}

// Outcome is the result of one job. Exactly one of Result and Err is set.
type Outcome struct {
	Job    Job
	Result *randomizer.Result
	Err    error
}

// Options tunes a batch run.
type Options struct {
	// Workers bounds concurrency; zero means runtime.NumCPU().
	Workers int
	// OnDone is called once per finished job. Calls are serialized.
	OnDone func(Outcome)
}

// JobsFor maps inputs to outputs in outDir named "<base>-random<ext>". An
// empty outDir keeps each output next to its input.
func JobsFor(inputs []string, outDir string) []Job {
	jobs := make([]Job, len(inputs))
	for i, in := range inputs {
		dir := outDir
		if dir == "" {
			dir = filepath.Dir(in)
		}
		ext := filepath.Ext(in)
		base := strings.TrimSuffix(filepath.Base(in), ext)
		jobs[i] = Job{Input: in, Output: filepath.Join(dir, base+"-random"+ext)}
	}
	return jobs
}

// Run processes jobs with cfg. Outcomes are returned in job order. The
// returned error combines every job failure; one failing job does not stop
// the others. A cancelled context skips jobs not yet started.
func Run(ctx context.Context, jobs []Job, cfg engine.Config, opts Options) ([]Outcome, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Resolve once so every job in the batch shares the reported seed.
	seed, err := cfg.Seed.Resolve()
	if err != nil {
		return nil, err
	}
	cfg.Seed = seed

	outcomes := make([]Outcome, len(jobs))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(workers)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			o := Outcome{Job: job}
			if err := ctx.Err(); err != nil {
				o.Err = err
			} else {
				o.Result, o.Err = randomizer.RandomizeFile(job.Input, job.Output, cfg, randomizer.Options{})
			}
			if o.Err != nil {
				o.Err = fmt.Errorf("%s: %w", job.Input, o.Err)
			}
			outcomes[i] = o

			if opts.OnDone != nil {
				mu.Lock()
				opts.OnDone(o)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	var errs error
	for _, o := range outcomes {
		errs = multierr.Append(errs, o.Err)
	}
	return outcomes, errs
}
