package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// TaskGroup runs a batch of independent tasks with bounded concurrency and an
// overall deadline.
type TaskGroup struct {
	name    string
	workers int
	timeout time.Duration
}

// NewTaskGroup creates a task group. Workers below 1 run tasks one at a time;
// a zero timeout means only the caller's context bounds the batch.
func NewTaskGroup(name string, workers int, timeout time.Duration) TaskGroup {
	if workers < 1 {
		workers = 1
	}
	return TaskGroup{name: name, workers: workers, timeout: timeout}
}

// Collect runs fn for every input and returns the outputs in input order
// together with a flag per input telling whether its task finished. When the
// deadline passes, Collect returns what has finished so far; tasks still
// queued are skipped and running tasks see a cancelled context. A panicking
// task counts as unfinished.
func Collect[In, Out any](ctx context.Context, g TaskGroup, inputs []In, fn func(context.Context, In) Out) ([]Out, []bool) {
	results := make([]Out, len(inputs))
	done := make([]bool, len(inputs))
	if len(inputs) == 0 {
		return results, done
	}

	stageCtx, cancel := context.WithCancel(ctx)
	if g.timeout > 0 {
		stageCtx, cancel = context.WithTimeout(ctx, g.timeout)
	}
	defer cancel()

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(stageCtx)
	eg.SetLimit(g.workers)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i, in := range inputs {
			if egCtx.Err() != nil {
				break
			}
			eg.Go(func() error {
				if egCtx.Err() != nil {
					return nil
				}
				defer func() {
					if r := recover(); r != nil {
						log.Printf("[%s] task %d panicked: %v", g.name, i, r)
					}
				}()
				out := fn(egCtx, in)
				mu.Lock()
				results[i] = out
				done[i] = true
				mu.Unlock()
				return nil
			})
		}
		_ = eg.Wait()
	}()

	select {
	case <-finished:
	case <-stageCtx.Done():
		log.Printf("[%s] stage stopped: %v", g.name, stageCtx.Err())
	}

	// late tasks keep writing into results; hand back a copy
	mu.Lock()
	defer mu.Unlock()
	outResults := make([]Out, len(results))
	outDone := make([]bool, len(done))
	copy(outResults, results)
	copy(outDone, done)
	return outResults, outDone
}
