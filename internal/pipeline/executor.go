package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stagehand/cli/internal/output"
)

// Handler executes one job. The executor owns scheduling and state;
// handlers own the work.
type Handler interface {
	HandleJob(ctx context.Context, job Job) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, job Job) error

// HandleJob implements Handler.
func (f HandlerFunc) HandleJob(ctx context.Context, job Job) error {
	return f(ctx, job)
}

// NopHandler succeeds every job without doing any work. Dry runs use it to
// walk the graph.
type NopHandler struct{}

// HandleJob implements Handler.
func (NopHandler) HandleJob(context.Context, Job) error {
	return nil
}

// Outcome captures one finished job.
type Outcome struct {
	ID       string
	State    State
	Duration time.Duration
	Err      error
}

// Result summarizes a finished run.
type Result struct {
	// RunID uniquely identifies the run. It is stamped into the bundles
	// the run produces.
	RunID string

	// Final holds the terminal state of every job.
	Final RunState

	// Order lists the jobs in the order they were started.
	Order []string

	// Outcomes holds per-job results for every job that actually ran.
	// Skipped jobs have no outcome.
	Outcomes map[string]Outcome

	// Failed reports whether any job failed.
	Failed bool

	// Duration is the wall time of the whole run.
	Duration time.Duration
}

// Executor runs a plan's jobs with bounded parallelism.
type Executor struct {
	plan    *Plan
	handler Handler
	workers int
	runID   string

	mu    sync.Mutex
	state RunState
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRunID fixes the run identifier instead of generating one. Callers
// that stamp the ID into artifacts before the run finishes use this to
// share one ID with the executor.
func WithRunID(id string) ExecutorOption {
	return func(e *Executor) {
		e.runID = id
	}
}

// NewExecutor creates an executor with every job pending. A worker count
// below one is clamped to one.
func NewExecutor(p *Plan, h Handler, workers int, opts ...ExecutorOption) *Executor {
	if workers < 1 {
		workers = 1
	}
	e := &Executor{
		plan:    p,
		handler: h,
		workers: workers,
		state:   NewRunState(p),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StateSnapshot returns a copy of the current run state.
func (e *Executor) StateSnapshot() RunState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Run executes every job until the graph is terminal. A job failure fails
// the run and skips its dependents but never aborts sibling jobs; only
// context cancellation or an internal scheduling error aborts early.
func (e *Executor) Run(ctx context.Context) (*Result, error) {
	runID := e.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	start := time.Now()

	output.Info("starting run", "run", runID, "jobs", e.plan.Len(), "workers", e.workers)

	type finished struct {
		id  string
		err error
		dur time.Duration
	}

	// inFlight never exceeds e.workers, so both channels hold every
	// outstanding item without blocking.
	workCh := make(chan Job, e.workers)
	doneCh := make(chan finished, e.workers)

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range workCh {
				t0 := time.Now()
				err := e.handler.HandleJob(ctx, job)
				doneCh <- finished{id: job.ID, err: err, dur: time.Since(t0)}
			}
		}()
	}

	var stopOnce sync.Once
	stopWorkers := func() {
		stopOnce.Do(func() {
			close(workCh)
			wg.Wait()
		})
	}
	defer stopWorkers()

	result := &Result{
		RunID:    runID,
		Outcomes: make(map[string]Outcome, e.plan.Len()),
	}
	inFlight := 0

	for {
		e.mu.Lock()
		ready := Ready(e.plan, e.state)
		for _, id := range ready {
			if inFlight >= e.workers {
				break
			}
			job, _ := e.plan.Job(id)
			if err := Transition(e.state, id, StatePending, StateRunning); err != nil {
				e.mu.Unlock()
				return nil, err
			}
			output.Debug("job started", "run", runID, "job", id)
			result.Order = append(result.Order, id)
			inFlight++
			workCh <- job
		}
		allDone := inFlight == 0 && e.state.Terminal()
		e.mu.Unlock()

		if inFlight == 0 {
			if allDone {
				break
			}
			return nil, errors.New("no runnable jobs but the run is not finished")
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("run cancelled: %w", ctx.Err())
		case f := <-doneCh:
			e.mu.Lock()
			if f.err != nil {
				output.Error("job failed", "run", runID, "job", f.id, "err", f.err)
				if err := FailAndPropagate(e.plan, e.state, f.id); err != nil {
					e.mu.Unlock()
					return nil, err
				}
				result.Outcomes[f.id] = Outcome{ID: f.id, State: StateFailed, Duration: f.dur, Err: f.err}
			} else {
				if err := Transition(e.state, f.id, StateRunning, StateSucceeded); err != nil {
					e.mu.Unlock()
					return nil, err
				}
				output.Debug("job finished", "run", runID, "job", f.id, "duration", f.dur)
				result.Outcomes[f.id] = Outcome{ID: f.id, State: StateSucceeded, Duration: f.dur}
			}
			inFlight--
			e.mu.Unlock()
		}
	}

	stopWorkers()

	result.Final = e.StateSnapshot()
	for _, st := range result.Final {
		if st == StateFailed {
			result.Failed = true
			break
		}
	}
	result.Duration = time.Since(start)

	output.Info("run finished", "run", runID, "duration", result.Duration, "failed", result.Failed)
	return result, nil
}
