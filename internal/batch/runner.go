// Package batch solves many warehouses under a time limit and keeps numbered
// text reports of the results.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pdrpinto/sokoban"
	"github.com/pdrpinto/sokoban/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Outcome is how a warehouse fared.
type Outcome string

const (
	Solved     Outcome = "Solved"
	NotSolved  Outcome = "Not Solved" // timed out or hit the expansion limit
	Impossible Outcome = "Impossible"
)

// ParseOutcome accepts the report spelling of an outcome.
func ParseOutcome(s string) (Outcome, error) {
	switch o := Outcome(s); o {
	case Solved, NotSolved, Impossible:
		return o, nil
	}
	return "", fmt.Errorf("unknown outcome %q", s)
}

// Expectation pins the result a case should produce. A zero Cost is not
// checked.
type Expectation struct {
	Outcome Outcome
	Cost    int
}

// Case is one warehouse file to solve.
type Case struct {
	Name   string
	Path   string
	Expect *Expectation
}

// Result is the outcome of one case.
type Result struct {
	Case    Case
	Tags    Tags
	Outcome Outcome
	Elapsed time.Duration
	Cost    int
	Actions []sokoban.Action
	Cached  bool
}

// Mismatch describes how the result differs from the case expectation, or is
// empty when it matches or nothing was expected.
func (r Result) Mismatch() string {
	want := r.Case.Expect
	if want == nil {
		return ""
	}
	if want.Outcome != "" && want.Outcome != r.Outcome {
		return fmt.Sprintf("expected %s, got %s", want.Outcome, r.Outcome)
	}
	if want.Cost > 0 && r.Outcome == Solved && want.Cost != r.Cost {
		return fmt.Sprintf("expected cost %d, got %d", want.Cost, r.Cost)
	}
	return ""
}

// Run is a completed batch.
type Run struct {
	ID       string
	Started  time.Time
	Finished time.Time
	Results  []Result
}

// Mismatches counts results that contradict their expectation.
func (r *Run) Mismatches() int {
	n := 0
	for _, res := range r.Results {
		if res.Mismatch() != "" {
			n++
		}
	}
	return n
}

// Solver is what the runner calls for each warehouse. The boolean reports
// whether the solution came from a cache. *cache.Store implements it.
type Solver interface {
	Solve(ctx context.Context, w *sokoban.Warehouse, opts ...sokoban.SolveOption) (sokoban.Solution, bool, error)
}

type directSolver struct{}

func (directSolver) Solve(ctx context.Context, w *sokoban.Warehouse, opts ...sokoban.SolveOption) (sokoban.Solution, bool, error) {
	solution, err := sokoban.Solve(ctx, w, opts...)
	return solution, false, err
}

// Runner solves cases with bounded parallelism.
type Runner struct {
	// Timeout bounds each warehouse; zero means no limit.
	Timeout time.Duration
	// Parallel is the number of warehouses solved at once; below one means one.
	Parallel int
	Options  []sokoban.SolveOption
	// Solver defaults to calling sokoban.Solve directly.
	Solver Solver
}

// Run loads every case, then solves them. Results keep the order of cases.
// A warehouse that fails to load aborts the run before any solving starts;
// cancelling ctx aborts it midway.
func (r *Runner) Run(ctx context.Context, cases []Case) (*Run, error) {
	warehouses := make([]*sokoban.Warehouse, len(cases))
	for i, c := range cases {
		w, err := sokoban.Load(c.Path)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Name, err)
		}
		warehouses[i] = w
	}

	run := &Run{
		ID:      uuid.NewString(),
		Started: time.Now(),
		Results: make([]Result, len(cases)),
	}
	logger := logging.FromContext(ctx).With("run_id", run.ID)
	ctx = logging.WithLogger(ctx, logger)
	logger.Info("batch started", "cases", len(cases), "parallel", r.parallel(), "timeout", r.Timeout)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel())
	for i := range cases {
		i := i
		g.Go(func() error {
			res, err := r.solveOne(gctx, cases[i], warehouses[i])
			if err != nil {
				return err
			}
			run.Results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch %s: %w", run.ID, err)
	}

	run.Finished = time.Now()
	logger.Info("batch finished",
		"elapsed", run.Finished.Sub(run.Started),
		"mismatches", run.Mismatches())
	return run, nil
}

func (r *Runner) parallel() int {
	if r.Parallel < 1 {
		return 1
	}
	return r.Parallel
}

func (r *Runner) solveOne(ctx context.Context, c Case, w *sokoban.Warehouse) (Result, error) {
	logger := logging.FromContext(ctx).With("case", c.Name)
	res := Result{Case: c, Tags: Classify(w)}

	solveCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	solver := r.Solver
	if solver == nil {
		solver = directSolver{}
	}

	started := time.Now()
	solution, cached, err := solver.Solve(logging.WithLogger(solveCtx, logger), w, r.Options...)
	res.Elapsed = time.Since(started)
	res.Cached = cached

	switch {
	case err == nil && solution.Solved:
		res.Outcome = Solved
		res.Cost = solution.Cost
		res.Actions = solution.Actions
	case err == nil:
		res.Outcome = Impossible
	case ctx.Err() != nil:
		// the whole batch was cancelled, not just this warehouse
		return res, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, sokoban.ErrSearchLimit):
		res.Outcome = NotSolved
	default:
		return res, fmt.Errorf("case %s: %w", c.Name, err)
	}

	if m := res.Mismatch(); m != "" {
		logger.Warn("unexpected result", "mismatch", m)
	}
	logger.Info("case finished", "outcome", res.Outcome, "cost", res.Cost, "elapsed", res.Elapsed, "cached", cached)
	return res, nil
}
