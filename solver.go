package sokoban

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdrpinto/sokoban/astar"
	"github.com/pdrpinto/sokoban/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrSearchLimit is returned by Solve when WithMaxExpansions is exceeded.
var ErrSearchLimit = astar.ErrExpansionLimit

var tracer = otel.Tracer("sokoban.solver")

// Solution is the outcome of Solve. Solved is false when the puzzle has no
// solution; an already solved puzzle yields Solved with no actions and cost 0.
type Solution struct {
	Solved   bool          `json:"solved"`
	Actions  []Action      `json:"actions"`
	Cost     int           `json:"cost"`
	Expanded int           `json:"expanded"`
	Elapsed  time.Duration `json:"elapsed"`
}

// String renders "Impossible" or the comma separated action tokens.
func (s Solution) String() string {
	if !s.Solved {
		return "Impossible"
	}
	return strings.Join(FormatActions(s.Actions), ", ")
}

// SolveOptions tunes the search.
type SolveOptions struct {
	Workers       int
	MaxExpansions int
}

// SolveOption modifies SolveOptions.
type SolveOption func(*SolveOptions)

// WithWorkers computes successors on n goroutines. Results are identical to an
// inline search.
func WithWorkers(n int) SolveOption {
	return func(o *SolveOptions) { o.Workers = n }
}

// WithMaxExpansions bounds the number of expanded states; Solve then fails
// with ErrSearchLimit.
func WithMaxExpansions(n int) SolveOption {
	return func(o *SolveOptions) { o.MaxExpansions = n }
}

// Solve finds a minimum-cost action sequence pushing every box onto a target.
// An unsolvable puzzle is reported through Solution.Solved, not as an error;
// errors come only from ctx or the expansion limit.
func Solve(ctx context.Context, w *Warehouse, options ...SolveOption) (Solution, error) {
	opts := SolveOptions{}
	for _, o := range options {
		o(&opts)
	}

	ctx, span := tracer.Start(ctx, "sokoban.Solve")
	defer span.End()
	logger := logging.FromContext(ctx)

	started := time.Now()
	puzzle := NewPuzzle(w)
	span.SetAttributes(
		attribute.Int("sokoban.boxes", len(w.Boxes)),
		attribute.Int("sokoban.targets", len(w.Grid.Targets())),
		attribute.Int("sokoban.taboo", puzzle.taboo.Len()),
	)
	logger.Debug("solve started",
		"boxes", len(w.Boxes),
		"taboo", puzzle.taboo.Len(),
		"heuristic_scale", puzzle.heuristic.Scale(),
		"workers", opts.Workers)

	result, err := astar.Search[State, Action, StateKey](ctx, puzzle, puzzle.heuristic.Estimate,
		astar.WithWorkers(opts.Workers),
		astar.WithMaxExpansions(opts.MaxExpansions),
	)
	elapsed := time.Since(started)
	solution := Solution{Expanded: result.ExpandedNodes, Elapsed: elapsed}
	span.SetAttributes(attribute.Int("sokoban.expanded", result.ExpandedNodes))

	switch {
	case errors.Is(err, astar.ErrNoPath):
		recordSolve(resultImpossible, elapsed, result.ExpandedNodes)
		span.SetAttributes(attribute.String("sokoban.result", resultImpossible))
		logger.Info("puzzle is impossible", "expanded", result.ExpandedNodes, "elapsed", elapsed)
		return solution, nil
	case errors.Is(err, astar.ErrExpansionLimit):
		recordSolve(resultLimit, elapsed, result.ExpandedNodes)
		span.SetStatus(codes.Error, "expansion limit")
		logger.Warn("search limit reached", "expanded", result.ExpandedNodes, "limit", opts.MaxExpansions)
		return solution, fmt.Errorf("solve: %w", err)
	case err != nil:
		recordSolve(resultCancelled, elapsed, result.ExpandedNodes)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("solve interrupted", "error", err, "expanded", result.ExpandedNodes)
		return solution, fmt.Errorf("solve: %w", err)
	}

	solution.Solved = true
	solution.Actions = result.Actions
	if solution.Actions == nil {
		solution.Actions = []Action{}
	}
	solution.Cost = int(result.TotalCost)
	recordSolve(resultSolved, elapsed, result.ExpandedNodes)
	span.SetAttributes(
		attribute.String("sokoban.result", resultSolved),
		attribute.Int("sokoban.cost", solution.Cost),
		attribute.Int("sokoban.moves", len(solution.Actions)),
	)
	logger.Info("puzzle solved",
		"cost", solution.Cost,
		"moves", len(solution.Actions),
		"expanded", result.ExpandedNodes,
		"elapsed", elapsed)
	return solution, nil
}
