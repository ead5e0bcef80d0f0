package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pdrpinto/sokoban"
	"github.com/pdrpinto/sokoban/astar"
	"github.com/pdrpinto/sokoban/internal/logging"
)

// Solver runs a search; the boolean reports a cache hit. *cache.Store
// implements it.
type Solver interface {
	Solve(ctx context.Context, w *sokoban.Warehouse, opts ...sokoban.SolveOption) (sokoban.Solution, bool, error)
}

type directSolver struct{}

func (directSolver) Solve(ctx context.Context, w *sokoban.Warehouse, opts ...sokoban.SolveOption) (sokoban.Solution, bool, error) {
	solution, err := sokoban.Solve(ctx, w, opts...)
	return solution, false, err
}

// Options configures Handlers.
type Options struct {
	// Solver defaults to sokoban.Solve without caching.
	Solver Solver
	// SolveTimeout bounds every solve request. Zero means one minute.
	SolveTimeout time.Duration
	// MaxExpansions applies when a request does not set its own.
	MaxExpansions int
}

// Handlers serves the sokoban API.
type Handlers struct {
	solver        Solver
	timeout       time.Duration
	maxExpansions int
}

func NewHandlers(opts Options) *Handlers {
	h := &Handlers{
		solver:        opts.Solver,
		timeout:       opts.SolveTimeout,
		maxExpansions: opts.MaxExpansions,
	}
	if h.solver == nil {
		h.solver = directSolver{}
	}
	if h.timeout <= 0 {
		h.timeout = time.Minute
	}
	return h
}

const requestIDHeader = "X-Request-ID"

func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header(requestIDHeader, requestID)
	return requestID
}

func abort(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

// parseWarehouse reports a parse failure to the client and returns nil.
func parseWarehouse(c *gin.Context, text string) *sokoban.Warehouse {
	w, err := sokoban.Parse(text)
	if err != nil {
		abort(c, http.StatusUnprocessableEntity, "INVALID_WAREHOUSE", err)
		return nil
	}
	return w
}

// HandleSolve handles POST /v1/sokoban/solve.
func (h *Handlers) HandleSolve(c *gin.Context) {
	logger := logging.FromContext(c.Request.Context()).With("handler", "HandleSolve")

	var req SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", "error", err)
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	w := parseWarehouse(c, req.Warehouse)
	if w == nil {
		return
	}

	timeout := h.timeout
	if req.TimeoutMs > 0 && time.Duration(req.TimeoutMs)*time.Millisecond < timeout {
		timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}
	maxExpansions := h.maxExpansions
	if req.MaxExpansions > 0 {
		maxExpansions = req.MaxExpansions
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()
	solution, cached, err := h.solver.Solve(ctx, w,
		sokoban.WithWorkers(req.Workers),
		sokoban.WithMaxExpansions(maxExpansions))
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		abort(c, http.StatusGatewayTimeout, "SOLVE_TIMEOUT", err)
		return
	case errors.Is(err, sokoban.ErrSearchLimit):
		abort(c, http.StatusUnprocessableEntity, "SEARCH_LIMIT", err)
		return
	case err != nil:
		logger.Error("solve failed", "error", err)
		abort(c, http.StatusInternalServerError, "SOLVE_FAILED", err)
		return
	}

	c.JSON(http.StatusOK, SolveResponse{
		Solved:    solution.Solved,
		Actions:   solution.Actions,
		Cost:      solution.Cost,
		Expanded:  solution.Expanded,
		ElapsedMs: solution.Elapsed.Milliseconds(),
		Cached:    cached,
		Result:    solution.String(),
	})
}

// HandleTaboo handles POST /v1/sokoban/taboo.
func (h *Handlers) HandleTaboo(c *gin.Context) {
	var req TabooRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	w := parseWarehouse(c, req.Warehouse)
	if w == nil {
		return
	}

	taboo := sokoban.Taboo(w.Grid)
	c.JSON(http.StatusOK, TabooResponse{
		Taboo: taboo.Render(w.Grid),
		Cells: taboo.Cells(),
		Count: taboo.Len(),
	})
}

// HandleCheck handles POST /v1/sokoban/check.
func (h *Handlers) HandleCheck(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	w := parseWarehouse(c, req.Warehouse)
	if w == nil {
		return
	}
	actions, err := sokoban.ParseActions(req.Actions)
	if err != nil {
		abort(c, http.StatusBadRequest, "INVALID_ACTION", err)
		return
	}

	replay := sokoban.CheckActions(w, actions)
	c.JSON(http.StatusOK, CheckResponse{
		Legal:    replay.Legal,
		FailedAt: replay.FailedAt,
		Result:   replay.String(),
	})
}

// HandleExplore handles POST /v1/sokoban/explore. It runs the search one
// expansion at a time and reports what each expansion looked at, stopping
// early when the search finishes.
func (h *Handlers) HandleExplore(c *gin.Context) {
	var req ExploreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	w := parseWarehouse(c, req.Warehouse)
	if w == nil {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	puzzle := sokoban.NewPuzzle(w)
	heuristic := puzzle.Heuristic()
	stepper := astar.NewStepper[sokoban.State, sokoban.Action, sokoban.StateKey](ctx, puzzle, heuristic.Estimate)
	defer stepper.Close()

	resp := ExploreResponse{Steps: make([]ExploreStep, 0, min(req.Steps, 256))}
	for len(resp.Steps) < req.Steps {
		snap, err := stepper.Step()
		if err != nil {
			abort(c, http.StatusGatewayTimeout, "EXPLORE_INTERRUPTED", err)
			return
		}
		if snap.Done {
			resp.Done = true
			resp.Found = snap.Found
			resp.Actions = snap.Actions
			resp.Cost = snap.Cost
			break
		}
		resp.Steps = append(resp.Steps, ExploreStep{
			Step:     snap.StepIndex,
			Worker:   snap.Current.Worker,
			Boxes:    snap.Current.Boxes,
			Frontier: snap.Frontier,
			Explored: snap.Explored,
			Estimate: heuristic.Estimate(snap.Current),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// HandleHealth handles GET /v1/sokoban/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy"})
}
