// Package astar provides a generic best-first (A*) search over problem definitions.
//
// It exposes two main entry points:
//
//   - Search: run the algorithm to completion and get a Result.
//   - Stepper: iterate the search one expansion at a time to drive UIs or debugging tools.
//
// A problem supplies its initial state, the legal actions of a state, the state an
// action leads to, the cost of a step and a goal test. The frontier is ordered by
// path cost plus heuristic; equal priorities pop in insertion order so a search is
// deterministic for a fixed action order. Successor generation can optionally be
// spread over a worker pool while a single orchestrator owns the frontier.
package astar
