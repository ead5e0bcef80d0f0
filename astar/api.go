package astar

import (
	"context"
	"errors"
)

var (
	// ErrNoPath is returned when the frontier is exhausted without reaching a goal.
	ErrNoPath = errors.New("no path found")

	// ErrExpansionLimit is returned when WithMaxExpansions is exceeded.
	ErrExpansionLimit = errors.New("expansion limit reached")
)

// Problem is generic over state type S, action type A and key type K.
// K must be comparable so states can be deduplicated in maps.
type Problem[StateType any, ActionType any, KeyType comparable] interface {
	Initial() StateType
	Key(state StateType) KeyType
	Actions(state StateType) []ActionType
	Result(state StateType, action ActionType) StateType
	PathCost(cost float64, from StateType, action ActionType, to StateType) float64
	GoalTest(state StateType) bool
}

// Heuristic returns the estimated remaining cost from state to a goal.
type Heuristic[StateType any] func(state StateType) float64

// Result contains the outcome of a search
type Result[StateType any, ActionType any] struct {
	Actions       []ActionType
	States        []StateType
	TotalCost     float64
	ExpandedNodes int
	Found         bool
}

// Options defines parameters for the search.
type Options struct {
	NumberOfWorkers int
	MaxExpansions   int
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithWorkers specifies how many worker goroutines should compute successors.
// Zero or less expands inline on the calling goroutine.
func WithWorkers(numberOfWorkers int) Option {
	return func(options *Options) { options.NumberOfWorkers = numberOfWorkers }
}

// WithMaxExpansions stops the search with ErrExpansionLimit after the given
// number of node expansions. Zero means unlimited.
func WithMaxExpansions(maxExpansions int) Option {
	return func(options *Options) { options.MaxExpansions = maxExpansions }
}

// Search executes A* from problem.Initial() until a goal is popped or the
// frontier is exhausted.
func Search[StateType any, ActionType any, KeyType comparable](
	contextObject context.Context,
	problem Problem[StateType, ActionType, KeyType],
	heuristic Heuristic[StateType],
	options ...Option,
) (Result[StateType, ActionType], error) {

	stepper := NewStepper(contextObject, problem, heuristic, options...)
	defer stepper.Close()

	for {
		snapshot, err := stepper.Step()
		if err != nil {
			return Result[StateType, ActionType]{ExpandedNodes: snapshot.StepIndex}, err
		}
		if !snapshot.Done {
			continue
		}
		if !snapshot.Found {
			return Result[StateType, ActionType]{
				ExpandedNodes: snapshot.StepIndex,
				Found:         false,
			}, ErrNoPath
		}
		return Result[StateType, ActionType]{
			Actions:       snapshot.Actions,
			States:        snapshot.Path,
			TotalCost:     snapshot.Cost,
			ExpandedNodes: snapshot.StepIndex,
			Found:         true,
		}, nil
	}
}
