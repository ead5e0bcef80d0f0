package astar

import "context"

// ExpandTask represents a request from the orchestrator to the workers.
type ExpandTask[StateType any, ActionType any] struct {
	Index         int
	FromState     StateType
	Action        ActionType
	CurrentGScore float64
}

// SuccessorProposal is the worker's computed successor for one action.
type SuccessorProposal[StateType any, ActionType any, KeyType comparable] struct {
	Index  int
	Action ActionType
	State  StateType
	Key    KeyType
	GScore float64
	FCost  float64
}

func expandOne[StateType any, ActionType any, KeyType comparable](
	problem Problem[StateType, ActionType, KeyType],
	heuristic Heuristic[StateType],
	task ExpandTask[StateType, ActionType],
) SuccessorProposal[StateType, ActionType, KeyType] {
	next := problem.Result(task.FromState, task.Action)
	tentativeG := problem.PathCost(task.CurrentGScore, task.FromState, task.Action, next)
	return SuccessorProposal[StateType, ActionType, KeyType]{
		Index:  task.Index,
		Action: task.Action,
		State:  next,
		Key:    problem.Key(next),
		GScore: tentativeG,
		FCost:  tentativeG + heuristic(next),
	}
}

// startWorkers launches the expansion pool. Workers exit when contextObject is done.
func startWorkers[StateType any, ActionType any, KeyType comparable](
	contextObject context.Context,
	numberOfWorkers int,
	problem Problem[StateType, ActionType, KeyType],
	heuristic Heuristic[StateType],
	expandTaskChannel <-chan ExpandTask[StateType, ActionType],
	proposalChannel chan<- SuccessorProposal[StateType, ActionType, KeyType],
) {
	for i := 0; i < numberOfWorkers; i++ {
		go func() {
			for {
				select {
				case <-contextObject.Done():
					return
				case task := <-expandTaskChannel:
					proposal := expandOne(problem, heuristic, task)
					select {
					case <-contextObject.Done():
						return
					case proposalChannel <- proposal:
					}
				}
			}
		}()
	}
}
