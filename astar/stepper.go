package astar

import (
	"container/heap"
	"context"

	"github.com/pdrpinto/sokoban/internal"
)

// StepSnapshot exposes the per-iteration state of the search
type StepSnapshot[StateType any, ActionType any] struct {
	Current   StateType
	Frontier  int
	Explored  int
	Done      bool
	Found     bool
	Path      []StateType
	Actions   []ActionType
	Cost      float64
	StepIndex int
}

// Stepper provides a step-by-step orchestrator over the search.
// A Stepper is not safe for concurrent use; workers only ever see copies of tasks.
type Stepper[StateType any, ActionType any, KeyType comparable] struct {
	ctx           context.Context
	cancel        context.CancelFunc
	problem       Problem[StateType, ActionType, KeyType]
	heuristic     Heuristic[StateType]
	workers       int
	maxExpansions int

	start      StateType
	startKey   KeyType
	openSet    PriorityQueue[StateType, KeyType]
	openSetMap map[KeyType]*PriorityQueueItem[StateType, KeyType]
	closedSet  map[KeyType]bool
	cameFrom   map[KeyType]internal.Edge[KeyType, ActionType]
	gScore     map[KeyType]float64

	expandCh chan ExpandTask[StateType, ActionType]
	relaxCh  chan SuccessorProposal[StateType, ActionType, KeyType]

	sequence  uint64
	stepCount int
	done      bool
	found     bool
}

// NewStepper creates a stepper positioned on problem.Initial().
// Callers must Close it to stop the worker pool.
func NewStepper[StateType any, ActionType any, KeyType comparable](
	parent context.Context,
	problem Problem[StateType, ActionType, KeyType],
	heuristic Heuristic[StateType],
	options ...Option,
) *Stepper[StateType, ActionType, KeyType] {
	opts := Options{}
	for _, o := range options {
		o(&opts)
	}

	ctx, cancel := context.WithCancel(parent)
	start := problem.Initial()
	startKey := problem.Key(start)
	s := &Stepper[StateType, ActionType, KeyType]{
		ctx: ctx, cancel: cancel,
		problem: problem, heuristic: heuristic,
		workers:       opts.NumberOfWorkers,
		maxExpansions: opts.MaxExpansions,
		start:         start,
		startKey:      startKey,
		openSet:       make(PriorityQueue[StateType, KeyType], 0),
		openSetMap:    make(map[KeyType]*PriorityQueueItem[StateType, KeyType]),
		closedSet:     make(map[KeyType]bool),
		cameFrom:      make(map[KeyType]internal.Edge[KeyType, ActionType]),
		gScore:        map[KeyType]float64{startKey: 0},
	}

	heap.Init(&s.openSet)
	s.push(startKey, start, 0, heuristic(start))

	if s.workers > 0 {
		s.expandCh = make(chan ExpandTask[StateType, ActionType])
		s.relaxCh = make(chan SuccessorProposal[StateType, ActionType, KeyType])
		startWorkers(s.ctx, s.workers, problem, heuristic, s.expandCh, s.relaxCh)
	}

	return s
}

// Close stops the workers
func (s *Stepper[StateType, ActionType, KeyType]) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Step advances the search by one node expansion and returns a snapshot
func (s *Stepper[StateType, ActionType, KeyType]) Step() (StepSnapshot[StateType, ActionType], error) {
	if s.done {
		return s.snapshot(s.start), nil
	}
	if err := s.ctx.Err(); err != nil {
		s.done = true
		return s.snapshot(s.start), err
	}

	var currentItem *PriorityQueueItem[StateType, KeyType]
	for s.openSet.Len() > 0 {
		item := heap.Pop(&s.openSet).(*PriorityQueueItem[StateType, KeyType])
		delete(s.openSetMap, item.Key)
		if !s.closedSet[item.Key] {
			currentItem = item
			break
		}
	}
	if currentItem == nil {
		s.done = true
		return s.snapshot(s.start), nil
	}
	if s.maxExpansions > 0 && s.stepCount >= s.maxExpansions {
		s.done = true
		return s.snapshot(currentItem.State), ErrExpansionLimit
	}

	s.stepCount++
	current := currentItem.State
	s.closedSet[currentItem.Key] = true

	if s.problem.GoalTest(current) {
		s.done = true
		s.found = true
		snapshot := s.snapshot(current)
		snapshot.Actions = internal.ReconstructPath(s.cameFrom, currentItem.Key, s.startKey)
		snapshot.Path = s.replay(snapshot.Actions)
		snapshot.Cost = currentItem.GScore
		return snapshot, nil
	}

	proposals, err := s.expand(current, currentItem.GScore)
	if err != nil {
		s.done = true
		return s.snapshot(current), err
	}
	for _, p := range proposals {
		s.relax(currentItem.Key, p)
	}

	return s.snapshot(current), nil
}

// expand computes the successor of every legal action, in action order.
func (s *Stepper[StateType, ActionType, KeyType]) expand(
	current StateType,
	currentG float64,
) ([]SuccessorProposal[StateType, ActionType, KeyType], error) {
	actions := s.problem.Actions(current)
	proposals := make([]SuccessorProposal[StateType, ActionType, KeyType], len(actions))

	if s.workers <= 0 {
		for i, action := range actions {
			proposals[i] = expandOne(s.problem, s.heuristic, ExpandTask[StateType, ActionType]{
				Index: i, FromState: current, Action: action, CurrentGScore: currentG,
			})
		}
		return proposals, nil
	}

	go func() {
		for i, action := range actions {
			task := ExpandTask[StateType, ActionType]{
				Index: i, FromState: current, Action: action, CurrentGScore: currentG,
			}
			select {
			case <-s.ctx.Done():
				return
			case s.expandCh <- task:
			}
		}
	}()

	// Proposals arrive in any order; slotting them by index keeps relaxation deterministic.
	for range actions {
		select {
		case <-s.ctx.Done():
			return nil, s.ctx.Err()
		case p := <-s.relaxCh:
			proposals[p.Index] = p
		}
	}
	return proposals, nil
}

func (s *Stepper[StateType, ActionType, KeyType]) relax(
	from KeyType,
	p SuccessorProposal[StateType, ActionType, KeyType],
) {
	if s.closedSet[p.Key] {
		return
	}
	if gPrev, ok := s.gScore[p.Key]; ok && p.GScore >= gPrev {
		return
	}
	s.gScore[p.Key] = p.GScore
	s.cameFrom[p.Key] = internal.Edge[KeyType, ActionType]{From: from, Action: p.Action}
	if it, ok := s.openSetMap[p.Key]; !ok {
		s.push(p.Key, p.State, p.GScore, p.FCost)
	} else if p.FCost < it.FCost {
		it.State = p.State
		it.GScore = p.GScore
		it.FCost = p.FCost
		heap.Fix(&s.openSet, it.IndexInQueue)
	}
}

func (s *Stepper[StateType, ActionType, KeyType]) push(key KeyType, state StateType, g, f float64) {
	item := &PriorityQueueItem[StateType, KeyType]{
		Key: key, State: state, GScore: g, FCost: f, Sequence: s.sequence,
	}
	s.sequence++
	heap.Push(&s.openSet, item)
	s.openSetMap[key] = item
}

// replay rebuilds the visited states by applying the actions from the start.
func (s *Stepper[StateType, ActionType, KeyType]) replay(actions []ActionType) []StateType {
	path := make([]StateType, 0, len(actions)+1)
	state := s.start
	path = append(path, state)
	for _, action := range actions {
		state = s.problem.Result(state, action)
		path = append(path, state)
	}
	return path
}

func (s *Stepper[StateType, ActionType, KeyType]) snapshot(current StateType) StepSnapshot[StateType, ActionType] {
	return StepSnapshot[StateType, ActionType]{
		Current:   current,
		Frontier:  len(s.openSetMap),
		Explored:  len(s.closedSet),
		Done:      s.done,
		Found:     s.found,
		StepIndex: s.stepCount,
	}
}
