package sokoban

// Replay is the outcome of CheckActions.
type Replay struct {
	Legal    bool
	FailedAt int        // index of the first illegal action, -1 when Legal
	Final    *Warehouse // warehouse after the last legal action
}

// String renders "Impossible" for an illegal sequence, otherwise the final
// warehouse.
func (r Replay) String() string {
	if !r.Legal {
		return "Impossible"
	}
	return r.Final.String()
}

// Apply performs one action under the movement rules, ignoring taboo cells.
// It reports false, and returns w itself, when the move walks into a wall or
// pushes a box into a wall or another box.
func Apply(w *Warehouse, a Action) (*Warehouse, bool) {
	next, ok := advance(w.Grid, nil, w.State(), a)
	if !ok {
		return w, false
	}
	return w.WithState(next), true
}

// CheckActions replays actions from the initial warehouse. Pushing a box onto a
// taboo cell is legal here; only the movement rules are enforced.
func CheckActions(w *Warehouse, actions []Action) Replay {
	state := w.State()
	for i, a := range actions {
		next, ok := advance(w.Grid, nil, state, a)
		if !ok {
			return Replay{Legal: false, FailedAt: i, Final: w.WithState(state)}
		}
		state = next
	}
	return Replay{Legal: true, FailedAt: -1, Final: w.WithState(state)}
}
