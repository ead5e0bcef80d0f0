package sokoban

import (
	"encoding/binary"
	"slices"
)

// State is a puzzle configuration. Boxes[i] is always the box with weight
// index i; the order never changes during a search.
type State struct {
	Worker Coord
	Boxes  []Coord
}

// StateKey is the comparable identity of a State.
type StateKey string

// Key packs the worker and box coordinates into a comparable value.
func (s State) Key() StateKey {
	buf := make([]byte, 0, 4*(len(s.Boxes)+1))
	buf = binary.BigEndian.AppendUint16(buf, uint16(s.Worker.X))
	buf = binary.BigEndian.AppendUint16(buf, uint16(s.Worker.Y))
	for _, b := range s.Boxes {
		buf = binary.BigEndian.AppendUint16(buf, uint16(b.X))
		buf = binary.BigEndian.AppendUint16(buf, uint16(b.Y))
	}
	return StateKey(buf)
}

// BoxAt returns the index of the box at c, or -1.
func (s State) BoxAt(c Coord) int {
	return slices.Index(s.Boxes, c)
}

// advance applies a move under the movement rules. A nil taboo set disables
// the taboo check, which is how replays validate sequences.
func advance(grid *Grid, taboo *TabooSet, s State, a Action) (State, bool) {
	delta := a.Delta()
	dest := s.Worker.Add(delta)
	if grid.IsWall(dest) {
		return s, false
	}
	box := s.BoxAt(dest)
	if box < 0 {
		return State{Worker: dest, Boxes: slices.Clone(s.Boxes)}, true
	}
	beyond := dest.Add(delta)
	if grid.IsWall(beyond) || s.BoxAt(beyond) >= 0 {
		return s, false
	}
	if taboo != nil && taboo.Contains(beyond) {
		return s, false
	}
	boxes := slices.Clone(s.Boxes)
	boxes[box] = beyond
	return State{Worker: dest, Boxes: boxes}, true
}

// Puzzle is the search problem for one warehouse. It is read-only once built,
// so a Puzzle can back several searches.
type Puzzle struct {
	warehouse *Warehouse
	grid      *Grid
	taboo     TabooSet
	weights   []int
	heuristic Heuristic
	initial   State
}

// NewPuzzle analyses the warehouse once: taboo cells, per-box weights and the
// heuristic scale are fixed here.
func NewPuzzle(w *Warehouse) *Puzzle {
	return &Puzzle{
		warehouse: w,
		grid:      w.Grid,
		taboo:     Taboo(w.Grid),
		weights:   slices.Clone(w.Weights),
		heuristic: NewHeuristic(w.Grid, w.Weights),
		initial:   w.State(),
	}
}

func (p *Puzzle) Warehouse() *Warehouse { return p.warehouse }
func (p *Puzzle) Taboo() TabooSet       { return p.taboo }
func (p *Puzzle) Heuristic() Heuristic  { return p.heuristic }

// Initial returns the starting state.
func (p *Puzzle) Initial() State { return p.initial }

// Key returns s.Key().
func (p *Puzzle) Key(s State) StateKey { return s.Key() }

// Actions lists the legal moves from s in Up, Down, Left, Right order. A push is
// legal only when the cell beyond the box is free, not a wall and not taboo.
func (p *Puzzle) Actions(s State) []Action {
	actions := make([]Action, 0, len(AllActions))
	for _, a := range AllActions {
		if _, ok := advance(p.grid, &p.taboo, s, a); ok {
			actions = append(actions, a)
		}
	}
	return actions
}

// Result applies a. An action that is not legal in s leaves s unchanged.
func (p *Puzzle) Result(s State, a Action) State {
	next, ok := advance(p.grid, &p.taboo, s, a)
	if !ok {
		return s
	}
	return next
}

// PathCost adds one for the move plus the weight of the box that moved, if any.
func (p *Puzzle) PathCost(cost float64, from State, _ Action, to State) float64 {
	step := 1
	for i := range from.Boxes {
		if i < len(to.Boxes) && from.Boxes[i] != to.Boxes[i] {
			step += p.weights[i]
			break
		}
	}
	return cost + float64(step)
}

// GoalTest reports whether every box is on a target.
func (p *Puzzle) GoalTest(s State) bool {
	for _, b := range s.Boxes {
		if !p.grid.IsTarget(b) {
			return false
		}
	}
	return true
}

// Value is a diagnostic score: minus the sum of each box's distance to its
// nearest target. The search does not use it.
func (p *Puzzle) Value(s State) float64 {
	return -float64(p.heuristic.distanceSum(s))
}
