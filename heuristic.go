package sokoban

// Heuristic estimates remaining cost as the sum of each box's Manhattan
// distance to its nearest target, scaled by the lightest box weight (or one).
// Using the lightest weight keeps the estimate admissible: every push of a box
// with weight w costs 1+w, which is never below the scale.
type Heuristic struct {
	targets []Coord
	scale   int
}

// NewHeuristic fixes the target list and the weight scale for a grid.
func NewHeuristic(grid *Grid, weights []int) Heuristic {
	scale := 0
	for i, w := range weights {
		if i == 0 || w < scale {
			scale = w
		}
	}
	if scale <= 0 {
		scale = 1
	}
	return Heuristic{targets: grid.Targets(), scale: scale}
}

// Scale is the multiplier applied to the distance sum.
func (h Heuristic) Scale() int { return h.scale }

// Estimate returns a lower bound on the cost of reaching any goal from s.
func (h Heuristic) Estimate(s State) float64 {
	if len(h.targets) == 0 {
		return 0
	}
	return float64(h.distanceSum(s) * h.scale)
}

func (h Heuristic) distanceSum(s State) int {
	if len(h.targets) == 0 {
		return 0
	}
	sum := 0
	for _, b := range s.Boxes {
		best := -1
		for _, t := range h.targets {
			if d := b.Manhattan(t); best < 0 || d < best {
				best = d
			}
		}
		sum += best
	}
	return sum
}
