package astar

import (
	"container/heap"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point [2]int

type move uint8

const (
	east move = iota
	west
	south
	north
)

var moveDeltas = [...]point{east: {1, 0}, west: {-1, 0}, south: {0, 1}, north: {0, -1}}

// gridProblem is a 4-connected maze read from text: '#' is a wall, 'S' the
// start, 'G' the goal and digits are cells that cost that much to enter.
type gridProblem struct {
	rows        []string
	start, goal point
}

func newGridProblem(rows ...string) *gridProblem {
	g := &gridProblem{rows: rows}
	for y, row := range rows {
		if x := strings.IndexByte(row, 'S'); x >= 0 {
			g.start = point{x, y}
		}
		if x := strings.IndexByte(row, 'G'); x >= 0 {
			g.goal = point{x, y}
		}
	}
	return g
}

func (g *gridProblem) cell(p point) byte {
	if p[1] < 0 || p[1] >= len(g.rows) || p[0] < 0 || p[0] >= len(g.rows[p[1]]) {
		return '#'
	}
	return g.rows[p[1]][p[0]]
}

func (g *gridProblem) Initial() point        { return g.start }
func (g *gridProblem) Key(p point) point     { return p }
func (g *gridProblem) GoalTest(p point) bool { return p == g.goal }

func (g *gridProblem) Actions(p point) []move {
	var moves []move
	for m, d := range moveDeltas {
		if g.cell(point{p[0] + d[0], p[1] + d[1]}) != '#' {
			moves = append(moves, move(m))
		}
	}
	return moves
}

func (g *gridProblem) Result(p point, m move) point {
	d := moveDeltas[m]
	return point{p[0] + d[0], p[1] + d[1]}
}

func (g *gridProblem) PathCost(cost float64, _ point, _ move, to point) float64 {
	if c := g.cell(to); c >= '1' && c <= '9' {
		return cost + float64(c-'0')
	}
	return cost + 1
}

func (g *gridProblem) manhattan(p point) float64 {
	dx, dy := p[0]-g.goal[0], p[1]-g.goal[1]
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return float64(dx + dy)
}

func zero(point) float64 { return 0 }

func TestSearchFindsShortestPath(t *testing.T) {
	g := newGridProblem(
		"#######",
		"#S    #",
		"#.###.#",
		"#    G#",
		"#######",
	)

	result, err := Search[point, move, point](context.Background(), g, g.manhattan)
	require.NoError(t, err)

	assert.True(t, result.Found)
	assert.Equal(t, 6.0, result.TotalCost)
	assert.Len(t, result.Actions, 6)
	require.Len(t, result.States, 7)
	assert.Equal(t, g.start, result.States[0])
	assert.Equal(t, g.goal, result.States[6])
	assert.Positive(t, result.ExpandedNodes)
}

func TestSearchAvoidsExpensiveCells(t *testing.T) {
	g := newGridProblem(
		"#######",
		"#S9  G#",
		"#     #",
		"#######",
	)

	result, err := Search[point, move, point](context.Background(), g, g.manhattan)
	require.NoError(t, err)
	assert.Equal(t, 6.0, result.TotalCost)
	assert.NotContains(t, result.States, point{2, 1})
}

func TestSearchStartIsGoal(t *testing.T) {
	g := newGridProblem("###", "#S#", "###")
	g.goal = g.start

	result, err := Search[point, move, point](context.Background(), g, zero)
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Empty(t, result.Actions)
	assert.Equal(t, []point{g.start}, result.States)
	assert.Zero(t, result.TotalCost)
}

func TestSearchNoPath(t *testing.T) {
	g := newGridProblem(
		"#####",
		"#S#G#",
		"#####",
	)

	result, err := Search[point, move, point](context.Background(), g, g.manhattan)
	assert.ErrorIs(t, err, ErrNoPath)
	assert.False(t, result.Found)
	assert.Equal(t, 1, result.ExpandedNodes)
}

func TestSearchWorkersMatchInline(t *testing.T) {
	g := newGridProblem(
		"##########",
		"#S   2   #",
		"# ## ### #",
		"#  3   # #",
		"### ## # #",
		"#      5G#",
		"##########",
	)

	inline, err := Search[point, move, point](context.Background(), g, g.manhattan)
	require.NoError(t, err)

	for _, workers := range []int{1, 2, 8} {
		pooled, err := Search[point, move, point](context.Background(), g, g.manhattan, WithWorkers(workers))
		require.NoError(t, err)
		assert.Equal(t, inline.Actions, pooled.Actions, "workers=%d", workers)
		assert.Equal(t, inline.TotalCost, pooled.TotalCost)
		assert.Equal(t, inline.ExpandedNodes, pooled.ExpandedNodes)
	}

	dijkstra, err := Search[point, move, point](context.Background(), g, zero)
	require.NoError(t, err)
	assert.Equal(t, dijkstra.TotalCost, inline.TotalCost)
}

func TestSearchExpansionLimit(t *testing.T) {
	g := newGridProblem(
		"########",
		"#S    G#",
		"########",
	)

	_, err := Search[point, move, point](context.Background(), g, zero, WithMaxExpansions(3))
	assert.ErrorIs(t, err, ErrExpansionLimit)

	result, err := Search[point, move, point](context.Background(), g, zero, WithMaxExpansions(100))
	require.NoError(t, err)
	assert.Equal(t, 5.0, result.TotalCost)
}

func TestSearchCancelled(t *testing.T) {
	g := newGridProblem(
		"#####",
		"#S G#",
		"#####",
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Search[point, move, point](ctx, g, zero)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = Search[point, move, point](ctx, g, zero, WithWorkers(2))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStepperSnapshots(t *testing.T) {
	g := newGridProblem(
		"#####",
		"#S G#",
		"#####",
	)
	stepper := NewStepper[point, move, point](context.Background(), g, g.manhattan)
	defer stepper.Close()

	first, err := stepper.Step()
	require.NoError(t, err)
	assert.Equal(t, g.start, first.Current)
	assert.Equal(t, 1, first.StepIndex)
	assert.Equal(t, 1, first.Explored)
	assert.Equal(t, 1, first.Frontier)
	assert.False(t, first.Done)

	second, err := stepper.Step()
	require.NoError(t, err)
	assert.Equal(t, point{2, 1}, second.Current)

	last, err := stepper.Step()
	require.NoError(t, err)
	assert.True(t, last.Done)
	assert.True(t, last.Found)
	assert.Equal(t, []move{east, east}, last.Actions)
	assert.Equal(t, 2.0, last.Cost)

	again, err := stepper.Step()
	require.NoError(t, err)
	assert.True(t, again.Done, "a finished stepper stays finished")
}

func TestPriorityQueueBreaksTiesByInsertion(t *testing.T) {
	pq := PriorityQueue[string, string]{}
	for i, key := range []string{"c", "a", "b", "d"} {
		f := 1.0
		if key == "d" {
			f = 0.5
		}
		heap.Push(&pq, &PriorityQueueItem[string, string]{Key: key, FCost: f, Sequence: uint64(i)})
	}

	var order []string
	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*PriorityQueueItem[string, string])
		assert.Equal(t, -1, item.IndexInQueue)
		order = append(order, item.Key)
	}
	assert.Equal(t, []string{"d", "c", "a", "b"}, order)
}
