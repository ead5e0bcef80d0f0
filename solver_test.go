package sokoban

import (
	"context"
	"testing"
	"time"

	"github.com/pdrpinto/sokoban/astar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolve(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		solved  bool
		cost    int
		actions []Action
	}{
		{name: "single push", text: adjacentPuzzle, solved: true, cost: 1, actions: []Action{Right}},
		{
			name:   "weighted single push",
			text:   "5\n" + adjacentPuzzle,
			solved: true, cost: 6, actions: []Action{Right},
		},
		{
			name:   "room",
			text:   roomPuzzle,
			solved: true, cost: 6,
			actions: []Action{Up, Left, Down, Left, Down, Right},
		},
		{
			name:   "weighted room",
			text:   "3\n" + roomPuzzle,
			solved: true, cost: 12,
			actions: []Action{Up, Left, Down, Left, Down, Right},
		},
		{name: "box in corner", text: cornerPuzzle, solved: false},
		{name: "already solved", text: solvedPuzzle, solved: true, cost: 0, actions: []Action{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := mustParse(t, tt.text)
			sol, err := Solve(context.Background(), w)
			require.NoError(t, err)

			assert.Equal(t, tt.solved, sol.Solved)
			if !tt.solved {
				assert.Equal(t, "Impossible", sol.String())
				return
			}
			assert.Equal(t, tt.cost, sol.Cost)
			assert.Equal(t, tt.actions, sol.Actions)
		})
	}
}

func TestSolveCorridorWithUnevenWeights(t *testing.T) {
	w := mustParse(t, corridorPuzzle)
	sol, err := Solve(context.Background(), w)
	require.NoError(t, err)

	require.True(t, sol.Solved)
	assert.Equal(t, 9, sol.Cost)
	assert.Len(t, sol.Actions, 3)
}

func TestSolutionReplaysToGoal(t *testing.T) {
	for _, text := range []string{roomPuzzle, corridorPuzzle, twoBoxRoom} {
		w := mustParse(t, text)
		sol, err := Solve(context.Background(), w)
		require.NoError(t, err)
		require.True(t, sol.Solved)

		replay := CheckActions(w, sol.Actions)
		require.True(t, replay.Legal)
		p := NewPuzzle(w)
		assert.True(t, p.GoalTest(replay.Final.State()))

		// recompute the cost along the path
		state, cost := w.State(), 0.0
		for _, a := range sol.Actions {
			next := p.Result(state, a)
			cost = p.PathCost(cost, state, a, next)
			state = next
		}
		assert.Equal(t, float64(sol.Cost), cost)
	}
}

func TestSolveMatchesUniformCostSearch(t *testing.T) {
	for _, text := range []string{roomPuzzle, "3\n" + roomPuzzle, corridorPuzzle, twoBoxRoom} {
		w := mustParse(t, text)
		sol, err := Solve(context.Background(), w)
		require.NoError(t, err)

		exact, err := astar.Search[State, Action, StateKey](context.Background(), NewPuzzle(w), zeroHeuristic)
		require.NoError(t, err)
		assert.Equal(t, int(exact.TotalCost), sol.Cost)
	}
}

func TestSolveWithWorkersIsDeterministic(t *testing.T) {
	for _, text := range []string{roomPuzzle, corridorPuzzle, twoBoxRoom} {
		w := mustParse(t, text)
		inline, err := Solve(context.Background(), w)
		require.NoError(t, err)

		pooled, err := Solve(context.Background(), w, WithWorkers(4))
		require.NoError(t, err)

		assert.Equal(t, inline.Actions, pooled.Actions)
		assert.Equal(t, inline.Cost, pooled.Cost)
		assert.Equal(t, inline.Expanded, pooled.Expanded)
	}
}

func TestSolveExpansionLimit(t *testing.T) {
	w := mustParse(t, twoBoxRoom)
	_, err := Solve(context.Background(), w, WithMaxExpansions(2))
	assert.ErrorIs(t, err, ErrSearchLimit)
}

func TestSolveCancelled(t *testing.T) {
	w := mustParse(t, twoBoxRoom)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Solve(ctx, w)
	assert.ErrorIs(t, err, context.Canceled)

	ctx, cancel = context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)
	_, err = Solve(ctx, w)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSolutionString(t *testing.T) {
	assert.Equal(t, "Impossible", Solution{}.String())
	assert.Equal(t, "Up, Left, Down", Solution{Solved: true, Actions: []Action{Up, Left, Down}}.String())
	assert.Equal(t, "", Solution{Solved: true, Actions: []Action{}}.String())
}
