package sokoban

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTabooRender(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "adjacent",
			text: adjacentPuzzle,
			want: lines(
				"#####",
				"#X  #",
				"#XXX#",
				"#####",
			),
		},
		{
			name: "room with target breaking the bottom run",
			text: roomPuzzle,
			want: lines(
				"#######",
				"#XXXXX#",
				"#X   X#",
				"#X   X#",
				"#######",
			),
		},
		{
			name: "walls on alternating sides do not form a run",
			text: zigzagPuzzle,
			want: lines(
				"########",
				"##X ####",
				"#X    X#",
				"####XX##",
				"########",
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := mustParse(t, tt.text)
			got := TabooCells(w)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTabooExcludesOutsidePocket(t *testing.T) {
	w := mustParse(t, concavePuzzle)
	taboo := Taboo(w.Grid)

	assert.False(t, taboo.Contains(Coord{X: 4, Y: 1}))
	assert.False(t, taboo.Contains(Coord{X: 5, Y: 1}))
	assert.True(t, taboo.Contains(Coord{X: 1, Y: 1}))
	assert.True(t, taboo.Contains(Coord{X: 8, Y: 1}))
}

func TestTabooProperties(t *testing.T) {
	fixtures := []string{
		adjacentPuzzle, roomPuzzle, cornerPuzzle, solvedPuzzle,
		corridorPuzzle, twoBoxRoom, zigzagPuzzle, concavePuzzle,
	}
	for _, text := range fixtures {
		w := mustParse(t, text)
		taboo := Taboo(w.Grid)

		for _, c := range taboo.Cells() {
			assert.True(t, w.Grid.IsInterior(c), "taboo cell %v must be interior", c)
			assert.False(t, w.Grid.IsTarget(c), "taboo cell %v must not be a target", c)
			assert.False(t, w.Grid.IsWall(c))
			assert.NotZero(t, c.Y, "boundary rows are never taboo")
			assert.NotEqual(t, w.Grid.Height-1, c.Y)
		}
		assert.Equal(t, len(taboo.Cells()), taboo.Len())

		again := Taboo(w.Grid)
		assert.Equal(t, taboo.Cells(), again.Cells(), "taboo analysis is idempotent")
		assert.Equal(t, taboo.Render(w.Grid), again.Render(w.Grid))
	}
}

func TestTabooCornerOnTargetIsSafe(t *testing.T) {
	w := mustParse(t, lines(
		"#####",
		"#.@$#",
		"#   #",
		"#####",
	))
	taboo := Taboo(w.Grid)

	assert.False(t, taboo.Contains(Coord{X: 1, Y: 1}))
	assert.True(t, taboo.Contains(Coord{X: 3, Y: 1}))
	assert.True(t, taboo.Contains(Coord{X: 1, Y: 2}))
}
