package sokoban

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// lines joins rows with newlines so fixtures can keep their trailing spaces visible.
func lines(rows ...string) string { return strings.Join(rows, "\n") }

var (
	// one box next to one target
	adjacentPuzzle = lines(
		"#####",
		"#@$.#",
		"#   #",
		"#####",
	)

	// open room, box needs one push right and one push down
	roomPuzzle = lines(
		"#######",
		"#     #",
		"# $@  #",
		"#  .  #",
		"#######",
	)

	// box wedged in a non-target corner
	cornerPuzzle = lines(
		"#####",
		"#$ @#",
		"#  .#",
		"#####",
	)

	solvedPuzzle = lines(
		"####",
		"#@*#",
		"####",
	)

	// light box on the left, heavy box on the right, worker between them
	corridorPuzzle = lines(
		"1 5",
		"#######",
		"#.$@$.#",
		"#######",
	)

	twoBoxRoom = lines(
		"2 7",
		"#######",
		"#.  . #",
		"# $$  #",
		"#  @  #",
		"#######",
	)

	// row 2 has a wall on some side of every cell, never the same side throughout
	zigzagPuzzle = lines(
		"########",
		"## .####",
		"#@ $   #",
		"####  ##",
		"########",
	)

	// the pocket at the top is open to the outside and must not count as interior
	concavePuzzle = lines(
		"####  ####",
		"#  #  #  #",
		"#  ####  #",
		"#@   $  .#",
		"##########",
	)
)

func mustParse(t *testing.T, text string) *Warehouse {
	t.Helper()
	w, err := Parse(text)
	require.NoError(t, err)
	return w
}
