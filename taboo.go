package sokoban

import "strings"

// TabooSet holds the cells a box must never be pushed onto. It depends only on
// walls and targets and never contains a target.
type TabooSet struct {
	width, height int
	cells         []bool
	count         int
}

// Contains reports whether c is taboo.
func (t TabooSet) Contains(c Coord) bool {
	if c.X < 0 || c.X >= t.width || c.Y < 0 || c.Y >= t.height {
		return false
	}
	return t.cells[c.Y*t.width+c.X]
}

// Len is the number of taboo cells.
func (t TabooSet) Len() int { return t.count }

// Cells returns the taboo coordinates in row-major order.
func (t TabooSet) Cells() []Coord {
	out := make([]Coord, 0, t.count)
	for i, taboo := range t.cells {
		if taboo {
			out = append(out, Coord{X: i % t.width, Y: i / t.width})
		}
	}
	return out
}

// Render draws the grid with '#' for walls, 'X' for taboo cells and blanks
// everywhere else.
func (t TabooSet) Render(grid *Grid) string {
	lines := make([]string, grid.Height)
	row := make([]byte, grid.Width)
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			c := Coord{X: x, Y: y}
			switch {
			case grid.IsWall(c):
				row[x] = '#'
			case t.Contains(c):
				row[x] = 'X'
			default:
				row[x] = ' '
			}
		}
		lines[y] = string(row)
	}
	return strings.Join(lines, "\n")
}

// TabooCells renders the taboo analysis of a warehouse.
func TabooCells(w *Warehouse) string {
	return Taboo(w.Grid).Render(w.Grid)
}

// Taboo computes the taboo cells of a grid:
//
//   - a corner (an interior non-target cell with a wall on a horizontal side and
//     a wall on a vertical side) is taboo;
//   - the cells strictly between two corners on the same row or column are taboo
//     when none of them is a wall or a target and all of them hug a wall on the
//     same side.
func Taboo(grid *Grid) TabooSet {
	t := TabooSet{
		width:  grid.Width,
		height: grid.Height,
		cells:  make([]bool, grid.Width*grid.Height),
	}
	mark := func(c Coord) {
		i := c.Y*t.width + c.X
		if !t.cells[i] && !grid.IsTarget(c) {
			t.cells[i] = true
			t.count++
		}
	}

	corners := findCorners(grid)
	for _, c := range corners {
		mark(c)
	}

	byRow := make(map[int][]Coord)
	byColumn := make(map[int][]Coord)
	for _, c := range corners {
		byRow[c.Y] = append(byRow[c.Y], c)
		byColumn[c.X] = append(byColumn[c.X], c)
	}

	// corners come out of findCorners in row-major order, so each row group is
	// sorted by X and each column group by Y.
	for _, group := range byRow {
		markRuns(grid, group, Right, Up, Down, mark)
	}
	for _, group := range byColumn {
		markRuns(grid, group, Down, Left, Right, mark)
	}
	return t
}

func findCorners(grid *Grid) []Coord {
	var corners []Coord
	for y := 1; y < grid.Height-1; y++ {
		for x := 0; x < grid.Width; x++ {
			c := Coord{X: x, Y: y}
			if !grid.IsInterior(c) || grid.IsTarget(c) {
				continue
			}
			horizontal := grid.IsWall(c.Add(Left.Delta())) || grid.IsWall(c.Add(Right.Delta()))
			vertical := grid.IsWall(c.Add(Up.Delta())) || grid.IsWall(c.Add(Down.Delta()))
			if horizontal && vertical {
				corners = append(corners, c)
			}
		}
	}
	return corners
}

// markRuns walks every pair of corners in a sorted line of corners along dir.
// A run is marked when all cells between the pair are open, non-target, and
// every one has a wall on sideA, or every one has a wall on sideB.
func markRuns(grid *Grid, line []Coord, dir, sideA, sideB Action, mark func(Coord)) {
	for i, from := range line {
		for _, to := range line[i+1:] {
			run, ok := runBetween(grid, from, to, dir)
			if !ok {
				// Anything further along the line crosses the same blocker.
				break
			}
			if len(run) == 0 {
				continue
			}
			if hugsWall(grid, run, sideA) || hugsWall(grid, run, sideB) {
				for _, c := range run {
					mark(c)
				}
			}
		}
	}
}

// runBetween returns the cells strictly between from and to, or false when one
// of them is a wall, a target or outside the warehouse.
func runBetween(grid *Grid, from, to Coord, dir Action) ([]Coord, bool) {
	var run []Coord
	for c := from.Add(dir.Delta()); c != to; c = c.Add(dir.Delta()) {
		if grid.IsWall(c) || grid.IsTarget(c) || !grid.IsInterior(c) {
			return nil, false
		}
		run = append(run, c)
	}
	return run, true
}

func hugsWall(grid *Grid, run []Coord, side Action) bool {
	for _, c := range run {
		if !grid.IsWall(c.Add(side.Delta())) {
			return false
		}
	}
	return true
}
