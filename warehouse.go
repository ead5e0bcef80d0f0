package sokoban

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseError reports malformed warehouse text. It is always fatal.
type ParseError struct {
	Line   int // 1-based line in the input, 0 when not tied to a line
	Column int // 1-based column, 0 when not tied to a column
	Msg    string
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("parse warehouse: line %d, column %d: %s", e.Line, e.Column, e.Msg)
	case e.Line > 0:
		return fmt.Sprintf("parse warehouse: line %d: %s", e.Line, e.Msg)
	default:
		return "parse warehouse: " + e.Msg
	}
}

// Grid is the static part of a warehouse. It is immutable after parsing and
// safe to share between solves.
type Grid struct {
	Width, Height int

	walls    []bool
	targets  []bool
	interior []bool

	targetList []Coord
	wallCount  int
}

// InBounds reports whether c lies inside the bounding rectangle.
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

func (g *Grid) index(c Coord) int { return c.Y*g.Width + c.X }

// IsWall reports whether c is a wall. Cells outside the bounds count as walls.
func (g *Grid) IsWall(c Coord) bool {
	return !g.InBounds(c) || g.walls[g.index(c)]
}

// IsTarget reports whether c is a target cell.
func (g *Grid) IsTarget(c Coord) bool {
	return g.InBounds(c) && g.targets[g.index(c)]
}

// IsInterior reports whether c is an open cell inside the warehouse.
func (g *Grid) IsInterior(c Coord) bool {
	return g.InBounds(c) && g.interior[g.index(c)]
}

// Targets returns the target coordinates in row-major order.
func (g *Grid) Targets() []Coord {
	out := make([]Coord, len(g.targetList))
	copy(out, g.targetList)
	return out
}

// Walls returns the wall coordinates in row-major order.
func (g *Grid) Walls() []Coord {
	out := make([]Coord, 0, g.wallCount)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.walls[y*g.Width+x] {
				out = append(out, Coord{X: x, Y: y})
			}
		}
	}
	return out
}

// WallCount is the number of wall cells.
func (g *Grid) WallCount() int { return g.wallCount }

// Warehouse is a parsed puzzle: the shared grid plus worker, boxes and weights.
// Boxes are in row-major reading order of the input; Weights[i] belongs to Boxes[i].
type Warehouse struct {
	Grid    *Grid
	Worker  Coord
	Boxes   []Coord
	Weights []int
}

// State returns the dynamic part of the warehouse as a search state.
func (w *Warehouse) State() State {
	boxes := make([]Coord, len(w.Boxes))
	copy(boxes, w.Boxes)
	return State{Worker: w.Worker, Boxes: boxes}
}

// WithState returns a warehouse sharing the grid and weights with the given
// worker and box positions.
func (w *Warehouse) WithState(s State) *Warehouse {
	boxes := make([]Coord, len(s.Boxes))
	copy(boxes, s.Boxes)
	return &Warehouse{Grid: w.Grid, Worker: s.Worker, Boxes: boxes, Weights: w.Weights}
}

// String renders the warehouse in its canonical text form, without weights.
func (w *Warehouse) String() string {
	g := w.Grid
	rows := make([][]byte, g.Height)
	for y := range rows {
		rows[y] = []byte(strings.Repeat(" ", g.Width))
		for x := 0; x < g.Width; x++ {
			c := Coord{X: x, Y: y}
			switch {
			case g.walls[g.index(c)]:
				rows[y][x] = '#'
			case g.targets[g.index(c)]:
				rows[y][x] = '.'
			}
		}
	}
	if g.InBounds(w.Worker) {
		if g.IsTarget(w.Worker) {
			rows[w.Worker.Y][w.Worker.X] = '!'
		} else {
			rows[w.Worker.Y][w.Worker.X] = '@'
		}
	}
	for _, b := range w.Boxes {
		if !g.InBounds(b) {
			continue
		}
		if g.IsTarget(b) {
			rows[b.Y][b.X] = '*'
		} else {
			rows[b.Y][b.X] = '$'
		}
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = string(r)
	}
	return strings.Join(lines, "\n")
}

// Load reads and parses a warehouse file.
func Load(path string) (*Warehouse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load warehouse %s: %w", path, err)
	}
	w, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("load warehouse %s: %w", path, err)
	}
	return w, nil
}

// ParseReader parses a warehouse from r.
func ParseReader(r io.Reader) (*Warehouse, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read warehouse: %w", err)
	}
	return Parse(string(data))
}

type sourceLine struct {
	number int
	text   string
}

// Parse builds a warehouse from text. An optional first line of
// space-separated integers gives the box weights in reading order.
func Parse(text string) (*Warehouse, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var lines []sourceLine
	for i, raw := range strings.Split(text, "\n") {
		lines = append(lines, sourceLine{number: i + 1, text: strings.TrimRight(raw, " \t\r")})
	}

	weights, weightsLine, lines, err := splitWeights(lines)
	if err != nil {
		return nil, err
	}

	first, last := -1, -1
	for i, l := range lines {
		if strings.Contains(l.text, "#") {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return nil, &ParseError{Msg: "no walls found"}
	}
	for i, l := range lines {
		if (i < first || i > last) && strings.TrimSpace(l.text) != "" {
			return nil, &ParseError{Line: l.number, Msg: "content outside the warehouse walls"}
		}
	}
	rows := lines[first : last+1]

	left := -1
	for _, l := range rows {
		if col := strings.IndexByte(l.text, '#'); col >= 0 && (left < 0 || col < left) {
			left = col
		}
	}

	w := &Warehouse{Worker: Coord{X: -1, Y: -1}}
	g := &Grid{Height: len(rows)}
	var wallCells, targetCells []Coord
	workers := 0

	for y, l := range rows {
		if !strings.Contains(l.text, "#") {
			return nil, &ParseError{Line: l.number, Msg: "row has no enclosing wall"}
		}
		if strings.TrimSpace(l.text[:left]) != "" {
			return nil, &ParseError{Line: l.number, Msg: "content left of the warehouse walls"}
		}
		row := l.text[left:]
		for x := 0; x < len(row); x++ {
			c := Coord{X: x, Y: y}
			switch row[x] {
			case '#':
				wallCells = append(wallCells, c)
				if x+1 > g.Width {
					g.Width = x + 1
				}
			case ' ':
			case '.':
				targetCells = append(targetCells, c)
			case '@':
				w.Worker = c
				workers++
			case '!':
				w.Worker = c
				workers++
				targetCells = append(targetCells, c)
			case '$':
				w.Boxes = append(w.Boxes, c)
			case '*':
				w.Boxes = append(w.Boxes, c)
				targetCells = append(targetCells, c)
			default:
				return nil, &ParseError{Line: l.number, Column: left + x + 1, Msg: fmt.Sprintf("unexpected character %q", row[x])}
			}
		}
	}

	if workers != 1 {
		return nil, &ParseError{Msg: fmt.Sprintf("expected exactly one worker, found %d", workers)}
	}
	outside := func(c Coord) bool { return c.X >= g.Width }
	if outside(w.Worker) {
		return nil, &ParseError{Line: rows[w.Worker.Y].number, Msg: "worker outside the warehouse walls"}
	}
	for _, b := range w.Boxes {
		if outside(b) {
			return nil, &ParseError{Line: rows[b.Y].number, Msg: "box outside the warehouse walls"}
		}
	}
	for _, t := range targetCells {
		if outside(t) {
			return nil, &ParseError{Line: rows[t.Y].number, Msg: "target outside the warehouse walls"}
		}
	}

	size := g.Width * g.Height
	g.walls = make([]bool, size)
	g.targets = make([]bool, size)
	for _, c := range wallCells {
		g.walls[g.index(c)] = true
	}
	g.wallCount = len(wallCells)
	for _, c := range targetCells {
		g.targets[g.index(c)] = true
	}
	g.targetList = targetCells
	g.interior = interiorCells(g, rows, left, w.Worker)
	w.Grid = g

	switch {
	case weights == nil:
		w.Weights = make([]int, len(w.Boxes))
	case len(weights) != len(w.Boxes):
		return nil, &ParseError{Line: weightsLine, Msg: fmt.Sprintf("%d weights given for %d boxes", len(weights), len(w.Boxes))}
	default:
		w.Weights = weights
	}
	return w, nil
}

// splitWeights detects and removes the optional weights line. It returns nil
// weights when the first non-blank line belongs to the grid.
func splitWeights(lines []sourceLine) ([]int, int, []sourceLine, error) {
	for i, l := range lines {
		if strings.TrimSpace(l.text) == "" {
			continue
		}
		if strings.Contains(l.text, "#") {
			return nil, 0, lines, nil
		}
		fields := strings.Fields(l.text)
		weights := make([]int, 0, len(fields))
		for _, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil || n < 0 {
				return nil, 0, nil, &ParseError{Line: l.number, Msg: fmt.Sprintf("invalid box weight %q", f)}
			}
			weights = append(weights, n)
		}
		return weights, l.number, lines[i+1:], nil
	}
	return nil, 0, lines, nil
}

// interiorCells marks the open cells that lie between the outermost walls of an
// interior row and are reachable from the worker without crossing a wall.
func interiorCells(g *Grid, rows []sourceLine, left int, worker Coord) []bool {
	span := make([]bool, g.Width*g.Height)
	for y := 1; y < g.Height-1; y++ {
		row := rows[y].text[left:]
		first := strings.IndexByte(row, '#')
		last := strings.LastIndexByte(row, '#')
		for x := first + 1; x < last; x++ {
			c := Coord{X: x, Y: y}
			if !g.walls[g.index(c)] {
				span[g.index(c)] = true
			}
		}
	}

	interior := make([]bool, len(span))
	if !g.InBounds(worker) || !span[g.index(worker)] {
		return interior
	}
	stack := []Coord{worker}
	interior[g.index(worker)] = true
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, a := range AllActions {
			n := c.Add(a.Delta())
			if g.InBounds(n) && span[g.index(n)] && !interior[g.index(n)] {
				interior[g.index(n)] = true
				stack = append(stack, n)
			}
		}
	}
	return interior
}
