package batch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdrpinto/sokoban"
)

// Tags describe a warehouse well enough to spot what makes it hard.
type Tags struct {
	Boxes      int
	Walls      int
	Density    float64 // walls / (rows * columns)
	TabooCount int
	Weights    []int
}

// Classify computes the tags of w.
func Classify(w *sokoban.Warehouse) Tags {
	cells := w.Grid.Width * w.Grid.Height
	density := 0.0
	if cells > 0 {
		density = float64(w.Grid.WallCount()) / float64(cells)
	}
	return Tags{
		Boxes:      len(w.Boxes),
		Walls:      w.Grid.WallCount(),
		Density:    density,
		TabooCount: sokoban.Taboo(w.Grid).Len(),
		Weights:    append([]int(nil), w.Weights...),
	}
}

// String renders the report tag line.
func (t Tags) String() string {
	return fmt.Sprintf("Boxes: %d, Walls: %d, Density: %.2f, Taboo Count: %d, Weights: %s",
		t.Boxes, t.Walls, t.Density, t.TabooCount, formatWeights(t.Weights))
}

func formatWeights(weights []int) string {
	if len(weights) == 0 {
		return "No Weights"
	}
	parts := make([]string, len(weights))
	for i, w := range weights {
		parts[i] = strconv.Itoa(w)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
