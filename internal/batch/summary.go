package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Summary aggregates the entries of one report.
type Summary struct {
	Total, Solved, NotSolved, Impossible int

	solvedTime float64
	costSum    int
	costCount  int

	solved, notSolved tagTotals
}

type tagTotals struct {
	boxes, walls, taboo, weights int
	density                      float64
}

func (t *tagTotals) add(tags Tags) {
	t.boxes += tags.Boxes
	t.walls += tags.Walls
	t.density += tags.Density
	t.taboo += tags.TabooCount
	t.weights += len(tags.Weights)
}

// Summarize totals entries by outcome.
func Summarize(entries []Entry) Summary {
	s := Summary{Total: len(entries)}
	for _, e := range entries {
		switch e.Outcome {
		case Solved:
			s.Solved++
			s.solvedTime += e.Seconds
			if e.HasCost {
				s.costSum += e.Cost
				s.costCount++
			}
			s.solved.add(e.Tags)
		case NotSolved:
			s.NotSolved++
			s.notSolved.add(e.Tags)
		default:
			s.Impossible++
		}
	}
	return s
}

// AverageSolveTime is the mean time in seconds over solved entries.
func (s Summary) AverageSolveTime() (float64, bool) {
	return average(s.solvedTime, s.Solved)
}

// AverageCost is the mean cost over solved entries that recorded one.
func (s Summary) AverageCost() (float64, bool) {
	return average(float64(s.costSum), s.costCount)
}

func average(sum float64, n int) (float64, bool) {
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func formatAverage(sum float64, n int, unit string) string {
	v, ok := average(sum, n)
	if !ok {
		return "cannot be calculated"
	}
	return fmt.Sprintf("%.2f%s", v, unit)
}

// Lines renders the summary body, one statistic per line.
func (s Summary) Lines() []string {
	pair := func(label string, solved, notSolved float64) string {
		return fmt.Sprintf("Average Solved %s: %s; Average Not Solved %s: %s",
			label, formatAverage(solved, s.Solved, ""),
			label, formatAverage(notSolved, s.NotSolved, ""))
	}
	return []string{
		fmt.Sprintf("Total Warehouses: %d", s.Total),
		fmt.Sprintf("Solved: %d, Unsolved: %d, Impossible: %d", s.Solved, s.NotSolved, s.Impossible),
		"Average Solve Time: " + formatAverage(s.solvedTime, s.Solved, " seconds"),
		"Average Solve Cost: " + formatAverage(float64(s.costSum), s.costCount, ""),
		pair("Boxes", float64(s.solved.boxes), float64(s.notSolved.boxes)),
		pair("Walls", float64(s.solved.walls), float64(s.notSolved.walls)),
		pair("Density", s.solved.density, s.notSolved.density),
		pair("Taboo Count", float64(s.solved.taboo), float64(s.notSolved.taboo)),
		pair("Weights", float64(s.solved.weights), float64(s.notSolved.weights)),
	}
}

// WriteSummary reads the report at reportPath and stores its summary as
// dir/SummaryN.txt, returning that path.
func WriteSummary(dir, reportPath string) (string, Summary, error) {
	in, err := os.Open(reportPath)
	if err != nil {
		return "", Summary{}, fmt.Errorf("open report: %w", err)
	}
	defer in.Close()
	entries, err := ParseReport(in)
	if err != nil {
		return "", Summary{}, err
	}
	summary := Summarize(entries)

	f, n, err := createNumbered(dir, "Summary")
	if err != nil {
		return "", Summary{}, err
	}
	defer f.Close()
	if err := FormatSummary(f, n, summary); err != nil {
		return "", Summary{}, fmt.Errorf("write summary: %w", err)
	}
	return f.Name(), summary, f.Close()
}

// FormatSummary writes summary numbered n.
func FormatSummary(w io.Writer, n int, summary Summary) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Summary %d\n\n", n)
	for _, line := range summary.Lines() {
		fmt.Fprintf(bw, "\t%s\n\n", line)
	}
	return bw.Flush()
}
