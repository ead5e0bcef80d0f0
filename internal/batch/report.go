package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// nextNumber returns one more than the highest N among files named
// <prefix>N.txt in dir, or 1.
func nextNumber(dir, prefix string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, err
	}
	highest := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".txt") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".txt"))
		if err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}

// createNumbered creates dir/<prefix>N.txt with the next free N.
func createNumbered(dir, prefix string) (*os.File, int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, 0, fmt.Errorf("create report directory: %w", err)
	}
	n, err := nextNumber(dir, prefix)
	if err != nil {
		return nil, 0, fmt.Errorf("scan report directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, fmt.Sprintf("%s%d.txt", prefix, n)), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, 0, fmt.Errorf("create report: %w", err)
	}
	return f, n, nil
}

// WriteReport stores run as dir/TestN.txt and returns the file path.
func WriteReport(dir string, run *Run) (string, error) {
	f, n, err := createNumbered(dir, "Test")
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := FormatReport(f, n, run); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return f.Name(), f.Close()
}

// FormatReport writes the text report of run numbered n.
func FormatReport(w io.Writer, n int, run *Run) error {
	first := "none"
	if len(run.Results) > 0 {
		first = filepath.Base(run.Results[0].Case.Path)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Test%d: Started with warehouse: %s, Number of warehouses tested: %d\n\n",
		n, first, len(run.Results))
	for _, res := range run.Results {
		fmt.Fprintf(bw, "Loaded warehouse: %s\n\n", res.Case.Path)
		fmt.Fprintf(bw, "\t%s\n\n", res.Tags)
		fmt.Fprintf(bw, "\t%s\n\n", resultLine(res))
		if m := res.Mismatch(); m != "" {
			fmt.Fprintf(bw, "\tMismatch: %s\n\n", m)
		}
	}
	return bw.Flush()
}

func resultLine(res Result) string {
	elapsed := fmt.Sprintf("%.2f", res.Elapsed.Seconds())
	cost := "N/A"
	switch res.Outcome {
	case Solved:
		cost = strconv.Itoa(res.Cost)
	case Impossible:
		cost = "None"
	case NotSolved:
		elapsed = "Timeout"
	}
	return fmt.Sprintf("Result: Solved? = %s, Time: %s seconds, Cost: %s", res.Outcome, elapsed, cost)
}

var (
	tagPattern = regexp.MustCompile(
		`Boxes:\s*(\d+), Walls:\s*(\d+), Density:\s*([\d.]+), Taboo Count:\s*(\d+), Weights:\s*(\[[^\]]*\]|No Weights)`)
	resultPattern = regexp.MustCompile(
		`Result:\s*Solved\?\s*=\s*(Solved|Not Solved|Impossible), Time:\s*([\d.]+|Timeout)\s*seconds, Cost:\s*(\d+|None|N/A)`)
)

// Entry is one warehouse read back from a report.
type Entry struct {
	Path     string
	Tags     Tags
	Outcome  Outcome
	Seconds  float64
	TimedOut bool
	Cost     int
	HasCost  bool
}

// ParseReport reads the warehouse entries of a report written by
// FormatReport. Lines it does not recognise are skipped.
func ParseReport(r io.Reader) ([]Entry, error) {
	var (
		entries []Entry
		current *Entry
	)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "Loaded warehouse:"):
			entries = append(entries, Entry{Path: strings.TrimSpace(strings.TrimPrefix(line, "Loaded warehouse:"))})
			current = &entries[len(entries)-1]
		case current == nil:
			continue
		case tagPattern.MatchString(line):
			tags, err := parseTags(tagPattern.FindStringSubmatch(line))
			if err != nil {
				return nil, fmt.Errorf("report line %d: %w", lineNo, err)
			}
			current.Tags = tags
		case resultPattern.MatchString(line):
			m := resultPattern.FindStringSubmatch(line)
			current.Outcome = Outcome(m[1])
			if m[2] == "Timeout" {
				current.TimedOut = true
			} else {
				current.Seconds, _ = strconv.ParseFloat(m[2], 64)
			}
			if cost, err := strconv.Atoi(m[3]); err == nil {
				current.Cost, current.HasCost = cost, true
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return entries, nil
}

func parseTags(m []string) (Tags, error) {
	var t Tags
	t.Boxes, _ = strconv.Atoi(m[1])
	t.Walls, _ = strconv.Atoi(m[2])
	t.TabooCount, _ = strconv.Atoi(m[4])
	density, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return Tags{}, fmt.Errorf("density %q: %w", m[3], err)
	}
	t.Density = density
	if m[5] == "No Weights" {
		return t, nil
	}
	inner := strings.TrimSpace(strings.Trim(m[5], "[]"))
	if inner == "" {
		return t, nil
	}
	for _, f := range strings.Split(inner, ",") {
		w, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return Tags{}, fmt.Errorf("weight %q: %w", f, err)
		}
		t.Weights = append(t.Weights, w)
	}
	return t, nil
}
