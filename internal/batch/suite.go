package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Suite is a named set of cases with its own limits, read from an HCL
// manifest:
//
//	suite "regression" {
//	  timeout  = "30s"
//	  parallel = 4
//	  dir      = "warehouses"
//
//	  puzzle "warehouse_8a" {
//	    path   = "warehouses/warehouse_8a.txt"
//	    expect = "Solved"
//	    cost   = 431
//	  }
//	}
//
// Every *.txt file in dir becomes a case; puzzle blocks add cases or pin the
// expected result of a discovered one. Relative paths are resolved against
// the manifest's directory, which expressions can also name as manifest_dir.
type Suite struct {
	Name string
	// Timeout and Parallel are zero when the manifest leaves them out.
	Timeout  time.Duration
	Parallel int
	Cases    []Case
}

type hclSuiteFile struct {
	Suites []*hclSuite `hcl:"suite,block"`
}

type hclSuite struct {
	Name     string       `hcl:"name,label"`
	Timeout  *string      `hcl:"timeout,optional"`
	Parallel *int         `hcl:"parallel,optional"`
	Dir      *string      `hcl:"dir,optional"`
	Puzzles  []*hclPuzzle `hcl:"puzzle,block"`
}

type hclPuzzle struct {
	Name   string  `hcl:"name,label"`
	Path   string  `hcl:"path"`
	Expect *string `hcl:"expect,optional"`
	Cost   *int    `hcl:"cost,optional"`
}

// LoadSuites reads every suite in an HCL manifest.
func LoadSuites(path string) ([]Suite, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite manifest: %w", err)
	}
	return ParseSuites(src, path, filepath.Dir(path))
}

// ParseSuites decodes an HCL manifest. filename is used in diagnostics and
// baseDir anchors relative paths.
func ParseSuites(src []byte, filename, baseDir string) ([]Suite, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"manifest_dir": cty.StringVal(baseDir),
		},
	}
	var parsed hclSuiteFile
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	suites := make([]Suite, 0, len(parsed.Suites))
	for _, s := range parsed.Suites {
		suite, err := s.build(baseDir)
		if err != nil {
			return nil, fmt.Errorf("suite %q: %w", s.Name, err)
		}
		suites = append(suites, suite)
	}
	return suites, nil
}

func (s *hclSuite) build(baseDir string) (Suite, error) {
	suite := Suite{Name: s.Name}
	if s.Timeout != nil {
		d, err := time.ParseDuration(*s.Timeout)
		if err != nil {
			return Suite{}, fmt.Errorf("timeout: %w", err)
		}
		suite.Timeout = d
	}
	if s.Parallel != nil {
		if *s.Parallel < 1 {
			return Suite{}, fmt.Errorf("parallel must be at least 1, got %d", *s.Parallel)
		}
		suite.Parallel = *s.Parallel
	}

	byPath := make(map[string]int)
	if s.Dir != nil {
		discovered, err := DiscoverCases(resolve(baseDir, *s.Dir))
		if err != nil {
			return Suite{}, err
		}
		for _, c := range discovered {
			byPath[c.Path] = len(suite.Cases)
			suite.Cases = append(suite.Cases, c)
		}
	}

	for _, p := range s.Puzzles {
		c := Case{Name: p.Name, Path: resolve(baseDir, p.Path)}
		if p.Expect != nil || p.Cost != nil {
			c.Expect = &Expectation{}
			if p.Expect != nil {
				outcome, err := ParseOutcome(*p.Expect)
				if err != nil {
					return Suite{}, fmt.Errorf("puzzle %q: %w", p.Name, err)
				}
				c.Expect.Outcome = outcome
			}
			if p.Cost != nil {
				c.Expect.Cost = *p.Cost
			}
		}
		if i, ok := byPath[c.Path]; ok {
			suite.Cases[i] = c
			continue
		}
		byPath[c.Path] = len(suite.Cases)
		suite.Cases = append(suite.Cases, c)
	}
	return suite, nil
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}

// DiscoverCases returns a case for every *.txt file in dir, sorted by name.
func DiscoverCases(dir string) ([]Case, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	var cases []Case
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".txt" {
			continue
		}
		cases = append(cases, Case{
			Name: strings.TrimSuffix(e.Name(), ".txt"),
			Path: filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(cases, func(i, j int) bool { return cases[i].Path < cases[j].Path })
	return cases, nil
}
