package jdeps

import (
	"bufio"
	"fmt"
	"io"
	"regexp"

	"github.com/ritzau/jdeps-cycles/pkg/graph"
	"github.com/ritzau/jdeps-cycles/pkg/logging"
)

// edgePattern matches a jdeps dependency record:
//
//	com.acme.app   ->   com.acme.util   app.jar
//
// Records are indented; the archive/module header lines are not.
var edgePattern = regexp.MustCompile(`^\s+(\S+)\s+->\s+(\S+)\s+(\S+)$`)

// Edge is one dependency record from a jdeps report
type Edge struct {
	Source     string
	Target     string
	Classifier string // containing archive or module, unused for cycle detection
}

// ParseEdge parses a single report line. Lines that are not dependency
// records (headers, summaries, warnings) return false.
func ParseEdge(line string) (Edge, bool) {
	m := edgePattern.FindStringSubmatch(line)
	if m == nil {
		return Edge{}, false
	}
	return Edge{Source: m[1], Target: m[2], Classifier: m[3]}, true
}

// Extractor feeds dependency records into a graph, one line at a time
type Extractor struct {
	graph *graph.DepGraph
	lines int
	edges int
}

// NewExtractor creates an extractor that records edges into g
func NewExtractor(g *graph.DepGraph) *Extractor {
	return &Extractor{graph: g}
}

// Line processes one report line
func (e *Extractor) Line(line string) {
	e.lines++

	edge, ok := ParseEdge(line)
	if !ok {
		return
	}

	e.edges++
	e.graph.AddDependency(edge.Source, edge.Target)
	logging.Trace("registered dependency", "from", edge.Source, "to", edge.Target, "in", edge.Classifier)
}

// Read processes every line of a saved report
func (e *Extractor) Read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		e.Line(trimCR(scanner.Text()))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading jdeps report: %w", err)
	}
	return nil
}

// Lines returns the number of lines processed
func (e *Extractor) Lines() int {
	return e.lines
}

// Edges returns the number of dependency records matched, duplicates included
func (e *Extractor) Edges() int {
	return e.edges
}

func trimCR(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\r' {
		return s[:n-1]
	}
	return s
}
