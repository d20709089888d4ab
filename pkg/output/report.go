package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Report is the outcome of one analysis run
type Report struct {
	RunID      string     `json:"runId"`
	Classes    string     `json:"classes"`
	StartedAt  time.Time  `json:"startedAt"`
	DurationMs int64      `json:"durationMs"`
	Lines      int        `json:"lines"`
	Nodes      int        `json:"nodes"`
	Edges      int        `json:"edges"`
	Count      int        `json:"count"`
	Cycles     []Cycle    `json:"cycles"`
	Tangles    [][]string `json:"tangles"`
}

// Cycle is one reported cycle
type Cycle struct {
	Path  []string `json:"path"`
	Chain string   `json:"chain"`
}

// NewCycles converts collected paths into report cycles
func NewCycles(paths [][]string) []Cycle {
	cycles := make([]Cycle, 0, len(paths))
	for _, p := range paths {
		cycles = append(cycles, Cycle{Path: p, Chain: FormatChain(p)})
	}
	return cycles
}

// WriteJSON writes the report as indented JSON
func WriteJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// WriteJSONFile writes the report to path
func WriteJSONFile(path string, report *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := WriteJSON(f, report); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
