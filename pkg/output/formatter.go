package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ritzau/jdeps-cycles/pkg/logging"
)

// Reporter receives cycles as they are found and the final count
type Reporter interface {
	Cycle(path []string)
	Done(count int)
}

// FormatChain renders a cycle on one line: "a -> b -> a"
func FormatChain(path []string) string {
	return strings.Join(path, " -> ")
}

// FormatCyclePath renders a cycle with one node per line:
//
//	Cycle path:
//		a ->
//		b ->
//		a
func FormatCyclePath(path []string) string {
	var b strings.Builder
	b.WriteString("Cycle path:")
	for i, node := range path {
		b.WriteString("\n\t")
		b.WriteString(node)
		if i < len(path)-1 {
			b.WriteString(" ->")
		}
	}
	return b.String()
}

// FormatCount renders the closing summary line
func FormatCount(count int) string {
	return fmt.Sprintf("Found %d unique cyclic path(s)", count)
}

// LogReporter logs each cycle at info level
type LogReporter struct {
	Multiline bool // one node per line instead of a single chain
}

func (r *LogReporter) Cycle(path []string) {
	if r.Multiline {
		logging.Info(FormatCyclePath(path))
		return
	}
	logging.Info("Cycle path: "+FormatChain(path), "length", len(path)-1)
}

func (r *LogReporter) Done(count int) {
	logging.Info(FormatCount(count))
}

// ConsoleReporter prints a colorized cycle listing
type ConsoleReporter struct {
	out   io.Writer
	n     int
	bold  *color.Color
	red   *color.Color
	green *color.Color
	cyan  *color.Color
}

// NewConsoleReporter creates a console reporter writing to w
func NewConsoleReporter(w io.Writer, colorize bool) *ConsoleReporter {
	r := &ConsoleReporter{
		out:   w,
		bold:  color.New(color.Bold),
		red:   color.New(color.FgRed),
		green: color.New(color.FgGreen),
		cyan:  color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{r.bold, r.red, r.green, r.cyan} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func (r *ConsoleReporter) Cycle(path []string) {
	r.n++
	if r.n == 1 {
		r.bold.Fprintln(r.out, "DEPENDENCY CYCLES:")
	}

	r.red.Fprintf(r.out, "  #%d (%d nodes)\n", r.n, len(path)-1)
	for i, node := range path {
		if i == len(path)-1 {
			r.cyan.Fprintf(r.out, "    %s\n", node)
			continue
		}
		fmt.Fprintf(r.out, "    %s ->\n", node)
	}
	fmt.Fprintln(r.out)
}

// Done prints the summary and resets the numbering for the next run
func (r *ConsoleReporter) Done(count int) {
	r.n = 0
	if count == 0 {
		r.green.Fprintln(r.out, "✓ No dependency cycles found")
		return
	}
	r.red.Fprintln(r.out, FormatCount(count))
}

// Collector keeps cycles in memory
type Collector struct {
	Cycles [][]string
	Count  int
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{Cycles: make([][]string, 0)}
}

func (c *Collector) Cycle(path []string) {
	c.Cycles = append(c.Cycles, path)
}

func (c *Collector) Done(count int) {
	c.Count = count
}

type multiReporter []Reporter

// Multi fans out to several reporters in order
func Multi(reporters ...Reporter) Reporter {
	return multiReporter(reporters)
}

func (m multiReporter) Cycle(path []string) {
	for _, r := range m {
		r.Cycle(path)
	}
}

func (m multiReporter) Done(count int) {
	for _, r := range m {
		r.Done(count)
	}
}
