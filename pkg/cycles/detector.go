package cycles

import (
	"sort"
	"strings"

	"github.com/ritzau/jdeps-cycles/pkg/logging"
)

// Graph is the read-only view of a dependency graph the detector walks
type Graph interface {
	// Sources returns every node with at least one outgoing edge, in a stable order
	Sources() []string
	// Successors returns the direct dependencies of a node, in a stable order
	Successors(node string) []string
}

// Sink receives each unique cycle as soon as it is found. The path lists
// the members in discovery order followed by the first member again.
type Sink interface {
	Cycle(path []string)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(path []string)

func (f SinkFunc) Cycle(path []string) { f(path) }

// Detector enumerates dependency cycles with a depth-first search.
//
// Cycles are deduplicated by their unordered member set, so two different
// simple cycles over the same nodes are reported once. Nodes whose search
// found no new cycle are remembered and never searched again during a run.
// A direct self-dependency is not reported as a cycle.
type Detector struct {
	graph Graph
	sink  Sink

	path     []string            // active path, outermost first
	onPath   map[string]struct{} // active set, in lockstep with path
	frames   []frame             // explicit DFS stack, one frame per path entry
	acyclic  map[string]struct{}
	reported map[string]struct{} // cycle signatures
}

// frame is one suspended visit: the node, its successors and how far the
// iteration over them has come
type frame struct {
	node  string
	succ  []string
	next  int
	found int
}

// NewDetector creates a detector reporting to sink. A nil sink discards cycles.
func NewDetector(g Graph, sink Sink) *Detector {
	if sink == nil {
		sink = SinkFunc(func([]string) {})
	}
	return &Detector{graph: g, sink: sink}
}

// FindCycles runs a detector over g and returns the number of unique cycles
func FindCycles(g Graph, sink Sink) int {
	return NewDetector(g, sink).Run()
}

// Run searches from every source node and returns the number of unique
// cycles found. Each call starts from empty memos.
func (d *Detector) Run() int {
	d.reset()
	defer d.clearPath()

	count := 0
	for _, node := range d.graph.Sources() {
		count += d.Visit(node)
	}
	return count
}

// Visit searches from a single node and returns the number of newly found
// cycles. Memos are kept between calls so a later visit never reports a
// cycle an earlier one already did.
func (d *Detector) Visit(start string) int {
	if d.onPath == nil {
		d.reset()
	}

	found, pushed := d.enter(start)
	if !pushed {
		return found
	}
	trace := logging.Enabled(logging.LevelTrace)

	for {
		top := &d.frames[len(d.frames)-1]

		if top.next < len(top.succ) {
			next := top.succ[top.next]
			top.next++
			if trace {
				logging.Trace("searching for cycles", "from", top.node, "to", next)
			}

			if n, pushed := d.enter(next); !pushed {
				top.found += n
			}
			continue
		}

		done := d.leave()
		if len(d.frames) == 0 {
			return done
		}
		d.frames[len(d.frames)-1].found += done
	}
}

// enter applies the memo, self-loop and back-edge checks to node. If none
// of them settle the visit, node is pushed and pushed is true.
func (d *Detector) enter(node string) (found int, pushed bool) {
	if _, ok := d.acyclic[node]; ok {
		return 0, false
	}

	if _, ok := d.onPath[node]; ok {
		if d.path[len(d.path)-1] == node {
			return 0, false
		}
		return d.closeCycle(node), false
	}

	d.path = append(d.path, node)
	d.onPath[node] = struct{}{}
	d.frames = append(d.frames, frame{node: node, succ: d.graph.Successors(node)})
	return 0, true
}

// leave pops the top frame and returns the number of cycles found below it
func (d *Detector) leave() int {
	top := d.frames[len(d.frames)-1]
	d.frames = d.frames[:len(d.frames)-1]
	d.path = d.path[:len(d.path)-1]
	delete(d.onPath, top.node)

	if top.found == 0 {
		d.acyclic[top.node] = struct{}{}
	}
	return top.found
}

// closeCycle handles a back edge to node, which is on the active path.
// It returns 1 for a new cycle and 0 for a duplicate.
func (d *Detector) closeCycle(node string) int {
	start := 0
	for d.path[start] != node {
		start++
	}

	members := d.path[start:]
	sig := signature(members)
	if _, dup := d.reported[sig]; dup {
		logging.Debug("skipping duplicate cycle", "members", len(members))
		return 0
	}
	d.reported[sig] = struct{}{}

	cycle := make([]string, len(members)+1)
	copy(cycle, members)
	cycle[len(members)] = node

	d.sink.Cycle(cycle)
	return 1
}

func (d *Detector) reset() {
	d.acyclic = make(map[string]struct{})
	d.reported = make(map[string]struct{})
	d.clearPath()
}

func (d *Detector) clearPath() {
	d.path = d.path[:0]
	d.frames = d.frames[:0]
	d.onPath = make(map[string]struct{})
}

// signature identifies a cycle by its member set, independent of order
// and of the node the search happened to enter it from
func signature(members []string) string {
	sorted := make([]string, len(members))
	copy(sorted, members)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}
