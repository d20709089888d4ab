package cycles

import (
	"sort"

	gonum "gonum.org/v1/gonum/graph"

	"github.com/ritzau/jdeps-cycles/pkg/graph"
)

// Tangle is a strongly connected group of nodes: every member reaches every
// other member. Each unique cycle lies entirely inside one tangle.
type Tangle struct {
	Members []string `json:"members"`
}

// FindTangles returns the tangles of g with more than one member. Members
// are sorted, and tangles are ordered by size (largest first), then by
// first member.
func FindTangles(g *graph.DepGraph) []Tangle {
	tarjan := NewTarjanSCC(g.Graph())

	tangles := make([]Tangle, 0)
	for _, scc := range tarjan.FindSCCs() {
		members := make([]string, 0, len(scc))
		for _, id := range scc {
			members = append(members, g.Name(id))
		}
		sort.Strings(members)
		tangles = append(tangles, Tangle{Members: members})
	}

	sort.Slice(tangles, func(i, j int) bool {
		a, b := tangles[i].Members, tangles[j].Members
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a[0] < b[0]
	})
	return tangles
}

// TarjanSCC finds the strongly connected components of a directed graph
// that contain more than one node, using Tarjan's algorithm
type TarjanSCC struct {
	graph gonum.Directed
	index int
	stack []int64
	state map[int64]*sccState
	sccs  [][]int64
}

type sccState struct {
	index   int
	lowLink int
	onStack bool
}

// NewTarjanSCC creates a new Tarjan SCC finder
func NewTarjanSCC(g gonum.Directed) *TarjanSCC {
	return &TarjanSCC{
		graph: g,
		state: make(map[int64]*sccState),
	}
}

// FindSCCs returns the multi-node components as lists of node IDs
func (t *TarjanSCC) FindSCCs() [][]int64 {
	nodes := t.graph.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		if _, visited := t.state[id]; !visited {
			t.strongConnect(id)
		}
	}
	return t.sccs
}

func (t *TarjanSCC) strongConnect(id int64) *sccState {
	s := &sccState{index: t.index, lowLink: t.index, onStack: true}
	t.state[id] = s
	t.index++
	t.stack = append(t.stack, id)

	successors := t.graph.From(id)
	for successors.Next() {
		next := successors.Node().ID()

		ns, visited := t.state[next]
		switch {
		case !visited:
			ns = t.strongConnect(next)
			s.lowLink = min(s.lowLink, ns.lowLink)
		case ns.onStack:
			s.lowLink = min(s.lowLink, ns.index)
		}
	}

	if s.lowLink != s.index {
		return s
	}

	// id is the root of a component
	var scc []int64
	for {
		w := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.state[w].onStack = false
		scc = append(scc, w)
		if w == id {
			break
		}
	}
	if len(scc) > 1 {
		t.sccs = append(t.sccs, scc)
	}
	return s
}
