package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
)

// Edge is a directed dependency from Source to Target
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// DepGraph is a directed dependency graph keyed by node name.
// Nodes that only appear as a destination have no outgoing edges.
type DepGraph struct {
	graph     *simple.DirectedGraph
	ids       map[string]int64 // Map from node name to graph ID
	names     []string         // Graph ID to node name
	selfLoops map[string]bool  // simple.DirectedGraph rejects self edges
}

// New creates an empty dependency graph
func New() *DepGraph {
	return &DepGraph{
		graph:     simple.NewDirectedGraph(),
		ids:       make(map[string]int64),
		selfLoops: make(map[string]bool),
	}
}

// AddNode adds a node to the graph and returns its ID.
// Adding an existing node returns the existing ID.
func (g *DepGraph) AddNode(name string) int64 {
	if id, exists := g.ids[name]; exists {
		return id
	}

	id := int64(len(g.names))
	g.ids[name] = id
	g.names = append(g.names, name)
	g.graph.AddNode(simple.Node(id))

	return id
}

// AddDependency records that source depends on target.
// Recording the same dependency twice has no further effect.
func (g *DepGraph) AddDependency(source, target string) {
	sourceID := g.AddNode(source)
	targetID := g.AddNode(target)

	if sourceID == targetID {
		g.selfLoops[source] = true
		return
	}

	if !g.graph.HasEdgeFromTo(sourceID, targetID) {
		g.graph.SetEdge(g.graph.NewEdge(g.graph.Node(sourceID), g.graph.Node(targetID)))
	}
}

// Successors returns the sorted direct dependencies of a node.
// Unknown nodes and leaf nodes have no successors.
func (g *DepGraph) Successors(name string) []string {
	id, exists := g.ids[name]
	if !exists {
		return nil
	}

	var succ []string
	iter := g.graph.From(id)
	for iter.Next() {
		succ = append(succ, g.names[iter.Node().ID()])
	}
	if g.selfLoops[name] {
		succ = append(succ, name)
	}

	sort.Strings(succ)
	return succ
}

// HasDependency reports whether the edge source -> target was recorded
func (g *DepGraph) HasDependency(source, target string) bool {
	if source == target {
		return g.selfLoops[source]
	}
	sourceID, ok := g.ids[source]
	if !ok {
		return false
	}
	targetID, ok := g.ids[target]
	if !ok {
		return false
	}
	return g.graph.HasEdgeFromTo(sourceID, targetID)
}

// Sources returns the sorted names of all nodes with at least one outgoing edge
func (g *DepGraph) Sources() []string {
	var sources []string
	for id, name := range g.names {
		if g.selfLoops[name] || g.graph.From(int64(id)).Len() > 0 {
			sources = append(sources, name)
		}
	}
	sort.Strings(sources)
	return sources
}

// Nodes returns the sorted names of all nodes in the graph
func (g *DepGraph) Nodes() []string {
	nodes := make([]string, len(g.names))
	copy(nodes, g.names)
	sort.Strings(nodes)
	return nodes
}

// Edges returns all recorded dependencies sorted by source, then target
func (g *DepGraph) Edges() []Edge {
	var edges []Edge

	iter := g.graph.Edges()
	for iter.Next() {
		edge := iter.Edge()
		edges = append(edges, Edge{
			Source: g.names[edge.From().ID()],
			Target: g.names[edge.To().ID()],
		})
	}
	for name := range g.selfLoops {
		edges = append(edges, Edge{Source: name, Target: name})
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges
}

// NodeCount returns the number of distinct nodes
func (g *DepGraph) NodeCount() int {
	return len(g.names)
}

// EdgeCount returns the number of distinct edges, self loops included
func (g *DepGraph) EdgeCount() int {
	return g.graph.Edges().Len() + len(g.selfLoops)
}

// Name returns the node name for a graph ID, or "" if unknown
func (g *DepGraph) Name(id int64) string {
	if id < 0 || id >= int64(len(g.names)) {
		return ""
	}
	return g.names[id]
}

// Graph returns the underlying directed graph.
// Self loops are not present in it.
func (g *DepGraph) Graph() *simple.DirectedGraph {
	return g.graph
}
