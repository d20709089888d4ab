package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)

	assert.Empty(t, g.Nodes())
	assert.Empty(t, g.Sources())
	assert.Zero(t, g.EdgeCount())
}

func TestAddDependency(t *testing.T) {
	g := New()

	g.AddDependency("com.acme.app", "com.acme.util")

	assert.Equal(t, []string{"com.acme.app", "com.acme.util"}, g.Nodes())
	assert.Equal(t, []string{"com.acme.util"}, g.Successors("com.acme.app"))
	assert.True(t, g.HasDependency("com.acme.app", "com.acme.util"))
	assert.False(t, g.HasDependency("com.acme.util", "com.acme.app"))
	assert.Equal(t, []Edge{{Source: "com.acme.app", Target: "com.acme.util"}}, g.Edges())
}

func TestAddDependency_Idempotent(t *testing.T) {
	g := New()

	g.AddDependency("a", "b")
	g.AddDependency("a", "b")
	g.AddDependency("a", "a")
	g.AddDependency("a", "a")

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, []string{"a", "b"}, g.Successors("a"))
}

func TestSuccessors_LeafAndUnknown(t *testing.T) {
	g := New()
	g.AddDependency("a", "leaf")

	assert.Empty(t, g.Successors("leaf"))
	assert.Empty(t, g.Successors("missing"))
}

func TestSuccessors_Sorted(t *testing.T) {
	g := New()
	g.AddDependency("a", "zeta")
	g.AddDependency("a", "alpha")
	g.AddDependency("a", "mid")

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, g.Successors("a"))
}

func TestSources(t *testing.T) {
	g := New()
	g.AddDependency("c", "a")
	g.AddDependency("b", "leaf")
	g.AddDependency("self", "self")

	// leaf and a only appear as destinations
	assert.Equal(t, []string{"b", "c", "self"}, g.Sources())
}

func TestSelfLoopNotInGonumGraph(t *testing.T) {
	g := New()
	g.AddDependency("a", "a")

	assert.True(t, g.HasDependency("a", "a"))
	assert.Zero(t, g.Graph().Edges().Len())
	assert.Equal(t, []Edge{{Source: "a", Target: "a"}}, g.Edges())
}

func TestName(t *testing.T) {
	g := New()
	id := g.AddNode("com.acme")

	assert.Equal(t, "com.acme", g.Name(id))
	assert.Equal(t, id, g.AddNode("com.acme"))
	assert.Equal(t, "", g.Name(42))
	assert.Equal(t, "", g.Name(-1))
}
