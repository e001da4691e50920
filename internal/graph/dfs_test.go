package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDfsOrdering_Diamond(t *testing.T) {
	g := New[string, int]()
	idx0 := g.AddNode("0")
	idx1 := g.AddNode("1")
	idx2 := g.AddNode("2")
	idx3 := g.AddNode("3")

	g.AddEdge(idx0, idx1, 2)
	g.AddEdge(idx0, idx2, 3)
	g.AddEdge(idx1, idx3, 5)

	d := NewDfs(g, idx0)

	var nodes []NodeIndex
	var parents []*NodeIndex
	for {
		tup, err, ok := d.Next()
		if !ok {
			break
		}
		require.Nil(t, err)
		nodes = append(nodes, tup.Child)
		parents = append(parents, tup.Parent)
	}

	assert.Equal(t, []NodeIndex{idx0, idx1, idx3, idx2}, nodes)
	require.Len(t, parents, 4)
	assert.Nil(t, parents[0])
	assert.Equal(t, idx0, *parents[1])
	assert.Equal(t, idx1, *parents[2])
	assert.Equal(t, idx0, *parents[3])
}

func TestDfsOrdering_WideTree(t *testing.T) {
	g := New[string, int]()
	idx0 := g.AddNode("0")
	idx1 := g.AddNode("1")
	idx2 := g.AddNode("2")
	idx3 := g.AddNode("3")
	idx4 := g.AddNode("4")
	idx5 := g.AddNode("5")
	idx6 := g.AddNode("6")
	idx7 := g.AddNode("7")

	g.AddEdge(idx0, idx1, 2)
	g.AddEdge(idx0, idx2, 3)
	g.AddEdge(idx1, idx3, 5)
	g.AddEdge(idx1, idx4, 6)
	g.AddEdge(idx2, idx4, 5)
	g.AddEdge(idx2, idx5, 4)
	g.AddEdge(idx3, idx6, 4)
	g.AddEdge(idx4, idx6, 4)
	g.AddEdge(idx6, idx7, 4)

	d := NewDfs(g, idx0)

	var nodes []NodeIndex
	for {
		tup, err, ok := d.Next()
		if !ok {
			break
		}
		require.Nil(t, err)
		nodes = append(nodes, tup.Child)
	}

	expected := []NodeIndex{idx0, idx1, idx3, idx6, idx7, idx4, idx6, idx7, idx2, idx5, idx4, idx6, idx7}
	assert.Equal(t, expected, nodes)
}

func TestDfsCycle_FailsAfterFiveEmissions(t *testing.T) {
	g := New[string, int]()
	idx0 := g.AddNode("0")
	idx1 := g.AddNode("1")
	idx2 := g.AddNode("2")
	idx3 := g.AddNode("3")
	idx4 := g.AddNode("4")
	idx5 := g.AddNode("5")
	idx6 := g.AddNode("6")
	idx7 := g.AddNode("7")

	g.AddEdge(idx0, idx1, 2)
	g.AddEdge(idx0, idx2, 3)
	g.AddEdge(idx1, idx3, 5)
	g.AddEdge(idx1, idx4, 6)
	g.AddEdge(idx2, idx4, 5)
	g.AddEdge(idx2, idx5, 4)
	g.AddEdge(idx3, idx6, 4)
	g.AddEdge(idx4, idx6, 4)
	g.AddEdge(idx6, idx7, 4)
	g.AddEdge(idx7, idx4, 4)

	d := NewDfs(g, idx0)

	for i := 0; i < 5; i++ {
		_, err, ok := d.Next()
		require.True(t, ok)
		require.Nil(t, err)
	}

	_, err, ok := d.Next()
	require.True(t, ok)
	require.NotNil(t, err)
}

func TestCycleErrorMessage(t *testing.T) {
	g := New[string, int]()
	a := g.AddNode("A")
	b := g.AddNode("B")
	g.AddEdge(a, b, 0)
	g.AddEdge(b, a, 0)

	d := NewDfs(g, a)
	_, err, ok := d.Next()
	require.True(t, ok)
	require.Nil(t, err)

	_, err, ok = d.Next()
	require.True(t, ok)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "Include cycle detected:\nA imports ")

	diag := err.ToDiagnostic()
	assert.Equal(t, uint32(0), diag.Range.Start.Line)
	assert.Equal(t, uint32(500), diag.Range.End.Character)
	assert.Equal(t, "mcglsl", diag.Source)
}
