package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diamond() *CFG {
	g := New(0, 1)
	g.AddNode(Node{Block: 1, Tag: Literal()})
	g.AddNode(Node{Block: 2, Tag: Literal()})
	g.AddNode(Node{Block: 3, Tag: Literal()})
	g.AddNode(Node{Block: 4, Tag: Literal()})
	g.AddEdge(1, 2)
	g.AddEdge(1, 3)
	g.AddEdge(2, 4)
	g.AddEdge(3, 4)
	g.SetExit(4)
	return g
}

func whileLoop() *CFG {
	// v1 -> v2 -> v3 -> {v2, v4}
	g := New(0, 1)
	g.AddNode(Node{Block: 1, Tag: Literal()})
	g.AddNode(Node{Block: 2, Tag: Literal()})
	g.AddNode(Node{Block: 3, Tag: Literal()})
	g.AddNode(Node{Block: 4, Tag: Literal()})
	g.AddEdge(1, 2)
	g.AddEdge(2, 3)
	g.AddEdge(3, 2)
	g.AddEdge(3, 4)
	g.SetExit(4)
	return g
}

func TestNew(t *testing.T) {
	g := New(FunID(7), BlockID(1))
	assert.Equal(t, FunID(7), g.Fun)
	assert.Equal(t, BlockID(1), g.Entry)
	assert.Equal(t, 0, g.Len())
}

func TestAddNodeAndEdge(t *testing.T) {
	g := diamond()
	assert.Equal(t, 4, g.Len())

	n1, ok := g.Node(1)
	require.True(t, ok)
	assert.ElementsMatch(t, []BlockID{2, 3}, n1.Successors)

	n4, ok := g.Node(4)
	require.True(t, ok)
	assert.ElementsMatch(t, []BlockID{2, 3}, n4.Predecessors)
}

func TestValidate_Diamond(t *testing.T) {
	g := diamond()
	assert.NoError(t, g.Validate())
}

func TestValidate_UnreachableBlock(t *testing.T) {
	g := New(0, 1)
	g.AddNode(Node{Block: 1, Tag: Literal()})
	g.AddNode(Node{Block: 2, Tag: Literal()})
	g.SetExit(1)
	// block 2 has no edge from entry: unreachable.
	err := g.Validate()
	require.Error(t, err)
	var malformed *MalformedCFG
	require.ErrorAs(t, err, &malformed)
}

func TestValidate_ExitHasSuccessors(t *testing.T) {
	g := New(0, 1)
	g.AddNode(Node{Block: 1, Tag: Literal()})
	g.AddNode(Node{Block: 2, Tag: Literal()})
	g.AddEdge(1, 2)
	g.SetExit(1) // block 1 still has an outgoing edge
	err := g.Validate()
	require.Error(t, err)
}

func TestLasts(t *testing.T) {
	g := diamond()
	lasts := g.Lasts()
	assert.Equal(t, map[BlockID]bool{4: true}, lasts)
}

func TestLoopHeads_Diamond(t *testing.T) {
	g := diamond()
	assert.Empty(t, g.LoopHeads())
}

func TestLoopHeads_WhileLoop(t *testing.T) {
	g := whileLoop()
	heads := g.LoopHeads()
	assert.Equal(t, map[BlockID]bool{2: true, 3: true}, heads)
}

func TestLoopHeads_SelfLoop(t *testing.T) {
	g := New(0, 1)
	g.AddNode(Node{Block: 1, Tag: Literal()})
	g.AddNode(Node{Block: 2, Tag: Literal()})
	g.AddEdge(1, 1)
	g.AddEdge(1, 2)
	g.SetExit(2)
	heads := g.LoopHeads()
	assert.Equal(t, map[BlockID]bool{1: true}, heads)
}

func TestVarAndExternTags(t *testing.T) {
	callTag := Var(FunID(3))
	assert.Equal(t, TagVar, callTag.Kind)
	assert.Equal(t, FunID(3), callTag.Fun)

	assert.Equal(t, TagExtern, Extern().Kind)
	assert.Equal(t, TagLiteral, Literal().Kind)
}
