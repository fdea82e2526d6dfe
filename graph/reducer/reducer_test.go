package reducer

import (
	"testing"

	"github.com/shivasurya/code-pathfinder/pathreduce/graph/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func path(ids ...int) []cfg.BlockID {
	out := make([]cfg.BlockID, len(ids))
	for i, v := range ids {
		out[i] = cfg.BlockID(v)
	}
	return out
}

func diamondCFG(fun cfg.FunID) *cfg.CFG {
	g := cfg.New(fun, 1)
	g.AddNode(cfg.Node{Block: 1, Tag: cfg.Literal()})
	g.AddNode(cfg.Node{Block: 2, Tag: cfg.Literal()})
	g.AddNode(cfg.Node{Block: 3, Tag: cfg.Literal()})
	g.AddNode(cfg.Node{Block: 4, Tag: cfg.Literal()})
	g.AddEdge(1, 2)
	g.AddEdge(1, 3)
	g.AddEdge(2, 4)
	g.AddEdge(3, 4)
	g.SetExit(4)
	return g
}

func whileLoopCFG(fun cfg.FunID) *cfg.CFG {
	g := cfg.New(fun, 1)
	g.AddNode(cfg.Node{Block: 1, Tag: cfg.Literal()})
	g.AddNode(cfg.Node{Block: 2, Tag: cfg.Literal()})
	g.AddNode(cfg.Node{Block: 3, Tag: cfg.Literal()})
	g.AddNode(cfg.Node{Block: 4, Tag: cfg.Literal()})
	g.AddEdge(1, 2)
	g.AddEdge(2, 3)
	g.AddEdge(3, 2)
	g.AddEdge(3, 4)
	g.SetExit(4)
	return g
}

func TestBuild_Diamond(t *testing.T) {
	r, err := Build([]*cfg.CFG{diamondCFG(0)}, 2)
	require.NoError(t, err)

	first, ok := r.FirstOf(0)
	require.True(t, ok)
	assert.Equal(t, cfg.BlockID(1), first)

	fun, ok := r.FunStartingWith(1)
	require.True(t, ok)
	assert.Equal(t, cfg.FunID(0), fun)

	assert.Equal(t, map[cfg.BlockID]bool{4: true}, r.LastsOf(0))
	assert.Empty(t, r.LoopHeadsOf(0))
}

// Diamond: a loop-free path is accepted and reduces to itself.
func TestReduce_Diamond_Identity(t *testing.T) {
	r, err := Build([]*cfg.CFG{diamondCFG(0)}, 2)
	require.NoError(t, err)

	out, err := r.Reduce(0, path(1, 2, 4))
	require.NoError(t, err)
	assert.Equal(t, path(1, 2, 4), out)
}

// While loop, k=1: GNFA compiles the loop to 1.2.3.(2.3)*.4 (the first
// traversal of the body sits outside the star), so one star iteration
// survives the bound: [1,2,3,2,3,2,3,4] -> [1,2,3,2,3,4].
func TestReduce_WhileLoop_Structural(t *testing.T) {
	r, err := Build([]*cfg.CFG{whileLoopCFG(0)}, 1)
	require.NoError(t, err)
	require.Equal(t, ModeStructural, r.Mode())

	out, err := r.Reduce(0, path(1, 2, 3, 2, 3, 2, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, path(1, 2, 3, 2, 3, 4), out)
}

// Star iterations beyond k are consumed but not recorded: five loop
// traversals collapse to the unrolled first one plus k star witnesses.
func TestReduce_WhileLoop_StarBound(t *testing.T) {
	r, err := Build([]*cfg.CFG{whileLoopCFG(0)}, 2)
	require.NoError(t, err)

	out, err := r.Reduce(0, path(1, 2, 3, 2, 3, 2, 3, 2, 3, 2, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, path(1, 2, 3, 2, 3, 2, 3, 4), out)
}

func TestReduce_WhileLoop_DirectMode(t *testing.T) {
	r, err := Build([]*cfg.CFG{whileLoopCFG(0)}, DirectSentinelK)
	require.NoError(t, err)
	require.Equal(t, ModeDirect, r.Mode())

	out, err := r.Reduce(0, path(1, 2, 3, 2, 3, 2, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, path(1, 2, 3, 4), out)
}

func TestReduce_Invalid(t *testing.T) {
	r, err := Build([]*cfg.CFG{diamondCFG(0)}, 2)
	require.NoError(t, err)

	_, err = r.Reduce(0, path(1, 9, 4))
	require.Error(t, err)
	var invalid *InvalidPath
	assert.ErrorAs(t, err, &invalid)
}

func TestReduce_UnknownEntryBlock(t *testing.T) {
	r, err := Build([]*cfg.CFG{diamondCFG(0)}, 2)
	require.NoError(t, err)

	_, err = r.Reduce(0, path(99))
	require.Error(t, err)
}

func TestReduce_Truncated(t *testing.T) {
	r, err := Build([]*cfg.CFG{diamondCFG(0)}, 2)
	require.NoError(t, err)

	out, err := r.Reduce(0, path(1, 2))
	require.NoError(t, err) // Truncated is silently accepted.
	assert.Equal(t, path(1, 2), out)
}

// Reducing an already-reduced path changes nothing.
func TestReduce_Idempotent(t *testing.T) {
	r, err := Build([]*cfg.CFG{whileLoopCFG(0)}, 1)
	require.NoError(t, err)

	in := path(1, 2, 3, 2, 3, 2, 3, 4)
	once, err := r.Reduce(0, in)
	require.NoError(t, err)
	twice, err := r.Reduce(0, once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

// Shape equivalence: same structural events, differing iteration counts
// both >= k, collapse to the same reduction.
func TestReduce_ShapeEquivalence(t *testing.T) {
	r, err := Build([]*cfg.CFG{whileLoopCFG(0)}, 1)
	require.NoError(t, err)

	p1, err := r.Reduce(0, path(1, 2, 3, 2, 3, 4))
	require.NoError(t, err)
	p2, err := r.Reduce(0, path(1, 2, 3, 2, 3, 2, 3, 2, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestBuild_DuplicateFirstBlock(t *testing.T) {
	a := diamondCFG(0)
	b := diamondCFG(1) // also entered at block 1: collides with a.

	_, err := Build([]*cfg.CFG{a, b}, 2)
	require.Error(t, err)
	var dup *DuplicateFirstBlock
	assert.ErrorAs(t, err, &dup)
}

func TestBuild_MalformedCFGPropagates(t *testing.T) {
	g := cfg.New(0, 1)
	g.AddNode(cfg.Node{Block: 1, Tag: cfg.Literal()})
	g.AddNode(cfg.Node{Block: 2, Tag: cfg.Literal()})
	// Block 2 unreachable from entry.
	g.SetExit(1)

	_, err := Build([]*cfg.CFG{g}, 2)
	require.Error(t, err)
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, ModeDirect, ModeFor(42))
	assert.Equal(t, ModeStructural, ModeFor(1))
	assert.Equal(t, ModeStructural, ModeFor(2))
}

// Inter-procedural reduction: caller CFG's call site is a Var node
// resolved through the callee's own compiled regex.
func TestReduce_InterProcedural(t *testing.T) {
	const (
		caller cfg.FunID = 0
		callee cfg.FunID = 1
	)

	c := cfg.New(caller, 1)
	c.AddNode(cfg.Node{Block: 1, Tag: cfg.Literal()})
	c.AddNode(cfg.Node{Block: 2, Tag: cfg.Var(callee)})
	c.AddNode(cfg.Node{Block: 5, Tag: cfg.Literal()})
	c.AddEdge(1, 2)
	c.AddEdge(2, 5)
	c.SetExit(5)

	d := cfg.New(callee, 2)
	d.AddNode(cfg.Node{Block: 2, Tag: cfg.Literal()})
	d.AddNode(cfg.Node{Block: 3, Tag: cfg.Literal()})
	d.AddEdge(2, 3)
	d.SetExit(3)

	r, err := Build([]*cfg.CFG{c, d}, 2)
	require.NoError(t, err)

	out, err := r.Reduce(caller, path(1, 2, 3, 5))
	require.NoError(t, err)
	assert.Equal(t, path(1, 2, 3, 5), out)
}
