package gnfa

import (
	"testing"

	"github.com/shivasurya/code-pathfinder/pathreduce/graph/ast"
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

func diamond() *cfg.CFG {
	g := cfg.New(0, 1)
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

func whileLoop() *cfg.CFG {
	g := cfg.New(0, 1)
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

func accepts(t *testing.T, r *ast.RegExp, input []cfg.BlockID) bool {
	t.Helper()
	val, rest, ok := ast.Parse(r, nil, input)
	return ok && len(rest) == 0 && len(val.IntoSlice()) == len(input)
}

func TestCompile_Diamond(t *testing.T) {
	g := diamond()
	require.NoError(t, g.Validate())
	r := Compile(g)

	assert.True(t, accepts(t, r, path(1, 2, 4)))
	assert.True(t, accepts(t, r, path(1, 3, 4)))
}

func TestCompile_WhileLoop(t *testing.T) {
	g := whileLoop()
	require.NoError(t, g.Validate())
	r := Compile(g)

	assert.True(t, accepts(t, r, path(1, 2, 3, 4)))
	assert.True(t, accepts(t, r, path(1, 2, 3, 2, 3, 4)))
	assert.True(t, accepts(t, r, path(1, 2, 3, 2, 3, 2, 3, 4)))
}

func TestCompile_SingleBlockFunction(t *testing.T) {
	g := cfg.New(0, 1)
	g.AddNode(cfg.Node{Block: 1, Tag: cfg.Literal()})
	g.SetExit(1)
	r := Compile(g)

	assert.True(t, accepts(t, r, path(1)))
}

func TestCompile_CallSiteLiftedToVar(t *testing.T) {
	g := cfg.New(0, 1)
	g.AddNode(cfg.Node{Block: 1, Tag: cfg.Literal()})
	g.AddNode(cfg.Node{Block: 2, Tag: cfg.Var(cfg.FunID(9))})
	g.AddNode(cfg.Node{Block: 3, Tag: cfg.Literal()})
	g.AddEdge(1, 2)
	g.AddEdge(2, 3)
	g.SetExit(3)

	r := Compile(g)
	env := ast.Env{9: ast.Concat(ast.Lit(2), ast.Lit(20))}
	val, rest, ok := ast.Parse(r, env, path(1, 2, 20, 3))
	require.True(t, ok)
	assert.Empty(t, rest)
	assert.Equal(t, path(1, 2, 20, 3), val.IntoSlice())
}

func TestCompile_ExternLiftedToLit(t *testing.T) {
	g := cfg.New(0, 1)
	g.AddNode(cfg.Node{Block: 1, Tag: cfg.Literal()})
	g.AddNode(cfg.Node{Block: 2, Tag: cfg.Extern()})
	g.AddEdge(1, 2)
	g.SetExit(2)

	r := Compile(g)
	assert.True(t, accepts(t, r, path(1, 2)))
}
