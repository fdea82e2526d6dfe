package gnfa

import (
	"sort"

	"github.com/shivasurya/code-pathfinder/pathreduce/graph/ast"
	"github.com/shivasurya/code-pathfinder/pathreduce/graph/cfg"
)

// stateKind discriminates the two sentinel GNFA states from ordinary
// block states.
type stateKind int8

const (
	kindBlock stateKind = iota
	kindStart
)

// state is one node of the elimination automaton: either a copy of a CFG
// block or the single fresh start state GNFA construction adds.
type state struct {
	kind  stateKind
	block cfg.BlockID
}

func blockState(b cfg.BlockID) state { return state{kind: kindBlock, block: b} }

var startState = state{kind: kindStart}

// Compile converts g into a RegExp over g's block IDs (and FunID
// variables for call sites), whose language is the set of g's
// entry-to-exit paths. g must already satisfy cfg.Validate.
func Compile(g *cfg.CFG) *ast.RegExp {
	accept := blockState(g.Exit)

	edges := map[state]map[state]*ast.RegExp{}
	addEdge := func(from, to state, label *ast.RegExp) {
		inner, ok := edges[from]
		if !ok {
			inner = map[state]*ast.RegExp{}
			edges[from] = inner
		}
		if cur, ok := inner[to]; ok {
			inner[to] = ast.Alter(cur, label)
		} else {
			inner[to] = label
		}
	}

	labelFor := func(b cfg.BlockID) *ast.RegExp {
		n, ok := g.Node(b)
		if ok && n.Tag.Kind == cfg.TagVar {
			return ast.VarRef(n.Tag.Fun)
		}
		return ast.Lit(b)
	}

	// Copy every original edge u -> v, labelled with the regex matching
	// v's tag. Labelling by destination (plus the start arrow below) makes
	// the accepted language the sequence of visited blocks including the
	// entry.
	var internal []state
	for _, b := range g.Blocks() {
		n, _ := g.Node(b)
		s := blockState(b)
		if s != accept {
			internal = append(internal, s)
		}
		for _, succ := range n.Successors {
			addEdge(s, blockState(succ), labelFor(succ))
		}
	}

	// Fresh start arrow into entry.
	addEdge(startState, blockState(g.Entry), labelFor(g.Entry))

	// Deterministic rip order: lowest BlockID first. The resulting regex
	// tree (but not its language) depends on this choice.
	sort.Slice(internal, func(i, j int) bool { return internal[i].block < internal[j].block })

	for _, s := range internal {
		ripState(edges, s)
	}

	if final, ok := edges[startState][accept]; ok {
		return final
	}
	return ast.Eps()
}

// ripState eliminates s from the automaton, folding every (predecessor,
// s, successor) triple into a direct predecessor -> successor edge that
// accounts for s's self-loop, then removes s entirely.
func ripState(edges map[state]map[state]*ast.RegExp, s state) {
	self, hasSelf := edges[s][s]

	var preds []state
	for from, inner := range edges {
		if from == s {
			continue
		}
		if _, ok := inner[s]; ok {
			preds = append(preds, from)
		}
	}
	sortStates(preds)

	var succs []state
	for to := range edges[s] {
		if to != s {
			succs = append(succs, to)
		}
	}
	sortStates(succs)

	for _, u := range preds {
		alpha := edges[u][s]
		for _, w := range succs {
			gamma := edges[s][w]
			var newLabel *ast.RegExp
			if hasSelf {
				newLabel = ast.Concat(alpha, ast.Concat(ast.Star(self), gamma))
			} else {
				newLabel = ast.Concat(alpha, gamma)
			}
			if cur, ok := edges[u][w]; ok {
				edges[u][w] = ast.Alter(cur, newLabel)
			} else {
				if edges[u] == nil {
					edges[u] = map[state]*ast.RegExp{}
				}
				edges[u][w] = newLabel
			}
		}
	}

	for _, u := range preds {
		delete(edges[u], s)
	}
	delete(edges, s)
}

// sortStates orders states start-first, then by block ID, so Alter
// insertion order (and with it the produced regex tree) is the same on
// every run.
func sortStates(ss []state) {
	sort.Slice(ss, func(i, j int) bool {
		if ss[i].kind != ss[j].kind {
			return ss[i].kind == kindStart
		}
		return ss[i].block < ss[j].block
	})
}
