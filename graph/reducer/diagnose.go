package reducer

import (
	"fmt"
	"sort"

	"github.com/shivasurya/code-pathfinder/pathreduce/graph/ast"
	"github.com/shivasurya/code-pathfinder/pathreduce/graph/cfg"
	"github.com/shivasurya/code-pathfinder/pathreduce/graph/gnfa"
)

// DiagnosticKind classifies a Diagnose finding.
type DiagnosticKind int

const (
	// DiagMalformed covers Validate failures: unreachable blocks, a
	// missing entry/exit, or an empty function.
	DiagMalformed DiagnosticKind = iota
	// DiagMultiExit flags a function with more than one zero-out-degree
	// block. Build admits this rather than rejecting it, but it is
	// still worth surfacing as a diagnostic before committing to a build.
	DiagMultiExit
	// DiagDuplicateFirst flags two functions whose compiled regex shares
	// a leftmost literal, the condition Build rejects fatally as
	// DuplicateFirstBlock.
	DiagDuplicateFirst
)

// Diagnostic is one non-fatal or would-be-fatal finding surfaced by
// Diagnose, independent of whether Build would ultimately succeed.
type Diagnostic struct {
	Fun     cfg.FunID
	Kind    DiagnosticKind
	Message string
}

// Diagnose runs the same structural checks Build performs, but collects
// every finding across every function instead of aborting on the first
// one. It is meant for reporting (e.g. `build --report sarif`), not for
// constructing a usable Reducer; a function that fails Validate is
// skipped for the duplicate-first-block check since GNFA cannot safely
// run over it.
func Diagnose(cfgs []*cfg.CFG) []Diagnostic {
	var diags []Diagnostic

	regexOf := make(map[cfg.FunID]*ast.RegExp)
	for _, g := range cfgs {
		if err := g.Validate(); err != nil {
			diags = append(diags, Diagnostic{Fun: g.Fun, Kind: DiagMalformed, Message: err.Error()})
			continue
		}
		if lasts := g.Lasts(); len(lasts) > 1 {
			diags = append(diags, Diagnostic{
				Fun:     g.Fun,
				Kind:    DiagMultiExit,
				Message: fmt.Sprintf("function %d has %d exit blocks, expected exactly one", g.Fun, len(lasts)),
			})
		}
		regexOf[g.Fun] = gnfa.Compile(g)
	}

	funs := make([]cfg.FunID, 0, len(regexOf))
	for fun := range regexOf {
		funs = append(funs, fun)
	}
	sort.Slice(funs, func(i, j int) bool { return funs[i] < funs[j] })

	env := ast.Env(regexOf)
	seen := make(map[cfg.BlockID]cfg.FunID, len(funs))
	for _, fun := range funs {
		first, ok := regexOf[fun].Leftmost(env)
		if !ok {
			continue
		}
		if other, dup := seen[first]; dup {
			diags = append(diags, Diagnostic{
				Fun:     fun,
				Kind:    DiagDuplicateFirst,
				Message: fmt.Sprintf("block %d starts both function %d and function %d", first, other, fun),
			})
			continue
		}
		seen[first] = fun
	}

	return diags
}
