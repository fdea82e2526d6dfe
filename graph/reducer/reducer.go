package reducer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shivasurya/code-pathfinder/pathreduce/graph/ast"
	"github.com/shivasurya/code-pathfinder/pathreduce/graph/cfg"
	"github.com/shivasurya/code-pathfinder/pathreduce/graph/direct"
	"github.com/shivasurya/code-pathfinder/pathreduce/graph/gnfa"
)

// DirectSentinelK is the reserved k value that selects the direct stack
// reducer instead of the regex/parse-tree pipeline. Build translates it to
// ModeDirect once, via ModeFor, and Reduce dispatches on that stored Mode;
// Build itself takes only k. A snapshot carries its own mode field, which
// FromSnapshot uses as-is without re-deriving it from k.
const DirectSentinelK = 42

// Mode selects which of the two reduction algorithms a Reducer runs.
type Mode int

const (
	// ModeStructural runs the k-bounded regex parse (components A/B/D).
	ModeStructural Mode = iota
	// ModeDirect runs the streaming stack reducer (component E).
	ModeDirect
)

// ModeFor translates a raw k value into the mode it selects, preserving
// the k == 42 sentinel.
func ModeFor(k int) Mode {
	if k == DirectSentinelK {
		return ModeDirect
	}
	return ModeStructural
}

// DuplicateFirstBlock is a fatal construction error: two functions'
// regexes start with the same literal block, so the block-to-function
// lookup would be ambiguous.
type DuplicateFirstBlock struct {
	Block  cfg.BlockID
	First  cfg.FunID
	Second cfg.FunID
}

func (e *DuplicateFirstBlock) Error() string {
	return fmt.Sprintf("block %d starts both function %d and function %d", e.Block, e.First, e.Second)
}

// InvalidPath reports a path that does not conform to the regex of its
// apparent entry function.
type InvalidPath struct {
	Reason string
}

func (e *InvalidPath) Error() string {
	return fmt.Sprintf("path does not conform to its entry function's regex: %s", e.Reason)
}

// Reducer is the immutable result of compiling a set of function CFGs:
// built once, then queried from any number of goroutines.
type Reducer struct {
	k    int
	mode Mode

	regexOf         map[cfg.FunID]*ast.RegExp
	firstOf         map[cfg.FunID]cfg.BlockID
	funStartingWith map[cfg.BlockID]cfg.FunID
	lastsOf         map[cfg.FunID]map[cfg.BlockID]bool
	loopHeadsOf     map[cfg.FunID]map[cfg.BlockID]bool
}

// K returns the configured star-iteration bound (or the 42 sentinel).
func (r *Reducer) K() int { return r.k }

// Mode returns which algorithm Reduce dispatches to.
func (r *Reducer) Mode() Mode { return r.mode }

// RegexOf returns the compiled regex for fun.
func (r *Reducer) RegexOf(fun cfg.FunID) (*ast.RegExp, bool) {
	re, ok := r.regexOf[fun]
	return re, ok
}

// FirstOf returns fun's entry block.
func (r *Reducer) FirstOf(fun cfg.FunID) (cfg.BlockID, bool) {
	b, ok := r.firstOf[fun]
	return b, ok
}

// FunStartingWith returns the function whose first block is b, or
// (0, false) if no function starts with b.
func (r *Reducer) FunStartingWith(b cfg.BlockID) (cfg.FunID, bool) {
	fun, ok := r.funStartingWith[b]
	return fun, ok
}

// LastsOf returns the set of exit blocks of fun.
func (r *Reducer) LastsOf(fun cfg.FunID) map[cfg.BlockID]bool {
	return r.lastsOf[fun]
}

// LoopHeadsOf returns the set of loop-head blocks of fun.
func (r *Reducer) LoopHeadsOf(fun cfg.FunID) map[cfg.BlockID]bool {
	return r.loopHeadsOf[fun]
}

type compileResult struct {
	fun   cfg.FunID
	regex *ast.RegExp
	lasts map[cfg.BlockID]bool
	heads map[cfg.BlockID]bool
	err   error
}

// Build compiles every CFG in cfgs and freezes the resulting Reducer.
// Per-function GNFA compilation and analysis is independent, so it runs
// concurrently; the final maps are assembled only once every function's
// work has completed.
func Build(cfgs []*cfg.CFG, k int) (*Reducer, error) {
	results := make([]compileResult, len(cfgs))

	var wg sync.WaitGroup
	for i, g := range cfgs {
		wg.Add(1)
		go func(i int, g *cfg.CFG) {
			defer wg.Done()
			if err := g.Validate(); err != nil {
				results[i] = compileResult{fun: g.Fun, err: err}
				return
			}
			results[i] = compileResult{
				fun:   g.Fun,
				regex: gnfa.Compile(g),
				lasts: g.Lasts(),
				heads: g.LoopHeads(),
			}
		}(i, g)
	}
	wg.Wait()

	regexOf := make(map[cfg.FunID]*ast.RegExp, len(results))
	lastsOf := make(map[cfg.FunID]map[cfg.BlockID]bool, len(results))
	loopHeadsOf := make(map[cfg.FunID]map[cfg.BlockID]bool, len(results))
	for _, res := range results {
		if res.err != nil {
			return nil, res.err
		}
		regexOf[res.fun] = res.regex
		lastsOf[res.fun] = res.lasts
		loopHeadsOf[res.fun] = res.heads
	}

	funs := make([]cfg.FunID, 0, len(regexOf))
	for fun := range regexOf {
		funs = append(funs, fun)
	}
	sort.Slice(funs, func(i, j int) bool { return funs[i] < funs[j] })

	env := ast.Env(regexOf)
	firstOf := make(map[cfg.FunID]cfg.BlockID, len(funs))
	funStartingWith := make(map[cfg.BlockID]cfg.FunID, len(funs))
	for _, fun := range funs {
		first, ok := regexOf[fun].Leftmost(env)
		if !ok {
			return nil, fmt.Errorf("reducer: function %d has no literal first block", fun)
		}
		firstOf[fun] = first
		if existing, dup := funStartingWith[first]; dup {
			return nil, &DuplicateFirstBlock{Block: first, First: existing, Second: fun}
		}
		funStartingWith[first] = fun
	}

	return &Reducer{
		k:               k,
		mode:            ModeFor(k),
		regexOf:         regexOf,
		firstOf:         firstOf,
		funStartingWith: funStartingWith,
		lastsOf:         lastsOf,
		loopHeadsOf:     loopHeadsOf,
	}, nil
}

// Reduce reduces path, entered at entryFun, dispatching on r.Mode(). It is
// a pure function of r, entryFun and path (the structural mode ignores
// entryFun and looks the entry up from path[0]) and is safe to call concurrently from any
// number of goroutines against the same Reducer.
func (r *Reducer) Reduce(entryFun cfg.FunID, path []cfg.BlockID) ([]cfg.BlockID, error) {
	if r.mode == ModeDirect {
		return r.reduceDirect(entryFun, path), nil
	}
	return r.reduceStructural(path)
}

func (r *Reducer) reduceDirect(entryFun cfg.FunID, path []cfg.BlockID) []cfg.BlockID {
	tables := direct.Tables{
		FunStartingWith: r.funStartingWith,
		Lasts:           r.lastsOf,
		LoopHeads:       r.loopHeadsOf,
	}
	return direct.Reduce(tables, entryFun, path)
}

// reduceStructural looks up the entry function from path[0] rather than
// trusting the caller-supplied entryFun, and parses against a fresh
// Var(f) regex so the lookup and the parse share one code path.
func (r *Reducer) reduceStructural(path []cfg.BlockID) ([]cfg.BlockID, error) {
	if len(path) == 0 {
		return nil, nil
	}

	fun, ok := r.funStartingWith[path[0]]
	if !ok {
		return nil, &InvalidPath{Reason: fmt.Sprintf("block %d does not start any known function", path[0])}
	}

	root := ast.VarRef(fun)
	env := ast.Env(r.regexOf)
	res := ast.ParseBounded(root, env, r.k, path)

	switch res.Outcome {
	case ast.OutcomeInvalid:
		return nil, &InvalidPath{Reason: res.Reason}
	case ast.OutcomeAbort:
		// Path ended mid-parse: keep the already-reduced prefix.
		return res.Val.IntoSlice(), nil
	default:
		if len(res.Rest) > 0 {
			return nil, &InvalidPath{Reason: "trailing blocks after function exit"}
		}
		return res.Val.IntoSlice(), nil
	}
}
