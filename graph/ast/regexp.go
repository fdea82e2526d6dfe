package ast

import (
	"fmt"

	"github.com/shivasurya/code-pathfinder/pathreduce/graph/cfg"
)

// Kind discriminates the six RegExp constructors.
type Kind int

const (
	KindEps Kind = iota
	KindVar
	KindLit
	KindConcat
	KindAlter
	KindStar
)

// RegExp is an immutable tree over {ε, literal, variable-reference,
// concatenation, alternation, Kleene-star}. Recursive occurrences are
// boxed as pointers so GNFA-produced trees can nest arbitrarily deep
// without requiring unbounded native stack frames to build.
type RegExp struct {
	Kind  Kind
	Lit   cfg.BlockID // valid when Kind == KindLit
	Var   cfg.FunID   // valid when Kind == KindVar
	Left  *RegExp     // Concat/Alter left operand, or Star body
	Right *RegExp     // Concat/Alter right operand
}

// Eps is the empty-string regex.
func Eps() *RegExp { return &RegExp{Kind: KindEps} }

// Lit builds a literal regex matching exactly the block b.
func Lit(b cfg.BlockID) *RegExp { return &RegExp{Kind: KindLit, Lit: b} }

// VarRef builds a regex that defers to the name environment entry for fn.
func VarRef(fn cfg.FunID) *RegExp { return &RegExp{Kind: KindVar, Var: fn} }

// Concat builds the concatenation of a then b.
func Concat(a, b *RegExp) *RegExp { return &RegExp{Kind: KindConcat, Left: a, Right: b} }

// Alter builds the alternation of a or b, trying a first.
func Alter(a, b *RegExp) *RegExp { return &RegExp{Kind: KindAlter, Left: a, Right: b} }

// Star builds zero-or-more repetitions of r.
func Star(r *RegExp) *RegExp { return &RegExp{Kind: KindStar, Left: r} }

// Env resolves a FunID to the RegExp of that function's body, used to
// parse Var nodes produced by inter-procedural call sites.
type Env map[cfg.FunID]*RegExp

// Leftmost returns the leftmost literal BlockID this regex can start
// matching with: leftmost of Concat is leftmost of its left child (or of
// its right child when the left has none); leftmost of Alter is the
// literal both sides share, which is the case for the regexes GNFA
// produces from a CFG with a unique entry. When the two sides of an Alter
// disagree, the left side's literal is returned; disagreement is not
// reported. Returns false if no literal start exists (e.g. Eps, or a Var
// with no entry in env).
func (r *RegExp) Leftmost(env Env) (cfg.BlockID, bool) {
	switch r.Kind {
	case KindLit:
		return r.Lit, true
	case KindConcat:
		if b, ok := r.Left.Leftmost(env); ok {
			return b, true
		}
		return r.Right.Leftmost(env)
	case KindAlter:
		lb, lok := r.Left.Leftmost(env)
		rb, rok := r.Right.Leftmost(env)
		if lok && rok && lb == rb {
			return lb, true
		}
		if lok {
			return lb, true
		}
		return rb, rok
	case KindStar:
		return r.Left.Leftmost(env)
	case KindVar:
		if sub, ok := env[r.Var]; ok {
			return sub.Leftmost(env)
		}
		return 0, false
	default: // KindEps
		return 0, false
	}
}

// ValKind discriminates the three Val constructors.
type ValKind int

const (
	ValLit ValKind = iota
	ValConcat
	ValStar
)

// Val is a parse tree: exactly one derivation of a literal sequence from a
// RegExp. A Star-node lists its iteration witnesses in order; once a parse
// has bounded a Star to k witnesses (see ParseBounded), Iterations holds at
// most k entries even though the underlying input may have contained more.
type Val struct {
	Kind       ValKind
	Lit        cfg.BlockID
	Left       *Val // Concat left
	Right      *Val // Concat right
	Iterations []*Val
}

func valLit(b cfg.BlockID) *Val           { return &Val{Kind: ValLit, Lit: b} }
func valConcat(a, b *Val) *Val            { return &Val{Kind: ValConcat, Left: a, Right: b} }
func valStar(its []*Val) *Val             { return &Val{Kind: ValStar, Iterations: its} }
func emptyVal() *Val                      { return valStar(nil) }

// IntoSlice flattens a Val left-to-right, unfolding every star witness it
// contains. Because Star witnesses are already bounded by ParseBounded,
// the resulting sequence is the reduced path.
func (v *Val) IntoSlice() []cfg.BlockID {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case ValLit:
		return []cfg.BlockID{v.Lit}
	case ValConcat:
		out := v.Left.IntoSlice()
		return append(out, v.Right.IntoSlice()...)
	case ValStar:
		var out []cfg.BlockID
		for _, it := range v.Iterations {
			out = append(out, it.IntoSlice()...)
		}
		return out
	default:
		return nil
	}
}

// Parse is the unbounded parse mode: greedy, left-committing, no
// backtracking. It returns the parsed Val and the unconsumed remainder on
// success, or ok=false on failure to match any prefix.
func Parse(r *RegExp, env Env, input []cfg.BlockID) (val *Val, rest []cfg.BlockID, ok bool) {
	switch r.Kind {
	case KindEps:
		return emptyVal(), input, true

	case KindLit:
		if len(input) == 0 || input[0] != r.Lit {
			return nil, input, false
		}
		return valLit(r.Lit), input[1:], true

	case KindVar:
		sub, present := env[r.Var]
		if !present {
			return nil, input, false
		}
		return Parse(sub, env, input)

	case KindConcat:
		v1, rest1, ok1 := Parse(r.Left, env, input)
		if !ok1 {
			return nil, input, false
		}
		v2, rest2, ok2 := Parse(r.Right, env, rest1)
		if !ok2 {
			return nil, input, false
		}
		return valConcat(v1, v2), rest2, true

	case KindAlter:
		if v, rest, ok := Parse(r.Left, env, input); ok {
			return v, rest, true
		}
		return Parse(r.Right, env, input)

	case KindStar:
		var its []*Val
		rest := input
		for {
			v, next, ok := Parse(r.Left, env, rest)
			if !ok || len(next) == len(rest) {
				break
			}
			its = append(its, v)
			rest = next
		}
		return valStar(its), rest, true

	default:
		panic(fmt.Sprintf("ast: unknown RegExp kind %d", r.Kind))
	}
}

// Outcome discriminates the three results of a k-bounded parse.
type Outcome int

const (
	OutcomeOk Outcome = iota
	OutcomeAbort
	OutcomeInvalid
)

// Result is the outcome of ParseBounded.
type Result struct {
	Outcome Outcome
	Val     *Val          // set for Ok and Abort
	Rest    []cfg.BlockID // set for Ok
	Reason  string        // set for Invalid
}

// ParseBounded is the k-bounded parse mode: the actual reduction step.
// It has the same recursive shape as Parse but returns a three-valued
// outcome so truncated or malformed traces can be handled gracefully
// instead of aborting the whole parse. Star nodes keep consuming matches
// indefinitely, advancing the input cursor, but stop recording iteration
// witnesses past the k-th.
func ParseBounded(r *RegExp, env Env, k int, input []cfg.BlockID) Result {
	switch r.Kind {
	case KindEps:
		return Result{Outcome: OutcomeOk, Val: emptyVal(), Rest: input}

	case KindLit:
		if len(input) == 0 {
			return Result{Outcome: OutcomeAbort, Val: emptyVal()}
		}
		if input[0] != r.Lit {
			return Result{Outcome: OutcomeInvalid, Reason: fmt.Sprintf("expected block %d, found %d", r.Lit, input[0])}
		}
		return Result{Outcome: OutcomeOk, Val: valLit(r.Lit), Rest: input[1:]}

	case KindVar:
		sub, present := env[r.Var]
		if !present {
			return Result{Outcome: OutcomeInvalid, Reason: fmt.Sprintf("no regex registered for function %d", r.Var)}
		}
		return ParseBounded(sub, env, k, input)

	case KindConcat:
		res1 := ParseBounded(r.Left, env, k, input)
		switch res1.Outcome {
		case OutcomeInvalid:
			return res1
		case OutcomeAbort:
			return res1
		}
		res2 := ParseBounded(r.Right, env, k, res1.Rest)
		switch res2.Outcome {
		case OutcomeInvalid:
			return res2
		case OutcomeAbort:
			return Result{Outcome: OutcomeAbort, Val: valConcat(res1.Val, res2.Val)}
		default:
			return Result{Outcome: OutcomeOk, Val: valConcat(res1.Val, res2.Val), Rest: res2.Rest}
		}

	case KindAlter:
		res1 := ParseBounded(r.Left, env, k, input)
		if res1.Outcome != OutcomeInvalid {
			return res1
		}
		res2 := ParseBounded(r.Right, env, k, input)
		return res2

	case KindStar:
		var acc []*Val
		rest := input
		count := 0
		for {
			res := ParseBounded(r.Left, env, k, rest)
			switch res.Outcome {
			case OutcomeInvalid:
				return Result{Outcome: OutcomeOk, Val: valStar(acc), Rest: rest}
			case OutcomeAbort:
				return Result{Outcome: OutcomeAbort, Val: valStar(acc)}
			default: // Ok
				if len(res.Rest) == len(rest) {
					// No progress: treat as end of iteration to avoid looping forever.
					return Result{Outcome: OutcomeOk, Val: valStar(acc), Rest: rest}
				}
				count++
				if count <= k {
					acc = append(acc, res.Val)
				}
				rest = res.Rest
			}
		}

	default:
		panic(fmt.Sprintf("ast: unknown RegExp kind %d", r.Kind))
	}
}
