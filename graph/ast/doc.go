// Package ast implements the regular-expression algebra over basic-block
// identifiers that the GNFA compiler (package gnfa) produces and the
// reducer (package reducer) parses against.
//
// A RegExp is an immutable tree of six constructors: Eps, Var (a reference
// into a name environment resolved at parse time), Lit (a literal
// BlockID), Concat, Alter, and Star. Parsing a concrete path against a
// RegExp produces a Val, a parse tree recording exactly one derivation.
//
// Two parse entry points are exported: Parse, an unbounded greedy parse
// used for language-membership tests, and ParseBounded, which folds every
// Star match down to at most k recorded iterations while still advancing
// the input cursor past the rest. This is the reduction step itself, not
// a separate post-pass over the parse tree.
package ast
