// Package direct implements the streaming stack-based path reducer: a
// fast alternative to the regex/parse-tree pipeline in packages
// ast/gnfa/reducer, used when k == 42 selects the direct mode.
//
// Reduce walks a path once, maintaining a conceptual call stack of open
// function invocations and a per-call output buffer. Loop iterations
// collapse by truncating the buffer back to the last visit of a
// revisited loop head; recursive re-entry into a function already on the
// stack collapses by discarding that call's entire output.
package direct
