// Package gnfa compiles a single function's CFG into a RegExp over block
// IDs and call markers, using the Generalized-NFA state-elimination
// construction.
//
// The compiler copies the CFG into a small automaton with a fresh start
// state and the original exit block as the sole accepting state, labels
// every edge with the regex matching its destination, then repeatedly
// "rips" an internal state, folding its self-loop and through-edges into
// its neighbors, until only the start and accepting states remain. The
// regex labelling the one edge left between them is the function's
// regex.
package gnfa
