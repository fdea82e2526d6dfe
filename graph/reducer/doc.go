// Package reducer owns the Reducer value: the immutable,
// build-once/query-many result of compiling a set of function CFGs. It
// implements both the builder and the k-bounded structural-parse
// reduction driver; the streaming alternative lives in package direct
// and is dispatched to from here when the reducer's mode selects it.
package reducer
