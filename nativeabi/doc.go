// Package nativeabi implements the entry point a host process drives:
// build/reduce/free against an opaque reducer handle. Since this
// repository targets pure Go rather than a cgo export boundary, handles
// are UUID strings keyed into an in-process table rather than raw
// pointers; the contract (opaque handle, host must not dereference it)
// is unchanged.
package nativeabi
