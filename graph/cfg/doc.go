// Package cfg models a single function's control flow graph: basic blocks
// identified by BlockID, connected by successor edges, with a distinguished
// entry and exit. It also provides the two structural analyses the reducer
// builder needs from a CFG before it ever runs GNFA elimination:
// reachability/well-formedness validation and loop-head detection via
// Tarjan's strongly-connected-components algorithm.
//
// # Nodes
//
// Every node carries a Tag: a Literal block, a Var call site referencing
// another function by FunID, or an Extern opaque call. Only Var nodes are
// lifted to regex variables by the GNFA compiler (see package gnfa); Literal
// and Extern nodes both become ordinary literals in the regex.
//
// # Usage
//
//	g := cfg.New(funID, entry)
//	g.AddNode(cfg.Node{Block: entry, Tag: cfg.Literal()})
//	g.AddNode(cfg.Node{Block: 2, Tag: cfg.Literal()})
//	g.AddEdge(entry, 2)
//	g.SetExit(2)
//	if err := g.Validate(); err != nil { ... }
//	heads := g.LoopHeads()
package cfg
