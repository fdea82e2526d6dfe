package adapter

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/shivasurya/code-pathfinder/pathreduce/graph/cfg"
)

// functionNameSize is the fixed width of a CFG entry's NUL-padded
// function name on the wire.
const functionNameSize = 256

// DecodeDescriptor reads the fixed binary top-level descriptor layout a
// host process marshals and reconstructs one *cfg.CFG per function. The
// wire encoding is little-endian throughout: cfg_size, then cfg_size CFG
// entries (name, entry block, exit block), then block_size, then
// block_size block entries (each followed inline by its successor_size
// BlockIDs, rather than a separate pointer, since this reader has no
// shared address space with the writer). A function's FunID is its index
// in the CFG array; a block's BlockID is its index in the block array.
func DecodeDescriptor(r io.Reader) ([]*cfg.CFG, error) {
	var cfgCount int32
	if err := binary.Read(r, binary.LittleEndian, &cfgCount); err != nil {
		return nil, fmt.Errorf("adapter: reading cfg_size: %w", err)
	}
	if cfgCount < 0 {
		return nil, fmt.Errorf("adapter: negative cfg_size %d", cfgCount)
	}

	names := make([]string, cfgCount)
	entries := make([]cfg.BlockID, cfgCount)
	exits := make([]cfg.BlockID, cfgCount)

	for i := int32(0); i < cfgCount; i++ {
		var raw [functionNameSize]byte
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			return nil, fmt.Errorf("adapter: reading function_name[%d]: %w", i, err)
		}
		names[i] = nulTerminated(raw[:])

		var entry, exit int32
		if err := binary.Read(r, binary.LittleEndian, &entry); err != nil {
			return nil, fmt.Errorf("adapter: reading entry[%d]: %w", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &exit); err != nil {
			return nil, fmt.Errorf("adapter: reading exit[%d]: %w", i, err)
		}
		entries[i] = cfg.BlockID(entry)
		exits[i] = cfg.BlockID(exit)
	}

	var blockCount int32
	if err := binary.Read(r, binary.LittleEndian, &blockCount); err != nil {
		return nil, fmt.Errorf("adapter: reading block_size: %w", err)
	}
	if blockCount < 0 {
		return nil, fmt.Errorf("adapter: negative block_size %d", blockCount)
	}

	calls := make([]cfg.FunID, blockCount)
	successors := make([][]cfg.BlockID, blockCount)

	for i := int32(0); i < blockCount; i++ {
		var call int32
		if err := binary.Read(r, binary.LittleEndian, &call); err != nil {
			return nil, fmt.Errorf("adapter: reading calls[%d]: %w", i, err)
		}
		calls[i] = cfg.FunID(call)

		var succCount int32
		if err := binary.Read(r, binary.LittleEndian, &succCount); err != nil {
			return nil, fmt.Errorf("adapter: reading successor_size[%d]: %w", i, err)
		}
		if succCount < 0 {
			return nil, fmt.Errorf("adapter: negative successor_size at block %d", i)
		}
		succs := make([]cfg.BlockID, succCount)
		for j := int32(0); j < succCount; j++ {
			var s int32
			if err := binary.Read(r, binary.LittleEndian, &s); err != nil {
				return nil, fmt.Errorf("adapter: reading successors_arr[%d][%d]: %w", i, j, err)
			}
			succs[j] = cfg.BlockID(s)
		}
		successors[i] = succs
	}

	out := make([]*cfg.CFG, cfgCount)
	for fun := int32(0); fun < cfgCount; fun++ {
		g := cfg.New(cfg.FunID(fun), entries[fun])
		if err := materializeFunction(g, int(blockCount), calls, successors); err != nil {
			return nil, fmt.Errorf("adapter: function %q (%d): %w", names[fun], fun, err)
		}
		g.SetExit(exits[fun])
		out[fun] = g
	}
	return out, nil
}

// materializeFunction walks the shared block array by DFS from g.Entry,
// adding only the blocks reachable from it.
func materializeFunction(g *cfg.CFG, blockCount int, calls []cfg.FunID, successors [][]cfg.BlockID) error {
	seen := map[cfg.BlockID]bool{}
	stack := []cfg.BlockID{g.Entry}
	seen[g.Entry] = true

	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		idx := int(b)
		if idx < 0 || idx >= blockCount {
			return fmt.Errorf("block %d out of range [0,%d)", b, blockCount)
		}

		tag := cfg.Literal()
		if calls[idx] != cfg.NoFun {
			tag = cfg.Var(calls[idx])
		}
		g.AddNode(cfg.Node{Block: b, Tag: tag})

		for _, s := range successors[idx] {
			if !seen[s] {
				seen[s] = true
				stack = append(stack, s)
			}
		}
	}

	for b := range seen {
		for _, s := range successors[int(b)] {
			g.AddEdge(b, s)
		}
	}
	return nil
}

func nulTerminated(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
