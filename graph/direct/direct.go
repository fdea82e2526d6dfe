package direct

import "github.com/shivasurya/code-pathfinder/pathreduce/graph/cfg"

// Tables holds the three per-function maps the direct reducer needs: the
// same data the structural reducer's builder computes, but consulted
// directly instead of through a compiled regex.
type Tables struct {
	FunStartingWith map[cfg.BlockID]cfg.FunID
	Lasts           map[cfg.FunID]map[cfg.BlockID]bool
	LoopHeads       map[cfg.FunID]map[cfg.BlockID]bool
}

// Reduce collapses path, entered at entryFun: every revisit of a loop
// head truncates the current call's buffer back to that head's last
// occurrence, and every recursive re-entry into a function already on
// the stack runs with output discarded. It tolerates
// arbitrary input: a block that is neither a call entry, an exit, nor a
// loop head is emitted as-is, and it never reports an error.
func Reduce(t Tables, entryFun cfg.FunID, path []cfg.BlockID) []cfg.BlockID {
	if len(path) == 0 {
		return nil
	}

	idx := 0
	onStack := map[cfg.FunID]int{}

	var call func(fun cfg.FunID, skip bool) []cfg.BlockID
	call = func(fun cfg.FunID, skip bool) []cfg.BlockID {
		if idx >= len(path) {
			return nil
		}

		f := path[idx]
		idx++
		onStack[fun]++
		defer func() { onStack[fun]-- }()

		var buf []cfg.BlockID
		if !skip {
			buf = append(buf, f)
		}

		lasts := t.Lasts[fun]
		heads := t.LoopHeads[fun]

		if lasts[f] {
			return buf
		}

		for idx < len(path) {
			b := path[idx]

			if calleeFun, isCall := t.FunStartingWith[b]; isCall {
				childSkip := skip || onStack[calleeFun] > 0
				sub := call(calleeFun, childSkip)
				if !childSkip {
					buf = append(buf, sub...)
				}
				continue
			}

			if lasts[b] {
				idx++
				if !skip {
					buf = append(buf, b)
				}
				return buf
			}

			if !heads[b] {
				idx++
				if !skip {
					buf = append(buf, b)
				}
				continue
			}

			// b is a loop head: drop the earlier visit and everything
			// emitted since, then record this fresh visit.
			if pos := lastIndexOf(buf, b); pos >= 0 {
				buf = buf[:pos]
			}
			idx++
			if !skip {
				buf = append(buf, b)
			}
		}

		return buf
	}

	return call(entryFun, false)
}

func lastIndexOf(buf []cfg.BlockID, b cfg.BlockID) int {
	for i := len(buf) - 1; i >= 0; i-- {
		if buf[i] == b {
			return i
		}
	}
	return -1
}
