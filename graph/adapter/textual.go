package adapter

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shivasurya/code-pathfinder/pathreduce/graph/cfg"
)

// textualFunction is an intermediate, name-addressed representation built
// while scanning a Function block, before callee names are resolved to
// FunIDs in a second pass.
type textualFunction struct {
	name    string
	entry   cfg.BlockID
	hasNode map[cfg.BlockID]bool
	order   []cfg.BlockID
	calls   map[cfg.BlockID]string
	succs   map[cfg.BlockID][]cfg.BlockID
}

// ParseTextual parses the line-oriented CFG grammar used by test
// fixtures: `Function: NAME`, `BasicBlock: ID` optionally followed by
// `calls NAME`, and `Successors: ID1 ID2 …`, with blank lines separating
// functions.
func ParseTextual(r io.Reader) ([]*cfg.CFG, error) {
	funcs, order, err := scanTextual(r)
	if err != nil {
		return nil, err
	}

	funOf := make(map[string]cfg.FunID, len(order))
	for i, name := range order {
		funOf[name] = cfg.FunID(i)
	}

	out := make([]*cfg.CFG, len(order))
	for i, name := range order {
		tf := funcs[name]
		g := cfg.New(cfg.FunID(i), tf.entry)

		for _, b := range tf.order {
			tag := cfg.Literal()
			if callee, ok := tf.calls[b]; ok {
				fun, known := funOf[callee]
				if !known {
					return nil, fmt.Errorf("adapter: function %q calls unknown function %q", name, callee)
				}
				tag = cfg.Var(fun)
			}
			g.AddNode(cfg.Node{Block: b, Tag: tag})
		}
		for _, b := range tf.order {
			for _, s := range tf.succs[b] {
				g.AddEdge(b, s)
			}
		}

		g.SetExit(lastZeroOutDegree(tf))
		out[i] = g
	}
	return out, nil
}

func lastZeroOutDegree(tf *textualFunction) cfg.BlockID {
	for _, b := range tf.order {
		if len(tf.succs[b]) == 0 {
			return b
		}
	}
	if len(tf.order) > 0 {
		return tf.order[len(tf.order)-1]
	}
	return tf.entry
}

func scanTextual(r io.Reader) (map[string]*textualFunction, []string, error) {
	funcs := make(map[string]*textualFunction)
	var order []string
	var cur *textualFunction

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			cur = nil
			continue
		}

		switch {
		case strings.HasPrefix(line, "Function:"):
			name := strings.TrimSpace(strings.TrimPrefix(line, "Function:"))
			if name == "" {
				return nil, nil, fmt.Errorf("adapter: line %d: empty function name", lineNo)
			}
			cur = &textualFunction{
				name:    name,
				hasNode: map[cfg.BlockID]bool{},
				calls:   map[cfg.BlockID]string{},
				succs:   map[cfg.BlockID][]cfg.BlockID{},
			}
			funcs[name] = cur
			order = append(order, name)

		case strings.HasPrefix(line, "BasicBlock:"):
			if cur == nil {
				return nil, nil, fmt.Errorf("adapter: line %d: BasicBlock outside Function", lineNo)
			}
			rest := strings.TrimSpace(strings.TrimPrefix(line, "BasicBlock:"))
			fields := strings.Fields(rest)
			if len(fields) == 0 {
				return nil, nil, fmt.Errorf("adapter: line %d: missing block id", lineNo)
			}
			id, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, nil, fmt.Errorf("adapter: line %d: invalid block id %q: %w", lineNo, fields[0], err)
			}
			b := cfg.BlockID(id)
			if !cur.hasNode[b] {
				cur.hasNode[b] = true
				cur.order = append(cur.order, b)
				if len(cur.order) == 1 {
					cur.entry = b
				}
			}
			if len(fields) >= 3 && fields[1] == "calls" {
				cur.calls[b] = fields[2]
			}

		case strings.HasPrefix(line, "Successors:"):
			if cur == nil {
				return nil, nil, fmt.Errorf("adapter: line %d: Successors outside Function", lineNo)
			}
			rest := strings.TrimSpace(strings.TrimPrefix(line, "Successors:"))
			if rest == "" {
				break
			}
			if len(cur.order) == 0 {
				return nil, nil, fmt.Errorf("adapter: line %d: Successors before any BasicBlock", lineNo)
			}
			b := cur.order[len(cur.order)-1]
			for _, f := range strings.Fields(rest) {
				id, err := strconv.Atoi(f)
				if err != nil {
					return nil, nil, fmt.Errorf("adapter: line %d: invalid successor id %q: %w", lineNo, f, err)
				}
				cur.succs[b] = append(cur.succs[b], cfg.BlockID(id))
			}

		default:
			return nil, nil, fmt.Errorf("adapter: line %d: unrecognized line %q", lineNo, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("adapter: scanning textual CFG: %w", err)
	}

	return funcs, order, nil
}
