package adapter

import (
	"fmt"
	"io"

	"github.com/shivasurya/code-pathfinder/pathreduce/graph/cfg"
	"gopkg.in/yaml.v3"
)

// yamlNode is a decoded YAML tree reduced to what the fixture grammar
// needs: a top-level "functions" sequence, each a mapping of name/blocks,
// each block a mapping of id/calls/successors.
type yamlNode struct {
	Value      interface{}
	Children   map[string]*yamlNode
	Items      []*yamlNode
	Type       string // "scalar", "mapping", "sequence"
	LineNumber int
}

// ParseYAML parses the YAML-flavored textual CFG format: an alternative
// reader for the same fixture-style CFGs the line-oriented grammar
// targets, used by tests that prefer structured fixtures.
//
// Shape:
//
//	functions:
//	  - name: f
//	    blocks:
//	      - id: 1
//	        successors: [2, 3]
//	      - id: 2
//	        calls: g
//	        successors: [4]
func ParseYAML(r io.Reader) ([]*cfg.CFG, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("adapter: reading YAML CFG: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("adapter: parsing YAML CFG: %w", err)
	}

	var root *yaml.Node
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root = doc.Content[0]
	} else {
		root = &doc
	}

	tree := convertYAMLNode(root)
	functionsNode := tree.Children["functions"]
	if functionsNode == nil || functionsNode.Type != "sequence" {
		return nil, fmt.Errorf("adapter: YAML CFG missing top-level 'functions' sequence")
	}

	order := make([]string, 0, len(functionsNode.Items))
	byName := make(map[string]*yamlNode, len(functionsNode.Items))
	for _, fn := range functionsNode.Items {
		name := fn.Children["name"].StringValue()
		if name == "" {
			return nil, fmt.Errorf("adapter: YAML CFG function missing 'name' (line %d)", fn.LineNumber)
		}
		order = append(order, name)
		byName[name] = fn
	}

	funOf := make(map[string]cfg.FunID, len(order))
	for i, name := range order {
		funOf[name] = cfg.FunID(i)
	}

	out := make([]*cfg.CFG, len(order))
	for i, name := range order {
		fn := byName[name]
		blocksNode := fn.Children["blocks"]
		if blocksNode == nil || blocksNode.Type != "sequence" || len(blocksNode.Items) == 0 {
			return nil, fmt.Errorf("adapter: function %q has no blocks", name)
		}

		entry := cfg.BlockID(int(intValue(blocksNode.Items[0].Children["id"])))
		g := cfg.New(cfg.FunID(i), entry)

		type pending struct {
			block cfg.BlockID
			succs []cfg.BlockID
		}
		var edges []pending

		for _, b := range blocksNode.Items {
			id := cfg.BlockID(int(intValue(b.Children["id"])))
			tag := cfg.Literal()
			if callsNode, ok := b.Children["calls"]; ok {
				callee := callsNode.StringValue()
				fun, known := funOf[callee]
				if !known {
					return nil, fmt.Errorf("adapter: function %q calls unknown function %q", name, callee)
				}
				tag = cfg.Var(fun)
			}
			g.AddNode(cfg.Node{Block: id, Tag: tag})

			var succs []cfg.BlockID
			if sn, ok := b.Children["successors"]; ok && sn.Type == "sequence" {
				for _, s := range sn.Items {
					succs = append(succs, cfg.BlockID(int(intValue(s))))
				}
			}
			edges = append(edges, pending{block: id, succs: succs})
		}

		var exit cfg.BlockID = entry
		for _, e := range edges {
			for _, s := range e.succs {
				g.AddEdge(e.block, s)
			}
			if len(e.succs) == 0 {
				exit = e.block
			}
		}
		g.SetExit(exit)
		out[i] = g
	}

	return out, nil
}

func intValue(n *yamlNode) int64 {
	if n == nil {
		return 0
	}
	switch v := n.Value.(type) {
	case int:
		return int64(v)
	case int64:
		return v
	default:
		return 0
	}
}

func convertYAMLNode(node *yaml.Node) *yamlNode {
	if node == nil {
		return &yamlNode{Type: "scalar"}
	}

	result := &yamlNode{LineNumber: node.Line}

	switch node.Kind {
	case yaml.MappingNode:
		result.Type = "mapping"
		result.Children = make(map[string]*yamlNode)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			result.Children[key] = convertYAMLNode(node.Content[i+1])
		}

	case yaml.SequenceNode:
		result.Type = "sequence"
		for _, item := range node.Content {
			result.Items = append(result.Items, convertYAMLNode(item))
		}

	case yaml.ScalarNode:
		result.Type = "scalar"
		var decoded interface{}
		if err := node.Decode(&decoded); err == nil {
			result.Value = decoded
		} else {
			result.Value = node.Value
		}

	case yaml.AliasNode:
		return convertYAMLNode(node.Alias)

	default:
		result.Type = "scalar"
	}

	return result
}

func (n *yamlNode) StringValue() string {
	if n == nil || n.Value == nil {
		return ""
	}
	return fmt.Sprint(n.Value)
}
