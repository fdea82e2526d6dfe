package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shivasurya/code-pathfinder/pathreduce/graph/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const diamondTextual = `Function: f
BasicBlock: 1
Successors: 2 3
BasicBlock: 2
Successors: 4
BasicBlock: 3
Successors: 4
BasicBlock: 4
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadCFGs_Text(t *testing.T) {
	p := writeTemp(t, "f.cfg", diamondTextual)
	cfgs, err := loadCFGs(p, "text")
	require.NoError(t, err)
	require.Len(t, cfgs, 1)
	assert.Equal(t, cfg.BlockID(1), cfgs[0].Entry)
}

func TestLoadCFGs_DefaultFormatIsText(t *testing.T) {
	p := writeTemp(t, "f.cfg", diamondTextual)
	cfgs, err := loadCFGs(p, "")
	require.NoError(t, err)
	require.Len(t, cfgs, 1)
}

func TestLoadCFGs_UnknownFormat(t *testing.T) {
	p := writeTemp(t, "f.cfg", diamondTextual)
	_, err := loadCFGs(p, "xml")
	require.Error(t, err)
}

func TestLoadCFGs_MissingFile(t *testing.T) {
	_, err := loadCFGs("/no/such/file.cfg", "text")
	require.Error(t, err)
}

func TestWriteCFGDiagnostics(t *testing.T) {
	g := cfg.New(0, 1)
	g.AddNode(cfg.Node{Block: 1, Tag: cfg.Literal()})
	g.AddNode(cfg.Node{Block: 2, Tag: cfg.Literal()})
	g.AddNode(cfg.Node{Block: 3, Tag: cfg.Literal()})
	g.AddEdge(1, 2)
	g.AddEdge(1, 3)
	g.SetExit(2) // block 3 is also a zero-out-degree block: multi-exit

	dir := t.TempDir()
	reportFile := filepath.Join(dir, "report.sarif")
	require.NoError(t, writeCFGDiagnostics([]*cfg.CFG{g}, reportFile))

	content, err := os.ReadFile(reportFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "CFG002")
}
