package source

import (
	"bytes"
	"context"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c_sharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
)

// Compile-time assertion: *TreeSitterParser satisfies Parser.
var _ Parser = (*TreeSitterParser)(nil)

// TreeSitterParser implements Parser using the tree-sitter C# grammar.
// A new tree-sitter parser is created per Parse call, so this type is safe
// for concurrent Parse calls from multiple goroutines.
type TreeSitterParser struct {
	lang *tree_sitter.Language
}

// NewTreeSitterParser creates a parser with the C# grammar registered.
func NewTreeSitterParser() *TreeSitterParser {
	return &TreeSitterParser{
		lang: tree_sitter.NewLanguage(tree_sitter_c_sharp.Language()),
	}
}

// Parse extracts the structural model of a single C# file. It never fails:
// unparseable input yields a unit with Failed set and an empty type list.
func (p *TreeSitterParser) Parse(_ context.Context, fileName string, src []byte) *SourceUnit {
	unit := &SourceUnit{
		FileName: fileName,
		Lines:    countLines(src),
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.lang); err != nil {
		unit.Failed = true
		unit.Diagnostic = "set language: " + err.Error()
		return unit
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		unit.Failed = true
		unit.Diagnostic = "tree-sitter returned no tree"
		return unit
	}
	defer tree.Close()

	root := tree.RootNode()

	ext := &csExtractor{source: src, unit: unit}
	ext.walkScope(root, "", "")

	if root.HasError() {
		unit.Diagnostic = "source contains syntax errors"
		if len(unit.Types) == 0 && unit.Namespace == "" {
			unit.Failed = true
		}
	}

	return unit
}

// Close is a no-op because tree-sitter parsers are created per Parse call.
func (p *TreeSitterParser) Close() error {
	return nil
}

// countLines counts lines by counting newline bytes and adding one for the
// final line if the source is non-empty.
func countLines(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	return bytes.Count(src, []byte{'\n'}) + 1
}
