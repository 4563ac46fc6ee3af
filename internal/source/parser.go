package source

import "context"

// Parser extracts a structural model from C# source files.
// Implementations: TreeSitterParser (production), StubParser (testing).
//
// Parse never fails: malformed input yields a unit with an empty type list
// and Failed set, so callers decide whether to skip or log.
type Parser interface {
	Parse(ctx context.Context, fileName string, src []byte) *SourceUnit

	// Close releases parser resources (tree-sitter C memory).
	Close() error
}
