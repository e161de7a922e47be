// Package treesitter wraps the tree-sitter parser behind a registry that
// resolves grammars from file extensions.
package treesitter

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrUnsupportedFile reports a file whose extension has no registered
// grammar.
var ErrUnsupportedFile = errors.New("unsupported file type")

// Parser parses source files with the grammar registered for their
// extension. Not safe for concurrent use; callers serialize ParseFile.
type Parser struct {
	parser *sitter.Parser
}

func NewParser() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// ParseFile parses content using the grammar for path's extension. The
// returned tree must be closed by the caller.
func (p *Parser) ParseFile(ctx context.Context, content []byte, path string) (*sitter.Tree, error) {
	lang := LanguageFor(path)
	if lang == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
	p.parser.SetLanguage(lang)

	tree, err := p.parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return tree, nil
}

func (p *Parser) Close() {
	p.parser.Close()
}
