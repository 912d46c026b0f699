package parser

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

// ErrSyntax is returned when strict parsing finds syntax error nodes in the tree
var ErrSyntax = errors.New("syntax error")

// Parser wraps tree-sitter parser for Rust
type Parser struct {
	parser   *sitter.Parser
	language *sitter.Language
	strict   bool
}

// Option configures a Parser
type Option func(*Parser)

// WithStrict makes ParseFile reject trees that contain error or missing nodes
func WithStrict(strict bool) Option {
	return func(p *Parser) {
		p.strict = strict
	}
}

// Language returns the Rust grammar used by every parser
func Language() *sitter.Language {
	return rust.GetLanguage()
}

// NewParser creates a new Rust parser. Parsers are lenient unless WithStrict
// is given, and are not safe for concurrent use.
func NewParser(opts ...Option) *Parser {
	parser := sitter.NewParser()
	lang := Language()
	parser.SetLanguage(lang)

	p := &Parser{
		parser:   parser,
		language: lang,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile parses a Rust file. The caller owns the returned tree and must Close it.
func (p *Parser) ParseFile(ctx context.Context, filename string, source []byte) (*sitter.Tree, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if tree == nil {
		if err == nil {
			err = errors.New("parser produced no tree")
		}
		return nil, fmt.Errorf("failed to parse file %s: %w", filename, err)
	}

	rootNode := tree.RootNode()
	if rootNode == nil {
		tree.Close()
		return nil, fmt.Errorf("no root node in parse tree for %s", filename)
	}

	if p.strict && rootNode.HasError() {
		line, col, _ := SyntaxErrorPosition(rootNode)
		tree.Close()
		return nil, fmt.Errorf("%s:%d:%d: %w", filename, line, col, ErrSyntax)
	}

	return tree, nil
}

// Parse parses Rust source code
func (p *Parser) Parse(source []byte) (*sitter.Tree, error) {
	return p.ParseFile(context.Background(), "<input>", source)
}

// ParseString parses Rust source code from a string
func (p *Parser) ParseString(source string) (*sitter.Tree, error) {
	return p.Parse([]byte(source))
}

// IsStrict returns true if syntax errors are reported as failures
func (p *Parser) IsStrict() bool {
	return p.strict
}

// Close closes the parser and frees resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// SyntaxErrorPosition returns the 1-based position of the first ERROR or
// MISSING node under node. ok is false when the tree has none.
func SyntaxErrorPosition(node *sitter.Node) (line, col int, ok bool) {
	if node == nil || !node.HasError() && !node.IsMissing() {
		return 0, 0, false
	}
	line, col = firstErrorPosition(node)
	return line, col, true
}

func firstErrorPosition(node *sitter.Node) (int, int) {
	if node.Type() == "ERROR" || node.IsMissing() {
		pt := node.StartPoint()
		return int(pt.Row) + 1, int(pt.Column) + 1
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		return firstErrorPosition(child)
	}
	pt := node.StartPoint()
	return int(pt.Row) + 1, int(pt.Column) + 1
}
