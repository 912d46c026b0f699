package parser

import (
	"fmt"
	"iter"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Capture names shared by every declaration pattern
const (
	CaptureName   = "name"
	CaptureParams = "params"
)

// DeclarationShape enumerates the syntactic forms of a function-like declaration
type DeclarationShape int

const (
	// ShapeFunction is a declaration with a body (function_item)
	ShapeFunction DeclarationShape = iota
	// ShapeSignature is a body-less prototype (function_signature_item),
	// e.g. a trait method without a default body or an extern fn
	ShapeSignature
)

// DefaultShapes lists every recognized declaration shape
var DefaultShapes = []DeclarationShape{ShapeFunction, ShapeSignature}

// NodeKind returns the tree-sitter node kind matched by the shape
func (s DeclarationShape) NodeKind() string {
	switch s {
	case ShapeFunction:
		return "function_item"
	case ShapeSignature:
		return "function_signature_item"
	default:
		return ""
	}
}

// String returns the shape name
func (s DeclarationShape) String() string {
	switch s {
	case ShapeFunction:
		return "function"
	case ShapeSignature:
		return "signature"
	default:
		return fmt.Sprintf("DeclarationShape(%d)", int(s))
	}
}

// Pattern returns the query pattern for the shape. Only the node kind differs
// between shapes; the body is never captured.
func (s DeclarationShape) Pattern() string {
	return fmt.Sprintf("(%s\n  name: (identifier) @%s\n  parameters: (parameters) @%s)",
		s.NodeKind(), CaptureName, CaptureParams)
}

// BuildDeclarationQuery joins the patterns for the given shapes, one pattern per shape
// in the given order, so a match's pattern index is the shape's position.
func BuildDeclarationQuery(shapes ...DeclarationShape) string {
	patterns := make([]string, 0, len(shapes))
	for _, s := range shapes {
		patterns = append(patterns, s.Pattern())
	}
	return strings.Join(patterns, "\n\n")
}

// Declaration is one matched function-like declaration
type Declaration struct {
	Name  string
	Shape DeclarationShape

	// Params is the parameter list node; valid only while the tree is open
	Params *sitter.Node

	// Line and Column are the 1-based start of the parameter list
	Line   int
	Column int
}

// DeclarationQuery is a compiled declaration query. It is immutable after
// creation and may be shared by goroutines that each own a parser.
type DeclarationQuery struct {
	query     *sitter.Query
	shapes    []DeclarationShape
	nameIdx   uint32
	paramsIdx uint32
}

// NewDeclarationQuery compiles the query for the given shapes (DefaultShapes if none)
func NewDeclarationQuery(lang *sitter.Language, shapes ...DeclarationShape) (*DeclarationQuery, error) {
	if len(shapes) == 0 {
		shapes = DefaultShapes
	}
	for _, s := range shapes {
		if s.NodeKind() == "" {
			return nil, fmt.Errorf("unknown declaration shape %d", int(s))
		}
	}

	q, err := sitter.NewQuery([]byte(BuildDeclarationQuery(shapes...)), lang)
	if err != nil {
		return nil, fmt.Errorf("failed to compile declaration query: %w", err)
	}

	dq := &DeclarationQuery{
		query:  q,
		shapes: append([]DeclarationShape(nil), shapes...),
	}

	var foundName, foundParams bool
	for i := uint32(0); i < q.CaptureCount(); i++ {
		switch q.CaptureNameForId(i) {
		case CaptureName:
			dq.nameIdx, foundName = i, true
		case CaptureParams:
			dq.paramsIdx, foundParams = i, true
		}
	}
	if !foundName || !foundParams {
		q.Close()
		return nil, fmt.Errorf("declaration query is missing @%s or @%s capture", CaptureName, CaptureParams)
	}

	return dq, nil
}

// Matches lazily yields every declaration under root. Matches are independent;
// no cross-match checks are made.
func (q *DeclarationQuery) Matches(root *sitter.Node, source []byte) iter.Seq[Declaration] {
	return func(yield func(Declaration) bool) {
		cursor := sitter.NewQueryCursor()
		defer cursor.Close()
		cursor.Exec(q.query, root)

		for {
			m, ok := cursor.NextMatch()
			if !ok {
				return
			}

			var nameNode, paramsNode *sitter.Node
			for _, c := range m.Captures {
				switch c.Index {
				case q.nameIdx:
					nameNode = c.Node
				case q.paramsIdx:
					paramsNode = c.Node
				}
			}
			if nameNode == nil || paramsNode == nil {
				continue
			}

			shape := ShapeFunction
			if int(m.PatternIndex) < len(q.shapes) {
				shape = q.shapes[m.PatternIndex]
			}

			start := paramsNode.StartPoint()
			decl := Declaration{
				Name:   nameNode.Content(source),
				Shape:  shape,
				Params: paramsNode,
				Line:   int(start.Row) + 1,
				Column: int(start.Column) + 1,
			}
			if !yield(decl) {
				return
			}
		}
	}
}

// Close releases the compiled query
func (q *DeclarationQuery) Close() {
	if q.query != nil {
		q.query.Close()
	}
}
