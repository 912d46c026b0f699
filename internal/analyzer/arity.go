package analyzer

import (
	"context"

	"github.com/hashicorp/go-hclog"
	"github.com/ludo-technologies/argscan/internal/logging"
	"github.com/ludo-technologies/argscan/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// Default node kinds used by the counting rule
var (
	// DefaultReceiverKinds are parameter kinds that never count toward arity
	DefaultReceiverKinds = []string{"self_parameter"}

	// DefaultIgnoredKinds are parameter-list children that are not parameters
	DefaultIgnoredKinds = []string{"attribute_item", "line_comment", "block_comment"}
)

// receiverPattern is the pattern text of a typed receiver such as `self: Box<Self>`
const receiverPattern = "self"

// Param describes one immediate named child of a parameter list
type Param struct {
	// Kind is the tree-sitter node kind (parameter, self_parameter, ...)
	Kind string
	// Pattern is the source text of the parameter's pattern field, if any
	Pattern string
}

// ParamPredicate classifies a parameter-list child
type ParamPredicate func(p Param) bool

// KindPredicate matches any of the given node kinds
func KindPredicate(kinds ...string) ParamPredicate {
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return func(p Param) bool {
		return set[p.Kind]
	}
}

// ReceiverPredicate matches receiver kinds plus typed receivers (`self: Box<Self>`)
func ReceiverPredicate(kinds ...string) ParamPredicate {
	byKind := KindPredicate(kinds...)
	return func(p Param) bool {
		return byKind(p) || p.Kind == "parameter" && p.Pattern == receiverPattern
	}
}

// ArityCounter implements the parameter counting rule
type ArityCounter struct {
	IsReceiver ParamPredicate
	IsIgnored  ParamPredicate
}

// NewArityCounter creates a counter. Empty kind lists fall back to the defaults.
func NewArityCounter(receiverKinds, ignoredKinds []string) *ArityCounter {
	if len(receiverKinds) == 0 {
		receiverKinds = DefaultReceiverKinds
	}
	if len(ignoredKinds) == 0 {
		ignoredKinds = DefaultIgnoredKinds
	}
	return &ArityCounter{
		IsReceiver: ReceiverPredicate(receiverKinds...),
		IsIgnored:  KindPredicate(ignoredKinds...),
	}
}

// CountParams counts every child except receivers and ignored kinds.
// Each remaining child counts 1 regardless of type, pattern or variadic marker.
func (c *ArityCounter) CountParams(params []Param) int {
	count := 0
	for _, p := range params {
		if c.IsReceiver != nil && c.IsReceiver(p) {
			continue
		}
		if c.IsIgnored != nil && c.IsIgnored(p) {
			continue
		}
		count++
	}
	return count
}

// Count counts the parameters of a parameters node
func (c *ArityCounter) Count(paramsNode *sitter.Node, source []byte) int {
	return c.CountParams(ParamsOf(paramsNode, source))
}

// ParamsOf lists the immediate named children of a parameter list
func ParamsOf(paramsNode *sitter.Node, source []byte) []Param {
	if paramsNode == nil {
		return nil
	}

	n := int(paramsNode.NamedChildCount())
	params := make([]Param, 0, n)
	for i := 0; i < n; i++ {
		child := paramsNode.NamedChild(i)
		if child == nil {
			continue
		}
		p := Param{Kind: child.Type()}
		if pattern := child.ChildByFieldName("pattern"); pattern != nil {
			p.Pattern = pattern.Content(source)
		}
		params = append(params, p)
	}
	return params
}

// FunctionArity is the arity of one declaration
type FunctionArity struct {
	Name   string
	Shape  parser.DeclarationShape
	Arity  int
	Line   int
	Column int
}

// ArityAnalyzer extracts declarations from a file and counts their parameters.
// The query is shared; each analyzer call uses its own parser.
//
// Without strict, a tree with error nodes is still queried. Declarations the
// parser recovered are counted and the file is logged at warn level.
type ArityAnalyzer struct {
	query   *parser.DeclarationQuery
	counter *ArityCounter
	strict  bool
	logger  hclog.Logger
}

// NewArityAnalyzer creates an analyzer for the given shapes (all shapes if none)
func NewArityAnalyzer(counter *ArityCounter, strict bool, shapes ...parser.DeclarationShape) (*ArityAnalyzer, error) {
	q, err := parser.NewDeclarationQuery(parser.Language(), shapes...)
	if err != nil {
		return nil, err
	}
	if counter == nil {
		counter = NewArityCounter(nil, nil)
	}
	return &ArityAnalyzer{
		query:   q,
		counter: counter,
		strict:  strict,
		logger:  hclog.NewNullLogger(),
	}, nil
}

// WithLogger sets the logger for files parsed with syntax errors
func (a *ArityAnalyzer) WithLogger(logger hclog.Logger) *ArityAnalyzer {
	a.logger = logging.OrNull(logger)
	return a
}

// AnalyzeSource parses source and returns the arity of every declaration in source order
func (a *ArityAnalyzer) AnalyzeSource(ctx context.Context, filename string, source []byte) ([]FunctionArity, error) {
	p := parser.NewParser(parser.WithStrict(a.strict))
	defer p.Close()

	tree, err := p.ParseFile(ctx, filename, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	if line, col, ok := parser.SyntaxErrorPosition(tree.RootNode()); ok {
		a.logger.Warn("syntax not recognized, counting recovered declarations",
			"file", filename, "line", line, "column", col)
	}

	var results []FunctionArity
	for decl := range a.query.Matches(tree.RootNode(), source) {
		results = append(results, FunctionArity{
			Name:   decl.Name,
			Shape:  decl.Shape,
			Arity:  a.counter.Count(decl.Params, source),
			Line:   decl.Line,
			Column: decl.Column,
		})
	}
	return results, nil
}

// Close releases the compiled query
func (a *ArityAnalyzer) Close() {
	a.query.Close()
}
