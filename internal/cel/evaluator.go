// Package cel compiles function-query predicates written as CEL expressions.
//
// A predicate sees the node under test through six variables:
//
//	value    string   raw node text, quotes included
//	nodeType string   the node's type name ("String", "Object", "⚠", ...)
//	keyPath  list     key path segments (strings and ints)
//	cursor   int      caret offset
//	from, to int      the node's span
//
// Example: nodeType == "String" && value.matches('^"#[0-9a-f]{6}"$')
package cel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/decls"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/mcnuttandrew/prong-sub001/internal/keypath"
	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

// Variable names bound for every predicate.
const (
	VarValue    = "value"
	VarNodeType = "nodeType"
	VarKeyPath  = "keyPath"
	VarCursor   = "cursor"
	VarFrom     = "from"
	VarTo       = "to"
)

// Variables lists the predicate variables in declaration order.
var Variables = []string{VarValue, VarNodeType, VarKeyPath, VarCursor, VarFrom, VarTo}

// Compiler compiles predicate expressions against a shared environment.
type Compiler struct {
	env *cel.Env
}

// NewCompiler creates a Compiler with the predicate variables and the
// strings, encoders, lists and math extensions.
func NewCompiler() (*Compiler, error) {
	env, err := newPredicateEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Compiler{env: env}, nil
}

// Environment returns the CEL environment for introspection.
func (c *Compiler) Environment() *cel.Env {
	return c.env
}

func newPredicateEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 10+len(opts))
	allOpts = append(allOpts,
		cel.Variable(VarValue, cel.StringType),
		cel.Variable(VarNodeType, cel.StringType),
		cel.Variable(VarKeyPath, cel.ListType(cel.DynType)),
		cel.Variable(VarCursor, cel.IntType),
		cel.Variable(VarFrom, cel.IntType),
		cel.Variable(VarTo, cel.IntType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

// Predicate is a compiled boolean expression.
type Predicate struct {
	Expr string
	// Uses holds the predicate variables the expression references, sorted.
	Uses []string

	prg cel.Program
}

// Compile parses and type-checks expr. The expression must produce a bool.
func (c *Compiler) Compile(expr string) (*Predicate, error) {
	ast, issues := c.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	out := ast.OutputType()
	if !out.IsExactType(types.BoolType) && !out.IsExactType(types.DynType) {
		return nil, fmt.Errorf("compilation error: %q yields %v, want bool", expr, out)
	}
	prg, err := c.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	uses, err := referencedVariables(ast)
	if err != nil {
		return nil, err
	}
	return &Predicate{Expr: expr, Uses: uses, prg: prg}, nil
}

// Match evaluates the predicate. Evaluation errors and non-bool results
// count as a failed match. Its signature matches query.Predicate.
func (p *Predicate) Match(value, nodeType string, path keypath.Path, cursor int, span syntax.Span) bool {
	ok, err := p.Eval(value, nodeType, path, cursor, span)
	return err == nil && ok
}

// Eval evaluates the predicate and reports evaluation errors.
func (p *Predicate) Eval(value, nodeType string, path keypath.Path, cursor int, span syntax.Span) (bool, error) {
	result, _, err := p.prg.Eval(map[string]any{
		VarValue:    value,
		VarNodeType: nodeType,
		VarKeyPath:  pathValues(path),
		VarCursor:   int64(cursor),
		VarFrom:     int64(span.From),
		VarTo:       int64(span.To),
	})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	b, ok := result.(types.Bool)
	if !ok {
		return false, fmt.Errorf("eval error: %q produced %v, want bool", p.Expr, result)
	}
	return bool(b), nil
}

func pathValues(path keypath.Path) []any {
	out := make([]any, len(path))
	for i, seg := range path {
		if seg.IsIndex {
			out[i] = int64(seg.Index)
		} else {
			out[i] = seg.Key
		}
	}
	return out
}

// referencedVariables walks the parsed expression and collects the
// predicate variables it reads.
func referencedVariables(ast *cel.Ast) ([]string, error) {
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, fmt.Errorf("ast conversion: %w", err)
	}
	declared := make(map[string]bool, len(Variables))
	for _, v := range Variables {
		declared[v] = true
	}
	seen := make(map[string]bool)
	var walk func(*exprpb.Expr)
	walk = func(e *exprpb.Expr) {
		if e == nil {
			return
		}
		switch k := e.ExprKind.(type) {
		case *exprpb.Expr_IdentExpr:
			if declared[k.IdentExpr.GetName()] {
				seen[k.IdentExpr.GetName()] = true
			}
		case *exprpb.Expr_SelectExpr:
			walk(k.SelectExpr.GetOperand())
		case *exprpb.Expr_CallExpr:
			walk(k.CallExpr.GetTarget())
			for _, a := range k.CallExpr.GetArgs() {
				walk(a)
			}
		case *exprpb.Expr_ListExpr:
			for _, el := range k.ListExpr.GetElements() {
				walk(el)
			}
		case *exprpb.Expr_StructExpr:
			for _, entry := range k.StructExpr.GetEntries() {
				walk(entry.GetMapKey())
				walk(entry.GetValue())
			}
		case *exprpb.Expr_ComprehensionExpr:
			c := k.ComprehensionExpr
			walk(c.GetIterRange())
			walk(c.GetAccuInit())
			walk(c.GetLoopCondition())
			walk(c.GetLoopStep())
			walk(c.GetResult())
		}
	}
	walk(parsed.GetExpr())

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// Functions lists the functions available to predicates as
// "name() - usage" strings, sorted.
func (c *Compiler) Functions() []string {
	seen := make(map[string]bool)
	out := make([]string, 0, 100)
	for _, fn := range c.env.Functions() {
		if isOperator(fn.Name()) {
			continue
		}
		for _, o := range fn.OverloadDecls() {
			entry := fn.Name() + "() - " + usageFromOverload(fn.Name(), o)
			if seen[entry] {
				continue
			}
			seen[entry] = true
			out = append(out, entry)
		}
	}
	for _, m := range c.env.Macros() {
		if isOperator(m.Function()) {
			continue
		}
		entry := m.Function() + "() - CEL macro"
		if seen[entry] {
			continue
		}
		seen[entry] = true
		out = append(out, entry)
	}
	sort.Strings(out)
	return out
}

// isOperator filters internal operator declarations such as _+_ and @in.
func isOperator(name string) bool {
	if strings.HasPrefix(name, "@") {
		return true
	}
	if strings.HasPrefix(name, "_") && strings.HasSuffix(name, "_") {
		return true
	}
	switch name {
	case "!_", "-_", "_[_]", "_?_:_":
		return true
	}
	return false
}

func typeLabel(t *types.Type) string {
	if t == nil {
		return "any"
	}
	if name := t.DeclaredTypeName(); name != "" {
		return name
	}
	if name := t.TypeName(); name != "" {
		return name
	}
	return "any"
}

func usageFromOverload(name string, o *decls.OverloadDecl) string {
	params := o.ArgTypes()
	labels := make([]string, len(params))
	for i, p := range params {
		labels[i] = typeLabel(p)
	}
	call := name + "(" + strings.Join(labels, ", ") + ")"
	if o.IsMemberFunction() && len(labels) > 0 {
		call = labels[0] + "." + name + "(" + strings.Join(labels[1:], ", ") + ")"
	}
	if o.ResultType() == nil {
		return call
	}
	return call + " -> " + typeLabel(o.ResultType())
}
