// Package filter selects records with CEL boolean expressions. The record
// is bound to the variable "_", e.g. `_.score > 10 && _.name.startsWith("A")`.
package filter

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/fwtable/pkg/loader"
)

// Filter evaluates compiled expressions against records.
type Filter struct {
	env *cel.Env
}

// New creates a Filter with the CEL standard library plus the strings,
// lists and math extensions.
func New() (*Filter, error) {
	env, err := cel.NewEnv(
		cel.Variable("_", cel.DynType),
		celext.Strings(),
		celext.Lists(),
		celext.Math(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Filter{env: env}, nil
}

// Predicate is a compiled boolean expression.
type Predicate struct {
	expr string
	prg  cel.Program
}

// Compile parses and checks expr. The expression must produce a bool.
func (f *Filter) Compile(expr string) (*Predicate, error) {
	ast, issues := f.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression %q returns %s, want bool", expr, t)
	}
	prg, err := f.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Predicate{expr: expr, prg: prg}, nil
}

// Match reports whether r satisfies the predicate.
func (p *Predicate) Match(r loader.Record) (bool, error) {
	out, _, err := p.prg.Eval(map[string]any{"_": r.Map()})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	b, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("expression %q returned %s, want bool", p.expr, out.Type())
	}
	return bool(b), nil
}

// Apply returns the records matching p, in input order.
func (p *Predicate) Apply(records []loader.Record) ([]loader.Record, error) {
	out := make([]loader.Record, 0, len(records))
	for i, r := range records {
		ok, err := p.Match(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}
