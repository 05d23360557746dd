// Package table renders ordered, homogeneous records as a fixed-width
// monospaced text table with per-column headers, alignment, formatting and
// an optional totals row.
package table

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Kind classifies the values a field produces.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	default:
		return "other"
	}
}

// Numeric is the set of types Number fields can read and sum.
type Numeric interface {
	constraints.Integer | constraints.Float
}

// Accumulator keeps the running total of one column during a single render.
type Accumulator interface {
	Add(v any) error
	Total() any
}

// Field describes one column source: its name, kind, accessor and, when the
// values can be summed, a constructor for a fresh Accumulator.
type Field[T any] struct {
	name     string
	kind     Kind
	get      func(T) any
	newTotal func() Accumulator
}

// Text declares a string field.
func Text[T any](name string, get func(T) string) Field[T] {
	return Field[T]{
		name: name,
		kind: KindText,
		get:  func(r T) any { return get(r) },
	}
}

// Number declares a summable numeric field.
func Number[T any, N Numeric](name string, get func(T) N) Field[T] {
	return Field[T]{
		name:     name,
		kind:     KindNumber,
		get:      func(r T) any { return get(r) },
		newTotal: func() Accumulator { return &sum[N]{} },
	}
}

// Value declares a field of arbitrary type. Its values are displayed with
// fmt.Sprint unless a format is configured, and cannot be totaled.
func Value[T any](name string, get func(T) any) Field[T] {
	return Field[T]{
		name: name,
		kind: KindOther,
		get:  get,
	}
}

// Summed declares a field with a caller-supplied summing capability, for
// value types Number does not cover.
func Summed[T any](name string, kind Kind, get func(T) any, newAcc func() Accumulator) Field[T] {
	return Field[T]{
		name:     name,
		kind:     kind,
		get:      get,
		newTotal: newAcc,
	}
}

// Name returns the field name.
func (f Field[T]) Name() string { return f.name }

// Kind returns the field's value kind.
func (f Field[T]) Kind() Kind { return f.kind }

// Summable reports whether the field can back a totals column.
func (f Field[T]) Summable() bool { return f.newTotal != nil }

// Value reads the field from a record.
func (f Field[T]) Value(record T) any { return f.get(record) }

type sum[N Numeric] struct {
	total N
}

func (s *sum[N]) Add(v any) error {
	n, ok := v.(N)
	if !ok {
		return fmt.Errorf("cannot add %T to a %T total", v, s.total)
	}
	s.total += n
	return nil
}

func (s *sum[N]) Total() any {
	return s.total
}

// Schema is the ordered, immutable field list of a record type. Field order
// is column order.
type Schema[T any] struct {
	fields []Field[T]
	index  map[string]int
}

// NewSchema validates and freezes a field list.
func NewSchema[T any](fields ...Field[T]) (*Schema[T], error) {
	if len(fields) == 0 {
		return nil, &ConfigurationError{Reason: "schema has no fields"}
	}
	s := &Schema[T]{
		fields: make([]Field[T], len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.name == "" {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("field %d has no name", i)}
		}
		if f.get == nil {
			return nil, &ConfigurationError{Field: f.name, Reason: "field has no accessor"}
		}
		if _, dup := s.index[f.name]; dup {
			return nil, &ConfigurationError{Field: f.name, Reason: "declared more than once"}
		}
		s.index[f.name] = i
		s.fields[i] = f
	}
	return s, nil
}

// Len returns the number of fields.
func (s *Schema[T]) Len() int { return len(s.fields) }

// Fields returns a copy of the fields in declaration order.
func (s *Schema[T]) Fields() []Field[T] {
	out := make([]Field[T], len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a field by name.
func (s *Schema[T]) Field(name string) (Field[T], bool) {
	i, ok := s.index[name]
	if !ok {
		return Field[T]{}, false
	}
	return s.fields[i], true
}
