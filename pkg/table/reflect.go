package table

import (
	"fmt"
	"reflect"
)

// StructFields discovers the exported fields of struct type T (or *T) in
// declaration order, promoted fields of embedded structs included.
//
// The `table` struct tag renames a column (`table:"Total Cost"`) or hides it
// (`table:"-"`). Integer and float fields become summable KindNumber
// columns, strings KindText, and anything else KindOther.
func StructFields[T any]() (*Schema[T], error) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	ptr := false
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
		ptr = true
	}
	if rt.Kind() != reflect.Struct {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("%s is not a struct type", rt)}
	}

	var fields []Field[T]
	for _, sf := range reflect.VisibleFields(rt) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("table"); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		fields = append(fields, structField[T](name, sf, ptr))
	}
	return NewSchema(fields...)
}

func structField[T any](name string, sf reflect.StructField, ptr bool) Field[T] {
	index := sf.Index
	get := func(record T) any {
		rv := reflect.ValueOf(&record).Elem()
		if ptr {
			if rv.IsNil() {
				return nil
			}
			rv = rv.Elem()
		}
		fv, err := rv.FieldByIndexErr(index)
		if err != nil {
			return nil
		}
		return fv.Interface()
	}

	f := Field[T]{name: name, get: get}
	switch sf.Type.Kind() { //nolint:exhaustive // only numeric and string kinds are special
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		typ := sf.Type
		f.kind = KindNumber
		f.newTotal = func() Accumulator { return &reflectSum{total: reflect.New(typ).Elem()} }
	case reflect.String:
		f.kind = KindText
	default:
		f.kind = KindOther
	}
	return f
}

// reflectSum totals numeric struct fields while keeping the field's own
// type, so named types such as time.Duration keep their String method.
type reflectSum struct {
	total reflect.Value
}

func (s *reflectSum) Add(v any) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Type() != s.total.Type() {
		return fmt.Errorf("cannot add %T to a %s total", v, s.total.Type())
	}
	switch rv.Kind() { //nolint:exhaustive // constructed for numeric kinds only
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		s.total.SetInt(s.total.Int() + rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		s.total.SetUint(s.total.Uint() + rv.Uint())
	case reflect.Float32, reflect.Float64:
		s.total.SetFloat(s.total.Float() + rv.Float())
	default:
		return fmt.Errorf("cannot sum %s values", rv.Kind())
	}
	return nil
}

func (s *reflectSum) Total() any {
	return s.total.Interface()
}
