// Package dataset derives table schemas for loosely typed records loaded
// from data files.
package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strings"

	"github.com/oakwood-commons/fwtable/pkg/loader"
	"github.com/oakwood-commons/fwtable/pkg/table"
)

// Infer builds a schema from the key order of the first record. Every
// record must carry the same key set. A column whose values are all
// integers becomes an int64 Number field, or a *big.Int field when one of
// them does not fit in int64; all numbers with at least one float a float64
// Number field, all strings a Text field; anything else is
// a Value field that renders lists and mappings as compact JSON.
func Infer(records []loader.Record) (*table.Schema[loader.Record], error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to infer columns from")
	}
	keys := records[0].Keys()
	if len(keys) == 0 {
		return nil, fmt.Errorf("record 0 has no fields")
	}
	want := keySet(keys)
	for i, r := range records[1:] {
		if got := keySet(r.Keys()); got != want {
			return nil, fmt.Errorf("record %d: fields [%s] differ from record 0 fields [%s]", i+1, got, want)
		}
	}

	fields := make([]table.Field[loader.Record], 0, len(keys))
	for _, key := range keys {
		fields = append(fields, inferField(key, records))
	}
	return table.NewSchema(fields...)
}

func keySet(keys []string) string {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}

type valueClass int

const (
	classInt valueClass = iota
	classBigInt
	classFloat
	classString
	classOther
)

func inferField(key string, records []loader.Record) table.Field[loader.Record] {
	class := classInt
	for i, r := range records {
		v, _ := r.Get(key)
		class = widen(class, classify(v), i == 0)
		if class == classOther {
			break
		}
	}

	switch class {
	case classInt:
		return table.Number(key, func(r loader.Record) int64 {
			v, _ := r.Get(key)
			n, _ := asInt64(v)
			return n
		})
	case classBigInt:
		return table.Summed(key, table.KindNumber, func(r loader.Record) any {
			v, _ := r.Get(key)
			return asBigInt(v)
		}, func() table.Accumulator { return new(bigSum) })
	case classFloat:
		return table.Number(key, func(r loader.Record) float64 {
			v, _ := r.Get(key)
			f, _ := asFloat64(v)
			return f
		})
	case classString:
		return table.Text(key, func(r loader.Record) string {
			v, _ := r.Get(key)
			s, _ := v.(string)
			return s
		})
	default:
		return table.Value(key, func(r loader.Record) any {
			v, _ := r.Get(key)
			return displayValue(v)
		})
	}
}

// widen merges the class seen so far with the class of the next value.
func widen(acc, next valueClass, first bool) valueClass {
	if first {
		return next
	}
	switch {
	case acc == next:
		return acc
	case isInteger(acc) && isInteger(next):
		return classBigInt
	case (isInteger(acc) && next == classFloat) || (acc == classFloat && isInteger(next)):
		return classFloat
	default:
		return classOther
	}
}

func classify(v any) valueClass {
	if v == nil {
		return classOther
	}
	if _, ok := v.(string); ok {
		return classString
	}
	if _, ok := asInt64(v); ok {
		return classInt
	}
	if asBigInt(v) != nil {
		return classBigInt
	}
	if _, ok := asFloat64(v); ok {
		return classFloat
	}
	return classOther
}

func asInt64(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // only integer kinds convert
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	default:
		return 0, false
	}
}

func isInteger(c valueClass) bool {
	return c == classInt || c == classBigInt
}

// asBigInt converts any integer kind without loss, or returns nil.
func asBigInt(v any) *big.Int {
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // only integer kinds convert
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(rv.Uint())
	default:
		return nil
	}
}

// bigSum totals *big.Int values exactly.
type bigSum struct {
	total big.Int
}

func (s *bigSum) Add(v any) error {
	n, ok := v.(*big.Int)
	if !ok || n == nil {
		return fmt.Errorf("cannot add %T to an integer total", v)
	}
	s.total.Add(&s.total, n)
	return nil
}

func (s *bigSum) Total() any {
	return new(big.Int).Set(&s.total)
}

func asFloat64(v any) (float64, bool) {
	if n, ok := asInt64(v); ok {
		return float64(n), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // only float kinds convert
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// displayValue keeps scalars as they are and turns lists and mappings into
// compact JSON so they fit in one cell.
func displayValue(v any) any {
	switch v.(type) {
	case nil, string, bool, int, int64, uint64, float64:
		return v
	case map[string]any, []any:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return v
}
