package table

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches every *ConfigurationError.
	ErrConfiguration = errors.New("invalid table configuration")
	// ErrUnsupportedTotal matches every *UnsupportedTotalError.
	ErrUnsupportedTotal = errors.New("totals not supported for field")
	// ErrFormat matches every *FormatError.
	ErrFormat = errors.New("cannot format value")
	// ErrNilRecord is wrapped by the FormatError Layout returns for a nil
	// pointer, map, slice or interface record.
	ErrNilRecord = errors.New("nil record")
)

// ConfigurationError reports an invalid schema or column registration.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("table configuration: %s", e.Reason)
	}
	return fmt.Sprintf("table configuration: field %q: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// UnsupportedTotalError is returned when totals are requested for a field
// that has no summable capability.
type UnsupportedTotalError struct {
	Field string
	Kind  Kind
}

func (e *UnsupportedTotalError) Error() string {
	return fmt.Sprintf("table configuration: field %q of kind %s cannot be totaled", e.Field, e.Kind)
}

func (e *UnsupportedTotalError) Is(target error) bool {
	return target == ErrUnsupportedTotal
}

// FormatError is returned by Render when a column's format spec or provider
// cannot render a value, a total cannot absorb a value, or a record is nil.
// Row is the zero-based record index, or -1 for the totals line. Field is
// empty for a nil record.
type FormatError struct {
	Field string
	Row   int
	Spec  string
	Err   error
}

func (e *FormatError) Error() string {
	where := fmt.Sprintf("row %d", e.Row)
	if e.Row < 0 {
		where = "totals"
	}
	if e.Field == "" {
		return fmt.Sprintf("format %s: %v", where, e.Err)
	}
	return fmt.Sprintf("format field %q (%s) with spec %q: %v", e.Field, where, e.Spec, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}
