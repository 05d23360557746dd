package table

import (
	"fmt"
	"strings"
)

// Alignment is the padding policy of a column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// ParseAlignment converts a config string into an Alignment. The empty
// string is left.
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left":
		return AlignLeft, nil
	case "center", "centre", "middle":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	default:
		return AlignLeft, fmt.Errorf("unknown alignment %q (want left, center or right)", s)
	}
}

// ColumnConfig is the display override for one field.
type ColumnConfig struct {
	// Header replaces the field name in the header line when non-empty.
	Header string
	Align  Alignment
	// Format is handed to the provider for every cell and for the total.
	Format   string
	Provider FormatProvider
	Total    bool
}

// formatted reports whether cells go through a provider instead of fmt.Sprint.
func (c ColumnConfig) formatted() bool {
	return c.Format != "" || c.Provider != nil
}

func (c ColumnConfig) provider() FormatProvider {
	if c.Provider != nil {
		return c.Provider
	}
	return FmtProvider
}

// ColumnOption sets one property of a column registration.
type ColumnOption func(*ColumnConfig)

// Header overrides the header text.
func Header(text string) ColumnOption {
	return func(c *ColumnConfig) { c.Header = text }
}

// Align sets the column alignment.
func Align(a Alignment) ColumnOption {
	return func(c *ColumnConfig) { c.Align = a }
}

// Format sets the format spec handed to the column's provider.
func Format(spec string) ColumnOption {
	return func(c *ColumnConfig) { c.Format = spec }
}

// Provider sets the format provider. Without one, FmtProvider is used.
func Provider(p FormatProvider) ColumnOption {
	return func(c *ColumnConfig) { c.Provider = p }
}

// Total enables the totals row for the column.
func Total() ColumnOption {
	return func(c *ColumnConfig) { c.Total = true }
}

// Builder accumulates column registrations against a schema.
type Builder[T any] struct {
	schema  *Schema[T]
	columns map[string]ColumnConfig
	err     error
}

// NewBuilder returns a Builder bound to schema.
func NewBuilder[T any](schema *Schema[T]) *Builder[T] {
	return &Builder[T]{
		schema:  schema,
		columns: make(map[string]ColumnConfig),
	}
}

// Register adds the configuration for one field. It fails when the field is
// unknown or already registered, or when a total is requested for a field
// that cannot be summed. The first failure is also returned by Build.
func (b *Builder[T]) Register(field string, opts ...ColumnOption) error {
	err := b.register(field, opts)
	if err != nil && b.err == nil {
		b.err = err
	}
	return err
}

func (b *Builder[T]) register(name string, opts []ColumnOption) error {
	if b.schema == nil {
		return &ConfigurationError{Field: name, Reason: "builder has no schema"}
	}
	f, ok := b.schema.Field(name)
	if !ok {
		return &ConfigurationError{Field: name, Reason: "no such field"}
	}
	if _, dup := b.columns[name]; dup {
		return &ConfigurationError{Field: name, Reason: "registered more than once"}
	}

	var cc ColumnConfig
	for _, opt := range opts {
		opt(&cc)
	}
	if cc.Align < AlignLeft || cc.Align > AlignRight {
		return &ConfigurationError{Field: name, Reason: fmt.Sprintf("invalid alignment %d", int(cc.Align))}
	}
	if cc.Total && !f.Summable() {
		return &UnsupportedTotalError{Field: name, Kind: f.Kind()}
	}
	b.columns[name] = cc
	return nil
}

// Build returns the immutable configuration, or the first registration error.
func (b *Builder[T]) Build() (*Configuration[T], error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.schema == nil {
		return nil, &ConfigurationError{Reason: "builder has no schema"}
	}
	columns := make(map[string]ColumnConfig, len(b.columns))
	for k, v := range b.columns {
		columns[k] = v
	}
	return &Configuration[T]{schema: b.schema, columns: columns}, nil
}

// Configuration maps field names to column configs for one schema. It is
// never mutated after Build and may be shared between concurrent renders.
type Configuration[T any] struct {
	schema  *Schema[T]
	columns map[string]ColumnConfig
}

// DefaultConfiguration renders every field of schema with default settings.
func DefaultConfiguration[T any](schema *Schema[T]) *Configuration[T] {
	return &Configuration[T]{schema: schema, columns: map[string]ColumnConfig{}}
}

// Schema returns the schema the configuration was built for.
func (c *Configuration[T]) Schema() *Schema[T] { return c.schema }

// Lookup returns the column config for a field and whether it was
// registered. Unregistered fields get the zero ColumnConfig: left aligned,
// unformatted, no total.
func (c *Configuration[T]) Lookup(field string) (ColumnConfig, bool) {
	cc, ok := c.columns[field]
	return cc, ok
}
