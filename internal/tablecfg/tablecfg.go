// Package tablecfg reads column configuration from YAML files and
// --column flags and registers it with a table.Builder.
package tablecfg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/fwtable/pkg/table"
)

// Provider names accepted in config files and flags.
const (
	ProviderFmt      = "fmt"
	ProviderLocale   = "locale"
	ProviderHumanize = "humanize"
)

// File is the top-level layout of a table config file:
//
//	columns:
//	  - field: Score
//	    header: Points
//	    align: right
//	    format: "%.2f"
//	    provider: locale
//	    locale: de-DE
//	    total: true
type File struct {
	Columns []Column `yaml:"columns"`
}

// Column is one column override.
type Column struct {
	Field    string `yaml:"field"`
	Header   string `yaml:"header,omitempty"`
	Align    string `yaml:"align,omitempty"`
	Format   string `yaml:"format,omitempty"`
	Provider string `yaml:"provider,omitempty"`
	Locale   string `yaml:"locale,omitempty"`
	Total    bool   `yaml:"total,omitempty"`
}

// Load reads a config file. Unknown keys are errors.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	f, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes config file content. Empty content is an empty File.
func Parse(data []byte) (File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("decode table config: %w", err)
	}
	for i, c := range f.Columns {
		if strings.TrimSpace(c.Field) == "" {
			return File{}, fmt.Errorf("column %d: field is required", i)
		}
	}
	return f, nil
}

// ParseColumnFlag parses "field[:option,...]" where an option is
// header=TEXT, align=left|center|right, format=SPEC, provider=NAME,
// locale=TAG or the bare word total. Example:
//
//	Score:header=Points,align=right,format=%.1f,total
func ParseColumnFlag(s string) (Column, error) {
	field, opts, _ := strings.Cut(s, ":")
	c := Column{Field: strings.TrimSpace(field)}
	if c.Field == "" {
		return Column{}, fmt.Errorf("column %q: field is required", s)
	}
	if strings.TrimSpace(opts) == "" {
		return c, nil
	}
	for _, opt := range strings.Split(opts, ",") {
		key, value, hasValue := strings.Cut(opt, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		switch {
		case key == "total" && !hasValue:
			c.Total = true
		case key == "header":
			c.Header = value
		case key == "align":
			c.Align = value
		case key == "format":
			c.Format = value
		case key == "provider":
			c.Provider = value
		case key == "locale":
			c.Locale = value
		default:
			return Column{}, fmt.Errorf("column %q: unknown option %q", c.Field, opt)
		}
	}
	return c, nil
}

// Options converts the column into builder options.
func (c Column) Options() ([]table.ColumnOption, error) {
	align, err := table.ParseAlignment(c.Align)
	if err != nil {
		return nil, &table.ConfigurationError{Field: c.Field, Reason: err.Error()}
	}
	opts := []table.ColumnOption{table.Align(align)}
	if c.Header != "" {
		opts = append(opts, table.Header(c.Header))
	}
	if c.Format != "" {
		opts = append(opts, table.Format(c.Format))
	}
	p, err := c.provider()
	if err != nil {
		return nil, &table.ConfigurationError{Field: c.Field, Reason: err.Error()}
	}
	if p != nil {
		opts = append(opts, table.Provider(p))
	}
	if c.Total {
		opts = append(opts, table.Total())
	}
	return opts, nil
}

func (c Column) provider() (table.FormatProvider, error) {
	name := strings.ToLower(strings.TrimSpace(c.Provider))
	if name == "" && c.Locale != "" {
		name = ProviderLocale
	}
	switch name {
	case "", ProviderFmt:
		return nil, nil
	case ProviderLocale:
		if c.Locale == "" {
			return nil, fmt.Errorf("provider %q needs a locale", ProviderLocale)
		}
		tag, err := table.ParseLocale(c.Locale)
		if err != nil {
			return nil, err
		}
		return table.LocaleProvider(tag), nil
	case ProviderHumanize:
		return table.HumanizeProvider, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want %s, %s or %s)", c.Provider, ProviderFmt, ProviderLocale, ProviderHumanize)
	}
}

// Apply registers columns with b in order and stops at the first error.
func Apply[T any](b *table.Builder[T], columns []Column) error {
	for _, c := range columns {
		opts, err := c.Options()
		if err != nil {
			return err
		}
		if err := b.Register(c.Field, opts...); err != nil {
			return err
		}
	}
	return nil
}
