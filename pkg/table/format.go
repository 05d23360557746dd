package table

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatProvider turns a raw value into display text according to spec.
type FormatProvider interface {
	Format(spec string, v any) (string, error)
}

// FormatProviderFunc adapts a function to FormatProvider.
type FormatProviderFunc func(spec string, v any) (string, error)

// Format calls f(spec, v).
func (f FormatProviderFunc) Format(spec string, v any) (string, error) {
	return f(spec, v)
}

// FmtProvider formats with fmt verbs. A spec without '%' gets one prepended,
// so ".2f" and "%.2f" are equivalent; an empty spec means "%v".
var FmtProvider FormatProvider = fmtProvider{}

type fmtProvider struct{}

func (fmtProvider) Format(spec string, v any) (string, error) {
	verb := normalizeVerb(spec)
	return checkVerbOutput(fmt.Sprintf(verb, v), v)
}

// LocaleProvider formats with fmt verbs using the number conventions of tag,
// e.g. "%.2f" of 1234.5 is "1.234,50" for German.
func LocaleProvider(tag language.Tag) FormatProvider {
	return localeProvider{tag: tag}
}

// ParseLocale parses a BCP 47 tag such as "de-DE".
func ParseLocale(s string) (language.Tag, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("parse locale %q: %w", s, err)
	}
	return tag, nil
}

type localeProvider struct {
	tag language.Tag
}

func (p localeProvider) Format(spec string, v any) (string, error) {
	verb := normalizeVerb(spec)
	return checkVerbOutput(message.NewPrinter(p.tag).Sprintf(verb, v), v)
}

func normalizeVerb(spec string) string {
	switch {
	case spec == "":
		return "%v"
	case !strings.Contains(spec, "%"):
		return "%" + spec
	default:
		return spec
	}
}

// checkVerbOutput rejects fmt output carrying a "%!" error marker such as
// "%!d(string=abc)" or "%!(EXTRA int=1)".
func checkVerbOutput(out string, v any) (string, error) {
	if strings.Contains(out, "%!") && !strings.Contains(fmt.Sprint(v), "%!") {
		return "", fmt.Errorf("verb does not fit %T value: %s", v, out)
	}
	return out, nil
}

// HumanizeProvider renders numbers in human-friendly forms. Specs:
//
//	comma      thousands separators (default)
//	bytes      SI byte sizes, e.g. "83 MB"
//	ibytes     IEC byte sizes, e.g. "79 MiB"
//	ordinal    1st, 2nd, 3rd
//	ftoa       shortest float without trailing zeros
//	si:<unit>  SI prefixes with unit, e.g. "si:B/s" gives "2.5 kB/s"
var HumanizeProvider FormatProvider = humanizeProvider{}

type humanizeProvider struct{}

func (humanizeProvider) Format(spec string, v any) (string, error) {
	n, err := toNumber(v)
	if err != nil {
		return "", err
	}
	name, arg, _ := strings.Cut(spec, ":")
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "comma":
		switch {
		case n.isFloat:
			return humanize.Commaf(n.f), nil
		case n.i.IsInt64():
			return humanize.Comma(n.i.Int64()), nil
		default:
			return humanize.BigComma(new(big.Int).Set(n.i)), nil
		}
	case "bytes", "ibytes":
		if n.isFloat || n.i.Sign() < 0 {
			return "", fmt.Errorf("%s needs a non-negative integer, got %v", name, v)
		}
		iec := strings.EqualFold(name, "ibytes")
		switch {
		case n.i.IsUint64() && iec:
			return humanize.IBytes(n.i.Uint64()), nil
		case n.i.IsUint64():
			return humanize.Bytes(n.i.Uint64()), nil
		case iec:
			return humanize.BigIBytes(new(big.Int).Set(n.i)), nil
		default:
			return humanize.BigBytes(new(big.Int).Set(n.i)), nil
		}
	case "ordinal":
		if n.isFloat || !n.i.IsInt64() || n.i.Int64() > math.MaxInt || n.i.Int64() < math.MinInt {
			return "", fmt.Errorf("ordinal needs an int, got %v", v)
		}
		return humanize.Ordinal(int(n.i.Int64())), nil
	case "ftoa":
		return humanize.Ftoa(n.float()), nil
	case "si":
		return humanize.SI(n.float(), arg), nil
	default:
		return "", fmt.Errorf("unknown humanize spec %q", spec)
	}
}

// number holds an exact integer or a float.
type number struct {
	i       *big.Int
	f       float64
	isFloat bool
}

func (n number) float() float64 {
	if n.isFloat {
		return n.f
	}
	f, _ := new(big.Float).SetInt(n.i).Float64()
	return f
}

func toNumber(v any) (number, error) {
	if b, ok := v.(*big.Int); ok && b != nil {
		return number{i: b}, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // everything else is not a number
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{i: big.NewInt(rv.Int())}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return number{i: new(big.Int).SetUint64(rv.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		return number{f: rv.Float(), isFloat: true}, nil
	default:
		return number{}, fmt.Errorf("%T is not a number", v)
	}
}
