package table

import (
	"errors"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type score struct {
	Name  string
	Score int
}

func scoreSchema(t *testing.T) *Schema[score] {
	t.Helper()
	s, err := NewSchema(
		Text("Name", func(r score) string { return r.Name }),
		Number("Score", func(r score) int { return r.Score }),
	)
	require.NoError(t, err)
	return s
}

func scoreConfig(t *testing.T, opts ...ColumnOption) *Configuration[score] {
	t.Helper()
	b := NewBuilder(scoreSchema(t))
	require.NoError(t, b.Register("Score", opts...))
	cfg, err := b.Build()
	require.NoError(t, err)
	return cfg
}

var twoScores = []score{{Name: "A", Score: 10}, {Name: "B", Score: 20}}

func TestRenderWithTotals(t *testing.T) {
	out, err := Render(twoScores, scoreConfig(t, Total()))
	require.NoError(t, err)

	want := strings.Join([]string{
		"Name  Score  ",
		"A     10     ",
		"B     20     ",
		"-------------",
		"      30     ",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestRenderWithoutConfiguration(t *testing.T) {
	out, err := Render(twoScores, DefaultConfiguration(scoreSchema(t)))
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name  Score  ", lines[0])
	assert.Equal(t, "A     10     ", lines[1])
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestRenderLineCount(t *testing.T) {
	records := make([]score, 7)
	for i := range records {
		records[i] = score{Name: strings.Repeat("x", i), Score: i * 3}
	}

	t.Run("with totals", func(t *testing.T) {
		out, err := Render(records, scoreConfig(t, Total()))
		require.NoError(t, err)
		assert.Len(t, strings.Split(out, "\n"), len(records)+3)
	})

	t.Run("without totals", func(t *testing.T) {
		out, err := Render(records, scoreConfig(t, Align(AlignRight)))
		require.NoError(t, err)
		assert.Len(t, strings.Split(out, "\n"), len(records)+1)
	})

	t.Run("zero rows with totals", func(t *testing.T) {
		tbl, err := Layout([]score{}, scoreConfig(t, Total()))
		require.NoError(t, err)
		assert.False(t, tbl.HasTotals())
		assert.Equal(t, "Name  Score  ", tbl.String())
	})
}

func TestRenderEqualLineWidths(t *testing.T) {
	records := []score{
		{Name: "short", Score: 1},
		{Name: "a considerably longer name", Score: 123456},
		{Name: "日本語", Score: -7},
	}
	for _, align := range []Alignment{AlignLeft, AlignCenter, AlignRight} {
		t.Run(align.String(), func(t *testing.T) {
			tbl, err := Layout(records, scoreConfig(t, Align(align), Total()))
			require.NoError(t, err)
			for _, line := range tbl.Lines() {
				assert.Equal(t, tbl.Width(), widthCondition.StringWidth(line), "line %q", line)
			}
			assert.Equal(t, []int{len("a considerably longer name") + Spacing, len("123456") + Spacing}, tbl.Widths)
		})
	}
}

func TestRenderAlignment(t *testing.T) {
	t.Run("left content is a prefix", func(t *testing.T) {
		tbl, err := Layout(twoScores, scoreConfig(t))
		require.NoError(t, err)
		cell := tbl.Rows[0][6:]
		assert.True(t, strings.HasPrefix(cell, "10"))
		assert.Empty(t, strings.Trim(strings.TrimPrefix(cell, "10"), " "))
	})

	t.Run("right content is a suffix", func(t *testing.T) {
		tbl, err := Layout(twoScores, scoreConfig(t, Align(AlignRight), Total()))
		require.NoError(t, err)
		assert.Equal(t, "Name    Score", tbl.Header)
		assert.Equal(t, "A          10", tbl.Rows[0])
		assert.Equal(t, "           30", tbl.Totals)
	})

	t.Run("center puts odd space on the right", func(t *testing.T) {
		s, err := NewSchema(Text("Code", func(r string) string { return r }))
		require.NoError(t, err)
		b := NewBuilder(s)
		require.NoError(t, b.Register("Code", Align(AlignCenter)))
		cfg, err := b.Build()
		require.NoError(t, err)

		tbl, err := Layout([]string{"a", "abcd", "abc"}, cfg)
		require.NoError(t, err)
		assert.Equal(t, " Code ", tbl.Header)
		assert.Equal(t, []string{"  a   ", " abcd ", " abc  "}, tbl.Rows)
	})
}

func TestRenderHeaderOverride(t *testing.T) {
	out, err := Render(twoScores, scoreConfig(t, Header("Points scored")))
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "Name  Points scored  ", lines[0])
	assert.Equal(t, "A     10             ", lines[1])
}

func TestRenderTotalWidensColumn(t *testing.T) {
	records := []score{{Name: "a", Score: 999}, {Name: "b", Score: 1}}
	tbl, err := Layout(records, scoreConfig(t, Header("S"), Total(), Align(AlignRight)))
	require.NoError(t, err)
	assert.Equal(t, []int{4 + Spacing, 4 + Spacing}, tbl.Widths)
	assert.Equal(t, "Name       S", tbl.Header)
	assert.Equal(t, "        1000", tbl.Totals)
}

func TestRenderFormat(t *testing.T) {
	type item struct {
		Label string
		Price float64
	}
	s, err := NewSchema(
		Text("Label", func(r item) string { return r.Label }),
		Number("Price", func(r item) float64 { return r.Price }),
	)
	require.NoError(t, err)

	b := NewBuilder(s)
	require.NoError(t, b.Register("Price", Format(".2f"), Align(AlignRight), Total()))
	cfg, err := b.Build()
	require.NoError(t, err)

	out, err := Render([]item{{"tea", 1.5}, {"cake", 2.25}}, cfg)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"Label    Price",
		"tea       1.50",
		"cake      2.25",
		"--------------",
		"          3.75",
	}, "\n"), out)
}

func TestRenderFormatError(t *testing.T) {
	s := scoreSchema(t)
	b := NewBuilder(s)
	require.NoError(t, b.Register("Name", Format("%d")))
	cfg, err := b.Build()
	require.NoError(t, err)

	out, err := Render(twoScores, cfg)
	require.Error(t, err)
	assert.Empty(t, out)
	assert.True(t, errors.Is(err, ErrFormat))

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Name", fe.Field)
	assert.Equal(t, 0, fe.Row)
	assert.Equal(t, "%d", fe.Spec)
}

func TestRenderTotalsFormatError(t *testing.T) {
	calls := 0
	failOnTotal := FormatProviderFunc(func(spec string, v any) (string, error) {
		calls++
		if calls > len(twoScores) {
			return "", errors.New("boom")
		}
		return FmtProvider.Format(spec, v)
	})

	_, err := Render(twoScores, scoreConfig(t, Provider(failOnTotal), Total()))
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, -1, fe.Row)
	assert.Contains(t, fe.Error(), "totals")
}

func TestRenderDeterministic(t *testing.T) {
	cfg := scoreConfig(t, Total(), Align(AlignCenter))
	first, err := Render(twoScores, cfg)
	require.NoError(t, err)
	second, err := Render(twoScores, cfg)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderTotalsCorrectness(t *testing.T) {
	records := []score{{"a", 3}, {"b", 4}, {"c", 5}, {"d", -2}}
	tbl, err := Layout(records, scoreConfig(t, Total(), Format("%+d")))
	require.NoError(t, err)
	assert.Equal(t, "+10", strings.TrimSpace(tbl.Totals))
}

func TestRenderFlattensMultilineCells(t *testing.T) {
	out, err := Render([]score{{Name: "two\nlines", Score: 1}}, DefaultConfiguration(scoreSchema(t)))
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], `two\nlines`))
	assert.Equal(t, len(lines[0]), len(lines[1]))
}

func TestLayoutRejectsMissingConfiguration(t *testing.T) {
	_, err := Layout[score](twoScores, nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestPad(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		width int
		align Alignment
		want  string
	}{
		{"left", "ab", 5, AlignLeft, "ab   "},
		{"right", "ab", 5, AlignRight, "   ab"},
		{"center even", "ab", 6, AlignCenter, "  ab  "},
		{"center odd", "ab", 5, AlignCenter, " ab  "},
		{"exact", "abc", 3, AlignRight, "abc"},
		{"wide runes", "日本", 6, AlignLeft, "日本  "},
		{"empty", "", 2, AlignCenter, "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pad(tt.s, tt.width, tt.align))
		})
	}
}

func TestLayoutRejectsNilRecords(t *testing.T) {
	s, err := StructFields[*score]()
	require.NoError(t, err)
	records := []*score{{Name: "a", Score: 1}, nil}

	t.Run("without totals", func(t *testing.T) {
		_, err := Render(records, DefaultConfiguration(s))
		require.ErrorIs(t, err, ErrFormat)
		assert.ErrorIs(t, err, ErrNilRecord)

		var fe *FormatError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, 1, fe.Row)
		assert.Equal(t, "format row 1: nil record", fe.Error())
	})

	t.Run("with totals", func(t *testing.T) {
		b := NewBuilder(s)
		require.NoError(t, b.Register("Score", Total()))
		cfg, err := b.Build()
		require.NoError(t, err)

		_, err = Render(records, cfg)
		require.ErrorIs(t, err, ErrFormat)
		assert.ErrorIs(t, err, ErrNilRecord)
	})
}

type failingSum struct{}

func (failingSum) Add(any) error { return errors.New("overflow") }
func (failingSum) Total() any    { return 0 }

func TestRenderAccumulatorError(t *testing.T) {
	s, err := NewSchema(
		Summed("Score", KindNumber, func(r score) any { return r.Score }, func() Accumulator { return failingSum{} }),
	)
	require.NoError(t, err)
	b := NewBuilder(s)
	require.NoError(t, b.Register("Score", Total()))
	cfg, err := b.Build()
	require.NoError(t, err)

	_, err = Render(twoScores, cfg)
	require.ErrorIs(t, err, ErrFormat)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Score", fe.Field)
	assert.Equal(t, 0, fe.Row)
	assert.Contains(t, fe.Error(), "overflow")
}

func TestRenderWidthIgnoresEastAsianSetting(t *testing.T) {
	orig := runewidth.DefaultCondition.EastAsianWidth
	t.Cleanup(func() { runewidth.DefaultCondition.EastAsianWidth = orig })
	runewidth.DefaultCondition.EastAsianWidth = true

	records := []score{{Name: "±±±±°", Score: 1}}
	tbl, err := Layout(records, DefaultConfiguration(scoreSchema(t)))
	require.NoError(t, err)
	assert.Equal(t, []int{5 + Spacing, len("Score") + Spacing}, tbl.Widths)
	assert.Equal(t, "±±±±°  1      ", tbl.Rows[0])
}
