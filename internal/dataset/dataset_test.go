package dataset

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/fwtable/pkg/loader"
	"github.com/oakwood-commons/fwtable/pkg/table"
)

func load(t *testing.T, input string) []loader.Record {
	t.Helper()
	records, err := loader.LoadRecords(input)
	require.NoError(t, err)
	return records
}

func TestInferKinds(t *testing.T) {
	records := load(t, `[
  {"name": "A", "count": 1, "price": 2, "meta": {"k": "v"}, "maybe": null},
  {"name": "B", "count": 2, "price": 2.5, "meta": [1, 2], "maybe": 3}
]`)

	s, err := Infer(records)
	require.NoError(t, err)

	var names []string
	kinds := map[string]table.Kind{}
	for _, f := range s.Fields() {
		names = append(names, f.Name())
		kinds[f.Name()] = f.Kind()
	}
	assert.Equal(t, []string{"name", "count", "price", "meta", "maybe"}, names)
	assert.Equal(t, table.KindText, kinds["name"])
	assert.Equal(t, table.KindNumber, kinds["count"])
	assert.Equal(t, table.KindNumber, kinds["price"])
	assert.Equal(t, table.KindOther, kinds["meta"])
	assert.Equal(t, table.KindOther, kinds["maybe"])

	count, _ := s.Field("count")
	assert.Equal(t, int64(2), count.Value(records[1]))
	price, _ := s.Field("price")
	assert.Equal(t, 2.0, price.Value(records[0]))
	meta, _ := s.Field("meta")
	assert.Equal(t, `{"k":"v"}`, meta.Value(records[0]))
	assert.Equal(t, `[1,2]`, meta.Value(records[1]))
}

func TestInferRendersTotals(t *testing.T) {
	records := load(t, `
- item: apples
  qty: 3
  cost: 1.25
- item: pears
  qty: 4
  cost: 2.5
`)
	s, err := Infer(records)
	require.NoError(t, err)

	b := table.NewBuilder(s)
	require.NoError(t, b.Register("qty", table.Total(), table.Align(table.AlignRight)))
	require.NoError(t, b.Register("cost", table.Total(), table.Format("%.2f"), table.Align(table.AlignRight)))
	assert.ErrorIs(t, b.Register("item", table.Total()), table.ErrUnsupportedTotal)

	b = table.NewBuilder(s)
	require.NoError(t, b.Register("qty", table.Total(), table.Align(table.AlignRight)))
	require.NoError(t, b.Register("cost", table.Total(), table.Format("%.2f"), table.Align(table.AlignRight)))
	cfg, err := b.Build()
	require.NoError(t, err)

	out, err := table.Render(records, cfg)
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "item      qty  cost", lines[0])
	assert.Equal(t, "apples      3  1.25", lines[1])
	assert.Equal(t, "            7  3.75", lines[4])
}

func TestInferErrors(t *testing.T) {
	t.Run("no records", func(t *testing.T) {
		_, err := Infer(nil)
		assert.Error(t, err)
	})

	t.Run("heterogeneous records", func(t *testing.T) {
		_, err := Infer(load(t, `[{"a": 1, "b": 2}, {"a": 1, "c": 2}]`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "record 1")
	})

	t.Run("key order may differ", func(t *testing.T) {
		s, err := Infer(load(t, `[{"a": 1, "b": 2}, {"b": 3, "a": 4}]`))
		require.NoError(t, err)
		assert.Equal(t, "a", s.Fields()[0].Name())
	})
}

func TestWiden(t *testing.T) {
	assert.Equal(t, classString, widen(classInt, classString, true))
	assert.Equal(t, classFloat, widen(classInt, classFloat, false))
	assert.Equal(t, classFloat, widen(classFloat, classInt, false))
	assert.Equal(t, classOther, widen(classInt, classString, false))
	assert.Equal(t, classOther, widen(classString, classOther, false))
	assert.Equal(t, classBigInt, widen(classInt, classBigInt, false))
	assert.Equal(t, classBigInt, widen(classBigInt, classInt, false))
	assert.Equal(t, classFloat, widen(classBigInt, classFloat, false))
}

func TestInferLargeUnsignedIntegers(t *testing.T) {
	records := load(t, `
- n: 18446744073709551615
- n: 1
`)
	s, err := Infer(records)
	require.NoError(t, err)

	n, ok := s.Field("n")
	require.True(t, ok)
	assert.Equal(t, table.KindNumber, n.Kind())
	assert.True(t, n.Summable())

	b := table.NewBuilder(s)
	require.NoError(t, b.Register("n", table.Total(), table.Align(table.AlignRight)))
	cfg, err := b.Build()
	require.NoError(t, err)

	out, err := table.Render(records, cfg)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"                     n",
		"  18446744073709551615",
		"                     1",
		"----------------------",
		"  18446744073709551616",
	}, "\n"), out)
}

func TestInferLargeAndNegativeIntegers(t *testing.T) {
	records := load(t, `
- n: -5
- n: 18446744073709551615
`)
	s, err := Infer(records)
	require.NoError(t, err)

	b := table.NewBuilder(s)
	require.NoError(t, b.Register("n", table.Total()))
	cfg, err := b.Build()
	require.NoError(t, err)

	tbl, err := table.Layout(records, cfg)
	require.NoError(t, err)
	assert.Equal(t, "-5", strings.TrimSpace(tbl.Rows[0]))
	assert.Equal(t, "18446744073709551610", strings.TrimSpace(tbl.Totals))
}

func TestAsInt64RejectsOverflow(t *testing.T) {
	_, ok := asInt64(uint64(math.MaxUint64))
	assert.False(t, ok)
	n, ok := asInt64(uint64(math.MaxInt64))
	assert.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), n)
	assert.Equal(t, classBigInt, classify(uint64(math.MaxUint64)))
}
