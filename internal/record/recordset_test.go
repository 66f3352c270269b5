package record

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var salesFields = []Field{
	{Name: "product_name", Kind: KindString},
	{Name: "total_price", Kind: KindDecimal},
}

func TestNewValidatesWidthAndKind(t *testing.T) {
	_, err := New(salesFields, []Value{Str("a")})
	require.Error(t, err)

	_, err = New(salesFields, []Value{Int(3), DecString("1.50")})
	require.Error(t, err)

	rs, err := New(salesFields, []Value{Str("a"), Int(3)}, []Value{Str("b"), Null()})
	require.NoError(t, err)
	assert.Equal(t, KindDecimal, rs.Row(0).Value("total_price").Kind(), "ints widen into decimal fields")
	assert.True(t, rs.Row(1).Value("total_price").IsNull())
}

func TestNewSchemaRejectsDuplicates(t *testing.T) {
	if _, err := NewSchema(Field{Name: "a"}, Field{Name: "a"}); err == nil {
		t.Fatalf("expected duplicate field error")
	}
	if _, err := NewSchema(Field{Name: ""}); err == nil {
		t.Fatalf("expected empty name error")
	}
}

func TestRequire(t *testing.T) {
	rs := MustNew(salesFields, []Value{Str("a"), DecString("1")}, []Value{Str("b"), Null()})

	err := rs.Require("product_name", "state")
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "state", se.Field)
	assert.Equal(t, -1, se.Row)

	err = rs.Require("total_price")
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Row)
	assert.Contains(t, se.Error(), "on row 2")

	require.NoError(t, rs.Require("product_name"))
}

func TestRequireKind(t *testing.T) {
	rs := MustNew([]Field{{Name: "price", Kind: KindNull}}, []Value{Str("cheap")})
	err := rs.RequireKind("price", KindInt, KindDecimal)
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Error(), "holds a string value, want integer or decimal")
}

func TestFromMaps(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rs, err := FromMaps([]map[string]any{
		{"product_name": "Desk", "qty": 2},
		{"product_name": "Lamp", "qty": 1.5, "order_date": day},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"product_name", "qty", "order_date"}, rs.Schema().FieldNames())

	f, _ := rs.Schema().Lookup("qty")
	assert.Equal(t, KindDecimal, f.Kind)
	assert.True(t, rs.Row(0).Value("order_date").IsNull())
	assert.Equal(t, "2024-03-01", rs.Row(1).Value("order_date").String())
}

func TestRowsReturnsCopy(t *testing.T) {
	rs := MustNew(salesFields, []Value{Str("a"), DecString("1")})
	rows := rs.Rows()
	rows[0] = Row{}
	if rs.Row(0).Value("product_name").Text() != "a" {
		t.Fatalf("record set mutated through Rows()")
	}
}

func TestValueCompareExactAcrossKinds(t *testing.T) {
	assert.Equal(t, 0, Compare(Int(10), DecString("10.00")))
	assert.Equal(t, -1, Compare(Int(1), DecString("1.01")))
	assert.Equal(t, -1, Compare(Str("a"), Int(5)), "unrelated kinds order by kind")
	assert.Equal(t, -1, Compare(Null(), Int(-100)))

	sum := DecString("0.1").Decimal().Add(decimal.RequireFromString("0.2"))
	assert.True(t, Dec(sum).Equal(DecString("0.3")), "decimal arithmetic must not drift")
}

func TestFromAnyRejectsNaN(t *testing.T) {
	zero := 0.0
	if _, err := FromAny(zero / zero); err == nil {
		t.Fatalf("expected NaN to be rejected")
	}
	v, err := FromAny([]byte("Desk"))
	require.NoError(t, err)
	assert.Equal(t, KindString, v.Kind())
}
