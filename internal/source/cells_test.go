package source

import (
	"testing"

	"github.com/KaramelBytes/retailboard/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCellInference(t *testing.T) {
	cases := []struct {
		in   string
		kind record.Kind
		want string
	}{
		{"42", record.KindInt, "42"},
		{" 19.99 ", record.KindDecimal, "19.99"},
		{"$19.99", record.KindDecimal, "19.99"},
		{"1,234.50", record.KindDecimal, "1234.50"},
		{"1.234,50", record.KindDecimal, "1234.50"},
		{"12,5", record.KindDecimal, "12.5"},
		{"2024-03-01", record.KindDate, "2024-03-01"},
		{"2024-03-01 10:30:00", record.KindDate, "2024-03-01 10:30:00"},
		{"Desk", record.KindString, "Desk"},
		{"", record.KindNull, ""},
		{" ", record.KindNull, ""},
	}
	for _, c := range cases {
		v := parseCell(c.in, Separators{})
		assert.Equal(t, c.kind, v.Kind(), "kind of %q", c.in)
		assert.Equal(t, c.want, v.String(), "value of %q", c.in)
	}
}

func TestParseNumericRejectsDatesAndTimes(t *testing.T) {
	for _, s := range []string{"03/01/2024", "10:30", "abc", "$"} {
		if _, ok := parseNumeric(s, Separators{}); ok {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestParseCellWithFixedSeparators(t *testing.T) {
	cases := []struct {
		in        string
		decimal   string
		thousands string
		want      string
	}{
		{"1,234", "", ",", "1234"},
		{"1,234", ".", "", "1234"},
		{"12,345,678", "", "comma", "12345678"},
		{"1,234.5", "", ",", "1234.5"},
		{"1.234", "comma", "", "1234"},
		{"1.234,5", ",", ".", "1234.5"},
		{"1 234,5", "", "space", "1234.5"},
		{"1 234.5", "", "space", "1234.5"},
	}
	for _, c := range cases {
		sep, err := ParseSeparators(c.decimal, c.thousands)
		require.NoError(t, err)
		v := parseCell(c.in, sep)
		require.Equal(t, record.KindDecimal, v.Kind(), "kind of %q", c.in)
		assert.True(t, v.Decimal().Equal(record.DecString(c.want).Decimal()), "%q with decimal=%q thousands=%q read as %s", c.in, c.decimal, c.thousands, v)
	}

	// a dot cannot appear in a comma-decimal number
	sep, err := ParseSeparators(",", "")
	require.NoError(t, err)
	assert.Equal(t, record.KindDecimal, parseCell("12,5", sep).Kind())
	if _, ok := parseNumeric("1.234.567,5", Separators{Decimal: ',', Thousands: ' '}); ok {
		t.Fatalf("expected a stray dot to be rejected")
	}
}

func TestParseSeparatorsRejectsBadMarks(t *testing.T) {
	_, err := ParseSeparators("space", "")
	assert.Error(t, err)
	_, err = ParseSeparators(".", "'")
	assert.Error(t, err)
	_, err = ParseSeparators(",", "comma")
	assert.Error(t, err)

	sep, err := ParseSeparators("", "")
	require.NoError(t, err)
	assert.Equal(t, Separators{}, sep)
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "product_name", fieldName("\ufeffProduct  Name ", 0))
	assert.Equal(t, "column_3", fieldName("  ", 2))
}

func TestFromTextSettlesColumnKinds(t *testing.T) {
	rs, err := fromText(
		[]string{"id", "price", "note", "sold"},
		[][]string{
			{"1", "10", "x", "2024-01-01"},
			{"2", "2.5", "007", ""},
			{"3"},
		},
		Separators{},
	)
	require.NoError(t, err)
	require.Equal(t, 3, rs.Len())

	kinds := map[string]record.Kind{}
	for _, f := range rs.Schema().Fields() {
		kinds[f.Name] = f.Kind
	}
	assert.Equal(t, record.KindInt, kinds["id"])
	assert.Equal(t, record.KindDecimal, kinds["price"])
	assert.Equal(t, record.KindString, kinds["note"])
	assert.Equal(t, record.KindDate, kinds["sold"])

	assert.Equal(t, "007", rs.Row(1).Value("note").String(), "mixed columns keep the original text")
	assert.Equal(t, "10", rs.Row(0).Value("price").String())
	assert.True(t, rs.Row(2).Value("price").IsNull(), "short rows pad with null")
}

func TestColumnClass(t *testing.T) {
	cases := map[string]class{
		"BIGINT":        classInt,
		"int4":          classInt,
		"UNSIGNED INT":  classInt,
		"INTEGER":       classInt,
		"DECIMAL(10,2)": classDecimal,
		"NUMERIC":       classDecimal,
		"DOUBLE":        classDecimal,
		"DATETIME":      classDate,
		"TIMESTAMPTZ":   classDate,
		"POINT":         classText,
		"VARCHAR":       classText,
		"":              classText,
	}
	for in, want := range cases {
		if got := columnClass(in); got != want {
			t.Fatalf("columnClass(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestSQLCellParsesTextProtocolValues(t *testing.T) {
	v, err := sqlCell("DECIMAL", []byte("1234.50"))
	require.NoError(t, err)
	assert.Equal(t, "1234.50", v.String())

	v, err = sqlCell("BIGINT", []byte("7"))
	require.NoError(t, err)
	assert.Equal(t, record.KindInt, v.Kind())

	v, err = sqlCell("DATE", "2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, record.KindDate, v.Kind())

	_, err = sqlCell("DATE", "soon")
	assert.Error(t, err)

	v, err = sqlCell("TEXT", nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}
