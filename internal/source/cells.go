package source

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/retailboard/internal/record"
	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

var numberRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Separators fixes the decimal mark and thousands separator of text numbers. A
// zero field is inferred per cell.
type Separators struct {
	Decimal   rune
	Thousands rune
}

// ParseSeparators reads the csv_decimal and csv_thousands settings: "." or "dot",
// "," or "comma", and for thousands also "space". Empty leaves a mark inferred.
func ParseSeparators(decimalMark, thousands string) (Separators, error) {
	var sep Separators
	switch strings.ToLower(strings.TrimSpace(decimalMark)) {
	case ",", "comma":
		sep.Decimal = ','
	case ".", "dot":
		sep.Decimal = '.'
	case "":
	default:
		return sep, fmt.Errorf("unsupported decimal separator %q (use '.'|'comma')", decimalMark)
	}
	switch strings.ToLower(thousands) {
	case ",", "comma":
		sep.Thousands = ','
	case ".", "dot":
		sep.Thousands = '.'
	case " ", "space":
		sep.Thousands = ' '
	case "":
	default:
		return sep, fmt.Errorf("unsupported thousands separator %q (use ','|'.'|'space')", thousands)
	}
	if sep.Decimal != 0 && sep.Decimal == sep.Thousands {
		return sep, fmt.Errorf("decimal and thousands separators are both %q", string(sep.Decimal))
	}
	return sep, nil
}

// resolve settles both marks for raw. With neither set, the rightmost of ','
// and '.' is the decimal mark when both appear, and a lone comma is a decimal
// mark too. With one set, the other of ',' and '.' takes the remaining role.
func (sep Separators) resolve(raw string) (dec, thou rune) {
	dec, thou = sep.Decimal, sep.Thousands
	switch {
	case dec == 0 && thou == 0:
		dec = '.'
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0 && cpos > dpos:
			dec, thou = ',', '.'
		case cpos >= 0 && dpos >= 0:
			thou = ','
		case cpos >= 0 && strings.Count(raw, ",") == 1:
			dec = ','
		case cpos >= 0:
			thou = ','
		}
	case dec == 0 && thou == ' ':
		dec = '.'
		if strings.Contains(raw, ",") && !strings.Contains(raw, ".") {
			dec = ','
		}
	case dec == 0:
		dec = other(thou)
	case thou == 0:
		thou = other(dec)
	}
	return dec, thou
}

func other(mark rune) rune {
	if mark == ',' {
		return '.'
	}
	return ','
}

// parseCell infers a typed value from text: integer, decimal (with locale
// separators and a leading currency symbol), date, else string. Blank is Null.
func parseCell(s string, sep Separators) record.Value {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
	if raw == "" {
		return record.Null()
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return record.Int(i)
	}
	if d, ok := parseNumeric(raw, sep); ok {
		return record.Dec(d)
	}
	if t, ok := parseTimeMaybe(raw); ok {
		return record.Date(t)
	}
	return record.Str(raw)
}

// parseNumeric accepts "1,234.50", "1.234,50", "$19.99" and the like, reading
// separators as sep settles them.
func parseNumeric(raw string, sep Separators) (decimal.Decimal, bool) {
	raw = strings.TrimLeft(raw, "$€£")
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, "/:") {
		return decimal.Decimal{}, false
	}
	dec, thou := sep.resolve(raw)
	if thou != 0 {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	raw = strings.ReplaceAll(raw, " ", "")
	if dec != '.' {
		if strings.Contains(raw, ".") {
			return decimal.Decimal{}, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	if !numberRe.MatchString(raw) {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

var dateLayouts = []string{
	"2006-01-02", "2006-01-02 15:04:05", "2006-01-02 15:04", time.RFC3339, "2006/01/02",
}

// parseTimeMaybe tries the common ISO layouts first and falls back to dateparse
// for everything else. Times are read as UTC.
func parseTimeMaybe(s string) (time.Time, bool) {
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	if !strings.ContainsAny(s, "0123456789") {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// fieldName normalizes a header: "Product Name" becomes "product_name".
func fieldName(h string, i int) string {
	name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	name = strings.Join(strings.Fields(name), "_")
	if name == "" {
		return fmt.Sprintf("column_%d", i+1)
	}
	return name
}

// assemble builds a RecordSet from typed cells, settling one kind per column.
// Int and Decimal mix into Decimal. Any other mix falls back to String, rendered
// from the original text when text is given.
func assemble(names []string, cells [][]record.Value, text func(r, c int) string) (*record.RecordSet, error) {
	fields := make([]record.Field, len(names))
	for c, n := range names {
		fields[c] = record.Field{Name: n, Kind: record.KindNull}
	}
	mixed := make([]bool, len(names))
	for _, row := range cells {
		for c, v := range row {
			if v.IsNull() || mixed[c] {
				continue
			}
			switch k := fields[c].Kind; {
			case k == record.KindNull:
				fields[c].Kind = v.Kind()
			case k == v.Kind():
			case k.Numeric() && v.Kind().Numeric():
				fields[c].Kind = record.KindDecimal
			default:
				mixed[c] = true
			}
		}
	}
	for c := range fields {
		if mixed[c] {
			fields[c].Kind = record.KindString
		}
	}
	schema, err := record.NewSchema(fields...)
	if err != nil {
		return nil, err
	}
	b := record.NewBuilder(schema)
	for r, row := range cells {
		out := make([]record.Value, len(row))
		for c, v := range row {
			if mixed[c] && !v.IsNull() && v.Kind() != record.KindString {
				if text != nil {
					v = record.Str(strings.TrimSpace(text(r, c)))
				} else {
					v = record.Str(v.String())
				}
			}
			out[c] = v
		}
		if err := b.Append(out...); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// fromText infers every cell of a header-led grid. Short rows are padded with
// Null and extra cells are dropped.
func fromText(header []string, rows [][]string, sep Separators) (*record.RecordSet, error) {
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = fieldName(h, i)
	}
	cells := make([][]record.Value, len(rows))
	for r, row := range rows {
		vals := make([]record.Value, len(names))
		for c := range names {
			if c < len(row) {
				vals[c] = parseCell(row[c], sep)
			}
		}
		cells[r] = vals
	}
	return assemble(names, cells, func(r, c int) string { return rows[r][c] })
}
