package record

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the scalar type carried by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindDecimal
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText renders the kind by name in JSON and YAML documents.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Numeric reports whether values of this kind compare as numbers.
func (k Kind) Numeric() bool { return k == KindInt || k == KindDecimal }

// Value is an immutable scalar cell. The zero Value is Null.
type Value struct {
	kind Kind
	s    string
	i    int64
	d    decimal.Decimal
	t    time.Time
}

func Null() Value { return Value{} }
func Str(s string) Value { return Value{kind: KindString, s: s} }
func Int(i int64) Value { return Value{kind: KindInt, i: i} }
func Dec(d decimal.Decimal) Value { return Value{kind: KindDecimal, d: d} }
func Date(t time.Time) Value { return Value{kind: KindDate, t: t} }

// DecString parses s as an exact decimal; it panics on malformed input and is meant
// for literals in code and tests.
func DecString(s string) Value { return Dec(decimal.RequireFromString(s)) }

// FromAny converts a loosely typed cell (as produced by database drivers and
// decoders) into a Value.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case string:
		return Str(x), nil
	case []byte:
		return Str(string(x)), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return Dec(decimal.RequireFromString(strconv.FormatUint(x, 10))), nil
		}
		return Int(int64(x)), nil
	case float32:
		return Dec(decimal.NewFromFloat32(x)), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return Value{}, fmt.Errorf("non-finite number %v", x)
		}
		return Dec(decimal.NewFromFloat(x)), nil
	case decimal.Decimal:
		return Dec(x), nil
	case time.Time:
		return Date(x), nil
	case bool:
		if x {
			return Int(1), nil
		}
		return Int(0), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", v)
	}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Time() time.Time { return v.t }

// Text returns the string payload, or the rendered value for non-string kinds.
func (v Value) Text() string {
	if v.kind == KindString {
		return v.s
	}
	return v.String()
}

// Int64 returns the integer payload; decimals are truncated.
func (v Value) Int64() int64 {
	switch v.kind {
	case KindInt:
		return v.i
	case KindDecimal:
		return v.d.IntPart()
	}
	return 0
}

// Decimal returns the numeric payload as an exact decimal. Non-numeric values yield zero.
func (v Value) Decimal() decimal.Decimal {
	switch v.kind {
	case KindInt:
		return decimal.NewFromInt(v.i)
	case KindDecimal:
		return v.d
	}
	return decimal.Zero
}

// Float64 is meant for charting only.
func (v Value) Float64() float64 {
	f, _ := v.Decimal().Float64()
	return f
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindDecimal:
		if v.d.Exponent() < 0 {
			return v.d.StringFixed(-v.d.Exponent())
		}
		return v.d.String()
	case KindDate:
		if v.t.Hour() == 0 && v.t.Minute() == 0 && v.t.Second() == 0 && v.t.Nanosecond() == 0 {
			return v.t.Format("2006-01-02")
		}
		return v.t.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Compare orders two values. Nulls sort before everything, numbers compare
// exactly across int and decimal kinds, and otherwise unrelated kinds order by kind.
func Compare(a, b Value) int {
	if a.kind.Numeric() && b.kind.Numeric() {
		if a.kind == KindInt && b.kind == KindInt {
			switch {
			case a.i < b.i:
				return -1
			case a.i > b.i:
				return 1
			}
			return 0
		}
		return a.Decimal().Cmp(b.Decimal())
	}
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindString:
		return strings.Compare(a.s, b.s)
	case KindDate:
		switch {
		case a.t.Before(b.t):
			return -1
		case a.t.After(b.t):
			return 1
		}
	}
	return 0
}

// Equal reports value equality (10 and 10.00 are equal).
func (v Value) Equal(o Value) bool { return Compare(v, o) == 0 }

// key is a canonical encoding used to bucket equal values together.
func (v Value) key() string {
	switch v.kind {
	case KindNull:
		return "~"
	case KindString:
		return "s" + strconv.Quote(v.s)
	case KindInt:
		return "n" + strconv.FormatInt(v.i, 10)
	case KindDecimal:
		return "n" + v.d.String()
	case KindDate:
		return "t" + v.t.UTC().Format(time.RFC3339Nano)
	}
	return "?"
}
