package record

import (
	"fmt"
	"sort"
	"strings"
)

// Field describes a single column of a RecordSet.
type Field struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Schema is the ordered field list shared by every row of a RecordSet.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema builds a schema; field names must be unique and non-empty.
func NewSchema(fields ...Field) (*Schema, error) {
	s := &Schema{fields: make([]Field, len(fields)), index: make(map[string]int, len(fields))}
	for i, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return nil, fmt.Errorf("field %d has an empty name", i+1)
		}
		if _, dup := s.index[name]; dup {
			return nil, fmt.Errorf("duplicate field %q", name)
		}
		s.fields[i] = Field{Name: name, Kind: f.Kind}
		s.index[name] = i
	}
	return s, nil
}

// Fields returns a copy of the field list.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// FieldNames returns an ordered list of field names.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Has reports whether the schema declares name.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Lookup returns the field declared under name.
func (s *Schema) Lookup(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

func (s *Schema) Len() int { return len(s.fields) }

// Row is an ordered mapping from field name to Value. Rows are immutable.
type Row struct {
	schema *Schema
	vals   []Value
}

// Get returns the value stored under name and whether the field exists.
func (r Row) Get(name string) (Value, bool) {
	if r.schema == nil {
		return Value{}, false
	}
	i, ok := r.schema.index[name]
	if !ok {
		return Value{}, false
	}
	return r.vals[i], true
}

// Value returns the value stored under name, or Null.
func (r Row) Value(name string) Value {
	v, _ := r.Get(name)
	return v
}

func (r Row) Fields() []string {
	if r.schema == nil {
		return nil
	}
	return r.schema.FieldNames()
}

// Values returns a copy of the row's cells in schema order.
func (r Row) Values() []Value {
	out := make([]Value, len(r.vals))
	copy(out, r.vals)
	return out
}

// RecordSet is an ordered sequence of rows sharing a schema.
type RecordSet struct {
	schema *Schema
	rows   []Row
}

// New builds a RecordSet. Each row must match the schema's width and every
// non-null cell must carry the declared kind (ints are accepted for decimal fields).
func New(fields []Field, rows ...[]Value) (*RecordSet, error) {
	schema, err := NewSchema(fields...)
	if err != nil {
		return nil, err
	}
	b := NewBuilder(schema)
	for _, r := range rows {
		if err := b.Append(r...); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// MustNew is New for literals whose shape is known to be valid.
func MustNew(fields []Field, rows ...[]Value) *RecordSet {
	rs, err := New(fields, rows...)
	if err != nil {
		panic(err)
	}
	return rs
}

// Empty returns a zero-row set over fields.
func Empty(fields ...Field) *RecordSet {
	return MustNew(fields)
}

// FromMaps builds a RecordSet from loosely typed records, as emitted by decoders and
// database drivers. Fields are the union of keys in first-seen order (keys of a single
// record are taken in sorted order); a record missing a key holds Null there. Field
// kinds are taken from the first non-null value.
func FromMaps(records []map[string]any) (*RecordSet, error) {
	var names []string
	seen := map[string]int{}
	for _, rec := range records {
		for _, k := range sortedKeys(rec) {
			if _, ok := seen[k]; !ok {
				seen[k] = len(names)
				names = append(names, k)
			}
		}
	}
	fields := make([]Field, len(names))
	for i, n := range names {
		fields[i] = Field{Name: n, Kind: KindNull}
	}
	cells := make([][]Value, len(records))
	for ri, rec := range records {
		row := make([]Value, len(names))
		for k, raw := range rec {
			v, err := FromAny(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d field %q: %w", ri+1, k, err)
			}
			idx := seen[k]
			row[idx] = v
			switch {
			case fields[idx].Kind == KindNull:
				fields[idx].Kind = v.Kind()
			case fields[idx].Kind == KindInt && v.Kind() == KindDecimal:
				fields[idx].Kind = KindDecimal
			}
		}
		cells[ri] = row
	}
	return New(fields, cells...)
}

func (rs *RecordSet) Schema() *Schema { return rs.schema }
func (rs *RecordSet) Len() int { return len(rs.rows) }

// Row returns the i-th row.
func (rs *RecordSet) Row(i int) Row { return rs.rows[i] }

// Rows returns a copy of the row slice; the rows themselves are shared and immutable.
func (rs *RecordSet) Rows() []Row {
	out := make([]Row, len(rs.rows))
	copy(out, rs.rows)
	return out
}

// Require checks that every named field is declared and non-null on every row.
func (rs *RecordSet) Require(fields ...string) error {
	for _, f := range fields {
		i, ok := rs.schema.index[f]
		if !ok {
			return &SchemaError{Field: f, Row: -1}
		}
		for ri, r := range rs.rows {
			if r.vals[i].IsNull() {
				return &SchemaError{Field: f, Row: ri}
			}
		}
	}
	return nil
}

// RequireKind checks that every non-null value of field has one of kinds.
func (rs *RecordSet) RequireKind(field string, kinds ...Kind) error {
	i, ok := rs.schema.index[field]
	if !ok {
		return &SchemaError{Field: field, Row: -1}
	}
	for ri, r := range rs.rows {
		v := r.vals[i]
		if v.IsNull() || kindIn(v.Kind(), kinds) {
			continue
		}
		return &SchemaError{Field: field, Row: ri, Reason: fmt.Sprintf("holds a %s value, want %s", v.Kind(), kindList(kinds))}
	}
	return nil
}

// Filter returns a new set sharing the schema with the rows keep accepts.
func (rs *RecordSet) Filter(keep func(Row) bool) *RecordSet {
	out := &RecordSet{schema: rs.schema}
	for _, r := range rs.rows {
		if keep(r) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// subset wraps rows that already belong to this set's schema.
func (rs *RecordSet) subset(rows []Row) *RecordSet {
	return &RecordSet{schema: rs.schema, rows: rows}
}

// Builder accumulates rows for a RecordSet. A Builder is not safe for concurrent use;
// the RecordSet it produces is.
type Builder struct {
	schema *Schema
	rows   []Row
	built  bool
}

func NewBuilder(schema *Schema) *Builder { return &Builder{schema: schema} }

// Append validates and adds one row of cells in schema order.
func (b *Builder) Append(cells ...Value) error {
	if b.built {
		return fmt.Errorf("builder already produced its record set")
	}
	if len(cells) != len(b.schema.fields) {
		return fmt.Errorf("row %d has %d values, schema has %d fields", len(b.rows)+1, len(cells), len(b.schema.fields))
	}
	vals := make([]Value, len(cells))
	for i, c := range cells {
		want := b.schema.fields[i].Kind
		if !c.IsNull() && want != KindNull && c.Kind() != want && !(want == KindDecimal && c.Kind() == KindInt) {
			return fmt.Errorf("row %d field %q: got %s, want %s", len(b.rows)+1, b.schema.fields[i].Name, c.Kind(), want)
		}
		if want == KindDecimal && c.Kind() == KindInt {
			c = Dec(c.Decimal())
		}
		vals[i] = c
	}
	b.rows = append(b.rows, Row{schema: b.schema, vals: vals})
	return nil
}

// Build finalizes the set. Further Appends fail.
func (b *Builder) Build() *RecordSet {
	b.built = true
	return &RecordSet{schema: b.schema, rows: b.rows}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func kindIn(k Kind, kinds []Kind) bool {
	for _, x := range kinds {
		if k == x {
			return true
		}
	}
	return false
}

func kindList(kinds []Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, " or ")
}
