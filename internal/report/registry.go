package report

import (
	"errors"
	"fmt"
	"sort"

	"github.com/KaramelBytes/retailboard/internal/record"
)

// Datasets the reports read. A loader produces one RecordSet per dataset.
const (
	Orders     = "orders"
	OrderItems = "order_items"
	Products   = "products"
	Inventory  = "inventory"
)

// Datasets lists every dataset name in a stable order.
func Datasets() []string { return []string{Orders, OrderItems, Products, Inventory} }

// Definition describes one named report: what it reads, what it requires and how
// it is computed.
type Definition struct {
	Name     string
	Title    string
	Dataset  string
	Requires []string
	Columns  []record.Field

	numeric  []string
	dates    []string
	scope    func(record.Row) bool
	columns  func(Params) []record.Field
	validate func(Params) error
	chart    chart
	build    func(in *record.RecordSet, p Params, out *record.Builder) error
}

var registry = map[string]*Definition{}

func register(d *Definition) {
	if _, dup := registry[d.Name]; dup {
		panic("report: duplicate definition " + d.Name)
	}
	registry[d.Name] = d
}

// Lookup returns the definition registered under name.
func Lookup(name string) (*Definition, bool) {
	d, ok := registry[name]
	return d, ok
}

// Definitions returns every registered report sorted by name.
func Definitions() []*Definition {
	out := make([]*Definition, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns every registered report name, sorted.
func Names() []string {
	defs := Definitions()
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Name
	}
	return out
}

// ErrUnknownReport is returned for a name with no registered definition.
var ErrUnknownReport = errors.New("unknown report")

// Build computes the named report over rs.
func Build(name string, rs *record.RecordSet, p Params) (*Report, error) {
	d, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownReport, name)
	}
	return d.Build(rs, p)
}

// Build validates parameters and input, then computes the report. Rows outside
// the report's scope are dropped first. An empty input yields an empty report
// carrying the output columns. Failures never return a
// partial report.
func (d *Definition) Build(rs *record.RecordSet, p Params) (*Report, error) {
	if d.validate != nil {
		if err := d.validate(p); err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name, err)
		}
	}
	if rs != nil && d.scope != nil {
		rs = rs.Filter(d.scope)
	}
	if rs == nil || rs.Len() == 0 {
		return d.wrap(record.Empty(d.OutputColumns(p)...)), nil
	}
	if err := d.check(rs); err != nil {
		return nil, err
	}
	out := d.output(p)
	if err := d.build(rs, p, out); err != nil {
		var se *record.SchemaError
		if errors.As(err, &se) && se.Report == "" {
			se.Report = d.Name
			return nil, se
		}
		return nil, fmt.Errorf("%s: %w", d.Name, err)
	}
	return d.wrap(out.Build()), nil
}

// joined keeps rows where every field is present and non-null. It scopes reports
// over columns the source fills from an optional join (a customer, a shipping
// address), so orders without one fall outside the report. A field the set does
// not declare keeps the row and is left for the schema check to report.
func joined(fields ...string) func(record.Row) bool {
	return func(r record.Row) bool {
		for _, f := range fields {
			if v, ok := r.Get(f); ok && v.IsNull() {
				return false
			}
		}
		return true
	}
}

func (d *Definition) check(rs *record.RecordSet) error {
	errs := []error{rs.Require(d.Requires...)}
	for _, f := range d.numeric {
		errs = append(errs, rs.RequireKind(f, record.KindInt, record.KindDecimal))
	}
	for _, f := range d.dates {
		errs = append(errs, rs.RequireKind(f, record.KindDate))
	}
	for _, err := range errs {
		if err == nil {
			continue
		}
		if se, ok := err.(*record.SchemaError); ok {
			se.Report = d.Name
		}
		return err
	}
	return nil
}

func (d *Definition) wrap(rs *record.RecordSet) *Report {
	return &Report{Name: d.Name, Title: d.Title, Set: rs, chart: d.chart}
}

// OutputColumns is the report schema under p. Most reports have a fixed layout;
// some widen with their parameters.
func (d *Definition) OutputColumns(p Params) []record.Field {
	if d.columns != nil {
		return d.columns(p)
	}
	return d.Columns
}

func (d *Definition) output(p Params) *record.Builder {
	s, err := record.NewSchema(d.OutputColumns(p)...)
	if err != nil {
		panic(err)
	}
	return record.NewBuilder(s)
}
