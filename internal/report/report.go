package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KaramelBytes/retailboard/internal/record"
)

// Report is the materialized output of one report function. It is produced once
// per call and never mutated afterwards.
type Report struct {
	Name  string
	Title string
	Set   *record.RecordSet

	chart chart
}

// chart declares how a report projects onto category labels and numeric series.
// Without values every numeric column becomes a series.
type chart struct {
	label  func(record.Row) string
	values []string
}

func labelFields(names ...string) func(record.Row) string {
	return func(r record.Row) string {
		parts := make([]string, len(names))
		for i, n := range names {
			parts[i] = r.Value(n).Text()
		}
		return strings.Join(parts, " / ")
	}
}

// Len is the number of report rows.
func (r *Report) Len() int { return r.Set.Len() }

// Columns returns the report schema.
func (r *Report) Columns() []record.Field { return r.Set.Schema().Fields() }

// Series is the chart-shaped view of a report.
type Series struct {
	Categories []string      `json:"categories"`
	Series     []NamedSeries `json:"series"`
}

type NamedSeries struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Series projects the report onto category labels and numeric series. It carries
// no computation beyond the projection.
func (r *Report) Series() Series {
	out := Series{Categories: make([]string, 0, r.Len())}
	values := r.chart.values
	if values == nil {
		for _, f := range r.Columns() {
			if f.Kind.Numeric() {
				values = append(values, f.Name)
			}
		}
	}
	for _, name := range values {
		out.Series = append(out.Series, NamedSeries{Name: name, Values: make([]float64, 0, r.Len())})
	}
	for _, row := range r.Set.Rows() {
		label := ""
		if r.chart.label != nil {
			label = r.chart.label(row)
		}
		out.Categories = append(out.Categories, label)
		for i, name := range values {
			out.Series[i].Values = append(out.Series[i].Values, row.Value(name).Float64())
		}
	}
	return out
}

// Markdown renders the report as a titled table.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s]\n", strings.ToUpper(r.Title)))
	b.WriteString(fmt.Sprintf("Report: %s\n", r.Name))
	b.WriteString(fmt.Sprintf("Rows: %d\n\n", r.Len()))
	cols := r.Set.Schema().FieldNames()
	if len(cols) == 0 {
		return b.String()
	}
	b.WriteString("| ")
	b.WriteString(strings.Join(cols, " | "))
	b.WriteString(" |\n|")
	for range cols {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range r.Set.Rows() {
		b.WriteString("| ")
		for i, v := range row.Values() {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeVal(v.String()))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// Document is the JSON shape of a report.
type Document struct {
	Name    string                       `json:"name"`
	Title   string                       `json:"title"`
	Columns []record.Field               `json:"columns"`
	Rows    []map[string]json.RawMessage `json:"rows"`
}

// Document converts the report into its JSON shape. Numbers keep their exact digits.
func (r *Report) Document() Document {
	doc := Document{Name: r.Name, Title: r.Title, Columns: r.Columns(), Rows: make([]map[string]json.RawMessage, 0, r.Len())}
	names := r.Set.Schema().FieldNames()
	for _, row := range r.Set.Rows() {
		m := make(map[string]json.RawMessage, len(names))
		for i, v := range row.Values() {
			m[names[i]] = rawJSON(v)
		}
		doc.Rows = append(doc.Rows, m)
	}
	return doc
}

func rawJSON(v record.Value) json.RawMessage {
	switch v.Kind() {
	case record.KindNull:
		return json.RawMessage("null")
	case record.KindInt, record.KindDecimal:
		return json.RawMessage(v.String())
	default:
		b, _ := json.Marshal(v.String())
		return b
	}
}

// JSON renders the report document as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r.Document(), "", "  ")
}
