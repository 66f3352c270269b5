package report

import (
	"sort"
	"time"

	"github.com/KaramelBytes/retailboard/internal/record"
	"github.com/shopspring/decimal"
)

// tally is the per-key reduction of one metric over a partition.
type tally struct {
	key   record.Key
	first record.Row
	sum   decimal.Decimal
	max   decimal.Decimal
	count int
}

// tallyBy partitions in by key and reduces metric per group. Groups keep
// first-seen order.
func tallyBy(in *record.RecordSet, key record.KeyFunc, metric string) ([]tally, error) {
	groups, err := record.Partition(in, key)
	if err != nil {
		return nil, err
	}
	return tallies(groups, metric), nil
}

func tallies(groups []record.Group, metric string) []tally {
	out := make([]tally, len(groups))
	for i, g := range groups {
		rows := g.Set.Rows()
		vals := column(rows, metric)
		t := tally{key: g.Key, first: rows[0], count: len(rows)}
		for j, v := range vals {
			t.sum = t.sum.Add(v)
			if j == 0 || v.GreaterThan(t.max) {
				t.max = v
			}
		}
		out[i] = t
	}
	return out
}

// bySumDesc orders tallies by descending sum; equal sums keep their order.
func bySumDesc(ts []tally) {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].sum.GreaterThan(ts[j].sum) })
}

func sortByMaxDesc(ts []tally) {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].max.GreaterThan(ts[j].max) })
}

func sortByCountDesc(ts []tally) {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].count > ts[j].count })
}

func sums(ts []tally) []decimal.Decimal {
	out := make([]decimal.Decimal, len(ts))
	for i, t := range ts {
		out[i] = t.sum
	}
	return out
}

// column reads field from every row as a decimal. Nulls read as zero.
func column(rows []record.Row, field string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(rows))
	for i, r := range rows {
		out[i] = r.Value(field).Decimal()
	}
	return out
}

// text renders any scalar as a string cell, so identifiers stored as numbers still
// land in string columns.
func text(v record.Value) record.Value {
	if v.IsNull() {
		return v
	}
	return record.Str(v.String())
}

// quarterOf keys a row by the calendar year and quarter of a date field.
func quarterOf(field string) record.KeyFunc {
	return func(r record.Row) (record.Key, error) {
		v, ok := r.Get(field)
		if !ok || v.IsNull() {
			return nil, &record.SchemaError{Field: field, Row: -1}
		}
		t := v.Time()
		return record.Key{record.Int(int64(t.Year())), record.Int(int64((int(t.Month())-1)/3 + 1))}, nil
	}
}

// dayOf keys a row by the calendar date of a date field, dropping the time of day.
func dayOf(field string) record.KeyFunc {
	return func(r record.Row) (record.Key, error) {
		v, ok := r.Get(field)
		if !ok || v.IsNull() {
			return nil, &record.SchemaError{Field: field, Row: -1}
		}
		t := v.Time()
		return record.Key{record.Date(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()))}, nil
	}
}
