package report

import (
	"testing"
	"time"

	"github.com/KaramelBytes/retailboard/internal/record"
)

func day(s string) record.Value {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		t, err = time.Parse("2006-01-02", s)
	}
	if err != nil {
		panic(err)
	}
	return record.Date(t)
}

func orderItems() *record.RecordSet {
	fields := []record.Field{
		{Name: "order_id", Kind: record.KindInt},
		{Name: "order_date", Kind: record.KindDate},
		{Name: "username", Kind: record.KindString},
		{Name: "customer_name", Kind: record.KindString},
		{Name: "role", Kind: record.KindString},
		{Name: "state", Kind: record.KindString},
		{Name: "product_name", Kind: record.KindString},
		{Name: "price", Kind: record.KindDecimal},
		{Name: "total_price", Kind: record.KindDecimal},
	}
	row := func(id int64, date, user, name, role, state, product, price, total string) []record.Value {
		return []record.Value{
			record.Int(id), day(date), record.Str(user), record.Str(name), record.Str(role),
			record.Str(state), record.Str(product), record.DecString(price), record.DecString(total),
		}
	}
	return record.MustNew(fields,
		row(1, "2024-01-05 10:00", "alice", "Alice Smith", "customer", "TX", "Desk", "100", "200"),
		row(1, "2024-01-05 12:00", "alice", "Alice Smith", "customer", "TX", "Lamp", "20", "40"),
		row(2, "2024-01-06", "bob", "Bob Jones", "customer", "CA", "Desk", "100", "100"),
		row(3, "2024-01-06", "carol", "Carol White", "customer", "CA", "Chair", "50", "150"),
		row(4, "2024-01-08", "admin", "Ada Admin", "admin", "TX", "Chair", "50", "500"),
		row(5, "2024-01-08", "bob", "Bob Jones", "customer", "AZ", "Lamp", "20", "20"),
	)
}

func orders() *record.RecordSet {
	fields := []record.Field{
		{Name: "order_id", Kind: record.KindInt},
		{Name: "order_date", Kind: record.KindDate},
		{Name: "total_amount", Kind: record.KindDecimal},
	}
	return record.MustNew(fields,
		[]record.Value{record.Int(1), day("2024-01-10"), record.DecString("100")},
		[]record.Value{record.Int(2), day("2023-11-01"), record.DecString("100")},
		[]record.Value{record.Int(3), day("2024-02-10"), record.DecString("50")},
		[]record.Value{record.Int(4), day("2024-05-01"), record.DecString("300")},
		[]record.Value{record.Int(5), day("2024-08-01"), record.DecString("60")},
	)
}

func products() *record.RecordSet {
	fields := []record.Field{
		{Name: "brand_id", Kind: record.KindInt},
		{Name: "brand_name", Kind: record.KindString},
		{Name: "product_name", Kind: record.KindString},
		{Name: "price", Kind: record.KindDecimal},
	}
	row := func(id int64, brand, product, price string) []record.Value {
		return []record.Value{record.Int(id), record.Str(brand), record.Str(product), record.DecString(price)}
	}
	return record.MustNew(fields,
		row(2, "Zeta", "Z1", "10"),
		row(1, "Acme", "A1", "5"),
		row(1, "Acme", "A2", "9"),
		row(1, "Acme", "A3", "5"),
		row(1, "Acme", "A4", "9"),
		row(2, "Zeta", "Z2", "10"),
	)
}

func inventory() *record.RecordSet {
	fields := []record.Field{
		{Name: "product_name", Kind: record.KindString},
		{Name: "brand_name", Kind: record.KindString},
		{Name: "stock_quantity", Kind: record.KindInt},
	}
	row := func(product, brand string, qty int64) []record.Value {
		return []record.Value{record.Str(product), record.Str(brand), record.Int(qty)}
	}
	return record.MustNew(fields,
		row("Desk", "Acme", 30),
		row("Lamp", "Zeta", 50),
		row("Chair", "Acme", 30),
		row("Shelf", "Zeta", 10),
		row("Stool", "Acme", 60),
		row("Rug", "Zeta", 20),
	)
}

func allInputs() map[string]*record.RecordSet {
	return map[string]*record.RecordSet{
		Orders:     orders(),
		OrderItems: orderItems(),
		Products:   products(),
		Inventory:  inventory(),
	}
}

func mustBuild(t *testing.T, name string, rs *record.RecordSet, p Params) *Report {
	t.Helper()
	rep, err := Build(name, rs, p)
	if err != nil {
		t.Fatalf("build %s: %v", name, err)
	}
	return rep
}

// col renders one output column as strings; numbers drop trailing zeros.
func col(rep *Report, field string) []string {
	out := make([]string, 0, rep.Len())
	for _, r := range rep.Set.Rows() {
		v := r.Value(field)
		if v.Kind().Numeric() {
			out = append(out, v.Decimal().String())
			continue
		}
		out = append(out, v.String())
	}
	return out
}
