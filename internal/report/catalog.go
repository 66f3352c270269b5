package report

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/retailboard/internal/analysis"
	"github.com/KaramelBytes/retailboard/internal/record"
	"github.com/shopspring/decimal"
)

// NoProduct fills a top-K slot a state has no product for.
const NoProduct = "None"

func init() {
	register(&Definition{
		Name:     "state-top-products",
		Title:    "Top Products per State",
		Dataset:  OrderItems,
		Requires: []string{"state", "product_name", "total_price"},
		Columns:  stateColumns(DefaultParams().StateTopK),
		numeric:  []string{"total_price"},
		scope:    joined("state"),
		columns:  func(p Params) []record.Field { return stateColumns(p.StateTopK) },
		validate: func(p Params) error { return positive("state_top_k", p.StateTopK) },
		chart:    chart{label: labelFields("state")},
		build:    stateTopProducts,
	})
	register(&Definition{
		Name:     "brand-price-extremes",
		Title:    "Cheapest and Most Expensive Product per Brand",
		Dataset:  Products,
		Requires: []string{"brand_id", "brand_name", "product_name", "price"},
		Columns: []record.Field{
			{Name: "brand_name", Kind: record.KindString},
			{Name: "cheapest_product", Kind: record.KindString},
			{Name: "cheapest_price", Kind: record.KindDecimal},
			{Name: "expensive_product", Kind: record.KindString},
			{Name: "expensive_price", Kind: record.KindDecimal},
		},
		numeric: []string{"price"},
		chart:   chart{label: labelFields("brand_name"), values: []string{"cheapest_price", "expensive_price"}},
		build:   brandPriceExtremes,
	})
	register(&Definition{
		Name:     "brand-stock",
		Title:    "Total Stock per Brand",
		Dataset:  Inventory,
		Requires: []string{"brand_name", "stock_quantity"},
		Columns: []record.Field{
			{Name: "brand_name", Kind: record.KindString},
			{Name: "total_stock", Kind: record.KindDecimal},
		},
		numeric: []string{"stock_quantity"},
		chart:   chart{label: labelFields("brand_name"), values: []string{"total_stock"}},
		build:   brandStock,
	})
}

func stateColumns(k int) []record.Field {
	cols := []record.Field{{Name: "state", Kind: record.KindString}}
	for i := 1; i <= k; i++ {
		cols = append(cols,
			record.Field{Name: fmt.Sprintf("product_%d", i), Kind: record.KindString},
			record.Field{Name: fmt.Sprintf("sales_%d", i), Kind: record.KindDecimal},
		)
	}
	return cols
}

type slot struct {
	product record.Value
	sales   decimal.Decimal
}

// stateTopProducts ranks per-(state, product) sales within each state and lays
// ranks 1..K side by side. A rank nobody holds renders as "None"/0; a rank held by
// several tied products yields one output row per combination.
func stateTopProducts(in *record.RecordSet, p Params, out *record.Builder) error {
	states, err := record.Partition(in, record.ByFields("state"))
	if err != nil {
		return err
	}
	record.SortGroups(states)
	for _, st := range states {
		products, err := tallyBy(st.Set, record.ByFields("product_name"), "total_price")
		if err != nil {
			return err
		}
		bySumDesc(products)
		ranks := analysis.Ranks(len(products), func(i, j int) bool { return products[i].sum.Equal(products[j].sum) }, analysis.Rank)
		slots := make([][]slot, p.StateTopK)
		for i, t := range products {
			if r := ranks[i]; r <= p.StateTopK {
				slots[r-1] = append(slots[r-1], slot{product: text(t.key[0]), sales: t.sum})
			}
		}
		for i := range slots {
			if len(slots[i]) == 0 {
				slots[i] = []slot{{product: record.Str(NoProduct), sales: decimal.Zero}}
			}
		}
		if err := emitCombinations(out, text(st.Key[0]), slots); err != nil {
			return err
		}
	}
	return nil
}

func emitCombinations(out *record.Builder, state record.Value, slots [][]slot) error {
	idx := make([]int, len(slots))
	for {
		cells := []record.Value{state}
		for i, s := range slots {
			cells = append(cells, s[idx[i]].product, record.Dec(s[idx[i]].sales))
		}
		if err := out.Append(cells...); err != nil {
			return err
		}
		// advance the rightmost slot first, like nested joins
		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(slots[i]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return nil
		}
	}
}

// brandPriceExtremes reports each brand's cheapest and most expensive product.
// On equal prices the first row in input order wins at both ends.
func brandPriceExtremes(in *record.RecordSet, _ Params, out *record.Builder) error {
	brands, err := record.Partition(in, record.ByFields("brand_id"))
	if err != nil {
		return err
	}
	type extremes struct {
		brand, cheap, dear record.Row
	}
	rows := make([]extremes, 0, len(brands))
	for _, b := range brands {
		members := b.Set.Rows()
		e := extremes{brand: members[0], cheap: members[0], dear: members[0]}
		for _, r := range members[1:] {
			price := r.Value("price")
			if record.Compare(price, e.cheap.Value("price")) < 0 {
				e.cheap = r
			}
			if record.Compare(price, e.dear.Value("price")) > 0 {
				e.dear = r
			}
		}
		rows = append(rows, e)
	}
	order := record.OrderSpec{record.Asc("brand_name")}
	sort.SliceStable(rows, func(i, j int) bool { return order.Compare(rows[i].brand, rows[j].brand) < 0 })
	for _, e := range rows {
		err := out.Append(
			text(e.brand.Value("brand_name")),
			text(e.cheap.Value("product_name")),
			record.Dec(e.cheap.Value("price").Decimal()),
			text(e.dear.Value("product_name")),
			record.Dec(e.dear.Value("price").Decimal()),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func brandStock(in *record.RecordSet, _ Params, out *record.Builder) error {
	brands, err := tallyBy(in, record.ByFields("brand_name"), "stock_quantity")
	if err != nil {
		return err
	}
	bySumDesc(brands)
	for _, t := range brands {
		if err := out.Append(text(t.key[0]), record.Dec(t.sum)); err != nil {
			return err
		}
	}
	return nil
}
