package report

import (
	"fmt"

	"github.com/KaramelBytes/retailboard/internal/analysis"
	"github.com/KaramelBytes/retailboard/internal/record"
	"github.com/shopspring/decimal"
)

func init() {
	register(&Definition{
		Name:     "quarterly-moving-average",
		Title:    "Quarterly Moving Average",
		Dataset:  Orders,
		Requires: []string{"order_date", "total_amount"},
		Columns: []record.Field{
			{Name: "order_year", Kind: record.KindInt},
			{Name: "order_quarter", Kind: record.KindInt},
			{Name: "total_amount", Kind: record.KindDecimal},
			{Name: "moving_avg_amount", Kind: record.KindDecimal},
		},
		numeric: []string{"total_amount"},
		dates:   []string{"order_date"},
		validate: func(p Params) error {
			if p.MovingPreceding < 0 {
				return &record.DomainError{Param: "moving_preceding", Value: p.MovingPreceding, Reason: "must not be negative"}
			}
			if p.MovingFollowing < 0 {
				return &record.DomainError{Param: "moving_following", Value: p.MovingFollowing, Reason: "must not be negative"}
			}
			return nil
		},
		chart: chart{
			label: func(r record.Row) string {
				return fmt.Sprintf("%d Q%d", r.Value("order_year").Int64(), r.Value("order_quarter").Int64())
			},
			values: []string{"total_amount", "moving_avg_amount"},
		},
		build: quarterlyMovingAverage,
	})
	register(&Definition{
		Name:     "daily-sales-delta",
		Title:    "Day-over-Day Sales Change",
		Dataset:  OrderItems,
		Requires: []string{"order_date", "total_price"},
		Columns: []record.Field{
			{Name: "order_date", Kind: record.KindDate},
			{Name: "current_sales", Kind: record.KindDecimal},
			{Name: "previous_sales", Kind: record.KindDecimal},
			{Name: "sales_difference", Kind: record.KindDecimal},
		},
		numeric: []string{"total_price"},
		dates:   []string{"order_date"},
		chart:   chart{label: labelFields("order_date"), values: []string{"current_sales", "sales_difference"}},
		build:   dailySalesDelta,
	})
	register(&Definition{
		Name:     "product-sales-contribution",
		Title:    "Product Sales Contribution",
		Dataset:  OrderItems,
		Requires: []string{"product_name", "total_price"},
		Columns: []record.Field{
			{Name: "product_name", Kind: record.KindString},
			{Name: "total_sales", Kind: record.KindDecimal},
			{Name: "overall_sales", Kind: record.KindDecimal},
			{Name: "sales_percentage", Kind: record.KindDecimal},
		},
		numeric: []string{"total_price"},
		chart:   chart{label: labelFields("product_name"), values: []string{"sales_percentage"}},
		build:   productSalesContribution,
	})
	register(&Definition{
		Name:     "top-customers",
		Title:    "Top Customers by Spend",
		Dataset:  OrderItems,
		Requires: []string{"username", "customer_name", "total_price"},
		Columns: []record.Field{
			{Name: "username", Kind: record.KindString},
			{Name: "customer_name", Kind: record.KindString},
			{Name: "total_spent", Kind: record.KindDecimal},
			{Name: "spending_rank", Kind: record.KindInt},
		},
		numeric:  []string{"total_price"},
		scope:    customersOnly,
		validate: func(p Params) error { return positive("top_customers", p.TopCustomers) },
		chart:    chart{label: labelFields("customer_name"), values: []string{"total_spent"}},
		build:    topCustomers,
	})
	register(&Definition{
		Name:     "highest-sale-per-product",
		Title:    "Highest Sale per Product",
		Dataset:  OrderItems,
		Requires: []string{"product_name", "total_price"},
		Columns: []record.Field{
			{Name: "product_name", Kind: record.KindString},
			{Name: "highest_sales_amount", Kind: record.KindDecimal},
		},
		numeric: []string{"total_price"},
		chart:   chart{label: labelFields("product_name"), values: []string{"highest_sales_amount"}},
		build:   highestSalePerProduct,
	})
	register(&Definition{
		Name:     "product-sales-rollup",
		Title:    "Total Sales per Product",
		Dataset:  OrderItems,
		Requires: []string{"product_name", "total_price"},
		Columns: []record.Field{
			{Name: "product_name", Kind: record.KindString},
			{Name: "total_sales", Kind: record.KindDecimal},
		},
		numeric: []string{"total_price"},
		chart:   chart{label: labelFields("product_name"), values: []string{"total_sales"}},
		build:   productSalesRollup,
	})
	register(&Definition{
		Name:     "product-state-rollup",
		Title:    "Sales per Product and State",
		Dataset:  OrderItems,
		Requires: []string{"product_name", "state", "total_price"},
		Columns: []record.Field{
			{Name: "product_name", Kind: record.KindString},
			{Name: "state", Kind: record.KindString},
			{Name: "total_sales", Kind: record.KindDecimal},
		},
		numeric: []string{"total_price"},
		scope:   joined("state"),
		chart:   chart{label: labelFields("product_name", "state"), values: []string{"total_sales"}},
		build:   productStateRollup,
	})
	register(&Definition{
		Name:     "top-products-by-order-count",
		Title:    "Best-Selling Products by Order Count",
		Dataset:  OrderItems,
		Requires: []string{"product_name", "order_id"},
		Columns: []record.Field{
			{Name: "product_name", Kind: record.KindString},
			{Name: "order_count", Kind: record.KindInt},
			{Name: "sales_rank", Kind: record.KindInt},
		},
		chart: chart{label: labelFields("product_name"), values: []string{"order_count"}},
		build: topProductsByOrderCount,
	})
}

// GrandTotalLabel names the rollup row appended to per-product totals.
const GrandTotalLabel = "Grand Total"

// Subtotal labels of the product by state rollup.
const (
	AllStatesLabel   = "All States"
	AllProductsLabel = "All Products"
)

func quarterlyMovingAverage(in *record.RecordSet, p Params, out *record.Builder) error {
	groups, err := record.Partition(in, quarterOf("order_date"))
	if err != nil {
		return err
	}
	record.SortGroups(groups)
	quarters := tallies(groups, "total_amount")
	// quarters are sorted by (year, quarter), so each year is a contiguous run
	for lo := 0; lo < len(quarters); {
		hi := lo
		for hi < len(quarters) && quarters[hi].key[0].Equal(quarters[lo].key[0]) {
			hi++
		}
		year := quarters[lo:hi]
		avg, err := analysis.Moving(sums(year), p.MovingPreceding, p.MovingFollowing, analysis.Mean)
		if err != nil {
			return err
		}
		for i, q := range year {
			if err := out.Append(q.key[0], q.key[1], record.Dec(q.sum), record.Dec(analysis.Round2(avg[i]))); err != nil {
				return err
			}
		}
		lo = hi
	}
	return nil
}

func dailySalesDelta(in *record.RecordSet, _ Params, out *record.Builder) error {
	groups, err := record.Partition(in, dayOf("order_date"))
	if err != nil {
		return err
	}
	record.SortGroups(groups)
	days := tallies(groups, "total_price")
	current := sums(days)
	previous, err := analysis.Lag(current, 1, decimal.Zero)
	if err != nil {
		return err
	}
	diff, err := analysis.Delta(current, 1, decimal.Zero)
	if err != nil {
		return err
	}
	for i, d := range days {
		if err := out.Append(d.key[0], record.Dec(current[i]), record.Dec(previous[i]), record.Dec(diff[i])); err != nil {
			return err
		}
	}
	return nil
}

func productSalesContribution(in *record.RecordSet, _ Params, out *record.Builder) error {
	products, err := tallyBy(in, record.ByFields("product_name"), "total_price")
	if err != nil {
		return err
	}
	bySumDesc(products)
	total, pct := analysis.Percentages(sums(products))
	for i, t := range products {
		if err := out.Append(text(t.key[0]), record.Dec(t.sum), record.Dec(total), record.Dec(pct[i])); err != nil {
			return err
		}
	}
	return nil
}

// customersOnly keeps lines bought by a known user holding the customer role.
// Sets without a role column are taken to hold customers only.
func customersOnly(r record.Row) bool {
	if !joined("username")(r) {
		return false
	}
	role, ok := r.Get("role")
	return !ok || role.Text() == "customer"
}

func topCustomers(in *record.RecordSet, p Params, out *record.Builder) error {
	customers, err := tallyBy(in, record.ByFields("username"), "total_price")
	if err != nil {
		return err
	}
	bySumDesc(customers)
	ranks := analysis.Ranks(len(customers), func(i, j int) bool {
		return customers[i].sum.Equal(customers[j].sum)
	}, analysis.DenseRank)
	for i, c := range customers {
		if ranks[i] > p.TopCustomers {
			break
		}
		name := text(c.first.Value("customer_name"))
		if err := out.Append(text(c.key[0]), name, record.Dec(c.sum), record.Int(int64(ranks[i]))); err != nil {
			return err
		}
	}
	return nil
}

func highestSalePerProduct(in *record.RecordSet, _ Params, out *record.Builder) error {
	products, err := tallyBy(in, record.ByFields("product_name"), "total_price")
	if err != nil {
		return err
	}
	sortByMaxDesc(products)
	for _, t := range products {
		if err := out.Append(text(t.key[0]), record.Dec(t.max)); err != nil {
			return err
		}
	}
	return nil
}

func productSalesRollup(in *record.RecordSet, _ Params, out *record.Builder) error {
	products, err := tallyBy(in, record.ByFields("product_name"), "total_price")
	if err != nil {
		return err
	}
	bySumDesc(products)
	grand := analysis.Sum(sums(products))
	for _, t := range products {
		if err := out.Append(text(t.key[0]), record.Dec(t.sum)); err != nil {
			return err
		}
	}
	return out.Append(record.Str(GrandTotalLabel), record.Dec(grand))
}

// productStateRollup sums sales per (product, state) in name order. Each product
// closes with an All States subtotal and the set closes with the grand total.
func productStateRollup(in *record.RecordSet, _ Params, out *record.Builder) error {
	groups, err := record.Partition(in, record.ByFields("product_name", "state"))
	if err != nil {
		return err
	}
	record.SortGroups(groups)
	cells := tallies(groups, "total_price")
	grand := decimal.Zero
	for lo := 0; lo < len(cells); {
		hi := lo
		subtotal := decimal.Zero
		for hi < len(cells) && cells[hi].key[0].Equal(cells[lo].key[0]) {
			c := cells[hi]
			if err := out.Append(text(c.key[0]), text(c.key[1]), record.Dec(c.sum)); err != nil {
				return err
			}
			subtotal = subtotal.Add(c.sum)
			hi++
		}
		if err := out.Append(text(cells[lo].key[0]), record.Str(AllStatesLabel), record.Dec(subtotal)); err != nil {
			return err
		}
		grand = grand.Add(subtotal)
		lo = hi
	}
	return out.Append(record.Str(AllProductsLabel), record.Str(AllStatesLabel), record.Dec(grand))
}

func topProductsByOrderCount(in *record.RecordSet, _ Params, out *record.Builder) error {
	products, err := tallyBy(in, record.ByFields("product_name"), "order_id")
	if err != nil {
		return err
	}
	sortByCountDesc(products)
	ranks := analysis.Ranks(len(products), func(i, j int) bool {
		return products[i].count == products[j].count
	}, analysis.DenseRank)
	for i, t := range products {
		if err := out.Append(text(t.key[0]), record.Int(int64(t.count)), record.Int(int64(ranks[i]))); err != nil {
			return err
		}
	}
	return nil
}
