package report

import (
	"sort"

	"github.com/KaramelBytes/retailboard/internal/analysis"
	"github.com/KaramelBytes/retailboard/internal/record"
)

func init() {
	register(&Definition{
		Name:     "pareto",
		Title:    "Pareto Analysis (80/20 Rule)",
		Dataset:  OrderItems,
		Requires: []string{"product_name", "total_price"},
		Columns: []record.Field{
			{Name: "product_name", Kind: record.KindString},
			{Name: "total_sales", Kind: record.KindDecimal},
			{Name: "cumulative_sales", Kind: record.KindDecimal},
			{Name: "cumulative_percentage", Kind: record.KindDecimal},
			{Name: "pareto_classification", Kind: record.KindString},
		},
		numeric:  []string{"total_price"},
		validate: Params.validateThreshold,
		chart:    chart{label: labelFields("product_name"), values: []string{"total_sales", "cumulative_percentage"}},
		build:    pareto,
	})
	register(&Definition{
		Name:     "price-tier-impact",
		Title:    "Price Tier Sales Impact",
		Dataset:  OrderItems,
		Requires: []string{"product_name", "price", "total_price"},
		Columns: []record.Field{
			{Name: "product_name", Kind: record.KindString},
			{Name: "price", Kind: record.KindDecimal},
			{Name: "total_sales", Kind: record.KindDecimal},
			{Name: "price_tier", Kind: record.KindInt},
			{Name: "rank_within_tier", Kind: record.KindInt},
			{Name: "impact", Kind: record.KindString},
		},
		numeric: []string{"price", "total_price"},
		validate: func(p Params) error {
			if err := positive("price_tier_buckets", p.PriceTierBuckets); err != nil {
				return err
			}
			return p.validateMultiplier()
		},
		chart: chart{label: labelFields("product_name"), values: []string{"total_sales"}},
		build: priceTierImpact,
	})
	register(&Definition{
		Name:     "stock-tiers",
		Title:    "Stock Tiers",
		Dataset:  Inventory,
		Requires: []string{"product_name", "stock_quantity"},
		Columns: []record.Field{
			{Name: "product_name", Kind: record.KindString},
			{Name: "stock_quantity", Kind: record.KindDecimal},
			{Name: "stock_tier", Kind: record.KindInt},
		},
		numeric:  []string{"stock_quantity"},
		validate: func(p Params) error { return positive("stock_tier_buckets", p.StockTierBuckets) },
		chart:    chart{label: labelFields("product_name"), values: []string{"stock_quantity"}},
		build: func(in *record.RecordSet, p Params, out *record.Builder) error {
			return tileRows(in, record.OrderSpec{record.Desc("stock_quantity")}, p.StockTierBuckets, "stock_quantity", out)
		},
	})
	register(&Definition{
		Name:     "product-price-tiers",
		Title:    "Product Price Tiers",
		Dataset:  Products,
		Requires: []string{"product_name", "price"},
		Columns: []record.Field{
			{Name: "product_name", Kind: record.KindString},
			{Name: "price", Kind: record.KindDecimal},
			{Name: "price_tier", Kind: record.KindInt},
		},
		numeric:  []string{"price"},
		validate: func(p Params) error { return positive("product_price_buckets", p.ProductPriceBuckets) },
		chart:    chart{label: labelFields("product_name"), values: []string{"price"}},
		build: func(in *record.RecordSet, p Params, out *record.Builder) error {
			return tileRows(in, record.OrderSpec{record.Asc("price")}, p.ProductPriceBuckets, "price", out)
		},
	})
	register(&Definition{
		Name:     "stock-rank",
		Title:    "Stock Ranking",
		Dataset:  Inventory,
		Requires: []string{"product_name", "stock_quantity"},
		Columns: []record.Field{
			{Name: "product_name", Kind: record.KindString},
			{Name: "stock_quantity", Kind: record.KindDecimal},
			{Name: "stock_rank", Kind: record.KindInt},
		},
		numeric: []string{"stock_quantity"},
		chart:   chart{label: labelFields("product_name"), values: []string{"stock_quantity"}},
		build:   stockRank,
	})
}

func pareto(in *record.RecordSet, p Params, out *record.Builder) error {
	products, err := tallyBy(in, record.ByFields("product_name"), "total_price")
	if err != nil {
		return err
	}
	bySumDesc(products)
	shares := analysis.Cumulative(sums(products), p.ParetoThreshold)
	for i, t := range products {
		s := shares[i]
		if err := out.Append(text(t.key[0]), record.Dec(t.sum), record.Dec(s.Cumulative), record.Dec(s.Percent), record.Str(s.Class)); err != nil {
			return err
		}
	}
	return nil
}

// priceTierImpact sums sales per (product, price), buckets products by price
// descending, ranks them by sales within each tier and flags sales outside the
// tier's IQR fences.
func priceTierImpact(in *record.RecordSet, p Params, out *record.Builder) error {
	products, err := tallyBy(in, record.ByFields("product_name", "price"), "total_price")
	if err != nil {
		return err
	}
	sort.SliceStable(products, func(i, j int) bool {
		return record.Compare(products[i].key[1], products[j].key[1]) > 0
	})
	tiers, err := analysis.NTile(len(products), p.PriceTierBuckets)
	if err != nil {
		return err
	}
	for lo := 0; lo < len(products); {
		hi := lo
		for hi < len(products) && tiers[hi] == tiers[lo] {
			hi++
		}
		tier := products[lo:hi]
		bySumDesc(tier)
		ranks := analysis.Ranks(len(tier), func(i, j int) bool { return tier[i].sum.Equal(tier[j].sum) }, analysis.DenseRank)
		_, classes := analysis.ClassifyAll(sums(tier), p.IQRMultiplier)
		for i, t := range tier {
			err := out.Append(
				text(t.key[0]),
				record.Dec(t.key[1].Decimal()),
				record.Dec(t.sum),
				record.Int(int64(tiers[lo])),
				record.Int(int64(ranks[i])),
				record.Str(classes[i].String()),
			)
			if err != nil {
				return err
			}
		}
		lo = hi
	}
	return nil
}

// tileRows buckets individual rows into k tiles under order and emits
// (product_name, metric, tier) in tile order.
func tileRows(in *record.RecordSet, order record.OrderSpec, k int, metric string, out *record.Builder) error {
	tiles, err := analysis.NTileRows(in.Rows(), order, k)
	if err != nil {
		return err
	}
	for _, t := range tiles {
		if err := out.Append(text(t.Row.Value("product_name")), t.Row.Value(metric), record.Int(int64(t.Bucket))); err != nil {
			return err
		}
	}
	return nil
}

func stockRank(in *record.RecordSet, _ Params, out *record.Builder) error {
	for _, r := range analysis.RankRows(in.Rows(), record.OrderSpec{record.Desc("stock_quantity")}, analysis.Rank) {
		if err := out.Append(text(r.Row.Value("product_name")), r.Row.Value("stock_quantity"), record.Int(int64(r.Rank))); err != nil {
			return err
		}
	}
	return nil
}
