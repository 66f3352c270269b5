package analysis

import (
	"errors"
	"reflect"
	"testing"

	"github.com/KaramelBytes/retailboard/internal/record"
)

func amounts(vals ...int64) *record.RecordSet {
	rows := make([][]record.Value, len(vals))
	for i, v := range vals {
		rows[i] = []record.Value{record.Int(int64(i)), record.Int(v)}
	}
	return record.MustNew([]record.Field{{Name: "id", Kind: record.KindInt}, {Name: "amount", Kind: record.KindInt}}, rows...)
}

func TestRankModes(t *testing.T) {
	rs := amounts(5, 10, 8, 10, 5)
	order := record.OrderSpec{record.Desc("amount")}
	cases := []struct {
		mode RankMode
		want []int
	}{
		{RowNumber, []int{1, 2, 3, 4, 5}},
		{Rank, []int{1, 1, 3, 4, 4}},
		{DenseRank, []int{1, 1, 2, 3, 3}},
	}
	for _, tc := range cases {
		got := RankRows(rs.Rows(), order, tc.mode)
		ranks := make([]int, len(got))
		for i, r := range got {
			ranks[i] = r.Rank
		}
		if !reflect.DeepEqual(ranks, tc.want) {
			t.Fatalf("%s: want %v, got %v", tc.mode, tc.want, ranks)
		}
	}
}

func TestRowNumberTiesKeepInputOrder(t *testing.T) {
	rs := amounts(5, 10, 8, 10, 5)
	got := RankRows(rs.Rows(), record.OrderSpec{record.Desc("amount")}, RowNumber)
	ids := make([]int64, len(got))
	for i, r := range got {
		ids[i] = r.Row.Value("id").Int64()
	}
	if want := []int64{1, 3, 2, 0, 4}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("want %v, got %v", want, ids)
	}
}

func TestRankEmptyPartition(t *testing.T) {
	if got := RankRows(nil, record.OrderSpec{record.Desc("amount")}, Rank); len(got) != 0 {
		t.Fatalf("want empty result, got %v", got)
	}
}

func TestNTileSizes(t *testing.T) {
	buckets, err := NTile(12, 5)
	if err != nil {
		t.Fatalf("ntile: %v", err)
	}
	if got := BucketSizes(buckets, 5); !reflect.DeepEqual(got, []int{3, 3, 2, 2, 2}) {
		t.Fatalf("want [3 3 2 2 2], got %v", got)
	}
	if want := []int{1, 1, 1, 2, 2, 2, 3, 3, 4, 4, 5, 5}; !reflect.DeepEqual(buckets, want) {
		t.Fatalf("want %v, got %v", want, buckets)
	}
}

func TestNTileMoreBucketsThanRows(t *testing.T) {
	buckets, err := NTile(3, 5)
	if err != nil {
		t.Fatalf("ntile: %v", err)
	}
	if got := BucketSizes(buckets, 5); !reflect.DeepEqual(got, []int{1, 1, 1, 0, 0}) {
		t.Fatalf("unexpected sizes %v", got)
	}
}

func TestNTileRejectsNonPositive(t *testing.T) {
	for _, k := range []int{0, -2} {
		_, err := NTile(4, k)
		var de *record.DomainError
		if !errors.As(err, &de) || de.Param != "buckets" {
			t.Fatalf("k=%d: want DomainError, got %v", k, err)
		}
	}
}

func TestNTileRowsOrdersFirst(t *testing.T) {
	rs := amounts(1, 4, 3, 2)
	tiles, err := NTileRows(rs.Rows(), record.OrderSpec{record.Desc("amount")}, 2)
	if err != nil {
		t.Fatalf("ntile rows: %v", err)
	}
	var got []int64
	for _, b := range tiles {
		if b.Bucket == 1 {
			got = append(got, b.Row.Value("amount").Int64())
		}
	}
	if !reflect.DeepEqual(got, []int64{4, 3}) {
		t.Fatalf("top tile: want [4 3], got %v", got)
	}
}
