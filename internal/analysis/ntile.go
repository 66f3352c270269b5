package analysis

import "github.com/KaramelBytes/retailboard/internal/record"

// NTile assigns each of n ordered positions to one of k buckets. The first n%k
// buckets hold n/k+1 rows and the rest hold n/k. When k > n only buckets 1..n are
// used. The result is indexed by 0-based position and holds 1-based bucket numbers.
func NTile(n, k int) ([]int, error) {
	if k <= 0 {
		return nil, &record.DomainError{Param: "buckets", Value: k, Reason: "must be positive"}
	}
	if n < 0 {
		return nil, &record.DomainError{Param: "partition_size", Value: n, Reason: "must not be negative"}
	}
	base, rem := n/k, n%k
	large := rem * (base + 1)
	out := make([]int, n)
	for i := 0; i < n; i++ {
		if i < large {
			out[i] = i/(base+1) + 1
			continue
		}
		out[i] = rem + (i-large)/base + 1
	}
	return out, nil
}

// Bucketed pairs a row with its NTILE bucket.
type Bucketed struct {
	Row    record.Row
	Bucket int
}

// NTileRows sorts the partition stably by order and buckets it into k tiles.
func NTileRows(rows []record.Row, order record.OrderSpec, k int) ([]Bucketed, error) {
	buckets, err := NTile(len(rows), k)
	if err != nil {
		return nil, err
	}
	sorted := order.Sort(rows)
	out := make([]Bucketed, len(sorted))
	for i, r := range sorted {
		out[i] = Bucketed{Row: r, Bucket: buckets[i]}
	}
	return out, nil
}

// BucketSizes counts rows per bucket 1..k.
func BucketSizes(buckets []int, k int) []int {
	sizes := make([]int, k)
	for _, b := range buckets {
		if b >= 1 && b <= k {
			sizes[b-1]++
		}
	}
	return sizes
}
