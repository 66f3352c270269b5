package analysis

import (
	"fmt"

	"github.com/KaramelBytes/retailboard/internal/record"
)

// RankMode selects how ties are numbered.
type RankMode int

const (
	// RowNumber numbers rows 1..n regardless of ties; ties keep input order.
	RowNumber RankMode = iota
	// Rank gives ties the same rank and leaves a gap after them.
	Rank
	// DenseRank gives ties the same rank without gaps.
	DenseRank
)

func (m RankMode) String() string {
	switch m {
	case RowNumber:
		return "ROW_NUMBER"
	case Rank:
		return "RANK"
	case DenseRank:
		return "DENSE_RANK"
	}
	return fmt.Sprintf("RankMode(%d)", int(m))
}

// Ranked pairs a row with its rank within the partition.
type Ranked struct {
	Row  record.Row
	Rank int
}

// RankRows sorts the partition stably by order and numbers it according to mode.
// The result is in ranked order.
func RankRows(rows []record.Row, order record.OrderSpec, mode RankMode) []Ranked {
	if len(rows) == 0 {
		return nil
	}
	sorted := order.Sort(rows)
	ranks := Ranks(len(sorted), func(i, j int) bool { return order.Compare(sorted[i], sorted[j]) == 0 }, mode)
	out := make([]Ranked, len(sorted))
	for i, r := range sorted {
		out[i] = Ranked{Row: r, Rank: ranks[i]}
	}
	return out
}

// Ranks numbers an already ordered sequence where equal(i-1, i) reports a tie
// between neighbours. It is the value-level counterpart of RankRows.
func Ranks(n int, equal func(i, j int) bool, mode RankMode) []int {
	out := make([]int, n)
	rank, dense := 0, 0
	for i := 0; i < n; i++ {
		tied := i > 0 && equal(i-1, i)
		switch mode {
		case RowNumber:
			rank = i + 1
		case Rank:
			if !tied {
				rank = i + 1
			}
		case DenseRank:
			if !tied {
				dense++
			}
			rank = dense
		}
		out[i] = rank
	}
	return out
}
