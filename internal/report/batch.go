package report

import (
	"fmt"
	"time"

	"github.com/KaramelBytes/retailboard/internal/record"
	"golang.org/x/sync/errgroup"
)

// Outcome is the result of one report within a batch. Exactly one of Report and
// Err is set.
type Outcome struct {
	Name    string
	Report  *Report
	Err     error
	Elapsed time.Duration
}

// BuildAll computes the named reports concurrently, each over the dataset its
// definition reads from inputs. A nil or empty names builds every registered report.
// At most parallelism reports run at once; zero or less means no limit. A failing
// report does not stop the others. Outcomes follow the order of names.
func BuildAll(inputs map[string]*record.RecordSet, names []string, p Params, parallelism int) ([]Outcome, error) {
	if len(names) == 0 {
		names = Names()
	}
	defs := make([]*Definition, len(names))
	for i, n := range names {
		d, ok := Lookup(n)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownReport, n)
		}
		defs[i] = d
	}
	out := make([]Outcome, len(defs))
	var g errgroup.Group
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, d := range defs {
		i, d := i, d
		g.Go(func() error {
			start := time.Now()
			rep, err := d.Build(inputs[d.Dataset], p)
			out[i] = Outcome{Name: d.Name, Report: rep, Err: err, Elapsed: time.Since(start)}
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

// Needed returns the datasets the named reports read, each once, in first-use order.
func Needed(names []string) ([]string, error) {
	if len(names) == 0 {
		names = Names()
	}
	seen := map[string]bool{}
	var out []string
	for _, n := range names {
		d, ok := Lookup(n)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownReport, n)
		}
		if !seen[d.Dataset] {
			seen[d.Dataset] = true
			out = append(out, d.Dataset)
		}
	}
	return out, nil
}
